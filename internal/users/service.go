package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, form UserForm) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		Name:         strings.TrimSpace(form.Name),
		Email:        strings.ToLower(strings.TrimSpace(form.Email)),
		PasswordHash: string(hash),
		Role:         form.Role,
		Status:       StatusActive,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (User, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return User{}, fmt.Errorf("%w: name is required", shared.ErrValidation)
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return User{}, fmt.Errorf("%w: email is required", shared.ErrValidation)
		}
		updates["email"] = email
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return User{}, fmt.Errorf("%w: password must be at least 8 characters", shared.ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = string(hash)
	}
	if req.Role != nil {
		if *req.Role != RoleAdmin && *req.Role != RoleCashier {
			return User{}, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, *req.Role)
		}
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		if *req.Status != StatusActive && *req.Status != StatusInactive {
			return User{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
		}
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Authenticate verifies credentials and stamps last_login. A wrong email and
// a wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, fmt.Errorf("%w: invalid credentials", shared.ErrValidation)
		}
		return User{}, err
	}
	if user.Status != StatusActive {
		return User{}, fmt.Errorf("%w: invalid credentials", shared.ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, fmt.Errorf("%w: invalid credentials", shared.ErrValidation)
	}

	now := time.Now()
	if err := s.repo.StampLastLogin(ctx, user.ID, now); err != nil {
		return User{}, fmt.Errorf("stamp last login: %w", err)
	}
	user.LastLogin = &now
	return user, nil
}
