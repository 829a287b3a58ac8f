package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, form CustomerForm) (Customer, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return Customer{}, fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}
	customer := Customer{
		Name:  name,
		Email: trimmed(form.Email),
		Phone: trimmed(form.Phone),
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (Customer, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return Customer{}, fmt.Errorf("%w: customer name is required", shared.ErrValidation)
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = trimmed(req.Email)
	}
	if req.Phone != nil {
		updates["phone"] = trimmed(req.Phone)
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.List(ctx)
}

func (s *Service) Search(ctx context.Context, query string) ([]Customer, error) {
	if strings.TrimSpace(query) == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, query)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
