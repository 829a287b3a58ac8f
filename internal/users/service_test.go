package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type mockRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[int64]*User), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	return *u, nil
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return User{}, fmt.Errorf("user %s: %w", email, shared.ErrNotFound)
}

func (m *mockRepo) Create(ctx context.Context, user User) (User, error) {
	for _, u := range m.users {
		if u.Email == user.Email {
			return User{}, fmt.Errorf("%w: email %s already registered", shared.ErrConflict, user.Email)
		}
	}
	user.ID = m.nextID
	m.nextID++
	stored := user
	m.users[user.ID] = &stored
	return user, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	if v, ok := updates["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := updates["email"]; ok {
		u.Email = v.(string)
	}
	if v, ok := updates["password_hash"]; ok {
		u.PasswordHash = v.(string)
	}
	if v, ok := updates["role"]; ok {
		u.Role = v.(string)
	}
	if v, ok := updates["status"]; ok {
		u.Status = v.(string)
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	delete(m.users, id)
	return nil
}

func (m *mockRepo) StampLastLogin(ctx context.Context, id int64, at time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	u.LastLogin = &at
	return nil
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	user, err := svc.Create(context.Background(), UserForm{
		Name:     "Admin User",
		Email:    "Admin@Example.com",
		Password: "admin12345",
		Role:     RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email, "email normalised")
	assert.Equal(t, StatusActive, user.Status)
	assert.NotEqual(t, "admin12345", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestAuthenticate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, UserForm{
		Name:     "Cashier",
		Email:    "cashier@example.com",
		Password: "letmein123",
		Role:     RoleCashier,
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "cashier@example.com", "letmein123")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin, "login stamps last_login")

	_, err = svc.Authenticate(ctx, "cashier@example.com", "wrongpass")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "letmein123")
	assert.ErrorIs(t, err, shared.ErrValidation, "unknown email indistinguishable from bad password")
}

func TestAuthenticateInactiveUser(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, UserForm{
		Name:     "Former Staff",
		Email:    "gone@example.com",
		Password: "letmein123",
		Role:     RoleCashier,
	})
	require.NoError(t, err)

	inactive := StatusInactive
	_, err = svc.Update(ctx, created.ID, UpdateUserRequest{Status: &inactive})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "gone@example.com", "letmein123")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateValidation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, UserForm{
		Name:     "Someone",
		Email:    "someone@example.com",
		Password: "password1",
		Role:     RoleCashier,
	})
	require.NoError(t, err)

	short := "short"
	_, err = svc.Update(ctx, created.ID, UpdateUserRequest{Password: &short})
	assert.ErrorIs(t, err, shared.ErrValidation)

	badRole := "owner"
	_, err = svc.Update(ctx, created.ID, UpdateUserRequest{Role: &badRole})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
