package customers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type mockRepo struct {
	customers map[int64]*Customer
	nextID    int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{customers: make(map[int64]*Customer), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context) ([]Customer, error) {
	var out []Customer
	for _, c := range m.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return Customer{}, fmt.Errorf("customer %d: %w", id, shared.ErrNotFound)
	}
	return *c, nil
}

func (m *mockRepo) Search(ctx context.Context, query string) ([]Customer, error) {
	var out []Customer
	for _, c := range m.customers {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			out = append(out, *c)
			continue
		}
		if c.Email != nil && strings.Contains(strings.ToLower(*c.Email), strings.ToLower(query)) {
			out = append(out, *c)
			continue
		}
		if c.Phone != nil && strings.Contains(*c.Phone, query) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) Create(ctx context.Context, customer Customer) (Customer, error) {
	customer.ID = m.nextID
	m.nextID++
	stored := customer
	m.customers[customer.ID] = &stored
	return customer, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	c, ok := m.customers[id]
	if !ok {
		return fmt.Errorf("customer %d: %w", id, shared.ErrNotFound)
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["email"]; ok {
		c.Email, _ = v.(*string)
	}
	if v, ok := updates["phone"]; ok {
		c.Phone, _ = v.(*string)
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.customers[id]; !ok {
		return fmt.Errorf("customer %d: %w", id, shared.ErrNotFound)
	}
	delete(m.customers, id)
	return nil
}

func (m *mockRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.customers[id]
	return ok, nil
}

func TestCreateTrimsAndValidates(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CustomerForm{Name: "   "})
	assert.ErrorIs(t, err, shared.ErrValidation)

	email := "  john@example.com "
	created, err := svc.Create(ctx, CustomerForm{Name: " John Doe ", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", created.Name)
	require.NotNil(t, created.Email)
	assert.Equal(t, "john@example.com", *created.Email)
	assert.Nil(t, created.Phone)
}

func TestSearchByAnyField(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	phone := "123-456-7890"
	_, err := svc.Create(ctx, CustomerForm{Name: "John Doe", Phone: &phone})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CustomerForm{Name: "Jane Smith"})
	require.NoError(t, err)

	byName, err := svc.Search(ctx, "jane")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Jane Smith", byName[0].Name)

	byPhone, err := svc.Search(ctx, "456")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "John Doe", byPhone[0].Name)

	all, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateClearsOptionalFields(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	email := "bob@example.com"
	created, err := svc.Create(ctx, CustomerForm{Name: "Bob Johnson", Email: &email})
	require.NoError(t, err)

	blank := ""
	updated, err := svc.Update(ctx, created.ID, UpdateCustomerRequest{Email: &blank})
	require.NoError(t, err)
	assert.Nil(t, updated.Email, "blank email clears the field")
	assert.Equal(t, "Bob Johnson", updated.Name)
}
