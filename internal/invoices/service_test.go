package invoices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type mockRepo struct {
	mu       sync.Mutex
	stock    map[int64]int
	invoices map[string]*Invoice
	seq      int

	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		stock:    make(map[int64]int),
		invoices: make(map[string]*Invoice),
	}
}

func (m *mockRepo) Create(ctx context.Context, invoice Invoice) (Invoice, error) {
	if m.createErr != nil {
		return Invoice{}, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if invoice.ID == "" {
		m.seq++
		invoice.ID = fmt.Sprintf("INV-%s-%04d", time.Now().Format("060102"), m.seq)
	}
	if _, dup := m.invoices[invoice.ID]; dup {
		return Invoice{}, fmt.Errorf("%w: invoice %s already exists", shared.ErrConflict, invoice.ID)
	}
	for _, item := range invoice.Items {
		if _, ok := m.stock[item.ProductID]; !ok {
			return Invoice{}, fmt.Errorf("product %d: %w", item.ProductID, shared.ErrNotFound)
		}
	}
	for _, item := range invoice.Items {
		m.stock[item.ProductID] -= item.Quantity
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now()
	}
	stored := invoice
	m.invoices[invoice.ID] = &stored
	return invoice, nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, fmt.Errorf("invoice %s: %w", id, shared.ErrNotFound)
	}
	return *inv, nil
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Invoice
	for _, inv := range m.invoices {
		if filter.CustomerID != nil {
			if inv.CustomerID == nil || *inv.CustomerID != *filter.CustomerID {
				continue
			}
		}
		out = append(out, *inv)
	}
	total := len(out)
	if filter.PerPage > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PerPage
		if offset >= len(out) {
			out = nil
		} else if offset+filter.PerPage < len(out) {
			out = out[offset : offset+filter.PerPage]
		} else {
			out = out[offset:]
		}
	}
	return out, total, nil
}

func (m *mockRepo) MarkRefunded(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, shared.ErrNotFound)
	}
	if inv.Status != StatusPaid {
		return fmt.Errorf("%w: invoice %s is not refundable", shared.ErrConflict, id)
	}
	inv.Status = StatusRefunded
	return nil
}

type mockCustomers struct {
	existing map[int64]bool
}

func (m *mockCustomers) Exists(ctx context.Context, id int64) (bool, error) {
	return m.existing[id], nil
}

type mockKeys struct {
	mu      sync.Mutex
	keys    map[string]bool
	deletes int
}

func newMockKeys() *mockKeys {
	return &mockKeys{keys: make(map[string]bool)}
}

func (m *mockKeys) CheckAndInsert(ctx context.Context, key, module string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *mockKeys) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	m.deletes++
	return nil
}

func newTestService(repo *mockRepo, customers *mockCustomers, keys *mockKeys) *Service {
	if customers == nil {
		customers = &mockCustomers{existing: map[int64]bool{}}
	}
	return NewService(repo, customers, keys, nil, nil)
}

func cartRequest() CheckoutRequest {
	return CheckoutRequest{
		Items: []CartLine{
			{ProductID: 1, Quantity: 2, UnitPrice: 19.99},
			{ProductID: 2, Quantity: 1, UnitPrice: 39.99},
		},
		Discount:      5,
		Total:         2*19.99 + 39.99 - 5,
		PaymentMethod: PaymentCash,
	}
}

func TestCheckoutCreatesInvoiceAndDecrementsStock(t *testing.T) {
	repo := newMockRepo()
	repo.stock[1] = 50
	repo.stock[2] = 30
	svc := newTestService(repo, nil, nil)

	invoice, err := svc.Checkout(context.Background(), cartRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, invoice.ID)
	assert.Equal(t, StatusPaid, invoice.Status)
	assert.InDelta(t, 79.97, invoice.Subtotal, 1e-9)
	assert.InDelta(t, 74.97, invoice.Total, 1e-9)
	assert.Len(t, invoice.Items, 2)
	assert.InDelta(t, 39.98, invoice.Items[0].LineTotal, 1e-9)

	assert.Equal(t, 48, repo.stock[1])
	assert.Equal(t, 29, repo.stock[2])
}

func TestCheckoutAllowsNegativeStock(t *testing.T) {
	repo := newMockRepo()
	repo.stock[1] = 1
	svc := newTestService(repo, nil, nil)

	req := CheckoutRequest{
		Items:         []CartLine{{ProductID: 1, Quantity: 5, UnitPrice: 10}},
		Total:         50,
		PaymentMethod: PaymentCard,
	}
	_, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, -4, repo.stock[1])
}

func TestCheckoutValidation(t *testing.T) {
	repo := newMockRepo()
	repo.stock[1] = 10
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CheckoutRequest)
	}{
		{"empty cart", func(r *CheckoutRequest) { r.Items = nil }},
		{"zero quantity", func(r *CheckoutRequest) { r.Items[0].Quantity = 0 }},
		{"negative quantity", func(r *CheckoutRequest) { r.Items[0].Quantity = -1 }},
		{"negative unit price", func(r *CheckoutRequest) { r.Items[0].UnitPrice = -0.01 }},
		{"negative discount", func(r *CheckoutRequest) { r.Discount = -1 }},
		{"discount above subtotal", func(r *CheckoutRequest) { r.Discount = 1000 }},
		{"total mismatch", func(r *CheckoutRequest) { r.Total += 0.5 }},
		{"bad payment method", func(r *CheckoutRequest) { r.PaymentMethod = "barter" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := cartRequest()
			tc.mutate(&req)
			_, err := svc.Checkout(ctx, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	// No write may have happened.
	assert.Equal(t, 10, repo.stock[1])
	assert.Empty(t, repo.invoices)
}

func TestCheckoutUnknownCustomer(t *testing.T) {
	repo := newMockRepo()
	repo.stock[1] = 10
	svc := newTestService(repo, &mockCustomers{existing: map[int64]bool{7: true}}, nil)

	req := cartRequest()
	missing := int64(99)
	req.CustomerID = &missing
	_, err := svc.Checkout(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 10, repo.stock[1])
}

func TestCheckoutUnknownProductAborts(t *testing.T) {
	repo := newMockRepo()
	repo.stock[1] = 10
	svc := newTestService(repo, nil, nil)

	req := CheckoutRequest{
		Items: []CartLine{
			{ProductID: 1, Quantity: 1, UnitPrice: 10},
			{ProductID: 42, Quantity: 1, UnitPrice: 5},
		},
		Total:         15,
		PaymentMethod: PaymentMobile,
	}
	_, err := svc.Checkout(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 10, repo.stock[1], "no partial decrement")
	assert.Empty(t, repo.invoices)
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	repo := newMockRepo()
	repo.stock[1] = 10
	repo.stock[2] = 10
	keys := newMockKeys()
	svc := newTestService(repo, nil, keys)
	ctx := context.Background()

	req := cartRequest()
	req.IdempotencyKey = "not-a-uuid"
	_, err := svc.Checkout(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)

	req.IdempotencyKey = "0d4bba6a-2a43-4b73-97c8-92a9e5b7a8d1"
	_, err = svc.Checkout(ctx, req)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestCheckoutReleasesKeyOnFailure(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = errors.New("connection reset")
	keys := newMockKeys()
	svc := newTestService(repo, nil, keys)

	req := cartRequest()
	req.IdempotencyKey = "0d4bba6a-2a43-4b73-97c8-92a9e5b7a8d1"
	_, err := svc.Checkout(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 1, keys.deletes)
	assert.False(t, keys.keys[req.IdempotencyKey])
}

func TestConcurrentCheckoutsSerializeStock(t *testing.T) {
	repo := newMockRepo()
	repo.stock[1] = 100
	svc := newTestService(repo, nil, nil)

	var wg sync.WaitGroup
	quantities := []int{3, 7}
	errs := make([]error, len(quantities))
	for i, q := range quantities {
		wg.Add(1)
		go func(i, q int) {
			defer wg.Done()
			req := CheckoutRequest{
				Items:         []CartLine{{ProductID: 1, Quantity: q, UnitPrice: 10}},
				Total:         float64(q) * 10,
				PaymentMethod: PaymentCash,
			}
			_, errs[i] = svc.Checkout(context.Background(), req)
		}(i, q)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 90, repo.stock[1])
	assert.Len(t, repo.invoices, 2)
}

func TestRefundTransitions(t *testing.T) {
	repo := newMockRepo()
	repo.stock[1] = 10
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	req := CheckoutRequest{
		Items:         []CartLine{{ProductID: 1, Quantity: 2, UnitPrice: 10}},
		Total:         20,
		PaymentMethod: PaymentCash,
	}
	invoice, err := svc.Checkout(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 8, repo.stock[1])

	refunded, err := svc.Refund(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refunded.Status)
	assert.Equal(t, 8, repo.stock[1], "refund does not restore stock")

	_, err = svc.Refund(ctx, invoice.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.Refund(ctx, "INV-000000-9999")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
