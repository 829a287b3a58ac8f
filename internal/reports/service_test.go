package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type mockRepo struct {
	dayRows      []SalesByDayRow
	dayCalls     int
	productRows  []SalesByProductRow
	productCalls int
	cashierRows  []SalesByCashierRow
	cashierCalls int
}

func (m *mockRepo) SalesByDay(ctx context.Context, r shared.DateRange) ([]SalesByDayRow, error) {
	m.dayCalls++
	if m.dayRows == nil {
		return make([]SalesByDayRow, 0), nil
	}
	return m.dayRows, nil
}

func (m *mockRepo) SalesByProduct(ctx context.Context, r shared.DateRange) ([]SalesByProductRow, error) {
	m.productCalls++
	if m.productRows == nil {
		return make([]SalesByProductRow, 0), nil
	}
	return m.productRows, nil
}

func (m *mockRepo) SalesByCashier(ctx context.Context, r shared.DateRange) ([]SalesByCashierRow, error) {
	m.cashierCalls++
	if m.cashierRows == nil {
		return make([]SalesByCashierRow, 0), nil
	}
	return m.cashierRows, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func window(t *testing.T, from, to string) shared.DateRange {
	t.Helper()
	r, err := shared.ParseDateRange(from, to)
	require.NoError(t, err)
	return r
}

func TestSalesByDayCaches(t *testing.T) {
	repo := &mockRepo{dayRows: []SalesByDayRow{
		{Date: "2026-08-30", Sales: 250, Transactions: 4, Profit: 100},
	}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()
	win := window(t, "2026-08-30", "2026-08-30")

	rows, err := svc.SalesByDay(ctx, win)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 100, rows[0].Profit, 1e-9)
	assert.Equal(t, 1, repo.dayCalls)

	rows, err = svc.SalesByDay(ctx, win)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, repo.dayCalls, "second read served from cache")
}

func TestBumpInvalidatesCache(t *testing.T) {
	repo := &mockRepo{dayRows: []SalesByDayRow{{Date: "2026-08-30", Sales: 250}}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()
	win := window(t, "2026-08-30", "2026-08-30")

	_, err := svc.SalesByDay(ctx, win)
	require.NoError(t, err)
	require.Equal(t, 1, repo.dayCalls)

	require.NoError(t, svc.cache.Bump(ctx))

	_, err = svc.SalesByDay(ctx, win)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.dayCalls, "bump forces recomputation")
}

func TestEmptyWindowReturnsEmptySlice(t *testing.T) {
	repo := &mockRepo{}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()
	win := window(t, "1999-01-01", "1999-01-02")

	days, err := svc.SalesByDay(ctx, win)
	require.NoError(t, err)
	assert.NotNil(t, days)
	assert.Empty(t, days)

	products, err := svc.SalesByProduct(ctx, win)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	cashiers, err := svc.SalesByCashier(ctx, win)
	require.NoError(t, err)
	assert.NotNil(t, cashiers)
	assert.Empty(t, cashiers)
}

func TestDistinctWindowsUseDistinctKeys(t *testing.T) {
	repo := &mockRepo{dayRows: []SalesByDayRow{{Date: "2026-08-30", Sales: 10}}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.SalesByDay(ctx, window(t, "2026-08-01", "2026-08-15"))
	require.NoError(t, err)
	_, err = svc.SalesByDay(ctx, window(t, "2026-08-16", "2026-08-31"))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.dayCalls)
}

func TestProfitMarginRatio(t *testing.T) {
	assert.InDelta(t, 0.40, ProfitMarginRatio, 1e-12)
}
