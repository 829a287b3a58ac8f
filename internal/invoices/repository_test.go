package invoices

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterQuerier hands out sequence numbers the way the invoice_counters
// upsert does, one per draw.
type counterQuerier struct {
	mu sync.Mutex
	n  int
}

func (q *counterQuerier) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *counterQuerier) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (q *counterQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.n++
	return counterRow{n: q.n}
}

type counterRow struct{ n int }

func (r counterRow) Scan(dest ...interface{}) error {
	*(dest[0].(*int)) = r.n
	return nil
}

func TestNextNumberFormat(t *testing.T) {
	q := &counterQuerier{}
	at := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	first, err := nextNumber(context.Background(), q, at)
	require.NoError(t, err)
	assert.Equal(t, "INV-260831-0001", first)

	second, err := nextNumber(context.Background(), q, at)
	require.NoError(t, err)
	assert.Equal(t, "INV-260831-0002", second)
}

func TestConcurrentNextNumbersAreDistinct(t *testing.T) {
	q := &counterQuerier{}
	at := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	const draws = 50
	var wg sync.WaitGroup
	ids := make([]string, draws)
	errs := make([]error, draws)
	for i := 0; i < draws; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = nextNumber(context.Background(), q, at)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[string]bool, draws)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate invoice number %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, draws)
}
