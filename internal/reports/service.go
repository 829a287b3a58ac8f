package reports

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Service coordinates report computation with the cache layer. Identical
// concurrent requests share a single computation.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) SalesByDay(ctx context.Context, r shared.DateRange) ([]SalesByDayRow, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "sales_by_day", rangeToken(r))
	if err != nil {
		return nil, err
	}
	var rows []SalesByDayRow
	err = s.fetch(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		return s.repo.SalesByDay(ctx, r)
	})
	return rows, err
}

func (s *Service) SalesByProduct(ctx context.Context, r shared.DateRange) ([]SalesByProductRow, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "sales_by_product", rangeToken(r))
	if err != nil {
		return nil, err
	}
	var rows []SalesByProductRow
	err = s.fetch(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		return s.repo.SalesByProduct(ctx, r)
	})
	return rows, err
}

func (s *Service) SalesByCashier(ctx context.Context, r shared.DateRange) ([]SalesByCashierRow, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "sales_by_cashier", rangeToken(r))
	if err != nil {
		return nil, err
	}
	var rows []SalesByCashierRow
	err = s.fetch(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		return s.repo.SalesByCashier(ctx, r)
	})
	return rows, err
}

// fetch funnels cache fill through singleflight so a thundering herd on a
// cold key runs the aggregation once. The flight carries raw JSON so every
// waiter decodes into its own destination.
func (s *Service) fetch(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}

func rangeToken(r shared.DateRange) string {
	from, to := "-", "-"
	if !r.From.IsZero() {
		from = r.From.Format("2006-01-02")
	}
	if !r.To.IsZero() {
		to = r.To.Format("2006-01-02")
	}
	return from + ":" + to
}
