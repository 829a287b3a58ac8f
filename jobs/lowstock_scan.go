package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"

	"github.com/meridian-pos/meridian-pos/internal/catalog"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// LowStockScanner walks the catalog for products under the reorder threshold
// and leaves an audit trail of what it found.
type LowStockScanner struct {
	logger    *slog.Logger
	catalog   *catalog.Service
	audit     *shared.AuditLogger
	threshold int
}

func NewLowStockScanner(logger *slog.Logger, catalogService *catalog.Service, audit *shared.AuditLogger, threshold int) *LowStockScanner {
	return &LowStockScanner{
		logger:    logger,
		catalog:   catalogService,
		audit:     audit,
		threshold: threshold,
	}
}

// Handle processes TaskLowStockScan tasks.
func (s *LowStockScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	threshold := s.threshold
	if payload.Threshold > 0 {
		threshold = payload.Threshold
	}

	products, err := s.catalog.LowStock(ctx, threshold)
	if err != nil {
		return err
	}

	for _, p := range products {
		s.logger.Warn("low stock",
			slog.Int64("product_id", p.ID),
			slog.String("name", p.Name),
			slog.Int("stock", p.Stock),
			slog.Int("threshold", threshold))
	}

	if s.audit != nil && len(products) > 0 {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "low_stock_scan",
			Entity:   "product",
			EntityID: strconv.Itoa(len(products)),
			Meta: map[string]any{
				"threshold": threshold,
				"flagged":   len(products),
			},
		})
	}
	return nil
}
