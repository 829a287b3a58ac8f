package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// KeyCleaner removes idempotency keys older than the retention window.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// IdempotencyCleaner expires processed checkout keys so a replayed key is
// only rejected within the retention window.
type IdempotencyCleaner struct {
	logger    *slog.Logger
	keys      KeyCleaner
	retention time.Duration
}

func NewIdempotencyCleaner(logger *slog.Logger, keys KeyCleaner, retention time.Duration) *IdempotencyCleaner {
	return &IdempotencyCleaner{
		logger:    logger,
		keys:      keys,
		retention: retention,
	}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (c *IdempotencyCleaner) Handle(ctx context.Context, t *asynq.Task) error {
	if err := c.keys.Cleanup(ctx, c.retention); err != nil {
		return err
	}
	c.logger.Info("idempotency keys cleaned", slog.Duration("retention", c.retention))
	return nil
}
