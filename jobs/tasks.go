package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan flags products whose stock fell under the threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskReportWarmup precomputes recent report aggregates into the cache.
	TaskReportWarmup = "reports:warmup"
	// TaskIdempotencyCleanup expires idempotency keys past the retention window.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// LowStockScanPayload optionally overrides the configured threshold.
type LowStockScanPayload struct {
	Threshold int `json:"threshold,omitempty"`
}

// NewLowStockScanTask constructs the scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewReportWarmupTask constructs the warmup task. It carries no payload; the
// handler derives the window from the current date.
func NewReportWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportWarmup, nil)
}

// NewIdempotencyCleanupTask constructs the cleanup task. The retention window
// comes from the handler's configuration.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}
