package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-pos/meridian-pos/internal/reports"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// ReportWarmer precomputes yesterday's aggregates so the first dashboard
// request of the day hits a warm cache.
type ReportWarmer struct {
	logger  *slog.Logger
	reports *reports.Service
}

func NewReportWarmer(logger *slog.Logger, reportService *reports.Service) *ReportWarmer {
	return &ReportWarmer{logger: logger, reports: reportService}
}

// Handle processes TaskReportWarmup tasks.
func (w *ReportWarmer) Handle(ctx context.Context, _ *asynq.Task) error {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	window, err := shared.ParseDateRange(yesterday, yesterday)
	if err != nil {
		return asynq.SkipRetry
	}

	if _, err := w.reports.SalesByDay(ctx, window); err != nil {
		return err
	}
	if _, err := w.reports.SalesByProduct(ctx, window); err != nil {
		return err
	}
	if _, err := w.reports.SalesByCashier(ctx, window); err != nil {
		return err
	}

	w.logger.Info("report cache warmed", slog.String("window", yesterday))
	return nil
}
