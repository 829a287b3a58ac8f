package reports

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Handler wires reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/sales-by-day", h.report(func(ctx context.Context, r shared.DateRange) (interface{}, error) {
		return h.service.SalesByDay(ctx, r)
	}))
	r.Get("/reports/sales-by-product", h.report(func(ctx context.Context, r shared.DateRange) (interface{}, error) {
		return h.service.SalesByProduct(ctx, r)
	}))
	r.Get("/reports/sales-by-cashier", h.report(func(ctx context.Context, r shared.DateRange) (interface{}, error) {
		return h.service.SalesByCashier(ctx, r)
	}))
}

func (h *Handler) report(run func(context.Context, shared.DateRange) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		dateRange, err := shared.ParseDateRange(q.Get("startDate"), q.Get("endDate"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		result, err := run(r.Context(), dateRange)
		if err != nil {
			h.logger.Error("compute report", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, result)
	}
}
