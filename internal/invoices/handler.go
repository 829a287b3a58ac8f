package invoices

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Handler wires checkout and invoice read endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	checkouts prometheus.Counter
}

// NewHandler constructs the handler. checkouts may be nil when metrics are
// disabled, e.g. in tests.
func NewHandler(logger *slog.Logger, service *Service, checkouts prometheus.Counter) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		checkouts: checkouts,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.list)
	r.Post("/invoices", h.checkout)
	r.Get("/invoices/{id}", h.get)
	r.Post("/invoices/{id}/refund", h.refund)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	invoice, err := h.service.Checkout(r.Context(), req)
	if err != nil {
		h.logger.Error("checkout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.checkouts != nil {
		h.checkouts.Inc()
	}
	h.logger.Info("invoice created",
		slog.String("invoice_id", invoice.ID),
		slog.Float64("total", invoice.Total),
		slog.Int("items", len(invoice.Items)))
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dateRange, err := shared.ParseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter := ListFilter{Range: dateRange}
	if raw := q.Get("customerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
			return
		}
		filter.CustomerID = &id
	}
	if raw := q.Get("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("perPage"); raw != "" {
		filter.PerPage, _ = strconv.Atoi(raw)
	}

	invoices, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if invoices == nil {
		invoices = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: invoices, Pagination: pagination})
}

type listResponse struct {
	Data       []Invoice         `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	invoice, err := h.service.Refund(r.Context(), id)
	if err != nil {
		h.logger.Error("refund invoice", slog.Any("error", err), slog.String("invoice_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}
