package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Handler wires inventory ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	postings prometheus.Counter
}

// NewHandler constructs the handler. postings may be nil when metrics are
// disabled.
func NewHandler(logger *slog.Logger, service *Service, postings prometheus.Counter) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		postings: postings,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory", h.list)
	r.Post("/inventory", h.record)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	entry, err := h.service.Record(r.Context(), req)
	if err != nil {
		h.logger.Error("record ledger entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.postings != nil {
		h.postings.Inc()
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dateRange, err := shared.ParseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	filter := ListFilter{Range: dateRange}
	if raw := q.Get("productId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
			return
		}
		filter.ProductID = &id
	}
	if t := q.Get("type"); t != "" {
		entryType := EntryType(t)
		if !entryType.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown entry type")
			return
		}
		filter.Type = entryType
	}

	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list ledger entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}
