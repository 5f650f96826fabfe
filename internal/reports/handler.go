package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gerai-erp/gerai/internal/platform/httpx"
)

// Handler wires HTTP endpoints for reporting.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/balance-sheet", h.handleBalanceSheet)
	r.Get("/profit-loss", h.handleProfitLoss)
	r.Get("/sales-summary", h.handleSalesSummary)
}

func (h *Handler) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.service.BalanceSheet(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sheet)
}

func (h *Handler) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	report, err := h.service.ProfitLoss(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleSalesSummary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	summary, err := h.service.SalesSummary(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	var from, to time.Time
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Period", "from must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Period", "to must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		// Make the end date inclusive.
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidPeriod) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	h.logger.Error("reports request", slog.Any("error", err))
	httpx.RespondError(w, err)
}
