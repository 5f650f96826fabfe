package pos

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gerai-erp/gerai/internal/catalog"
	"github.com/gerai-erp/gerai/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the point of sale.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs pos handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers pos routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/checkout", h.handleCheckout)
	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/{id}", h.handleGetOrder)
}

type checkoutLine struct {
	VariantID int64 `json:"variant_id" validate:"required"`
	Qty       int64 `json:"qty" validate:"gt=0"`
}

type checkoutRequest struct {
	CustomerID       int64          `json:"customer_id"`
	WarehouseID      int64          `json:"warehouse_id" validate:"required"`
	Discount         float64        `json:"discount" validate:"gte=0"`
	Paid             bool           `json:"paid"`
	PaymentAccountID int64          `json:"payment_account_id"`
	Lines            []checkoutLine `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CartInput{
		CustomerID:       req.CustomerID,
		WarehouseID:      req.WarehouseID,
		Discount:         req.Discount,
		Paid:             req.Paid,
		PaymentAccountID: req.PaymentAccountID,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, CartLine{VariantID: line.VariantID, Qty: line.Qty})
	}
	receipt, err := h.service.Checkout(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := h.service.ListOrders(r.Context(), OrderFilter{
		PaymentStatus: PaymentStatus(r.URL.Query().Get("payment_status")),
		Limit:         limit,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidLine),
		errors.Is(err, ErrWarehouseRequired), errors.Is(err, ErrPaymentAccountRequired),
		errors.Is(err, ErrNegativeDiscount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("pos request", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
