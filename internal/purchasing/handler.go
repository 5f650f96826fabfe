package purchasing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gerai-erp/gerai/internal/catalog"
	"github.com/gerai-erp/gerai/internal/platform/httpx"
)

// Handler wires HTTP endpoints for purchasing.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs purchasing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers purchasing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/orders", h.handleCreate)
	r.Get("/orders", h.handleList)
	r.Get("/orders/{id}", h.handleGet)
	r.Put("/orders/{id}", h.handleEdit)
	r.Post("/orders/{id}/pay", h.handleMarkPaid)
}

type orderLineRequest struct {
	VariantID int64   `json:"variant_id" validate:"required"`
	Qty       int64   `json:"qty" validate:"gt=0"`
	UnitCost  float64 `json:"unit_cost" validate:"gte=0"`
}

type createOrderRequest struct {
	SupplierID       int64              `json:"supplier_id" validate:"required"`
	WarehouseID      int64              `json:"warehouse_id" validate:"required"`
	OrderDate        time.Time          `json:"order_date"`
	Paid             bool               `json:"paid"`
	PaymentAccountID int64              `json:"payment_account_id"`
	Lines            []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type editOrderRequest struct {
	Paid             bool               `json:"paid"`
	PaymentAccountID int64              `json:"payment_account_id"`
	Lines            []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type payOrderRequest struct {
	PaymentAccountID int64 `json:"payment_account_id" validate:"required"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.service.Create(r.Context(), CreateInput{
		SupplierID:       req.SupplierID,
		WarehouseID:      req.WarehouseID,
		OrderDate:        req.OrderDate,
		Paid:             req.Paid,
		PaymentAccountID: req.PaymentAccountID,
		Lines:            toLineInputs(req.Lines),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req editOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.service.Edit(r.Context(), id, EditInput{
		Paid:             req.Paid,
		PaymentAccountID: req.PaymentAccountID,
		Lines:            toLineInputs(req.Lines),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req payOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.service.MarkPaid(r.Context(), id, req.PaymentAccountID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("supplier_id"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := h.service.ListOrders(r.Context(), OrderFilter{
		SupplierID:    supplierID,
		PaymentStatus: PaymentStatus(r.URL.Query().Get("payment_status")),
		Limit:         limit,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func toLineInputs(lines []orderLineRequest) []LineInput {
	inputs := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, LineInput{VariantID: line.VariantID, Qty: line.Qty, UnitCost: line.UnitCost})
	}
	return inputs
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoLines), errors.Is(err, ErrInvalidLine),
		errors.Is(err, ErrWarehouseRequired), errors.Is(err, ErrSupplierRequired),
		errors.Is(err, ErrPaymentAccountRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrVoidOrder):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("purchasing request", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
