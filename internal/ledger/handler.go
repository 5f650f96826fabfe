package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gerai-erp/gerai/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the stock and cash ledgers.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/movements", h.handleMovements)
	r.Get("/snapshots", h.handleSnapshots)
	r.Get("/cashbook", h.handleCashBook)
	r.Post("/opname", h.handleOpname)
	r.Post("/supplier-sync", h.handleSupplierSync)
}

type opnameRequest struct {
	VariantID   int64  `json:"variant_id" validate:"required"`
	WarehouseID int64  `json:"warehouse_id" validate:"required"`
	RealQty     int64  `json:"real_qty" validate:"gte=0"`
	Note        string `json:"note"`
}

type supplierSyncRequest struct {
	VariantID   int64  `json:"variant_id" validate:"required"`
	WarehouseID int64  `json:"warehouse_id" validate:"required"`
	Qty         int64  `json:"qty" validate:"gte=0"`
	Note        string `json:"note"`
}

type opnameResponse struct {
	Movement Movement `json:"movement"`
	Snapshot Snapshot `json:"snapshot"`
	Changed  bool     `json:"changed"`
}

func (h *Handler) handleOpname(w http.ResponseWriter, r *http.Request) {
	var req opnameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movement, snapshot, err := h.service.Opname(r.Context(), AdjustmentInput{
		VariantID:   req.VariantID,
		WarehouseID: req.WarehouseID,
		RealQty:     req.RealQty,
		Note:        req.Note,
	})
	if err != nil {
		h.logger.Error("stock opname", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, opnameResponse{Movement: movement, Snapshot: snapshot, Changed: movement.ID != 0})
}

func (h *Handler) handleSupplierSync(w http.ResponseWriter, r *http.Request) {
	var req supplierSyncRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movement, snapshot, err := h.service.SupplierSync(r.Context(), SupplierSyncInput{
		VariantID:   req.VariantID,
		WarehouseID: req.WarehouseID,
		NewQty:      req.Qty,
		Note:        req.Note,
	})
	if err != nil {
		h.logger.Error("supplier sync", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, opnameResponse{Movement: movement, Snapshot: snapshot, Changed: movement.ID != 0})
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	filter := MovementFilter{
		VariantID:   queryInt(r, "variant_id"),
		WarehouseID: queryInt(r, "warehouse_id"),
		From:        queryTime(r, "from"),
		To:          queryTime(r, "to"),
		Limit:       int(queryInt(r, "limit")),
	}
	movements, err := h.service.StockCard(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, movements)
}

func (h *Handler) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.service.Snapshots(r.Context(), queryInt(r, "warehouse_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snapshots)
}

func (h *Handler) handleCashBook(w http.ResponseWriter, r *http.Request) {
	filter := CashFilter{
		AccountID: queryInt(r, "account_id"),
		From:      queryTime(r, "from"),
		To:        queryTime(r, "to"),
		Limit:     int(queryInt(r, "limit")),
	}
	txns, err := h.service.CashBook(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txns)
}

func queryInt(r *http.Request, name string) int64 {
	value, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return value
}

func queryTime(r *http.Request, name string) time.Time {
	value, _ := time.Parse("2006-01-02", r.URL.Query().Get(name))
	return value
}
