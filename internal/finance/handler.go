package finance

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/platform/httpx"
)

// Handler wires HTTP endpoints for finance.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs finance handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/accounts", h.handleCreateAccount)
	r.Get("/accounts", h.handleListAccounts)
	r.Get("/accounts/{id}", h.handleGetAccount)

	r.Post("/coa", h.handleCreateCOA)
	r.Get("/coa", h.handleListCOA)
	r.Put("/coa/{id}", h.handleUpdateCOA)
	r.Delete("/coa/{id}", h.handleDeleteCOA)

	r.Post("/journal", h.handleJournal)
	r.Post("/transfer", h.handleTransfer)

	r.Get("/receivables", h.handleListReceivables)
	r.Post("/receivables/{orderID}/collect", h.handleCollect)
}

type accountRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type coaRequest struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required,oneof=asset liability equity revenue expense"`
}

type journalRequest struct {
	AccountID         int64     `json:"account_id" validate:"required"`
	CategoryAccountID int64     `json:"category_account_id"`
	Direction         string    `json:"direction" validate:"required,oneof=in out"`
	Amount            float64   `json:"amount" validate:"gt=0"`
	Date              time.Time `json:"date"`
	Description       string    `json:"description"`
}

type transferRequest struct {
	FromAccountID     int64     `json:"from_account_id" validate:"required"`
	ToAccountID       int64     `json:"to_account_id" validate:"required"`
	Amount            float64   `json:"amount" validate:"gt=0"`
	CategoryAccountID int64     `json:"category_account_id"`
	Date              time.Time `json:"date"`
	Description       string    `json:"description"`
}

type collectRequest struct {
	AccountID int64 `json:"account_id" validate:"required"`
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.CreateAccount(r.Context(), req.Code, req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) handleCreateCOA(w http.ResponseWriter, r *http.Request) {
	var req coaRequest
	if !h.decode(w, r, &req) {
		return
	}
	coa, err := h.service.CreateChartOfAccount(r.Context(), ChartOfAccount{
		Code:     req.Code,
		Name:     req.Name,
		Category: AccountCategory(req.Category),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, coa)
}

func (h *Handler) handleListCOA(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListChartOfAccounts(r.Context(), AccountCategory(r.URL.Query().Get("category")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleUpdateCOA(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req coaRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.UpdateChartOfAccount(r.Context(), ChartOfAccount{
		ID:       id,
		Name:     req.Name,
		Category: AccountCategory(req.Category),
	}); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleDeleteCOA(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	if err := h.service.DeleteChartOfAccount(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if !h.decode(w, r, &req) {
		return
	}
	txn, err := h.service.Journal(r.Context(), JournalInput{
		AccountID:         req.AccountID,
		CategoryAccountID: req.CategoryAccountID,
		Direction:         req.Direction,
		Amount:            req.Amount,
		Date:              req.Date,
		Description:       req.Description,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	pair, err := h.service.Transfer(r.Context(), TransferRequest{
		FromAccountID:     req.FromAccountID,
		ToAccountID:       req.ToAccountID,
		Amount:            req.Amount,
		CategoryAccountID: req.CategoryAccountID,
		Date:              req.Date,
		Description:       req.Description,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pair)
}

func (h *Handler) handleListReceivables(w http.ResponseWriter, r *http.Request) {
	dues, err := h.service.ListReceivables(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dues)
}

func (h *Handler) handleCollect(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req collectRequest
	if !h.decode(w, r, &req) {
		return
	}
	txn, err := h.service.CollectReceivable(r.Context(), orderID, req.AccountID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrOrderAlreadyPaid):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ledger.ErrAccountNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("finance request", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
