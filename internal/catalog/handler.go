package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gerai-erp/gerai/internal/platform/httpx"
)

// Handler wires HTTP endpoints for catalog masterdata.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.handleListProducts)
	r.Post("/products", h.handleCreateProduct)
	r.Get("/variants", h.handleListVariants)
	r.Post("/variants", h.handleCreateVariant)
	r.Put("/variants/{id}", h.handleUpdateVariant)
	r.Get("/warehouses", h.handleListWarehouses)
	r.Post("/warehouses", h.handleCreateWarehouse)
	r.Get("/suppliers", h.handleListSuppliers)
	r.Post("/suppliers", h.handleCreateSupplier)
	r.Get("/customers", h.handleListCustomers)
	r.Post("/customers", h.handleCreateCustomer)
}

type productForm struct {
	Name     string `json:"name" validate:"required"`
	IsActive bool   `json:"is_active"`
}

type variantForm struct {
	ProductID int64   `json:"product_id" validate:"required"`
	SKU       string  `json:"sku" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Cost      float64 `json:"cost" validate:"gte=0"`
	Price     float64 `json:"price" validate:"gte=0"`
	IsActive  bool    `json:"is_active"`
}

type warehouseForm struct {
	Name       string `json:"name" validate:"required"`
	Kind       string `json:"kind" validate:"omitempty,oneof=physical virtual_supplier"`
	SupplierID int64  `json:"supplier_id"`
}

type supplierForm struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type customerForm struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var form productForm
	if !h.decode(w, r, &form) {
		return
	}
	product, err := h.service.CreateProduct(r.Context(), Product{Name: form.Name, IsActive: form.IsActive})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleCreateVariant(w http.ResponseWriter, r *http.Request) {
	var form variantForm
	if !h.decode(w, r, &form) {
		return
	}
	variant, err := h.service.CreateVariant(r.Context(), Variant{
		ProductID: form.ProductID,
		SKU:       form.SKU,
		Name:      form.Name,
		Cost:      form.Cost,
		Price:     form.Price,
		IsActive:  form.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, variant)
}

func (h *Handler) handleUpdateVariant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var form variantForm
	if !h.decode(w, r, &form) {
		return
	}
	err = h.service.UpdateVariant(r.Context(), Variant{
		ID:        id,
		ProductID: form.ProductID,
		SKU:       form.SKU,
		Name:      form.Name,
		Cost:      form.Cost,
		Price:     form.Price,
		IsActive:  form.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleListVariants(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
	variants, err := h.service.ListVariants(r.Context(), productID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, variants)
}

func (h *Handler) handleCreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var form warehouseForm
	if !h.decode(w, r, &form) {
		return
	}
	warehouse, err := h.service.CreateWarehouse(r.Context(), Warehouse{
		Name:       form.Name,
		Kind:       WarehouseKind(form.Kind),
		SupplierID: form.SupplierID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, warehouse)
}

func (h *Handler) handleListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.service.ListWarehouses(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, warehouses)
}

func (h *Handler) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var form supplierForm
	if !h.decode(w, r, &form) {
		return
	}
	supplier, err := h.service.CreateSupplier(r.Context(), Supplier{Name: form.Name, Phone: form.Phone, Address: form.Address})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, suppliers)
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var form customerForm
	if !h.decode(w, r, &form) {
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), Customer{Name: form.Name, Phone: form.Phone})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
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
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateSKU):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSupplierRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("catalog request", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
