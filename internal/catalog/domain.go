package catalog

import (
	"errors"
	"time"
)

// WarehouseKind separates physical locations from virtual supplier pages.
type WarehouseKind string

const (
	// WarehousePhysical is a location the business owns.
	WarehousePhysical WarehouseKind = "physical"
	// WarehouseVirtualSupplier is a logical page of a supplier's stock.
	WarehouseVirtualSupplier WarehouseKind = "virtual_supplier"
)

// Product groups sellable variants.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Variant is the sellable unit. Cost is the current standard unit cost and is
// captured into order lines at transaction time; later catalog edits do not
// rewrite history.
type Variant struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Cost      float64   `json:"cost"`
	Price     float64   `json:"price"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Warehouse holds stock. A virtual-supplier warehouse mirrors SupplierID's
// own inventory and is the only valid target for supplier sync.
type Warehouse struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	Kind       WarehouseKind `json:"kind"`
	SupplierID int64         `json:"supplier_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Supplier masterdata.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Customer masterdata.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates a missing catalog record.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicateSKU indicates the sku is already taken.
	ErrDuplicateSKU = errors.New("catalog: duplicate sku")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("catalog: invalid input")
	// ErrSupplierRequired rejects virtual warehouses without a supplier.
	ErrSupplierRequired = errors.New("catalog: virtual-supplier warehouse requires a supplier")
)

func validWarehouseKind(kind WarehouseKind) bool {
	return kind == WarehousePhysical || kind == WarehouseVirtualSupplier
}
