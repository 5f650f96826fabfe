package purchasing

import (
	"errors"
	"time"
)

// PaymentStatus tracks whether the purchase has been settled.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// OrderStatus is the purchase order lifecycle. Receipt happens at creation
// time, so received is the normal state; void marks a fully reversed order.
type OrderStatus string

const (
	OrderReceived OrderStatus = "received"
	OrderVoid     OrderStatus = "void"
)

// PurchaseOrder is the received purchase document. PaymentAccountID remembers
// the wallet that paid it so an edit can reverse the original cash effect.
type PurchaseOrder struct {
	ID               int64         `json:"id"`
	Number           string        `json:"number"`
	SupplierID       int64         `json:"supplier_id"`
	WarehouseID      int64         `json:"warehouse_id"`
	OrderDate        time.Time     `json:"order_date"`
	TotalAmount      float64       `json:"total_amount"`
	TotalQty         int64         `json:"total_qty"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentAccountID int64         `json:"payment_account_id,omitempty"`
	Status           OrderStatus   `json:"status"`
	Lines            []OrderLine   `json:"lines,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// OrderLine captures quantity and unit cost at receipt time.
type OrderLine struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	VariantID int64   `json:"variant_id"`
	SKU       string  `json:"sku"`
	Qty       int64   `json:"qty"`
	UnitCost  float64 `json:"unit_cost"`
	Subtotal  float64 `json:"subtotal"`
}

// LineInput is one requested purchase line. UnitCost zero means use the
// variant's current standard cost.
type LineInput struct {
	VariantID int64
	Qty       int64
	UnitCost  float64
}

// CreateInput describes a purchase order to receive.
type CreateInput struct {
	SupplierID       int64
	WarehouseID      int64
	OrderDate        time.Time
	Paid             bool
	PaymentAccountID int64
	Lines            []LineInput
}

// EditInput replaces an order's lines and payment. The original stock and
// cash effects are reversed by appending offsetting ledger entries before the
// new effects are applied, all in one transaction.
type EditInput struct {
	Paid             bool
	PaymentAccountID int64
	Lines            []LineInput
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	SupplierID    int64
	PaymentStatus PaymentStatus
	Limit         int
}

var (
	// ErrNoLines rejects orders without lines.
	ErrNoLines = errors.New("purchasing: minimal 1 line")
	// ErrInvalidLine rejects lines without a variant or positive qty.
	ErrInvalidLine = errors.New("purchasing: line requires variant and positive qty")
	// ErrWarehouseRequired rejects orders without a destination warehouse.
	ErrWarehouseRequired = errors.New("purchasing: warehouse required")
	// ErrSupplierRequired rejects orders without a supplier.
	ErrSupplierRequired = errors.New("purchasing: supplier required")
	// ErrPaymentAccountRequired rejects paid orders without a wallet.
	ErrPaymentAccountRequired = errors.New("purchasing: payment account required")
	// ErrNotFound indicates a missing purchase order.
	ErrNotFound = errors.New("purchasing: purchase order not found")
	// ErrAlreadyPaid rejects settling a settled order.
	ErrAlreadyPaid = errors.New("purchasing: order already paid")
	// ErrVoidOrder rejects editing a voided order.
	ErrVoidOrder = errors.New("purchasing: order is void")
)
