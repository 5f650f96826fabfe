package pos

import (
	"errors"
	"time"
)

// PaymentStatus tracks whether the order has been settled.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// OrderStatus is the sales order lifecycle. Checkout commits in a single pass,
// so completed is the only state a committed order can hold.
type OrderStatus string

const (
	OrderCompleted OrderStatus = "completed"
	OrderVoid      OrderStatus = "void"
)

// SalesOrder is the committed sale document.
type SalesOrder struct {
	ID            int64         `json:"id"`
	Number        string        `json:"number"`
	CustomerID    int64         `json:"customer_id,omitempty"`
	WarehouseID   int64         `json:"warehouse_id"`
	OrderDate     time.Time     `json:"order_date"`
	GrossAmount   float64       `json:"gross_amount"`
	Discount      float64       `json:"discount"`
	NetAmount     float64       `json:"net_amount"`
	TotalCost     float64       `json:"total_cost"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Status        OrderStatus   `json:"status"`
	Lines         []OrderLine   `json:"lines,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// OrderLine captures the variant price and cost at sale time. Catalog edits
// after the sale do not rewrite these.
type OrderLine struct {
	ID       int64   `json:"id"`
	OrderID  int64   `json:"order_id"`
	VariantID int64  `json:"variant_id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Qty      int64   `json:"qty"`
	Price    float64 `json:"price"`
	Cost     float64 `json:"cost"`
	Subtotal float64 `json:"subtotal"`
}

// CartLine is one draft line before checkout.
type CartLine struct {
	VariantID int64
	Qty       int64
}

// CartInput is the checkout request.
type CartInput struct {
	CustomerID       int64
	WarehouseID      int64
	Discount         float64
	Paid             bool
	PaymentAccountID int64
	Lines            []CartLine
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	PaymentStatus PaymentStatus
	From          time.Time
	To            time.Time
	Limit         int
}

var (
	// ErrEmptyCart rejects checkouts without lines.
	ErrEmptyCart = errors.New("pos: cart is empty")
	// ErrInvalidLine rejects lines without a variant or positive quantity.
	ErrInvalidLine = errors.New("pos: line requires variant and positive qty")
	// ErrWarehouseRequired rejects carts without a warehouse.
	ErrWarehouseRequired = errors.New("pos: warehouse required")
	// ErrPaymentAccountRequired rejects paid checkouts without a wallet.
	ErrPaymentAccountRequired = errors.New("pos: payment account required")
	// ErrNotFound indicates a missing sales order.
	ErrNotFound = errors.New("pos: sales order not found")
	// ErrNegativeDiscount rejects discounts below zero or above gross.
	ErrNegativeDiscount = errors.New("pos: discount out of range")
)
