package finance

import (
	"errors"
	"time"
)

// AccountCategory classifies a chart-of-accounts entry.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "asset"
	CategoryLiability AccountCategory = "liability"
	CategoryEquity    AccountCategory = "equity"
	CategoryRevenue   AccountCategory = "revenue"
	CategoryExpense   AccountCategory = "expense"
)

// Valid reports whether the category is one of the known five.
func (c AccountCategory) Valid() bool {
	switch c {
	case CategoryAsset, CategoryLiability, CategoryEquity, CategoryRevenue, CategoryExpense:
		return true
	}
	return false
}

// ChartOfAccount is a reporting category. Cash entries reference it so the
// profit and loss report can group by revenue and expense accounts.
type ChartOfAccount struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  AccountCategory `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
}

// JournalInput is one manual cash entry: money in or out of a wallet,
// categorized for reporting.
type JournalInput struct {
	AccountID         int64
	CategoryAccountID int64
	Direction         string // "in" or "out"
	Amount            float64
	Date              time.Time
	Description       string
}

// TransferRequest moves money between two wallets.
type TransferRequest struct {
	FromAccountID     int64
	ToAccountID       int64
	Amount            float64
	CategoryAccountID int64
	Date              time.Time
	Description       string
}

// ReceivableDue is an unpaid sales order from the collections view.
type ReceivableDue struct {
	OrderID    int64     `json:"order_id"`
	Number     string    `json:"number"`
	CustomerID int64     `json:"customer_id,omitempty"`
	NetAmount  float64   `json:"net_amount"`
	OrderDate  time.Time `json:"order_date"`
}

var (
	// ErrNotFound indicates a missing finance record.
	ErrNotFound = errors.New("finance: record not found")
	// ErrDuplicateCode rejects a reused account code.
	ErrDuplicateCode = errors.New("finance: account code already exists")
	// ErrValidation rejects malformed input.
	ErrValidation = errors.New("finance: invalid input")
	// ErrOrderAlreadyPaid rejects collecting a settled order.
	ErrOrderAlreadyPaid = errors.New("finance: sales order already paid")
	// ErrOrderNotFound indicates a missing sales order.
	ErrOrderNotFound = errors.New("finance: sales order not found")
)
