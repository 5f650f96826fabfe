package ledger

import (
	"errors"
	"time"
)

// MovementKind enumerates supported stock movements.
type MovementKind string

const (
	// MovementPurchaseIn represents goods received from a supplier.
	MovementPurchaseIn MovementKind = "purchase_in"
	// MovementSaleOut represents goods sold at the point of sale.
	MovementSaleOut MovementKind = "sale_out"
	// MovementAdjustment represents a stock opname correction.
	MovementAdjustment MovementKind = "adjustment"
	// MovementSupplierSync represents a virtual-supplier stock overwrite.
	MovementSupplierSync MovementKind = "supplier_sync"
	// MovementTransfer represents movement between warehouses.
	MovementTransfer MovementKind = "transfer"
)

// RefType identifies the document a ledger entry originates from.
type RefType string

const (
	RefPurchaseOrder RefType = "purchase_order"
	RefSalesOrder    RefType = "sales_order"
	RefOpname        RefType = "opname"
	RefSupplierSync  RefType = "supplier_sync"
	RefManualJournal RefType = "manual_journal"
	RefTransfer      RefType = "transfer"
	RefImport        RefType = "import"
)

// Movement is one immutable stock ledger entry. Corrections are made by
// appending offsetting entries, never by mutating existing rows.
type Movement struct {
	ID            int64
	VariantID     int64
	WarehouseID   int64
	QuantityDelta int64
	Kind          MovementKind
	RefType       RefType
	RefID         string
	Note          string
	PostedAt      time.Time
}

// Snapshot is the materialized quantity for a (variant, warehouse) pair.
// It is a projection of the movement log, not a second source of truth:
// Quantity must always equal the sum of movement deltas for the pair.
// Negative quantities are legal and signal oversell, not an error.
type Snapshot struct {
	VariantID   int64
	WarehouseID int64
	Quantity    int64
	UpdatedAt   time.Time
}

// TxnType enumerates cash ledger entry directions.
type TxnType string

const (
	TxnIn          TxnType = "in"
	TxnOut         TxnType = "out"
	TxnTransferIn  TxnType = "transfer_in"
	TxnTransferOut TxnType = "transfer_out"
)

// Signed returns amount with the sign the account balance sees.
func (t TxnType) Signed(amount float64) float64 {
	switch t {
	case TxnIn, TxnTransferIn:
		return amount
	case TxnOut, TxnTransferOut:
		return -amount
	}
	return 0
}

// CashTransaction is one immutable cash ledger entry. The wallet account
// balance reacts to it exactly once, at append time.
type CashTransaction struct {
	ID                int64
	AccountID         int64
	CategoryAccountID int64
	Type              TxnType
	Amount            float64
	PairID            string
	Date              time.Time
	Description       string
	RefType           RefType
	RefID             string
	CreatedAt         time.Time
}

// CashAccount is a wallet (cash or bank) with a materialized running balance.
// Balance mutates only through CashTransaction application.
type CashAccount struct {
	ID        int64
	Code      string
	Name      string
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MovementInput describes a single stock delta to apply.
type MovementInput struct {
	VariantID   int64
	WarehouseID int64
	Delta       int64
	Kind        MovementKind
	RefType     RefType
	RefID       string
	Note        string
}

// AdjustmentInput describes a stock opname: the operator counted RealQty and
// the ledger records the difference against the system quantity.
type AdjustmentInput struct {
	VariantID   int64
	WarehouseID int64
	RealQty     int64
	RefID       string
	Note        string
}

// SupplierSyncInput overwrites a virtual-supplier warehouse quantity.
type SupplierSyncInput struct {
	VariantID   int64
	WarehouseID int64
	NewQty      int64
	RefID       string
	Note        string
}

// CashInput describes a single cash ledger entry to apply.
type CashInput struct {
	AccountID         int64
	CategoryAccountID int64
	Type              TxnType
	Amount            float64
	Date              time.Time
	Description       string
	RefType           RefType
	RefID             string
	pairID            string
}

// TransferInput moves an amount between two wallet accounts.
type TransferInput struct {
	FromAccountID     int64
	ToAccountID       int64
	Amount            float64
	CategoryAccountID int64
	Date              time.Time
	Description       string
}

// MovementFilter narrows stock card queries.
type MovementFilter struct {
	VariantID   int64
	WarehouseID int64
	From        time.Time
	To          time.Time
	Limit       int
}

// CashFilter narrows cash ledger queries.
type CashFilter struct {
	AccountID int64
	From      time.Time
	To        time.Time
	Limit     int
}

var (
	// ErrZeroDelta rejects movements that would not change anything.
	ErrZeroDelta = errors.New("ledger: quantity delta must be non zero")
	// ErrInvalidKey indicates missing variant or warehouse identity.
	ErrInvalidKey = errors.New("ledger: variant and warehouse required")
	// ErrUnknownKind rejects unrecognised movement kinds.
	ErrUnknownKind = errors.New("ledger: unknown movement kind")
	// ErrInvalidAmount rejects non-positive cash amounts.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")
	// ErrUnknownTxnType rejects unrecognised cash entry types.
	ErrUnknownTxnType = errors.New("ledger: unknown transaction type")
	// ErrSameAccount rejects transfers within one account.
	ErrSameAccount = errors.New("ledger: transfer accounts must differ")
	// ErrSnapshotNotFound indicates a missing snapshot row.
	ErrSnapshotNotFound = errors.New("ledger: snapshot not found")
	// ErrAccountNotFound indicates a missing cash account row.
	ErrAccountNotFound = errors.New("ledger: cash account not found")
	// ErrNotVirtualSupplier rejects supplier sync on physical warehouses.
	ErrNotVirtualSupplier = errors.New("ledger: supplier sync requires a virtual-supplier warehouse")
)

func validMovementKind(kind MovementKind) bool {
	switch kind {
	case MovementPurchaseIn, MovementSaleOut, MovementAdjustment, MovementSupplierSync, MovementTransfer:
		return true
	}
	return false
}

func validTxnType(t TxnType) bool {
	switch t {
	case TxnIn, TxnOut, TxnTransferIn, TxnTransferOut:
		return true
	}
	return false
}
