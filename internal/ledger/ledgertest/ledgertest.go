// Package ledgertest provides an in-memory ledger.Tx implementation with
// all-or-nothing commit semantics for service tests.
package ledgertest

import (
	"context"
	"fmt"

	"github.com/gerai-erp/gerai/internal/ledger"
)

// Ledger holds in-memory ledger state. The zero value is not usable; call New.
type Ledger struct {
	Movements []ledger.Movement
	Snapshots map[string]ledger.Snapshot
	CashTxns  []ledger.CashTransaction
	Accounts  map[int64]ledger.CashAccount

	nextMovementID int64
	nextTxnID      int64

	// Fail hooks let tests abort mid-workflow to assert atomicity.
	FailAppendMovement error
	FailAppendCash     error
}

// New constructs an empty Ledger.
func New() *Ledger {
	return &Ledger{
		Snapshots: make(map[string]ledger.Snapshot),
		Accounts:  make(map[int64]ledger.CashAccount),
	}
}

// Key builds the snapshot map key for a (variant, warehouse) pair.
func Key(variantID, warehouseID int64) string {
	return fmt.Sprintf("%d:%d", variantID, warehouseID)
}

// SeedAccount registers a cash account with an opening balance of zero.
func (l *Ledger) SeedAccount(id int64, code, name string) {
	l.Accounts[id] = ledger.CashAccount{ID: id, Code: code, Name: name}
}

// Clone deep-copies the ledger state.
func (l *Ledger) Clone() *Ledger {
	clone := &Ledger{
		Movements:          append([]ledger.Movement(nil), l.Movements...),
		CashTxns:           append([]ledger.CashTransaction(nil), l.CashTxns...),
		Snapshots:          make(map[string]ledger.Snapshot, len(l.Snapshots)),
		Accounts:           make(map[int64]ledger.CashAccount, len(l.Accounts)),
		nextMovementID:     l.nextMovementID,
		nextTxnID:          l.nextTxnID,
		FailAppendMovement: l.FailAppendMovement,
		FailAppendCash:     l.FailAppendCash,
	}
	for k, v := range l.Snapshots {
		clone.Snapshots[k] = v
	}
	for k, v := range l.Accounts {
		clone.Accounts[k] = v
	}
	return clone
}

// WithTx runs fn against a clone and commits the clone back only on success,
// mirroring the database's transaction rollback.
func (l *Ledger) WithTx(ctx context.Context, fn func(context.Context, ledger.Tx) error) error {
	clone := l.Clone()
	if err := fn(ctx, clone); err != nil {
		return err
	}
	*l = *clone
	return nil
}

// AppendMovement implements ledger.StockTx.
func (l *Ledger) AppendMovement(_ context.Context, movement ledger.Movement) (int64, error) {
	if l.FailAppendMovement != nil {
		return 0, l.FailAppendMovement
	}
	l.nextMovementID++
	movement.ID = l.nextMovementID
	l.Movements = append(l.Movements, movement)
	return movement.ID, nil
}

// GetSnapshotForUpdate implements ledger.StockTx.
func (l *Ledger) GetSnapshotForUpdate(_ context.Context, variantID, warehouseID int64) (ledger.Snapshot, error) {
	if snap, ok := l.Snapshots[Key(variantID, warehouseID)]; ok {
		return snap, nil
	}
	return ledger.Snapshot{VariantID: variantID, WarehouseID: warehouseID}, ledger.ErrSnapshotNotFound
}

// UpsertSnapshot implements ledger.StockTx.
func (l *Ledger) UpsertSnapshot(_ context.Context, snapshot ledger.Snapshot) error {
	l.Snapshots[Key(snapshot.VariantID, snapshot.WarehouseID)] = snapshot
	return nil
}

// AppendCashTransaction implements ledger.CashTx.
func (l *Ledger) AppendCashTransaction(_ context.Context, txn ledger.CashTransaction) (int64, error) {
	if l.FailAppendCash != nil {
		return 0, l.FailAppendCash
	}
	l.nextTxnID++
	txn.ID = l.nextTxnID
	l.CashTxns = append(l.CashTxns, txn)
	return txn.ID, nil
}

// GetAccountForUpdate implements ledger.CashTx.
func (l *Ledger) GetAccountForUpdate(_ context.Context, accountID int64) (ledger.CashAccount, error) {
	if account, ok := l.Accounts[accountID]; ok {
		return account, nil
	}
	return ledger.CashAccount{}, ledger.ErrAccountNotFound
}

// UpdateAccountBalance implements ledger.CashTx.
func (l *Ledger) UpdateAccountBalance(_ context.Context, accountID int64, balance float64) error {
	account, ok := l.Accounts[accountID]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	account.Balance = balance
	l.Accounts[accountID] = account
	return nil
}

// SumMovements re-derives the quantity for a pair from the movement log.
func (l *Ledger) SumMovements(variantID, warehouseID int64) int64 {
	var sum int64
	for _, m := range l.Movements {
		if m.VariantID == variantID && m.WarehouseID == warehouseID {
			sum += m.QuantityDelta
		}
	}
	return sum
}

// SumCash re-derives an account balance from the cash ledger.
func (l *Ledger) SumCash(accountID int64) float64 {
	var sum float64
	for _, t := range l.CashTxns {
		if t.AccountID == accountID {
			sum += t.Type.Signed(t.Amount)
		}
	}
	return sum
}
