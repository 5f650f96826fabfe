package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CashTx exposes the cash ledger primitives available inside an open
// database transaction.
type CashTx interface {
	AppendCashTransaction(ctx context.Context, txn CashTransaction) (int64, error)
	GetAccountForUpdate(ctx context.Context, accountID int64) (CashAccount, error)
	UpdateAccountBalance(ctx context.Context, accountID int64, balance float64) error
}

// Tx combines both ledgers for workflows that touch stock and cash in one
// atomic transaction.
type Tx interface {
	StockTx
	CashTx
}

// ApplyCashTransaction appends one immutable cash ledger entry and moves the
// wallet balance by the signed amount, inside the caller's transaction.
// The category account only classifies the entry for reporting; it never
// changes a wallet balance.
func ApplyCashTransaction(ctx context.Context, tx CashTx, input CashInput) (CashTransaction, CashAccount, error) {
	if input.AccountID == 0 {
		return CashTransaction{}, CashAccount{}, ErrAccountNotFound
	}
	if input.Amount <= 0 {
		return CashTransaction{}, CashAccount{}, ErrInvalidAmount
	}
	if !validTxnType(input.Type) {
		return CashTransaction{}, CashAccount{}, ErrUnknownTxnType
	}

	account, err := tx.GetAccountForUpdate(ctx, input.AccountID)
	if err != nil {
		return CashTransaction{}, CashAccount{}, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	txn := CashTransaction{
		AccountID:         input.AccountID,
		CategoryAccountID: input.CategoryAccountID,
		Type:              input.Type,
		Amount:            input.Amount,
		PairID:            input.pairID,
		Date:              date,
		Description:       input.Description,
		RefType:           input.RefType,
		RefID:             input.RefID,
	}
	id, err := tx.AppendCashTransaction(ctx, txn)
	if err != nil {
		return CashTransaction{}, CashAccount{}, err
	}
	txn.ID = id

	account.Balance += input.Type.Signed(input.Amount)
	if err := tx.UpdateAccountBalance(ctx, account.ID, account.Balance); err != nil {
		return CashTransaction{}, CashAccount{}, err
	}
	return txn, account, nil
}

// ApplyTransfer debits the source account and credits the destination by the
// same amount, as two linked entries sharing a pair id. Both entries belong to
// the caller's transaction; a transfer must never be split across two commits.
func ApplyTransfer(ctx context.Context, tx CashTx, input TransferInput) (CashTransaction, CashTransaction, error) {
	if input.FromAccountID == 0 || input.ToAccountID == 0 {
		return CashTransaction{}, CashTransaction{}, ErrAccountNotFound
	}
	if input.FromAccountID == input.ToAccountID {
		return CashTransaction{}, CashTransaction{}, ErrSameAccount
	}
	if input.Amount <= 0 {
		return CashTransaction{}, CashTransaction{}, ErrInvalidAmount
	}

	pairID := uuid.NewString()
	out, _, err := ApplyCashTransaction(ctx, tx, CashInput{
		AccountID:         input.FromAccountID,
		CategoryAccountID: input.CategoryAccountID,
		Type:              TxnTransferOut,
		Amount:            input.Amount,
		Date:              input.Date,
		Description:       input.Description,
		RefType:           RefTransfer,
		RefID:             pairID,
		pairID:            pairID,
	})
	if err != nil {
		return CashTransaction{}, CashTransaction{}, err
	}
	in, _, err := ApplyCashTransaction(ctx, tx, CashInput{
		AccountID:         input.ToAccountID,
		CategoryAccountID: input.CategoryAccountID,
		Type:              TxnTransferIn,
		Amount:            input.Amount,
		Date:              input.Date,
		Description:       input.Description,
		RefType:           RefTransfer,
		RefID:             pairID,
		pairID:            pairID,
	})
	if err != nil {
		return CashTransaction{}, CashTransaction{}, err
	}
	return out, in, nil
}
