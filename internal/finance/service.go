package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gerai-erp/gerai/internal/ledger"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	CreateCashAccount(ctx context.Context, account ledger.CashAccount) (ledger.CashAccount, error)
	GetCashAccount(ctx context.Context, id int64) (ledger.CashAccount, error)
	ListCashAccounts(ctx context.Context) ([]ledger.CashAccount, error)

	CreateChartOfAccount(ctx context.Context, coa ChartOfAccount) (ChartOfAccount, error)
	ListChartOfAccounts(ctx context.Context, category AccountCategory) ([]ChartOfAccount, error)
	UpdateChartOfAccount(ctx context.Context, coa ChartOfAccount) error
	DeleteChartOfAccount(ctx context.Context, id int64) error

	ListReceivables(ctx context.Context) ([]ReceivableDue, error)
}

// TxRepository exposes the writes available inside one finance transaction.
// Collecting a receivable flips the sales order to paid and books the cash in
// the same database transaction, so the two can never disagree.
type TxRepository interface {
	GetReceivableForUpdate(ctx context.Context, orderID int64) (ReceivableDue, error)
	MarkSalesOrderPaid(ctx context.Context, orderID int64) error
	Ledger() ledger.Tx
}

// CachePort invalidates read-side caches after committed writes.
type CachePort interface {
	Invalidate(ctx context.Context, module string) error
}

// Service runs manual journals, transfers and receivable collections.
type Service struct {
	repo   RepositoryPort
	cache  CachePort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, cache CachePort, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// CreateAccount registers a new wallet with a zero balance.
func (s *Service) CreateAccount(ctx context.Context, code, name string) (ledger.CashAccount, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return ledger.CashAccount{}, fmt.Errorf("%w: code and name required", ErrValidation)
	}
	account, err := s.repo.CreateCashAccount(ctx, ledger.CashAccount{Code: code, Name: name})
	if err != nil {
		return ledger.CashAccount{}, err
	}
	s.invalidate(ctx, "finance")
	return account, nil
}

// GetAccount loads one wallet with its running balance.
func (s *Service) GetAccount(ctx context.Context, id int64) (ledger.CashAccount, error) {
	return s.repo.GetCashAccount(ctx, id)
}

// ListAccounts lists wallets with running balances.
func (s *Service) ListAccounts(ctx context.Context) ([]ledger.CashAccount, error) {
	return s.repo.ListCashAccounts(ctx)
}

// CreateChartOfAccount registers a reporting category.
func (s *Service) CreateChartOfAccount(ctx context.Context, coa ChartOfAccount) (ChartOfAccount, error) {
	coa.Code = strings.TrimSpace(coa.Code)
	coa.Name = strings.TrimSpace(coa.Name)
	if coa.Code == "" || coa.Name == "" {
		return ChartOfAccount{}, fmt.Errorf("%w: code and name required", ErrValidation)
	}
	if !coa.Category.Valid() {
		return ChartOfAccount{}, fmt.Errorf("%w: unknown category %q", ErrValidation, coa.Category)
	}
	created, err := s.repo.CreateChartOfAccount(ctx, coa)
	if err != nil {
		return ChartOfAccount{}, err
	}
	s.invalidate(ctx, "finance")
	return created, nil
}

// ListChartOfAccounts lists reporting categories, optionally by category.
func (s *Service) ListChartOfAccounts(ctx context.Context, category AccountCategory) ([]ChartOfAccount, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	return s.repo.ListChartOfAccounts(ctx, category)
}

// UpdateChartOfAccount renames or recategorizes a reporting category.
func (s *Service) UpdateChartOfAccount(ctx context.Context, coa ChartOfAccount) error {
	if coa.ID == 0 || strings.TrimSpace(coa.Name) == "" || !coa.Category.Valid() {
		return fmt.Errorf("%w: id, name and category required", ErrValidation)
	}
	if err := s.repo.UpdateChartOfAccount(ctx, coa); err != nil {
		return err
	}
	s.invalidate(ctx, "finance", "reports")
	return nil
}

// DeleteChartOfAccount removes a reporting category. Historic cash entries
// keep their category id for the audit trail.
func (s *Service) DeleteChartOfAccount(ctx context.Context, id int64) error {
	if err := s.repo.DeleteChartOfAccount(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, "finance")
	return nil
}

// Journal books one manual cash entry against a wallet.
func (s *Service) Journal(ctx context.Context, input JournalInput) (ledger.CashTransaction, error) {
	var txnType ledger.TxnType
	switch input.Direction {
	case "in":
		txnType = ledger.TxnIn
	case "out":
		txnType = ledger.TxnOut
	default:
		return ledger.CashTransaction{}, fmt.Errorf("%w: direction must be in or out", ErrValidation)
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var txn ledger.CashTransaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		txn, _, err = ledger.ApplyCashTransaction(ctx, tx.Ledger(), ledger.CashInput{
			AccountID:         input.AccountID,
			CategoryAccountID: input.CategoryAccountID,
			Type:              txnType,
			Amount:            input.Amount,
			Date:              date,
			Description:       input.Description,
			RefType:           ledger.RefManualJournal,
		})
		return err
	})
	if err != nil {
		return ledger.CashTransaction{}, err
	}
	s.invalidate(ctx, "finance", "reports")
	return txn, nil
}

// Transfer moves money between two wallets as a linked pair of entries. The
// pair commits together or not at all; a transfer is never half applied.
func (s *Service) Transfer(ctx context.Context, input TransferRequest) ([]ledger.CashTransaction, error) {
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var out, in ledger.CashTransaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, in, err = ledger.ApplyTransfer(ctx, tx.Ledger(), ledger.TransferInput{
			FromAccountID:     input.FromAccountID,
			ToAccountID:       input.ToAccountID,
			Amount:            input.Amount,
			CategoryAccountID: input.CategoryAccountID,
			Date:              date,
			Description:       input.Description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "finance", "reports")
	return []ledger.CashTransaction{out, in}, nil
}

// ListReceivables lists unpaid sales orders awaiting collection.
func (s *Service) ListReceivables(ctx context.Context) ([]ReceivableDue, error) {
	return s.repo.ListReceivables(ctx)
}

// CollectReceivable settles an unpaid sales order: the order flips to paid
// and the cash lands on the wallet in one transaction.
func (s *Service) CollectReceivable(ctx context.Context, orderID, accountID int64) (ledger.CashTransaction, error) {
	if accountID == 0 {
		return ledger.CashTransaction{}, fmt.Errorf("%w: account required", ErrValidation)
	}
	var txn ledger.CashTransaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		due, err := tx.GetReceivableForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := tx.MarkSalesOrderPaid(ctx, orderID); err != nil {
			return err
		}
		txn, _, err = ledger.ApplyCashTransaction(ctx, tx.Ledger(), ledger.CashInput{
			AccountID:   accountID,
			Type:        ledger.TxnIn,
			Amount:      due.NetAmount,
			Date:        time.Now().UTC(),
			Description: fmt.Sprintf("Pelunasan piutang %s", due.Number),
			RefType:     ledger.RefSalesOrder,
			RefID:       due.Number,
		})
		return err
	})
	if err != nil {
		return ledger.CashTransaction{}, err
	}
	s.invalidate(ctx, "finance", "reports", "pos")
	return txn, nil
}

func (s *Service) invalidate(ctx context.Context, modules ...string) {
	if s.cache == nil {
		return
	}
	for _, module := range modules {
		if err := s.cache.Invalidate(ctx, module); err != nil && s.logger != nil {
			s.logger.Warn("cache invalidate", slog.String("module", module), slog.Any("error", err))
		}
	}
}
