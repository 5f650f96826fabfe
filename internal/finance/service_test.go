package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/ledger/ledgertest"
)

var errInjected = errors.New("injected failure")

type memoryOrder struct {
	due  ReceivableDue
	paid bool
}

type memoryRepo struct {
	ledger *ledgertest.Ledger
	coa    map[int64]ChartOfAccount
	orders map[int64]*memoryOrder
	nextID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		ledger: ledgertest.New(),
		coa:    map[int64]ChartOfAccount{},
		orders: map[int64]*memoryOrder{},
	}
}

func (r *memoryRepo) seedOrder(id int64, number string, net float64) {
	r.orders[id] = &memoryOrder{due: ReceivableDue{
		OrderID:   id,
		Number:    number,
		NetAmount: net,
		OrderDate: time.Now().UTC(),
	}}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	backupLedger := r.ledger.Clone()
	backupPaid := map[int64]bool{}
	for id, order := range r.orders {
		backupPaid[id] = order.paid
	}
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		*r.ledger = *backupLedger
		for id, paid := range backupPaid {
			r.orders[id].paid = paid
		}
		return err
	}
	return nil
}

func (r *memoryRepo) CreateCashAccount(_ context.Context, account ledger.CashAccount) (ledger.CashAccount, error) {
	for _, existing := range r.ledger.Accounts {
		if existing.Code == account.Code {
			return ledger.CashAccount{}, ErrDuplicateCode
		}
	}
	r.nextID++
	r.ledger.SeedAccount(r.nextID, account.Code, account.Name)
	return r.ledger.Accounts[r.nextID], nil
}

func (r *memoryRepo) GetCashAccount(_ context.Context, id int64) (ledger.CashAccount, error) {
	if account, ok := r.ledger.Accounts[id]; ok {
		return account, nil
	}
	return ledger.CashAccount{}, ErrNotFound
}

func (r *memoryRepo) ListCashAccounts(_ context.Context) ([]ledger.CashAccount, error) {
	accounts := []ledger.CashAccount{}
	for _, account := range r.ledger.Accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func seedBalance(l *ledgertest.Ledger, id int64, balance float64) {
	account := l.Accounts[id]
	account.Balance = balance
	l.Accounts[id] = account
}

func (r *memoryRepo) CreateChartOfAccount(_ context.Context, coa ChartOfAccount) (ChartOfAccount, error) {
	for _, existing := range r.coa {
		if existing.Code == coa.Code {
			return ChartOfAccount{}, ErrDuplicateCode
		}
	}
	r.nextID++
	coa.ID = r.nextID
	r.coa[coa.ID] = coa
	return coa, nil
}

func (r *memoryRepo) ListChartOfAccounts(_ context.Context, category AccountCategory) ([]ChartOfAccount, error) {
	list := []ChartOfAccount{}
	for _, coa := range r.coa {
		if category != "" && coa.Category != category {
			continue
		}
		list = append(list, coa)
	}
	return list, nil
}

func (r *memoryRepo) UpdateChartOfAccount(_ context.Context, coa ChartOfAccount) error {
	stored, ok := r.coa[coa.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = coa.Name
	stored.Category = coa.Category
	r.coa[coa.ID] = stored
	return nil
}

func (r *memoryRepo) DeleteChartOfAccount(_ context.Context, id int64) error {
	if _, ok := r.coa[id]; !ok {
		return ErrNotFound
	}
	delete(r.coa, id)
	return nil
}

func (r *memoryRepo) ListReceivables(_ context.Context) ([]ReceivableDue, error) {
	dues := []ReceivableDue{}
	for _, order := range r.orders {
		if !order.paid {
			dues = append(dues, order.due)
		}
	}
	return dues, nil
}

func (tx *memoryTx) GetReceivableForUpdate(_ context.Context, orderID int64) (ReceivableDue, error) {
	order, ok := tx.repo.orders[orderID]
	if !ok {
		return ReceivableDue{}, ErrOrderNotFound
	}
	if order.paid {
		return ReceivableDue{}, ErrOrderAlreadyPaid
	}
	return order.due, nil
}

func (tx *memoryTx) MarkSalesOrderPaid(_ context.Context, orderID int64) error {
	order, ok := tx.repo.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	order.paid = true
	return nil
}

func (tx *memoryTx) Ledger() ledger.Tx {
	return tx.repo.ledger
}

func TestJournalMovesBalanceOnce(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "KAS", "Kas Toko")
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	txn, err := svc.Journal(ctx, JournalInput{
		AccountID:         1,
		CategoryAccountID: 51,
		Direction:         "out",
		Amount:            75000,
		Description:       "Bayar listrik",
	})
	require.NoError(t, err)
	require.Equal(t, ledger.TxnOut, txn.Type)
	require.InDelta(t, -75000, repo.ledger.Accounts[1].Balance, 0.0001)
	require.InDelta(t, repo.ledger.SumCash(1), repo.ledger.Accounts[1].Balance, 0.0001)

	_, err = svc.Journal(ctx, JournalInput{AccountID: 1, Direction: "sideways", Amount: 100})
	require.ErrorIs(t, err, ErrValidation)
}

func TestTransferPairConservation(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "KAS", "Kas Toko")
	repo.ledger.SeedAccount(2, "BANK", "Bank Utama")
	seedBalance(repo.ledger, 1, 500000)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	pair, err := svc.Transfer(ctx, TransferRequest{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        200000,
		Description:   "Setor ke bank",
	})
	require.NoError(t, err)
	require.Len(t, pair, 2)
	require.Equal(t, pair[0].PairID, pair[1].PairID)
	require.NotEmpty(t, pair[0].PairID)
	require.InDelta(t, 300000, repo.ledger.Accounts[1].Balance, 0.0001)
	require.InDelta(t, 200000, repo.ledger.Accounts[2].Balance, 0.0001)

	_, err = svc.Transfer(ctx, TransferRequest{FromAccountID: 1, ToAccountID: 1, Amount: 100})
	require.ErrorIs(t, err, ledger.ErrSameAccount)
}

func TestTransferNeverSplits(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "KAS", "Kas Toko")
	seedBalance(repo.ledger, 1, 500000)
	svc := NewService(repo, nil, nil)

	// Destination account missing: the debit side must roll back with it.
	_, err := svc.Transfer(context.Background(), TransferRequest{
		FromAccountID: 1,
		ToAccountID:   9,
		Amount:        100000,
	})
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
	require.InDelta(t, 500000, repo.ledger.Accounts[1].Balance, 0.0001)
	require.Empty(t, repo.ledger.CashTxns)
}

func TestCollectReceivable(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "KAS", "Kas Toko")
	repo.seedOrder(10, "POS-77", 45000)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	txn, err := svc.CollectReceivable(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, ledger.TxnIn, txn.Type)
	require.InDelta(t, 45000, txn.Amount, 0.0001)
	require.True(t, repo.orders[10].paid)
	require.InDelta(t, 45000, repo.ledger.Accounts[1].Balance, 0.0001)

	dues, err := svc.ListReceivables(ctx)
	require.NoError(t, err)
	require.Empty(t, dues)

	_, err = svc.CollectReceivable(ctx, 10, 1)
	require.ErrorIs(t, err, ErrOrderAlreadyPaid)
	require.Len(t, repo.ledger.CashTxns, 1)
}

func TestCollectReceivableAtomicity(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "KAS", "Kas Toko")
	repo.seedOrder(10, "POS-77", 45000)
	svc := NewService(repo, nil, nil)

	// If the cash entry fails, the order must stay unpaid.
	repo.ledger.FailAppendCash = errInjected
	_, err := svc.CollectReceivable(context.Background(), 10, 1)
	require.ErrorIs(t, err, errInjected)
	require.False(t, repo.orders[10].paid)
	require.InDelta(t, 0, repo.ledger.Accounts[1].Balance, 0.0001)
}

func TestChartOfAccountValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateChartOfAccount(ctx, ChartOfAccount{Code: "4-100", Name: "Penjualan", Category: CategoryRevenue})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = svc.CreateChartOfAccount(ctx, ChartOfAccount{Code: "4-200", Name: "Lainnya", Category: "cashflow"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateChartOfAccount(ctx, ChartOfAccount{Code: "4-100", Name: "Penjualan", Category: CategoryRevenue})
	require.ErrorIs(t, err, ErrDuplicateCode)
}
