package pos

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gerai-erp/gerai/internal/catalog"
	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/ledger/ledgertest"
)

var errInjected = errors.New("injected failure")

type memoryRepo struct {
	ledger          *ledgertest.Ledger
	orders          []SalesOrder
	lines           []OrderLine
	nextID          int64
	failInsertOrder error
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{ledger: ledgertest.New()}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	backupOrders := append([]SalesOrder(nil), r.orders...)
	backupLines := append([]OrderLine(nil), r.lines...)
	backupLedger := r.ledger.Clone()
	backupNext := r.nextID
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.orders = backupOrders
		r.lines = backupLines
		*r.ledger = *backupLedger
		r.nextID = backupNext
		return err
	}
	return nil
}

func (r *memoryRepo) GetOrder(_ context.Context, id int64) (SalesOrder, error) {
	for _, order := range r.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return SalesOrder{}, ErrNotFound
}

func (r *memoryRepo) ListOrders(_ context.Context, filter OrderFilter) ([]SalesOrder, error) {
	result := []SalesOrder{}
	for _, order := range r.orders {
		if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
			continue
		}
		result = append(result, order)
	}
	return result, nil
}

func (tx *memoryTx) InsertOrder(_ context.Context, order SalesOrder) (int64, error) {
	if tx.repo.failInsertOrder != nil {
		return 0, tx.repo.failInsertOrder
	}
	tx.repo.nextID++
	order.ID = tx.repo.nextID
	tx.repo.orders = append(tx.repo.orders, order)
	return order.ID, nil
}

func (tx *memoryTx) InsertOrderLine(_ context.Context, line OrderLine) error {
	tx.repo.lines = append(tx.repo.lines, line)
	return nil
}

func (tx *memoryTx) Ledger() ledger.Tx {
	return tx.repo.ledger
}

type fakeCatalog struct {
	variants map[int64]catalog.Variant
}

func (c *fakeCatalog) GetVariant(_ context.Context, id int64) (catalog.Variant, error) {
	if v, ok := c.variants[id]; ok {
		return v, nil
	}
	return catalog.Variant{}, catalog.ErrNotFound
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{variants: map[int64]catalog.Variant{
		1: {ID: 1, SKU: "KP-01", Name: "Kopi Susu", Cost: 6000, Price: 10000},
		2: {ID: 2, SKU: "TH-01", Name: "Teh Manis", Cost: 2000, Price: 5000},
	}}
}

func TestCheckoutTotalsAndProjection(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "KAS", "Kas Toko")
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	receipt, err := svc.Checkout(ctx, CartInput{
		WarehouseID:      1,
		Paid:             true,
		PaymentAccountID: 1,
		Lines: []CartLine{
			{VariantID: 1, Qty: 2},
			{VariantID: 2, Qty: 1},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 25000, receipt.GrossAmount, 0.0001)
	require.InDelta(t, 25000, receipt.NetAmount, 0.0001)
	require.Len(t, receipt.Lines, 2)
	require.NotEmpty(t, receipt.Number)

	// Stock moved out per line and the snapshot matches the movement log.
	require.EqualValues(t, -2, repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
	require.EqualValues(t, -1, repo.ledger.Snapshots[ledgertest.Key(2, 1)].Quantity)
	require.EqualValues(t, repo.ledger.SumMovements(1, 1), repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)

	// Payment landed on the wallet exactly once.
	require.InDelta(t, 25000, repo.ledger.Accounts[1].Balance, 0.0001)
	require.InDelta(t, repo.ledger.SumCash(1), repo.ledger.Accounts[1].Balance, 0.0001)
	require.Equal(t, PaymentPaid, repo.orders[0].PaymentStatus)
	require.InDelta(t, 14000, repo.orders[0].TotalCost, 0.0001)
}

func TestCheckoutUnpaidSkipsCash(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)

	_, err := svc.Checkout(context.Background(), CartInput{
		WarehouseID: 1,
		Lines:       []CartLine{{VariantID: 1, Qty: 1}},
	})
	require.NoError(t, err)
	require.Empty(t, repo.ledger.CashTxns)
	require.Equal(t, PaymentUnpaid, repo.orders[0].PaymentStatus)
}

func TestCheckoutValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, CartInput{WarehouseID: 1})
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.Checkout(ctx, CartInput{Lines: []CartLine{{VariantID: 1, Qty: 1}}})
	require.ErrorIs(t, err, ErrWarehouseRequired)

	_, err = svc.Checkout(ctx, CartInput{WarehouseID: 1, Paid: true, Lines: []CartLine{{VariantID: 1, Qty: 1}}})
	require.ErrorIs(t, err, ErrPaymentAccountRequired)

	_, err = svc.Checkout(ctx, CartInput{WarehouseID: 1, Lines: []CartLine{{VariantID: 1, Qty: 0}}})
	require.ErrorIs(t, err, ErrInvalidLine)

	_, err = svc.Checkout(ctx, CartInput{WarehouseID: 1, Lines: []CartLine{{VariantID: 99, Qty: 1}}})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	require.Empty(t, repo.orders)
	require.Empty(t, repo.ledger.Movements)
}

func TestCheckoutOversellAllowed(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	// Two on hand, five sold: the sale still commits and the snapshot goes
	// negative as a data-quality signal.
	require.NoError(t, repo.ledger.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, _, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID: 1, WarehouseID: 1, Delta: 2, Kind: ledger.MovementPurchaseIn, RefType: ledger.RefPurchaseOrder, RefID: "PO-1",
		})
		return err
	}))

	_, err := svc.Checkout(ctx, CartInput{
		WarehouseID: 1,
		Lines:       []CartLine{{VariantID: 1, Qty: 5}},
	})
	require.NoError(t, err)
	require.EqualValues(t, -3, repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
	require.EqualValues(t, repo.ledger.SumMovements(1, 1), repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
}

func TestCheckoutAtomicity(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "KAS", "Kas Toko")
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	// Failure after the order insert must leave no partial state behind.
	repo.ledger.FailAppendMovement = errInjected
	_, err := svc.Checkout(ctx, CartInput{
		WarehouseID:      1,
		Paid:             true,
		PaymentAccountID: 1,
		Lines:            []CartLine{{VariantID: 1, Qty: 1}},
	})
	require.ErrorIs(t, err, errInjected)

	require.Empty(t, repo.orders)
	require.Empty(t, repo.lines)
	require.Empty(t, repo.ledger.Movements)
	require.Empty(t, repo.ledger.CashTxns)
	require.InDelta(t, 0, repo.ledger.Accounts[1].Balance, 0.0001)

	// Retrying after the abort succeeds from a clean slate.
	repo.ledger.FailAppendMovement = nil
	_, err = svc.Checkout(ctx, CartInput{
		WarehouseID:      1,
		Paid:             true,
		PaymentAccountID: 1,
		Lines:            []CartLine{{VariantID: 1, Qty: 1}},
	})
	require.NoError(t, err)
	require.Len(t, repo.orders, 1)
}
