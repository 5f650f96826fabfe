package purchasing

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
	ledger *ledgertest.Ledger
	orders map[int64]PurchaseOrder
	lines  map[int64][]OrderLine
	nextID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		ledger: ledgertest.New(),
		orders: map[int64]PurchaseOrder{},
		lines:  map[int64][]OrderLine{},
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	backupOrders := map[int64]PurchaseOrder{}
	for id, order := range r.orders {
		backupOrders[id] = order
	}
	backupLines := map[int64][]OrderLine{}
	for id, lines := range r.lines {
		backupLines[id] = append([]OrderLine(nil), lines...)
	}
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

func (r *memoryRepo) GetOrder(_ context.Context, id int64) (PurchaseOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	order.Lines = append([]OrderLine(nil), r.lines[id]...)
	return order, nil
}

func (r *memoryRepo) ListOrders(_ context.Context, filter OrderFilter) ([]PurchaseOrder, error) {
	result := []PurchaseOrder{}
	for _, order := range r.orders {
		if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
			continue
		}
		result = append(result, order)
	}
	return result, nil
}

func (tx *memoryTx) InsertOrder(_ context.Context, order PurchaseOrder) (int64, error) {
	tx.repo.nextID++
	order.ID = tx.repo.nextID
	tx.repo.orders[order.ID] = order
	return order.ID, nil
}

func (tx *memoryTx) InsertOrderLine(_ context.Context, line OrderLine) error {
	tx.repo.lines[line.OrderID] = append(tx.repo.lines[line.OrderID], line)
	return nil
}

func (tx *memoryTx) GetOrderForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	return tx.repo.GetOrder(ctx, id)
}

func (tx *memoryTx) DeleteOrderLines(_ context.Context, orderID int64) error {
	delete(tx.repo.lines, orderID)
	return nil
}

func (tx *memoryTx) UpdateOrder(_ context.Context, order PurchaseOrder) error {
	stored, ok := tx.repo.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	order.Lines = nil
	order.CreatedAt = stored.CreatedAt
	tx.repo.orders[order.ID] = order
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

func TestCreateReceiptProjection(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "BANK", "Bank Utama")
	svc := NewService(repo, testCatalog(), nil, nil)

	order, err := svc.Create(context.Background(), CreateInput{
		SupplierID:       7,
		WarehouseID:      1,
		Paid:             true,
		PaymentAccountID: 1,
		Lines: []LineInput{
			{VariantID: 1, Qty: 10, UnitCost: 100},
			{VariantID: 2, Qty: 5},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 10*100+5*2000, order.TotalAmount, 0.0001)
	require.EqualValues(t, 15, order.TotalQty)
	require.NotEmpty(t, order.Number)
	require.Equal(t, PaymentPaid, order.PaymentStatus)

	// Stock arrived per line and the snapshot matches the movement log.
	require.EqualValues(t, 10, repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
	require.EqualValues(t, 5, repo.ledger.Snapshots[ledgertest.Key(2, 1)].Quantity)
	require.EqualValues(t, repo.ledger.SumMovements(1, 1), repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)

	// Cash left the wallet exactly once.
	require.InDelta(t, -11000, repo.ledger.Accounts[1].Balance, 0.0001)
	require.InDelta(t, repo.ledger.SumCash(1), repo.ledger.Accounts[1].Balance, 0.0001)
}

func TestCreateUnpaidSkipsCash(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)

	order, err := svc.Create(context.Background(), CreateInput{
		SupplierID:  7,
		WarehouseID: 1,
		Lines:       []LineInput{{VariantID: 1, Qty: 3, UnitCost: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, PaymentUnpaid, order.PaymentStatus)
	require.Empty(t, repo.ledger.CashTxns)
}

func TestCreateValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{SupplierID: 7, WarehouseID: 1})
	require.ErrorIs(t, err, ErrNoLines)

	_, err = svc.Create(ctx, CreateInput{SupplierID: 7, Lines: []LineInput{{VariantID: 1, Qty: 1}}})
	require.ErrorIs(t, err, ErrWarehouseRequired)

	_, err = svc.Create(ctx, CreateInput{WarehouseID: 1, Lines: []LineInput{{VariantID: 1, Qty: 1}}})
	require.ErrorIs(t, err, ErrSupplierRequired)

	_, err = svc.Create(ctx, CreateInput{SupplierID: 7, WarehouseID: 1, Paid: true, Lines: []LineInput{{VariantID: 1, Qty: 1}}})
	require.ErrorIs(t, err, ErrPaymentAccountRequired)

	_, err = svc.Create(ctx, CreateInput{SupplierID: 7, WarehouseID: 1, Lines: []LineInput{{VariantID: 1, Qty: 0}}})
	require.ErrorIs(t, err, ErrInvalidLine)

	require.Empty(t, repo.orders)
	require.Empty(t, repo.ledger.Movements)
}

func TestEditNoChangeNetsToZero(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "BANK", "Bank Utama")
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		SupplierID:       7,
		WarehouseID:      1,
		Paid:             true,
		PaymentAccountID: 1,
		Lines:            []LineInput{{VariantID: 1, Qty: 10, UnitCost: 100}},
	})
	require.NoError(t, err)

	snapshotBefore := repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity
	balanceBefore := repo.ledger.Accounts[1].Balance
	movementsBefore := len(repo.ledger.Movements)

	// Re-submitting identical lines appends revert-then-reapply entries whose
	// net effect is zero: snapshot and balance end where they started.
	updated, err := svc.Edit(ctx, created.ID, EditInput{
		Paid:             true,
		PaymentAccountID: 1,
		Lines:            []LineInput{{VariantID: 1, Qty: 10, UnitCost: 100}},
	})
	require.NoError(t, err)
	require.InDelta(t, created.TotalAmount, updated.TotalAmount, 0.0001)

	require.EqualValues(t, snapshotBefore, repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
	require.InDelta(t, balanceBefore, repo.ledger.Accounts[1].Balance, 0.0001)
	require.EqualValues(t, repo.ledger.SumMovements(1, 1), repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
	require.InDelta(t, repo.ledger.SumCash(1), repo.ledger.Accounts[1].Balance, 0.0001)

	// The audit trail still grew: reversal plus reapply, never mutation.
	require.Equal(t, movementsBefore+2, len(repo.ledger.Movements))
	require.Len(t, repo.ledger.CashTxns, 3)
}

func TestEditChangesQuantitiesAndPayment(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "BANK", "Bank Utama")
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		SupplierID:       7,
		WarehouseID:      1,
		Paid:             true,
		PaymentAccountID: 1,
		Lines:            []LineInput{{VariantID: 1, Qty: 10, UnitCost: 100}},
	})
	require.NoError(t, err)

	// Shrink the order to 7 units and drop the payment.
	updated, err := svc.Edit(ctx, created.ID, EditInput{
		Lines: []LineInput{{VariantID: 1, Qty: 7, UnitCost: 100}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 7, updated.TotalQty)
	require.Equal(t, PaymentUnpaid, updated.PaymentStatus)

	require.EqualValues(t, 7, repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
	require.EqualValues(t, repo.ledger.SumMovements(1, 1), repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
	// Original payment was reversed and nothing replaced it.
	require.InDelta(t, 0, repo.ledger.Accounts[1].Balance, 0.0001)

	stored, err := svc.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	require.EqualValues(t, 7, stored.Lines[0].Qty)
}

func TestMarkPaid(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "BANK", "Bank Utama")
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		SupplierID:  7,
		WarehouseID: 1,
		Lines:       []LineInput{{VariantID: 1, Qty: 4, UnitCost: 250}},
	})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(ctx, created.ID, 1)
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, paid.PaymentStatus)
	require.InDelta(t, -1000, repo.ledger.Accounts[1].Balance, 0.0001)

	_, err = svc.MarkPaid(ctx, created.ID, 1)
	require.ErrorIs(t, err, ErrAlreadyPaid)
	require.Len(t, repo.ledger.CashTxns, 1)
}

func TestCreateAtomicity(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "BANK", "Bank Utama")
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	repo.ledger.FailAppendMovement = errInjected
	_, err := svc.Create(ctx, CreateInput{
		SupplierID:       7,
		WarehouseID:      1,
		Paid:             true,
		PaymentAccountID: 1,
		Lines:            []LineInput{{VariantID: 1, Qty: 2, UnitCost: 500}},
	})
	require.ErrorIs(t, err, errInjected)

	require.Empty(t, repo.orders)
	require.Empty(t, repo.ledger.Movements)
	require.Empty(t, repo.ledger.CashTxns)
	require.InDelta(t, 0, repo.ledger.Accounts[1].Balance, 0.0001)
}

func TestEditAtomicity(t *testing.T) {
	repo := newMemoryRepo()
	repo.ledger.SeedAccount(1, "BANK", "Bank Utama")
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		SupplierID:       7,
		WarehouseID:      1,
		Paid:             true,
		PaymentAccountID: 1,
		Lines:            []LineInput{{VariantID: 1, Qty: 10, UnitCost: 100}},
	})
	require.NoError(t, err)

	// A failure mid-edit must leave the original order and ledger untouched.
	repo.ledger.FailAppendCash = errInjected
	_, err = svc.Edit(ctx, created.ID, EditInput{
		Lines: []LineInput{{VariantID: 1, Qty: 3, UnitCost: 100}},
	})
	require.ErrorIs(t, err, errInjected)

	require.EqualValues(t, 10, repo.ledger.Snapshots[ledgertest.Key(1, 1)].Quantity)
	require.InDelta(t, -1000, repo.ledger.Accounts[1].Balance, 0.0001)
	stored, err := svc.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, stored.PaymentStatus)
	require.Len(t, stored.Lines, 1)
	require.EqualValues(t, 10, stored.Lines[0].Qty)
}
