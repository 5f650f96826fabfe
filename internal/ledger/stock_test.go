package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/ledger/ledgertest"
)

var errInjected = errors.New("injected failure")

func TestApplyStockMovementProjectsSnapshot(t *testing.T) {
	mem := ledgertest.New()
	ctx := context.Background()

	err := mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		movement, snapshot, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID:   1,
			WarehouseID: 1,
			Delta:       10,
			Kind:        ledger.MovementPurchaseIn,
			RefType:     ledger.RefPurchaseOrder,
			RefID:       "PO-1",
		})
		require.NoError(t, err)
		require.EqualValues(t, 10, movement.QuantityDelta)
		require.EqualValues(t, 10, snapshot.Quantity)
		return nil
	})
	require.NoError(t, err)

	require.EqualValues(t, 10, mem.Snapshots[ledgertest.Key(1, 1)].Quantity)
	require.EqualValues(t, mem.SumMovements(1, 1), mem.Snapshots[ledgertest.Key(1, 1)].Quantity)
}

func TestApplyStockMovementRejectsZeroDelta(t *testing.T) {
	mem := ledgertest.New()
	err := mem.WithTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		_, _, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID: 1, WarehouseID: 1, Delta: 0, Kind: ledger.MovementSaleOut,
		})
		return err
	})
	require.ErrorIs(t, err, ledger.ErrZeroDelta)
	require.Empty(t, mem.Movements)
}

func TestOversellAllowed(t *testing.T) {
	mem := ledgertest.New()
	ctx := context.Background()

	err := mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, _, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID: 7, WarehouseID: 2, Delta: 2, Kind: ledger.MovementPurchaseIn, RefType: ledger.RefPurchaseOrder, RefID: "PO-7",
		})
		return err
	})
	require.NoError(t, err)

	// Selling five with only two on hand must succeed and leave -3.
	err = mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		movement, snapshot, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID: 7, WarehouseID: 2, Delta: -5, Kind: ledger.MovementSaleOut, RefType: ledger.RefSalesOrder, RefID: "SO-9",
		})
		require.NoError(t, err)
		require.EqualValues(t, -5, movement.QuantityDelta)
		require.EqualValues(t, -3, snapshot.Quantity)
		return nil
	})
	require.NoError(t, err)
	require.EqualValues(t, -3, mem.SumMovements(7, 2))
}

func TestAdjustmentRecordsDelta(t *testing.T) {
	mem := ledgertest.New()
	ctx := context.Background()

	require.NoError(t, mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, _, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID: 3, WarehouseID: 1, Delta: 50, Kind: ledger.MovementPurchaseIn, RefType: ledger.RefPurchaseOrder, RefID: "PO-3",
		})
		return err
	}))

	err := mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		movement, snapshot, err := ledger.ApplyAdjustment(ctx, tx, ledger.AdjustmentInput{
			VariantID: 3, WarehouseID: 1, RealQty: 42, Note: "opname agustus",
		})
		require.NoError(t, err)
		require.EqualValues(t, -8, movement.QuantityDelta)
		require.Equal(t, ledger.MovementAdjustment, movement.Kind)
		require.EqualValues(t, 42, snapshot.Quantity)
		return nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 42, mem.SumMovements(3, 1))
}

func TestAdjustmentWithoutChangeWritesNothing(t *testing.T) {
	mem := ledgertest.New()
	ctx := context.Background()

	require.NoError(t, mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, _, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID: 3, WarehouseID: 1, Delta: 50, Kind: ledger.MovementPurchaseIn, RefType: ledger.RefPurchaseOrder, RefID: "PO-3",
		})
		return err
	}))

	err := mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		movement, snapshot, err := ledger.ApplyAdjustment(ctx, tx, ledger.AdjustmentInput{
			VariantID: 3, WarehouseID: 1, RealQty: 50,
		})
		require.NoError(t, err)
		require.Zero(t, movement.ID)
		require.EqualValues(t, 50, snapshot.Quantity)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, mem.Movements, 1)
}

func TestSupplierSyncDiffThenLog(t *testing.T) {
	mem := ledgertest.New()
	ctx := context.Background()

	require.NoError(t, mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, _, err := ledger.ApplySupplierSync(ctx, tx, ledger.SupplierSyncInput{
			VariantID: 11, WarehouseID: 9, NewQty: 120, RefID: "sync-1",
		})
		return err
	}))
	require.NoError(t, mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		movement, snapshot, err := ledger.ApplySupplierSync(ctx, tx, ledger.SupplierSyncInput{
			VariantID: 11, WarehouseID: 9, NewQty: 90, RefID: "sync-2",
		})
		require.NoError(t, err)
		require.EqualValues(t, -30, movement.QuantityDelta)
		require.Equal(t, ledger.MovementSupplierSync, movement.Kind)
		require.EqualValues(t, 90, snapshot.Quantity)
		return nil
	}))

	// Ledger stays the single source of derivation for the overwrite.
	require.EqualValues(t, 90, mem.SumMovements(11, 9))
	require.Len(t, mem.Movements, 2)
}

func TestMovementFailureRollsBackSnapshot(t *testing.T) {
	mem := ledgertest.New()
	ctx := context.Background()

	require.NoError(t, mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, _, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID: 5, WarehouseID: 1, Delta: 4, Kind: ledger.MovementPurchaseIn, RefType: ledger.RefPurchaseOrder, RefID: "PO-5",
		})
		return err
	}))

	mem.FailAppendMovement = errInjected
	err := mem.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, _, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID: 5, WarehouseID: 1, Delta: -1, Kind: ledger.MovementSaleOut, RefType: ledger.RefSalesOrder, RefID: "SO-5",
		})
		return err
	})
	require.ErrorIs(t, err, errInjected)

	require.Len(t, mem.Movements, 1)
	require.EqualValues(t, 4, mem.Snapshots[ledgertest.Key(5, 1)].Quantity)
	require.EqualValues(t, mem.SumMovements(5, 1), mem.Snapshots[ledgertest.Key(5, 1)].Quantity)
}
