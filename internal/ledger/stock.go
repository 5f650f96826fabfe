package ledger

import (
	"context"
	"errors"
	"time"
)

// StockTx exposes the stock ledger primitives available inside an open
// database transaction.
type StockTx interface {
	AppendMovement(ctx context.Context, movement Movement) (int64, error)
	GetSnapshotForUpdate(ctx context.Context, variantID, warehouseID int64) (Snapshot, error)
	UpsertSnapshot(ctx context.Context, snapshot Snapshot) error
}

// ApplyStockMovement appends one immutable movement and advances the snapshot
// projection by the same delta, inside the caller's transaction. A missing
// snapshot defaults to quantity zero. The resulting quantity may go negative:
// oversell is recorded, not rejected.
func ApplyStockMovement(ctx context.Context, tx StockTx, input MovementInput) (Movement, Snapshot, error) {
	if input.VariantID == 0 || input.WarehouseID == 0 {
		return Movement{}, Snapshot{}, ErrInvalidKey
	}
	if input.Delta == 0 {
		return Movement{}, Snapshot{}, ErrZeroDelta
	}
	if !validMovementKind(input.Kind) {
		return Movement{}, Snapshot{}, ErrUnknownKind
	}

	snapshot, err := tx.GetSnapshotForUpdate(ctx, input.VariantID, input.WarehouseID)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			return Movement{}, Snapshot{}, err
		}
		snapshot = Snapshot{VariantID: input.VariantID, WarehouseID: input.WarehouseID}
	}

	now := time.Now().UTC()
	movement := Movement{
		VariantID:     input.VariantID,
		WarehouseID:   input.WarehouseID,
		QuantityDelta: input.Delta,
		Kind:          input.Kind,
		RefType:       input.RefType,
		RefID:         input.RefID,
		Note:          input.Note,
		PostedAt:      now,
	}
	id, err := tx.AppendMovement(ctx, movement)
	if err != nil {
		return Movement{}, Snapshot{}, err
	}
	movement.ID = id

	snapshot.Quantity += input.Delta
	snapshot.UpdatedAt = now
	if err := tx.UpsertSnapshot(ctx, snapshot); err != nil {
		return Movement{}, Snapshot{}, err
	}
	return movement, snapshot, nil
}

// ApplyAdjustment records a stock opname. The operator supplies the counted
// quantity; the ledger stores the delta against the current snapshot as a
// single adjustment movement. A count matching the system quantity writes
// nothing.
func ApplyAdjustment(ctx context.Context, tx StockTx, input AdjustmentInput) (Movement, Snapshot, error) {
	return applySetQuantity(ctx, tx, setQuantityParams{
		VariantID:   input.VariantID,
		WarehouseID: input.WarehouseID,
		TargetQty:   input.RealQty,
		Kind:        MovementAdjustment,
		RefType:     RefOpname,
		RefID:       input.RefID,
		Note:        input.Note,
	})
}

// ApplySupplierSync overwrites a virtual-supplier warehouse quantity. The
// overwrite is converted to a delta and logged like any other movement so the
// ledger stays the single source of derivation.
func ApplySupplierSync(ctx context.Context, tx StockTx, input SupplierSyncInput) (Movement, Snapshot, error) {
	return applySetQuantity(ctx, tx, setQuantityParams{
		VariantID:   input.VariantID,
		WarehouseID: input.WarehouseID,
		TargetQty:   input.NewQty,
		Kind:        MovementSupplierSync,
		RefType:     RefSupplierSync,
		RefID:       input.RefID,
		Note:        input.Note,
	})
}

type setQuantityParams struct {
	VariantID   int64
	WarehouseID int64
	TargetQty   int64
	Kind        MovementKind
	RefType     RefType
	RefID       string
	Note        string
}

func applySetQuantity(ctx context.Context, tx StockTx, params setQuantityParams) (Movement, Snapshot, error) {
	if params.VariantID == 0 || params.WarehouseID == 0 {
		return Movement{}, Snapshot{}, ErrInvalidKey
	}
	snapshot, err := tx.GetSnapshotForUpdate(ctx, params.VariantID, params.WarehouseID)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			return Movement{}, Snapshot{}, err
		}
		snapshot = Snapshot{VariantID: params.VariantID, WarehouseID: params.WarehouseID}
	}
	delta := params.TargetQty - snapshot.Quantity
	if delta == 0 {
		return Movement{}, snapshot, nil
	}
	return ApplyStockMovement(ctx, tx, MovementInput{
		VariantID:   params.VariantID,
		WarehouseID: params.WarehouseID,
		Delta:       delta,
		Kind:        params.Kind,
		RefType:     params.RefType,
		RefID:       params.RefID,
		Note:        params.Note,
	})
}
