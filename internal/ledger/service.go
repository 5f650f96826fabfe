package ledger

import (
	"context"
	"log/slog"
)

// StorePort abstracts persistence for the service.
type StorePort interface {
	WithTx(ctx context.Context, fn func(context.Context, Tx) error) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
	ListSnapshots(ctx context.Context, warehouseID int64) ([]Snapshot, error)
	ListCashTransactions(ctx context.Context, filter CashFilter) ([]CashTransaction, error)
}

// WarehousePort answers whether a warehouse is a virtual-supplier page.
type WarehousePort interface {
	IsVirtualSupplier(ctx context.Context, warehouseID int64) (bool, error)
}

// CachePort invalidates read-side caches after committed writes. Invalidation
// failures are tolerated as staleness, never as data errors.
type CachePort interface {
	Invalidate(ctx context.Context, module string) error
}

// Service exposes standalone ledger operations: stock opname, supplier sync
// and ledger reads. Workflows with their own documents (POS, purchasing,
// finance) compose the Apply* primitives through their own repositories.
type Service struct {
	store      StorePort
	warehouses WarehousePort
	cache      CachePort
	logger     *slog.Logger
}

// NewService builds Service.
func NewService(store StorePort, warehouses WarehousePort, cache CachePort, logger *slog.Logger) *Service {
	return &Service{store: store, warehouses: warehouses, cache: cache, logger: logger}
}

// Opname records a stock count for one (variant, warehouse) pair.
func (s *Service) Opname(ctx context.Context, input AdjustmentInput) (Movement, Snapshot, error) {
	if input.VariantID == 0 || input.WarehouseID == 0 {
		return Movement{}, Snapshot{}, ErrInvalidKey
	}
	var (
		movement Movement
		snapshot Snapshot
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		movement, snapshot, err = ApplyAdjustment(ctx, tx, input)
		return err
	})
	if err != nil {
		return Movement{}, Snapshot{}, err
	}
	s.invalidate(ctx, "stock", "reports")
	return movement, snapshot, nil
}

// SupplierSync overwrites a virtual-supplier warehouse quantity via the
// normal diff-then-log path.
func (s *Service) SupplierSync(ctx context.Context, input SupplierSyncInput) (Movement, Snapshot, error) {
	if input.VariantID == 0 || input.WarehouseID == 0 {
		return Movement{}, Snapshot{}, ErrInvalidKey
	}
	if s.warehouses != nil {
		virtual, err := s.warehouses.IsVirtualSupplier(ctx, input.WarehouseID)
		if err != nil {
			return Movement{}, Snapshot{}, err
		}
		if !virtual {
			return Movement{}, Snapshot{}, ErrNotVirtualSupplier
		}
	}
	var (
		movement Movement
		snapshot Snapshot
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		movement, snapshot, err = ApplySupplierSync(ctx, tx, input)
		return err
	})
	if err != nil {
		return Movement{}, Snapshot{}, err
	}
	s.invalidate(ctx, "stock", "reports")
	return movement, snapshot, nil
}

// StockCard lists movements matching the filter.
func (s *Service) StockCard(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	return s.store.ListMovements(ctx, filter)
}

// Snapshots lists current quantities, optionally per warehouse.
func (s *Service) Snapshots(ctx context.Context, warehouseID int64) ([]Snapshot, error) {
	return s.store.ListSnapshots(ctx, warehouseID)
}

// CashBook lists cash ledger entries matching the filter.
func (s *Service) CashBook(ctx context.Context, filter CashFilter) ([]CashTransaction, error) {
	return s.store.ListCashTransactions(ctx, filter)
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
