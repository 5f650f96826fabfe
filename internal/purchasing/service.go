package purchasing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gerai-erp/gerai/internal/catalog"
	"github.com/gerai-erp/gerai/internal/ledger"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrder(ctx context.Context, id int64) (PurchaseOrder, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)
}

// TxRepository exposes the writes available inside one purchasing transaction.
// Ledger returns primitives bound to the same database transaction, so the
// document, its stock movements and any cash entries commit or roll back
// together. GetOrderForUpdate re-reads the order inside the transaction so an
// edit reverses exactly what is on disk, not a stale copy.
type TxRepository interface {
	InsertOrder(ctx context.Context, order PurchaseOrder) (int64, error)
	InsertOrderLine(ctx context.Context, line OrderLine) error
	GetOrderForUpdate(ctx context.Context, id int64) (PurchaseOrder, error)
	DeleteOrderLines(ctx context.Context, orderID int64) error
	UpdateOrder(ctx context.Context, order PurchaseOrder) error
	Ledger() ledger.Tx
}

// CatalogPort resolves variants at receipt time.
type CatalogPort interface {
	GetVariant(ctx context.Context, id int64) (catalog.Variant, error)
}

// CachePort invalidates read-side caches after committed writes.
type CachePort interface {
	Invalidate(ctx context.Context, module string) error
}

// Service runs the purchase receipt workflow.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	cache   CachePort
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, catalog CatalogPort, cache CachePort, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, cache: cache, logger: logger}
}

// Create receives a purchase order: the document, one inbound stock movement
// per line, and an outbound cash entry when paid immediately, all in one
// atomic transaction.
func (s *Service) Create(ctx context.Context, input CreateInput) (PurchaseOrder, error) {
	if err := validateInput(input.WarehouseID, input.SupplierID, input.Paid, input.PaymentAccountID, input.Lines); err != nil {
		return PurchaseOrder{}, err
	}
	lines, totalAmount, totalQty, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return PurchaseOrder{}, err
	}

	now := time.Now().UTC()
	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}
	order := PurchaseOrder{
		Number:        fmt.Sprintf("PO-%d", now.UnixNano()),
		SupplierID:    input.SupplierID,
		WarehouseID:   input.WarehouseID,
		OrderDate:     orderDate,
		TotalAmount:   totalAmount,
		TotalQty:      totalQty,
		PaymentStatus: PaymentUnpaid,
		Status:        OrderReceived,
	}
	if input.Paid {
		order.PaymentStatus = PaymentPaid
		order.PaymentAccountID = input.PaymentAccountID
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		orderID, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return err
		}
		order.ID = orderID
		for i := range lines {
			lines[i].OrderID = orderID
			if err := tx.InsertOrderLine(ctx, lines[i]); err != nil {
				return err
			}
		}
		if err := applyStockEffect(ctx, tx.Ledger(), order, lines, 1); err != nil {
			return err
		}
		if input.Paid {
			return applyCashEffect(ctx, tx.Ledger(), order, ledger.TxnOut,
				fmt.Sprintf("Pembelian %s", order.Number))
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}

	order.Lines = lines
	s.invalidate(ctx, "stock", "reports", "purchasing")
	return order, nil
}

// Edit replaces an order's lines and payment. The original effects are
// reversed first by appending offsetting ledger entries (movements at minus
// the original quantities, a cash-in matching the original payment), then the
// new lines and payment are applied, all in one transaction. Ledger rows are
// never mutated or deleted; editing to identical values nets to zero.
func (s *Service) Edit(ctx context.Context, id int64, input EditInput) (PurchaseOrder, error) {
	if len(input.Lines) == 0 {
		return PurchaseOrder{}, ErrNoLines
	}
	if input.Paid && input.PaymentAccountID == 0 {
		return PurchaseOrder{}, ErrPaymentAccountRequired
	}
	lines, totalAmount, totalQty, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return PurchaseOrder{}, err
	}

	var updated PurchaseOrder
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if original.Status == OrderVoid {
			return ErrVoidOrder
		}

		// Undo the original receipt.
		if err := applyStockEffect(ctx, tx.Ledger(), original, original.Lines, -1); err != nil {
			return err
		}
		if original.PaymentStatus == PaymentPaid {
			if err := applyCashEffect(ctx, tx.Ledger(), original, ledger.TxnIn,
				fmt.Sprintf("Koreksi pembelian %s", original.Number)); err != nil {
				return err
			}
		}

		// Rewrite the document and replay the new effects.
		if err := tx.DeleteOrderLines(ctx, original.ID); err != nil {
			return err
		}
		updated = original
		updated.TotalAmount = totalAmount
		updated.TotalQty = totalQty
		updated.PaymentStatus = PaymentUnpaid
		updated.PaymentAccountID = 0
		if input.Paid {
			updated.PaymentStatus = PaymentPaid
			updated.PaymentAccountID = input.PaymentAccountID
		}
		for i := range lines {
			lines[i].OrderID = original.ID
			if err := tx.InsertOrderLine(ctx, lines[i]); err != nil {
				return err
			}
		}
		if err := applyStockEffect(ctx, tx.Ledger(), updated, lines, 1); err != nil {
			return err
		}
		if input.Paid {
			if err := applyCashEffect(ctx, tx.Ledger(), updated, ledger.TxnOut,
				fmt.Sprintf("Pembelian %s (revisi)", updated.Number)); err != nil {
				return err
			}
		}
		return tx.UpdateOrder(ctx, updated)
	})
	if err != nil {
		return PurchaseOrder{}, err
	}

	updated.Lines = lines
	s.invalidate(ctx, "stock", "reports", "purchasing")
	return updated, nil
}

// MarkPaid settles an outstanding payable: the order flips to paid and the
// cash leaves the wallet in the same transaction.
func (s *Service) MarkPaid(ctx context.Context, id, accountID int64) (PurchaseOrder, error) {
	if accountID == 0 {
		return PurchaseOrder{}, ErrPaymentAccountRequired
	}
	var updated PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == OrderVoid {
			return ErrVoidOrder
		}
		if order.PaymentStatus == PaymentPaid {
			return ErrAlreadyPaid
		}
		order.PaymentStatus = PaymentPaid
		order.PaymentAccountID = accountID
		if err := applyCashEffect(ctx, tx.Ledger(), order, ledger.TxnOut,
			fmt.Sprintf("Pelunasan pembelian %s", order.Number)); err != nil {
			return err
		}
		updated = order
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.invalidate(ctx, "reports", "purchasing")
	return updated, nil
}

// GetOrder loads one purchase order with lines.
func (s *Service) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders lists purchase orders.
func (s *Service) ListOrders(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error) {
	return s.repo.ListOrders(ctx, filter)
}

func validateInput(warehouseID, supplierID int64, paid bool, accountID int64, lines []LineInput) error {
	if len(lines) == 0 {
		return ErrNoLines
	}
	if warehouseID == 0 {
		return ErrWarehouseRequired
	}
	if supplierID == 0 {
		return ErrSupplierRequired
	}
	if paid && accountID == 0 {
		return ErrPaymentAccountRequired
	}
	return nil
}

func (s *Service) resolveLines(ctx context.Context, inputs []LineInput) ([]OrderLine, float64, int64, error) {
	lines := make([]OrderLine, 0, len(inputs))
	var totalAmount float64
	var totalQty int64
	for _, in := range inputs {
		if in.VariantID == 0 || in.Qty <= 0 || in.UnitCost < 0 {
			return nil, 0, 0, ErrInvalidLine
		}
		variant, err := s.catalog.GetVariant(ctx, in.VariantID)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("purchasing: resolve variant %d: %w", in.VariantID, err)
		}
		unitCost := in.UnitCost
		if unitCost == 0 {
			unitCost = variant.Cost
		}
		subtotal := float64(in.Qty) * unitCost
		lines = append(lines, OrderLine{
			VariantID: variant.ID,
			SKU:       variant.SKU,
			Qty:       in.Qty,
			UnitCost:  unitCost,
			Subtotal:  subtotal,
		})
		totalAmount += subtotal
		totalQty += in.Qty
	}
	return lines, totalAmount, totalQty, nil
}

// applyStockEffect appends one inbound movement per line, scaled by sign.
// Sign -1 reverses a receipt by appending the offsetting movements.
func applyStockEffect(ctx context.Context, tx ledger.Tx, order PurchaseOrder, lines []OrderLine, sign int64) error {
	for _, line := range lines {
		_, _, err := ledger.ApplyStockMovement(ctx, tx, ledger.MovementInput{
			VariantID:   line.VariantID,
			WarehouseID: order.WarehouseID,
			Delta:       sign * line.Qty,
			Kind:        ledger.MovementPurchaseIn,
			RefType:     ledger.RefPurchaseOrder,
			RefID:       order.Number,
			Note:        line.SKU,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func applyCashEffect(ctx context.Context, tx ledger.Tx, order PurchaseOrder, txnType ledger.TxnType, description string) error {
	_, _, err := ledger.ApplyCashTransaction(ctx, tx, ledger.CashInput{
		AccountID:   order.PaymentAccountID,
		Type:        txnType,
		Amount:      order.TotalAmount,
		Date:        time.Now().UTC(),
		Description: description,
		RefType:     ledger.RefPurchaseOrder,
		RefID:       order.Number,
	})
	return err
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
