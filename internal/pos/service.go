package pos

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
	GetOrder(ctx context.Context, id int64) (SalesOrder, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]SalesOrder, error)
}

// TxRepository exposes the writes available inside one checkout transaction.
// Ledger returns primitives bound to the same database transaction, so the
// order document, its stock movements and the cash entry commit or roll back
// together.
type TxRepository interface {
	InsertOrder(ctx context.Context, order SalesOrder) (int64, error)
	InsertOrderLine(ctx context.Context, line OrderLine) error
	Ledger() ledger.Tx
}

// CatalogPort resolves variants at checkout time.
type CatalogPort interface {
	GetVariant(ctx context.Context, id int64) (catalog.Variant, error)
}

// CachePort invalidates read-side caches after committed writes.
type CachePort interface {
	Invalidate(ctx context.Context, module string) error
}

// Service runs the point-of-sale checkout workflow.
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

// Checkout validates the cart and commits the sale, its stock movements and
// the optional payment in one atomic transaction. On failure nothing is
// persisted and the caller may retry with the same cart. Oversell is allowed:
// a snapshot may go negative and the sale still commits.
func (s *Service) Checkout(ctx context.Context, input CartInput) (Receipt, error) {
	if len(input.Lines) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if input.WarehouseID == 0 {
		return Receipt{}, ErrWarehouseRequired
	}
	if input.Paid && input.PaymentAccountID == 0 {
		return Receipt{}, ErrPaymentAccountRequired
	}

	lines := make([]OrderLine, 0, len(input.Lines))
	var gross, totalCost float64
	for _, cartLine := range input.Lines {
		if cartLine.VariantID == 0 || cartLine.Qty <= 0 {
			return Receipt{}, ErrInvalidLine
		}
		variant, err := s.catalog.GetVariant(ctx, cartLine.VariantID)
		if err != nil {
			return Receipt{}, fmt.Errorf("pos: resolve variant %d: %w", cartLine.VariantID, err)
		}
		subtotal := float64(cartLine.Qty) * variant.Price
		lines = append(lines, OrderLine{
			VariantID: variant.ID,
			SKU:       variant.SKU,
			Name:      variant.Name,
			Qty:       cartLine.Qty,
			Price:     variant.Price,
			Cost:      variant.Cost,
			Subtotal:  subtotal,
		})
		gross += subtotal
		totalCost += float64(cartLine.Qty) * variant.Cost
	}
	if input.Discount < 0 || input.Discount > gross {
		return Receipt{}, ErrNegativeDiscount
	}
	net := gross - input.Discount

	now := time.Now().UTC()
	order := SalesOrder{
		Number:        fmt.Sprintf("POS-%d", now.UnixNano()),
		CustomerID:    input.CustomerID,
		WarehouseID:   input.WarehouseID,
		OrderDate:     now,
		GrossAmount:   gross,
		Discount:      input.Discount,
		NetAmount:     net,
		TotalCost:     totalCost,
		PaymentStatus: PaymentUnpaid,
		Status:        OrderCompleted,
	}
	if input.Paid {
		order.PaymentStatus = PaymentPaid
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
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
			_, _, err := ledger.ApplyStockMovement(ctx, tx.Ledger(), ledger.MovementInput{
				VariantID:   lines[i].VariantID,
				WarehouseID: input.WarehouseID,
				Delta:       -lines[i].Qty,
				Kind:        ledger.MovementSaleOut,
				RefType:     ledger.RefSalesOrder,
				RefID:       order.Number,
				Note:        lines[i].SKU,
			})
			if err != nil {
				return err
			}
		}
		if input.Paid {
			_, _, err := ledger.ApplyCashTransaction(ctx, tx.Ledger(), ledger.CashInput{
				AccountID:   input.PaymentAccountID,
				Type:        ledger.TxnIn,
				Amount:      net,
				Date:        now,
				Description: fmt.Sprintf("Penjualan %s", order.Number),
				RefType:     ledger.RefSalesOrder,
				RefID:       order.Number,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	order.Lines = lines
	s.invalidate(ctx, "stock", "reports", "pos")
	return buildReceipt(order), nil
}

// GetOrder loads one sales order with lines.
func (s *Service) GetOrder(ctx context.Context, id int64) (SalesOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders lists committed sales orders.
func (s *Service) ListOrders(ctx context.Context, filter OrderFilter) ([]SalesOrder, error) {
	return s.repo.ListOrders(ctx, filter)
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
