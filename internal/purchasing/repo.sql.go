package purchasing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gerai-erp/gerai/internal/ledger"
)

// Repository persists purchase orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction shared
// with the ledger primitives.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("purchasing repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *txRepository) InsertOrder(ctx context.Context, order PurchaseOrder) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_orders (number, supplier_id, warehouse_id, order_date, total_amount, total_qty, payment_status, payment_account_id, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW()) RETURNING id`,
		order.Number, order.SupplierID, order.WarehouseID, order.OrderDate, order.TotalAmount,
		order.TotalQty, string(order.PaymentStatus), nullInt(order.PaymentAccountID), string(order.Status)).Scan(&id)
	return id, err
}

func (r *txRepository) InsertOrderLine(ctx context.Context, line OrderLine) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO purchase_order_lines (order_id, variant_id, sku, qty, unit_cost, subtotal)
VALUES ($1,$2,$3,$4,$5,$6)`,
		line.OrderID, line.VariantID, line.SKU, line.Qty, line.UnitCost, line.Subtotal)
	return err
}

// GetOrderForUpdate locks the order row and loads it with its lines so a
// revision reverses exactly what is committed.
func (r *txRepository) GetOrderForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	var order PurchaseOrder
	var accountID *int64
	err := r.tx.QueryRow(ctx, `SELECT id, number, supplier_id, warehouse_id, order_date, total_amount, total_qty, payment_status, payment_account_id, status, created_at, updated_at
FROM purchase_orders WHERE id=$1 FOR UPDATE`, id).
		Scan(&order.ID, &order.Number, &order.SupplierID, &order.WarehouseID, &order.OrderDate, &order.TotalAmount,
			&order.TotalQty, &order.PaymentStatus, &accountID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, ErrNotFound
		}
		return PurchaseOrder{}, err
	}
	if accountID != nil {
		order.PaymentAccountID = *accountID
	}
	lines, err := scanLines(ctx, r.tx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	order.Lines = lines
	return order, nil
}

func (r *txRepository) DeleteOrderLines(ctx context.Context, orderID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM purchase_order_lines WHERE order_id=$1`, orderID)
	return err
}

func (r *txRepository) UpdateOrder(ctx context.Context, order PurchaseOrder) error {
	_, err := r.tx.Exec(ctx, `UPDATE purchase_orders
SET total_amount=$2, total_qty=$3, payment_status=$4, payment_account_id=$5, status=$6, updated_at=NOW()
WHERE id=$1`,
		order.ID, order.TotalAmount, order.TotalQty, string(order.PaymentStatus),
		nullInt(order.PaymentAccountID), string(order.Status))
	return err
}

func (r *txRepository) Ledger() ledger.Tx {
	return ledger.NewTx(r.tx)
}

// GetOrder loads a purchase order with lines.
func (r *Repository) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	var order PurchaseOrder
	var accountID *int64
	err := r.pool.QueryRow(ctx, `SELECT id, number, supplier_id, warehouse_id, order_date, total_amount, total_qty, payment_status, payment_account_id, status, created_at, updated_at
FROM purchase_orders WHERE id=$1`, id).
		Scan(&order.ID, &order.Number, &order.SupplierID, &order.WarehouseID, &order.OrderDate, &order.TotalAmount,
			&order.TotalQty, &order.PaymentStatus, &accountID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, ErrNotFound
		}
		return PurchaseOrder{}, err
	}
	if accountID != nil {
		order.PaymentAccountID = *accountID
	}
	lines, err := scanLines(ctx, r.pool, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	order.Lines = lines
	return order, nil
}

// ListOrders lists purchase orders, newest first.
func (r *Repository) ListOrders(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT id, number, supplier_id, warehouse_id, order_date, total_amount, total_qty, payment_status, payment_account_id, status, created_at, updated_at
FROM purchase_orders
WHERE ($1=0 OR supplier_id=$1)
  AND ($2='' OR payment_status=$2)
ORDER BY order_date DESC, id DESC
LIMIT $3`, filter.SupplierID, string(filter.PaymentStatus), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []PurchaseOrder{}
	for rows.Next() {
		var order PurchaseOrder
		var accountID *int64
		if err := rows.Scan(&order.ID, &order.Number, &order.SupplierID, &order.WarehouseID, &order.OrderDate, &order.TotalAmount,
			&order.TotalQty, &order.PaymentStatus, &accountID, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		if accountID != nil {
			order.PaymentAccountID = *accountID
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanLines(ctx context.Context, q querier, orderID int64) ([]OrderLine, error) {
	rows, err := q.Query(ctx, `SELECT id, order_id, variant_id, sku, qty, unit_cost, subtotal
FROM purchase_order_lines WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []OrderLine
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.VariantID, &line.SKU, &line.Qty, &line.UnitCost, &line.Subtotal); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
