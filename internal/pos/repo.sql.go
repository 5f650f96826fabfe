package pos

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gerai-erp/gerai/internal/ledger"
)

// Repository persists sales orders in PostgreSQL.
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
		return errors.New("pos repository not initialised")
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

func (r *txRepository) InsertOrder(ctx context.Context, order SalesOrder) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales_orders (number, customer_id, warehouse_id, order_date, gross_amount, discount, net_amount, total_cost, payment_status, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW()) RETURNING id`,
		order.Number, nullInt(order.CustomerID), order.WarehouseID, order.OrderDate, order.GrossAmount,
		order.Discount, order.NetAmount, order.TotalCost, string(order.PaymentStatus), string(order.Status)).Scan(&id)
	return id, err
}

func (r *txRepository) InsertOrderLine(ctx context.Context, line OrderLine) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO sales_order_lines (order_id, variant_id, sku, name, qty, price, cost, subtotal)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		line.OrderID, line.VariantID, line.SKU, line.Name, line.Qty, line.Price, line.Cost, line.Subtotal)
	return err
}

func (r *txRepository) Ledger() ledger.Tx {
	return ledger.NewTx(r.tx)
}

// GetOrder loads a sales order with lines.
func (r *Repository) GetOrder(ctx context.Context, id int64) (SalesOrder, error) {
	var order SalesOrder
	var customerID *int64
	err := r.pool.QueryRow(ctx, `SELECT id, number, customer_id, warehouse_id, order_date, gross_amount, discount, net_amount, total_cost, payment_status, status, created_at
FROM sales_orders WHERE id=$1`, id).
		Scan(&order.ID, &order.Number, &customerID, &order.WarehouseID, &order.OrderDate, &order.GrossAmount,
			&order.Discount, &order.NetAmount, &order.TotalCost, &order.PaymentStatus, &order.Status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalesOrder{}, ErrNotFound
		}
		return SalesOrder{}, err
	}
	if customerID != nil {
		order.CustomerID = *customerID
	}
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, variant_id, sku, name, qty, price, cost, subtotal
FROM sales_order_lines WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return SalesOrder{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.VariantID, &line.SKU, &line.Name, &line.Qty, &line.Price, &line.Cost, &line.Subtotal); err != nil {
			return SalesOrder{}, err
		}
		order.Lines = append(order.Lines, line)
	}
	return order, rows.Err()
}

// ListOrders lists sales orders, newest first.
func (r *Repository) ListOrders(ctx context.Context, filter OrderFilter) ([]SalesOrder, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT id, number, customer_id, warehouse_id, order_date, gross_amount, discount, net_amount, total_cost, payment_status, status, created_at
FROM sales_orders
WHERE ($1='' OR payment_status=$1)
  AND order_date BETWEEN COALESCE(NULLIF($2, '0001-01-01'::timestamptz), '-infinity') AND COALESCE(NULLIF($3, '0001-01-01'::timestamptz), 'infinity')
ORDER BY order_date DESC, id DESC
LIMIT $4`, string(filter.PaymentStatus), filter.From, filter.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []SalesOrder{}
	for rows.Next() {
		var order SalesOrder
		var customerID *int64
		if err := rows.Scan(&order.ID, &order.Number, &customerID, &order.WarehouseID, &order.OrderDate, &order.GrossAmount,
			&order.Discount, &order.NetAmount, &order.TotalCost, &order.PaymentStatus, &order.Status, &order.CreatedAt); err != nil {
			return nil, err
		}
		if customerID != nil {
			order.CustomerID = *customerID
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
