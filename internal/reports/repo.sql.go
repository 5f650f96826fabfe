package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gerai-erp/gerai/internal/finance"
)

// Repository runs the aggregation queries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CashTotal sums the materialized wallet balances.
func (r *Repository) CashTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM cash_accounts`).Scan(&total)
	return total, err
}

// InventoryValue values every snapshot at the variant's current cost.
// Negative snapshots reduce the total, which keeps oversell visible on the
// balance sheet.
func (r *Repository) InventoryValue(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(s.quantity * v.cost), 0)
FROM stock_snapshots s
JOIN product_variants v ON v.id = s.variant_id`).Scan(&total)
	return total, err
}

// ReceivablesTotal sums unpaid, non-void sales orders.
func (r *Repository) ReceivablesTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(net_amount), 0)
FROM sales_orders WHERE payment_status='unpaid' AND status<>'void'`).Scan(&total)
	return total, err
}

// PayablesTotal sums unpaid, non-void purchase orders.
func (r *Repository) PayablesTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0)
FROM purchase_orders WHERE payment_status='unpaid' AND status<>'void'`).Scan(&total)
	return total, err
}

// SalesTotals aggregates committed sales for the period.
func (r *Repository) SalesTotals(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	summary := SalesSummary{From: from, To: to}
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(gross_amount), 0), COALESCE(SUM(discount), 0), COALESCE(SUM(net_amount), 0)
FROM sales_orders
WHERE status<>'void' AND order_date BETWEEN $1 AND $2`, from, to).
		Scan(&summary.OrderCount, &summary.Gross, &summary.Discount, &summary.Net)
	return summary, err
}

// SalesCOGS sums the cost captured on committed sales for the period.
func (r *Repository) SalesCOGS(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_cost), 0)
FROM sales_orders
WHERE status<>'void' AND order_date BETWEEN $1 AND $2`, from, to).Scan(&total)
	return total, err
}

// JournalTotalsByCategory groups manual journal entries by their
// chart-of-accounts category for the period.
func (r *Repository) JournalTotalsByCategory(ctx context.Context, from, to time.Time, category finance.AccountCategory) ([]AccountAmount, error) {
	rows, err := r.pool.Query(ctx, `SELECT c.code, c.name, COALESCE(SUM(t.amount), 0)
FROM cash_transactions t
JOIN chart_of_accounts c ON c.id = t.category_account_id
WHERE t.ref_type='manual_journal'
  AND c.category=$1
  AND t.txn_date BETWEEN $2 AND $3
GROUP BY c.code, c.name
ORDER BY c.code`, string(category), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := []AccountAmount{}
	for rows.Next() {
		var line AccountAmount
		if err := rows.Scan(&line.Code, &line.Name, &line.Amount); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
