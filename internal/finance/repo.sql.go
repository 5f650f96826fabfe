package finance

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/platform/db"
)

// Repository persists wallets, chart-of-accounts rows and collections in
// PostgreSQL.
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
		return errors.New("finance repository not initialised")
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

// CreateCashAccount inserts a wallet with a zero opening balance.
func (r *Repository) CreateCashAccount(ctx context.Context, account ledger.CashAccount) (ledger.CashAccount, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO cash_accounts (code, name, balance, created_at, updated_at)
VALUES ($1,$2,0,NOW(),NOW()) RETURNING id, balance, created_at, updated_at`,
		account.Code, account.Name).
		Scan(&account.ID, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ledger.CashAccount{}, ErrDuplicateCode
		}
		return ledger.CashAccount{}, err
	}
	return account, nil
}

// GetCashAccount loads one wallet.
func (r *Repository) GetCashAccount(ctx context.Context, id int64) (ledger.CashAccount, error) {
	var account ledger.CashAccount
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, balance, created_at, updated_at
FROM cash_accounts WHERE id=$1`, id).
		Scan(&account.ID, &account.Code, &account.Name, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.CashAccount{}, ErrNotFound
	}
	return account, err
}

// ListCashAccounts lists wallets by code.
func (r *Repository) ListCashAccounts(ctx context.Context) ([]ledger.CashAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name, balance, created_at, updated_at
FROM cash_accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	accounts := []ledger.CashAccount{}
	for rows.Next() {
		var account ledger.CashAccount
		if err := rows.Scan(&account.ID, &account.Code, &account.Name, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// CreateChartOfAccount inserts a reporting category.
func (r *Repository) CreateChartOfAccount(ctx context.Context, coa ChartOfAccount) (ChartOfAccount, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO chart_of_accounts (code, name, category, created_at)
VALUES ($1,$2,$3,NOW()) RETURNING id, created_at`,
		coa.Code, coa.Name, string(coa.Category)).
		Scan(&coa.ID, &coa.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ChartOfAccount{}, ErrDuplicateCode
		}
		return ChartOfAccount{}, err
	}
	return coa, nil
}

// ListChartOfAccounts lists reporting categories, optionally filtered.
func (r *Repository) ListChartOfAccounts(ctx context.Context, category AccountCategory) ([]ChartOfAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name, category, created_at
FROM chart_of_accounts
WHERE ($1='' OR category=$1)
ORDER BY code`, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []ChartOfAccount{}
	for rows.Next() {
		var coa ChartOfAccount
		if err := rows.Scan(&coa.ID, &coa.Code, &coa.Name, &coa.Category, &coa.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, coa)
	}
	return list, rows.Err()
}

// UpdateChartOfAccount renames or recategorizes a reporting category.
func (r *Repository) UpdateChartOfAccount(ctx context.Context, coa ChartOfAccount) error {
	tag, err := r.pool.Exec(ctx, `UPDATE chart_of_accounts SET name=$2, category=$3 WHERE id=$1`,
		coa.ID, coa.Name, string(coa.Category))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChartOfAccount removes a reporting category.
func (r *Repository) DeleteChartOfAccount(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chart_of_accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReceivables lists unpaid, non-void sales orders.
func (r *Repository) ListReceivables(ctx context.Context) ([]ReceivableDue, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, COALESCE(customer_id, 0), net_amount, order_date
FROM sales_orders
WHERE payment_status='unpaid' AND status<>'void'
ORDER BY order_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dues := []ReceivableDue{}
	for rows.Next() {
		var due ReceivableDue
		if err := rows.Scan(&due.OrderID, &due.Number, &due.CustomerID, &due.NetAmount, &due.OrderDate); err != nil {
			return nil, err
		}
		dues = append(dues, due)
	}
	return dues, rows.Err()
}

// GetReceivableForUpdate locks an unpaid sales order for collection.
func (r *txRepository) GetReceivableForUpdate(ctx context.Context, orderID int64) (ReceivableDue, error) {
	var due ReceivableDue
	var paymentStatus string
	err := r.tx.QueryRow(ctx, `SELECT id, number, COALESCE(customer_id, 0), net_amount, order_date, payment_status
FROM sales_orders WHERE id=$1 FOR UPDATE`, orderID).
		Scan(&due.OrderID, &due.Number, &due.CustomerID, &due.NetAmount, &due.OrderDate, &paymentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReceivableDue{}, ErrOrderNotFound
		}
		return ReceivableDue{}, err
	}
	if paymentStatus == "paid" {
		return ReceivableDue{}, ErrOrderAlreadyPaid
	}
	return due, nil
}

func (r *txRepository) MarkSalesOrderPaid(ctx context.Context, orderID int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE sales_orders SET payment_status='paid' WHERE id=$1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *txRepository) Ledger() ledger.Tx {
	return ledger.NewTx(r.tx)
}
