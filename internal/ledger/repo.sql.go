package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists both ledgers and their projections in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction. All
// snapshot and account balance writes go through here or through a workflow
// repository built on NewTx.
func (s *Store) WithTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	if s == nil {
		return errors.New("ledger store not initialised")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, NewTx(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// NewTx adapts an open pgx transaction to the ledger primitives so workflow
// repositories can compose document writes with ledger writes atomically.
func NewTx(tx pgx.Tx) Tx {
	return &txRepository{tx: tx}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) AppendMovement(ctx context.Context, movement Movement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_movements (variant_id, warehouse_id, quantity_delta, kind, ref_type, ref_id, note, posted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		movement.VariantID, movement.WarehouseID, movement.QuantityDelta, string(movement.Kind),
		string(movement.RefType), movement.RefID, movement.Note, movement.PostedAt).Scan(&id)
	return id, err
}

func (r *txRepository) GetSnapshotForUpdate(ctx context.Context, variantID, warehouseID int64) (Snapshot, error) {
	var snap Snapshot
	err := r.tx.QueryRow(ctx, `SELECT variant_id, warehouse_id, quantity, updated_at
FROM stock_snapshots WHERE variant_id=$1 AND warehouse_id=$2 FOR UPDATE`, variantID, warehouseID).
		Scan(&snap.VariantID, &snap.WarehouseID, &snap.Quantity, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{VariantID: variantID, WarehouseID: warehouseID}, ErrSnapshotNotFound
		}
		return Snapshot{}, err
	}
	return snap, nil
}

func (r *txRepository) UpsertSnapshot(ctx context.Context, snapshot Snapshot) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_snapshots (variant_id, warehouse_id, quantity, updated_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (variant_id, warehouse_id) DO UPDATE SET quantity=EXCLUDED.quantity, updated_at=NOW()`,
		snapshot.VariantID, snapshot.WarehouseID, snapshot.Quantity)
	return err
}

func (r *txRepository) AppendCashTransaction(ctx context.Context, txn CashTransaction) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO cash_transactions (account_id, category_account_id, txn_type, amount, pair_id, txn_date, description, ref_type, ref_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW()) RETURNING id`,
		txn.AccountID, nullInt(txn.CategoryAccountID), string(txn.Type), txn.Amount, nullString(txn.PairID),
		txn.Date, txn.Description, string(txn.RefType), txn.RefID).Scan(&id)
	return id, err
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, accountID int64) (CashAccount, error) {
	var account CashAccount
	err := r.tx.QueryRow(ctx, `SELECT id, code, name, balance, created_at, updated_at
FROM cash_accounts WHERE id=$1 FOR UPDATE`, accountID).
		Scan(&account.ID, &account.Code, &account.Name, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CashAccount{}, ErrAccountNotFound
		}
		return CashAccount{}, err
	}
	return account, nil
}

func (r *txRepository) UpdateAccountBalance(ctx context.Context, accountID int64, balance float64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE cash_accounts SET balance=$2, updated_at=NOW() WHERE id=$1`, accountID, balance)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ListMovements returns the stock card for a (variant, warehouse) pair.
func (s *Store) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx, `SELECT id, variant_id, warehouse_id, quantity_delta, kind, ref_type, ref_id, note, posted_at
FROM stock_movements
WHERE ($1=0 OR variant_id=$1) AND ($2=0 OR warehouse_id=$2)
  AND posted_at BETWEEN COALESCE(NULLIF($3, '0001-01-01'::timestamptz), '-infinity') AND COALESCE(NULLIF($4, '0001-01-01'::timestamptz), 'infinity')
ORDER BY posted_at ASC, id ASC
LIMIT $5`, filter.VariantID, filter.WarehouseID, filter.From, filter.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.VariantID, &m.WarehouseID, &m.QuantityDelta, &m.Kind, &m.RefType, &m.RefID, &m.Note, &m.PostedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ListSnapshots returns snapshot rows, optionally scoped to one warehouse.
func (s *Store) ListSnapshots(ctx context.Context, warehouseID int64) ([]Snapshot, error) {
	rows, err := s.pool.Query(ctx, `SELECT variant_id, warehouse_id, quantity, updated_at
FROM stock_snapshots WHERE ($1=0 OR warehouse_id=$1)
ORDER BY warehouse_id, variant_id`, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	snapshots := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.VariantID, &snap.WarehouseID, &snap.Quantity, &snap.UpdatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// SumMovements re-derives the quantity for a pair from the movement log.
func (s *Store) SumMovements(ctx context.Context, variantID, warehouseID int64) (int64, error) {
	var sum int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity_delta), 0) FROM stock_movements
WHERE variant_id=$1 AND warehouse_id=$2`, variantID, warehouseID).Scan(&sum)
	return sum, err
}

// ListCashTransactions returns cash ledger entries for an account.
func (s *Store) ListCashTransactions(ctx context.Context, filter CashFilter) ([]CashTransaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx, `SELECT id, account_id, COALESCE(category_account_id, 0), txn_type, amount, COALESCE(pair_id, ''), txn_date, description, ref_type, ref_id, created_at
FROM cash_transactions
WHERE ($1=0 OR account_id=$1)
  AND txn_date BETWEEN COALESCE(NULLIF($2, '0001-01-01'::timestamptz), '-infinity') AND COALESCE(NULLIF($3, '0001-01-01'::timestamptz), 'infinity')
ORDER BY txn_date ASC, id ASC
LIMIT $4`, filter.AccountID, filter.From, filter.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	txns := []CashTransaction{}
	for rows.Next() {
		var t CashTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryAccountID, &t.Type, &t.Amount, &t.PairID, &t.Date, &t.Description, &t.RefType, &t.RefID, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// SumCashTransactions re-derives an account balance from the cash ledger.
func (s *Store) SumCashTransactions(ctx context.Context, accountID int64) (float64, error) {
	var sum float64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(CASE WHEN txn_type IN ('in','transfer_in') THEN amount ELSE -amount END), 0)
FROM cash_transactions WHERE account_id=$1`, accountID).Scan(&sum)
	return sum, err
}

// StockDrift reports a snapshot that disagrees with its movement log.
type StockDrift struct {
	VariantID   int64
	WarehouseID int64
	SnapshotQty int64
	LedgerQty   int64
}

// CashDrift reports an account balance that disagrees with its cash ledger.
type CashDrift struct {
	AccountID int64
	Code      string
	Balance   float64
	LedgerSum float64
}

// CheckStockIntegrity compares every snapshot against the summed movement log
// in one server-side aggregation. An empty result means invariant holds.
func (s *Store) CheckStockIntegrity(ctx context.Context) ([]StockDrift, error) {
	rows, err := s.pool.Query(ctx, `SELECT snap.variant_id, snap.warehouse_id, snap.quantity, COALESCE(mv.total, 0)
FROM stock_snapshots snap
LEFT JOIN (
    SELECT variant_id, warehouse_id, SUM(quantity_delta) AS total
    FROM stock_movements GROUP BY variant_id, warehouse_id
) mv ON mv.variant_id=snap.variant_id AND mv.warehouse_id=snap.warehouse_id
WHERE snap.quantity <> COALESCE(mv.total, 0)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	drifts := []StockDrift{}
	for rows.Next() {
		var d StockDrift
		if err := rows.Scan(&d.VariantID, &d.WarehouseID, &d.SnapshotQty, &d.LedgerQty); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}

// CheckCashIntegrity compares every account balance against the summed ledger.
func (s *Store) CheckCashIntegrity(ctx context.Context) ([]CashDrift, error) {
	rows, err := s.pool.Query(ctx, `SELECT acc.id, acc.code, acc.balance, COALESCE(txn.total, 0)
FROM cash_accounts acc
LEFT JOIN (
    SELECT account_id, SUM(CASE WHEN txn_type IN ('in','transfer_in') THEN amount ELSE -amount END) AS total
    FROM cash_transactions GROUP BY account_id
) txn ON txn.account_id=acc.id
WHERE acc.balance <> COALESCE(txn.total, 0)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	drifts := []CashDrift{}
	for rows.Next() {
		var d CashDrift
		if err := rows.Scan(&d.AccountID, &d.Code, &d.Balance, &d.LedgerSum); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
