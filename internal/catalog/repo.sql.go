package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gerai-erp/gerai/internal/platform/db"
)

// Repository persists catalog masterdata in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateProduct(ctx context.Context, product Product) (Product, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO products (name, is_active, created_at, updated_at)
VALUES ($1,$2,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		product.Name, product.IsActive).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	return product, err
}

func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, is_active, created_at, updated_at FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) CreateVariant(ctx context.Context, variant Variant) (Variant, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO product_variants (product_id, sku, name, cost, price, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		variant.ProductID, variant.SKU, variant.Name, variant.Cost, variant.Price, variant.IsActive).
		Scan(&variant.ID, &variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Variant{}, ErrDuplicateSKU
		}
		return Variant{}, err
	}
	return variant, nil
}

func (r *Repository) UpdateVariant(ctx context.Context, variant Variant) error {
	tag, err := r.pool.Exec(ctx, `UPDATE product_variants SET sku=$2, name=$3, cost=$4, price=$5, is_active=$6, updated_at=NOW()
WHERE id=$1`, variant.ID, variant.SKU, variant.Name, variant.Cost, variant.Price, variant.IsActive)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateSKU
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetVariant(ctx context.Context, id int64) (Variant, error) {
	var v Variant
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, sku, name, cost, price, is_active, created_at, updated_at
FROM product_variants WHERE id=$1`, id).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Cost, &v.Price, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, ErrNotFound
		}
		return Variant{}, err
	}
	return v, nil
}

func (r *Repository) GetVariantBySKU(ctx context.Context, sku string) (Variant, error) {
	var v Variant
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, sku, name, cost, price, is_active, created_at, updated_at
FROM product_variants WHERE sku=$1`, sku).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Cost, &v.Price, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, ErrNotFound
		}
		return Variant{}, err
	}
	return v, nil
}

func (r *Repository) ListVariants(ctx context.Context, productID int64) ([]Variant, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, sku, name, cost, price, is_active, created_at, updated_at
FROM product_variants WHERE ($1=0 OR product_id=$1) ORDER BY sku`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	variants := []Variant{}
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Cost, &v.Price, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *Repository) CreateWarehouse(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO warehouses (name, kind, supplier_id, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		warehouse.Name, string(warehouse.Kind), nullInt(warehouse.SupplierID)).
		Scan(&warehouse.ID, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	return warehouse, err
}

func (r *Repository) GetWarehouse(ctx context.Context, id int64) (Warehouse, error) {
	var w Warehouse
	var supplierID *int64
	err := r.pool.QueryRow(ctx, `SELECT id, name, kind, supplier_id, created_at, updated_at
FROM warehouses WHERE id=$1`, id).
		Scan(&w.ID, &w.Name, &w.Kind, &supplierID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, ErrNotFound
		}
		return Warehouse{}, err
	}
	if supplierID != nil {
		w.SupplierID = *supplierID
	}
	return w, nil
}

func (r *Repository) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, kind, supplier_id, created_at, updated_at FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	warehouses := []Warehouse{}
	for rows.Next() {
		var w Warehouse
		var supplierID *int64
		if err := rows.Scan(&w.ID, &w.Name, &w.Kind, &supplierID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		if supplierID != nil {
			w.SupplierID = *supplierID
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (r *Repository) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (name, phone, address, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		supplier.Name, supplier.Phone, supplier.Address).
		Scan(&supplier.ID, &supplier.CreatedAt, &supplier.UpdatedAt)
	return supplier, err
}

func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, address, created_at, updated_at FROM suppliers WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, address, created_at, updated_at FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	suppliers := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *Repository) CreateCustomer(ctx context.Context, customer Customer) (Customer, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (name, phone, created_at, updated_at)
VALUES ($1,$2,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		customer.Name, customer.Phone).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	return customer, err
}

func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, created_at, updated_at FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
