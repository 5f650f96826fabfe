// Seed loads a small demo dataset: a coffee-shop catalog, two warehouses
// (one physical, one virtual supplier page), wallets and a minimal chart of
// accounts. Intended for local development only.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"

	"github.com/gerai-erp/gerai/internal/app"
	"github.com/gerai-erp/gerai/internal/platform/db"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var productID int64
		if err := tx.QueryRow(ctx, `INSERT INTO products (name) VALUES ('Minuman') RETURNING id`).Scan(&productID); err != nil {
			return err
		}
		for _, v := range []struct {
			sku   string
			name  string
			cost  float64
			price float64
		}{
			{"KP-01", "Kopi Susu", 6000, 10000},
			{"TH-01", "Teh Manis", 2000, 5000},
			{"AR-01", "Air Mineral", 1500, 4000},
		} {
			if _, err := tx.Exec(ctx, `INSERT INTO product_variants (product_id, sku, name, cost, price)
VALUES ($1,$2,$3,$4,$5) ON CONFLICT (sku) DO NOTHING`, productID, v.sku, v.name, v.cost, v.price); err != nil {
				return err
			}
		}

		var supplierID int64
		if err := tx.QueryRow(ctx, `INSERT INTO suppliers (name, phone) VALUES ('CV Sumber Kopi', '0812000111') RETURNING id`).Scan(&supplierID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO warehouses (name, kind) VALUES ('Toko Pusat', 'physical')`); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO warehouses (name, kind, supplier_id) VALUES ('Halaman CV Sumber Kopi', 'virtual_supplier', $1)`, supplierID); err != nil {
			return err
		}

		for _, a := range []struct{ code, name string }{
			{"KAS", "Kas Toko"},
			{"BANK", "Bank Utama"},
		} {
			if _, err := tx.Exec(ctx, `INSERT INTO cash_accounts (code, name) VALUES ($1,$2) ON CONFLICT (code) DO NOTHING`, a.code, a.name); err != nil {
				return err
			}
		}

		for _, c := range []struct{ code, name, category string }{
			{"4-100", "Penjualan", "revenue"},
			{"4-200", "Pendapatan Lain", "revenue"},
			{"5-100", "Beban Listrik", "expense"},
			{"5-200", "Beban Sewa", "expense"},
		} {
			if _, err := tx.Exec(ctx, `INSERT INTO chart_of_accounts (code, name, category) VALUES ($1,$2,$3) ON CONFLICT (code) DO NOTHING`, c.code, c.name, c.category); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("seed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seed complete")
}
