// Package importer maps spreadsheet rows onto the same entry points the
// interactive API uses, so imported data obeys every workflow rule.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gerai-erp/gerai/internal/catalog"
	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/purchasing"
)

// OpnamePort records stock counts.
type OpnamePort interface {
	Opname(ctx context.Context, input ledger.AdjustmentInput) (ledger.Movement, ledger.Snapshot, error)
}

// PurchasePort receives purchase orders.
type PurchasePort interface {
	Create(ctx context.Context, input purchasing.CreateInput) (purchasing.PurchaseOrder, error)
}

// CatalogPort resolves SKUs from the spreadsheet to variants.
type CatalogPort interface {
	GetVariantBySKU(ctx context.Context, sku string) (catalog.Variant, error)
}

// RowError records one rejected row. The batch continues past it.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary is the outcome of one import batch.
type Summary struct {
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors,omitempty"`
}

// ErrEmptySheet indicates a spreadsheet without data rows.
var ErrEmptySheet = errors.New("importer: sheet has no data rows")

// Service runs spreadsheet imports.
type Service struct {
	opname    OpnamePort
	purchases PurchasePort
	catalog   CatalogPort
	logger    *slog.Logger
}

// NewService builds Service.
func NewService(opname OpnamePort, purchases PurchasePort, catalog CatalogPort, logger *slog.Logger) *Service {
	return &Service{opname: opname, purchases: purchases, catalog: catalog, logger: logger}
}

// ImportOpname reads rows of (sku, warehouse_id, real_qty) and records one
// stock count per row. A bad row is logged and skipped; the rest of the batch
// continues.
func (s *Service) ImportOpname(ctx context.Context, reader io.Reader) (Summary, error) {
	rows, err := dataRows(reader)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(rows)}
	for i, row := range rows {
		rowNum := i + 2 // 1-based, after the header
		if err := s.importOpnameRow(ctx, row, rowNum); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Row: rowNum, Message: err.Error()})
			s.warn("opname import row", rowNum, err)
			continue
		}
		summary.Succeeded++
	}
	return summary, nil
}

func (s *Service) importOpnameRow(ctx context.Context, row []string, rowNum int) error {
	if len(row) < 3 {
		return errors.New("expected columns: sku, warehouse_id, real_qty")
	}
	variant, err := s.catalog.GetVariantBySKU(ctx, strings.TrimSpace(row[0]))
	if err != nil {
		return fmt.Errorf("sku %q: %w", row[0], err)
	}
	warehouseID, err := parseInt(row[1], "warehouse_id")
	if err != nil {
		return err
	}
	realQty, err := parseInt(row[2], "real_qty")
	if err != nil {
		return err
	}
	_, _, err = s.opname.Opname(ctx, ledger.AdjustmentInput{
		VariantID:   variant.ID,
		WarehouseID: warehouseID,
		RealQty:     realQty,
		RefID:       fmt.Sprintf("import-row-%d", rowNum),
		Note:        variant.SKU,
	})
	// A matching count is already correct, not a failure.
	if errors.Is(err, ledger.ErrZeroDelta) {
		return nil
	}
	return err
}

// ImportPurchases reads rows of (supplier_id, warehouse_id, sku, qty,
// unit_cost) and receives one purchase order per (supplier, warehouse) group.
// Rows that fail to parse are skipped; a group whose order is rejected fails
// as a whole.
func (s *Service) ImportPurchases(ctx context.Context, reader io.Reader) (Summary, error) {
	rows, err := dataRows(reader)
	if err != nil {
		return Summary{}, err
	}

	type groupedLine struct {
		rowNum int
		line   purchasing.LineInput
	}

	summary := Summary{Total: len(rows)}
	groups := map[purchaseKey][]groupedLine{}
	var order []purchaseKey
	for i, row := range rows {
		rowNum := i + 2
		key, line, err := s.parsePurchaseRow(ctx, row)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Row: rowNum, Message: err.Error()})
			s.warn("purchase import row", rowNum, err)
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], groupedLine{rowNum: rowNum, line: line})
	}

	for _, key := range order {
		lines := groups[key]
		input := purchasing.CreateInput{
			SupplierID:  key.supplierID,
			WarehouseID: key.warehouseID,
		}
		for _, gl := range lines {
			input.Lines = append(input.Lines, gl.line)
		}
		if _, err := s.purchases.Create(ctx, input); err != nil {
			for _, gl := range lines {
				summary.Failed++
				summary.Errors = append(summary.Errors, RowError{Row: gl.rowNum, Message: err.Error()})
			}
			s.warn("purchase import group", lines[0].rowNum, err)
			continue
		}
		summary.Succeeded += len(lines)
	}
	return summary, nil
}

// purchaseKey groups purchase rows destined for the same order.
type purchaseKey struct {
	supplierID  int64
	warehouseID int64
}

func (s *Service) parsePurchaseRow(ctx context.Context, row []string) (purchaseKey, purchasing.LineInput, error) {
	var key purchaseKey
	if len(row) < 4 {
		return key, purchasing.LineInput{}, errors.New("expected columns: supplier_id, warehouse_id, sku, qty, unit_cost")
	}
	var err error
	if key.supplierID, err = parseInt(row[0], "supplier_id"); err != nil {
		return key, purchasing.LineInput{}, err
	}
	if key.warehouseID, err = parseInt(row[1], "warehouse_id"); err != nil {
		return key, purchasing.LineInput{}, err
	}
	variant, err := s.catalog.GetVariantBySKU(ctx, strings.TrimSpace(row[2]))
	if err != nil {
		return key, purchasing.LineInput{}, fmt.Errorf("sku %q: %w", row[2], err)
	}
	qty, err := parseInt(row[3], "qty")
	if err != nil {
		return key, purchasing.LineInput{}, err
	}
	line := purchasing.LineInput{VariantID: variant.ID, Qty: qty}
	if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
		if line.UnitCost, err = strconv.ParseFloat(strings.TrimSpace(row[4]), 64); err != nil {
			return key, purchasing.LineInput{}, fmt.Errorf("unit_cost %q: not a number", row[4])
		}
	}
	return key, line, nil
}

// dataRows opens the workbook and returns the first sheet's rows minus the
// header.
func dataRows(reader io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importer: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) <= 1 {
		return nil, ErrEmptySheet
	}
	return rows[1:], nil
}

func parseInt(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: not a number", field, raw)
	}
	return value, nil
}

func (s *Service) warn(msg string, row int, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Int("row", row), slog.Any("error", err))
	}
}
