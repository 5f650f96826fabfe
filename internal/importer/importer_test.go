package importer

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gerai-erp/gerai/internal/catalog"
	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/purchasing"
)

type fakeOpname struct {
	inputs []ledger.AdjustmentInput
}

func (f *fakeOpname) Opname(_ context.Context, input ledger.AdjustmentInput) (ledger.Movement, ledger.Snapshot, error) {
	f.inputs = append(f.inputs, input)
	return ledger.Movement{}, ledger.Snapshot{Quantity: input.RealQty}, nil
}

type fakePurchases struct {
	inputs []purchasing.CreateInput
	fail   error
}

func (f *fakePurchases) Create(_ context.Context, input purchasing.CreateInput) (purchasing.PurchaseOrder, error) {
	if f.fail != nil {
		return purchasing.PurchaseOrder{}, f.fail
	}
	f.inputs = append(f.inputs, input)
	return purchasing.PurchaseOrder{ID: int64(len(f.inputs))}, nil
}

type fakeCatalog struct {
	bySKU map[string]catalog.Variant
}

func (f *fakeCatalog) GetVariantBySKU(_ context.Context, sku string) (catalog.Variant, error) {
	if v, ok := f.bySKU[sku]; ok {
		return v, nil
	}
	return catalog.Variant{}, catalog.ErrNotFound
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{bySKU: map[string]catalog.Variant{
		"KP-01": {ID: 1, SKU: "KP-01", Cost: 6000},
		"TH-01": {ID: 2, SKU: "TH-01", Cost: 2000},
	}}
}

func buildSheet(t *testing.T, rows [][]any) io.Reader {
	t.Helper()
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, file.SetCellValue(sheet, name, cell))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return &buf
}

func TestImportOpname(t *testing.T) {
	opname := &fakeOpname{}
	svc := NewService(opname, nil, testCatalog(), nil)

	sheet := buildSheet(t, [][]any{
		{"sku", "warehouse_id", "real_qty"},
		{"KP-01", 1, 42},
		{"TH-01", 1, 90},
	})
	summary, err := svc.ImportOpname(context.Background(), sheet)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Total)
	require.Equal(t, 2, summary.Succeeded)
	require.Zero(t, summary.Failed)
	require.Len(t, opname.inputs, 2)
	require.EqualValues(t, 42, opname.inputs[0].RealQty)
	require.EqualValues(t, 1, opname.inputs[0].VariantID)
}

func TestImportOpnameContinuesPastBadRows(t *testing.T) {
	opname := &fakeOpname{}
	svc := NewService(opname, nil, testCatalog(), nil)

	sheet := buildSheet(t, [][]any{
		{"sku", "warehouse_id", "real_qty"},
		{"NO-SUCH", 1, 10},
		{"KP-01", 1, "banyak"},
		{"TH-01", 1, 90},
	})
	summary, err := svc.ImportOpname(context.Background(), sheet)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Errors, 2)
	require.Equal(t, 2, summary.Errors[0].Row)
	require.Len(t, opname.inputs, 1)
}

func TestImportPurchasesGroupsBySupplierWarehouse(t *testing.T) {
	purchases := &fakePurchases{}
	svc := NewService(nil, purchases, testCatalog(), nil)

	sheet := buildSheet(t, [][]any{
		{"supplier_id", "warehouse_id", "sku", "qty", "unit_cost"},
		{7, 1, "KP-01", 10, 5500},
		{7, 1, "TH-01", 5, ""},
		{8, 1, "KP-01", 3, 6000},
	})
	summary, err := svc.ImportPurchases(context.Background(), sheet)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Succeeded)
	require.Len(t, purchases.inputs, 2)
	require.Len(t, purchases.inputs[0].Lines, 2)
	require.InDelta(t, 5500, purchases.inputs[0].Lines[0].UnitCost, 0.0001)
	// Blank unit cost defers to the variant's standard cost downstream.
	require.InDelta(t, 0, purchases.inputs[0].Lines[1].UnitCost, 0.0001)
	require.EqualValues(t, 8, purchases.inputs[1].SupplierID)
}

func TestImportEmptySheet(t *testing.T) {
	svc := NewService(nil, nil, testCatalog(), nil)

	sheet := buildSheet(t, [][]any{{"sku", "warehouse_id", "real_qty"}})
	_, err := svc.ImportOpname(context.Background(), sheet)
	require.ErrorIs(t, err, ErrEmptySheet)
}
