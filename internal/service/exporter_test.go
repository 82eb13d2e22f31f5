package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"inventory-service/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func exportFixture() []model.Product {
	return []model.Product{
		{
			Name:            "Widget",
			SKU:             "W-1",
			Category:        &model.Category{Name: "Hardware"},
			Suppliers:       []model.Supplier{{Name: "Acme"}, {Name: "Best Co"}},
			UnitPrice:       decimal.NewFromFloat(9.9),
			QuantityInStock: 25,
			ReorderLevel:    10,
		},
		{
			Name:            "Gadget",
			SKU:             "G-1",
			UnitPrice:       decimal.NewFromFloat(2.5),
			QuantityInStock: 0,
			ReorderLevel:    5,
		},
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	if got := ExportFilename("products_export", now); got != "products_export_20240315.csv" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestWriteProductsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProductsCSV(&buf, exportFixture()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Error("export is missing the UTF-8 byte-order mark")
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\uFEFF"))).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}

	wantHeader := []string{"Name", "SKU", "Category", "Suppliers", "Unit Price", "Stock", "Reorder Level", "Status"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header column %d: expected %q, got %q", i, col, records[0][i])
		}
	}

	widget := records[1]
	if widget[2] != "Hardware" {
		t.Errorf("expected category Hardware, got %q", widget[2])
	}
	if widget[3] != "Acme, Best Co" {
		t.Errorf("expected joined suppliers, got %q", widget[3])
	}
	if widget[4] != "9.90" {
		t.Errorf("expected price 9.90, got %q", widget[4])
	}
	if widget[7] != model.StatusInStock {
		t.Errorf("expected status %q, got %q", model.StatusInStock, widget[7])
	}

	gadget := records[2]
	if gadget[2] != "" {
		t.Errorf("expected empty category, got %q", gadget[2])
	}
	if gadget[7] != model.StatusOutOfStock {
		t.Errorf("expected status %q, got %q", model.StatusOutOfStock, gadget[7])
	}
}

func TestWriteInventoryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInventoryCSV(&buf, exportFixture()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\uFEFF"))).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}

	wantHeader := []string{"Name", "SKU", "Category", "Unit Price", "Stock", "Total Value"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header column %d: expected %q, got %q", i, col, records[0][i])
		}
	}
	if records[1][5] != "247.50" {
		t.Errorf("expected total value 247.50, got %q", records[1][5])
	}
	if records[2][5] != "0.00" {
		t.Errorf("expected total value 0.00, got %q", records[2][5])
	}
}

func TestWriteSuppliersCSV(t *testing.T) {
	rows := []SupplierReportRow{
		{
			Supplier:     model.Supplier{Name: "Acme", Email: "acme@example.com", PhoneNumber: "555-1234"},
			ProductCount: 3,
			TotalValue:   "120.00",
		},
	}

	var buf bytes.Buffer
	if err := WriteSuppliersCSV(&buf, rows); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\uFEFF"))).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if records[1][0] != "Acme" || records[1][3] != "3" || records[1][4] != "120.00" {
		t.Errorf("unexpected supplier row: %v", records[1])
	}
}

// The product export uses headers the import pipeline recognizes, so an
// exported file can be re-imported into an empty store.
func TestExportImportRoundTrip(t *testing.T) {
	products := exportFixture()

	var buf bytes.Buffer
	if err := WriteProductsCSV(&buf, products); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	db := openTestDB(t)
	result := NewImporter(db, zap.NewNop()).Import(buf.Bytes(), nil)
	if result.Imported != len(products) {
		t.Fatalf("expected %d imported, got %d (errors: %v)", len(products), result.Imported, result.Errors)
	}

	var widget model.Product
	if err := db.Where("sku = ?", "W-1").First(&widget).Error; err != nil {
		t.Fatalf("widget not re-imported: %v", err)
	}
	if widget.Name != "Widget" {
		t.Errorf("unexpected name %q", widget.Name)
	}
	if !widget.UnitPrice.Equal(decimal.NewFromFloat(9.9)) {
		t.Errorf("unexpected price %s", widget.UnitPrice)
	}
	if widget.QuantityInStock != 25 {
		t.Errorf("unexpected quantity %d", widget.QuantityInStock)
	}
	if widget.ReorderLevel != 10 {
		t.Errorf("unexpected reorder level %d", widget.ReorderLevel)
	}
}

func TestWriteInventoryXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInventoryXLSX(&buf, exportFixture()); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	// XLSX files are zip archives.
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("output does not look like a spreadsheet")
	}
}
