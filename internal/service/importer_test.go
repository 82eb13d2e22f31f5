package service

import (
	"strings"
	"testing"

	"inventory-service/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a fresh in-memory database with the schema migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	// A fresh pooled connection would see an empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Supplier{},
		&model.Product{},
		&model.StockMovement{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func findErrorForRow(errors []RowError, row int) (RowError, bool) {
	for _, e := range errors {
		if e.Row == row {
			return e, true
		}
	}
	return RowError{}, false
}

func TestImportPartialSuccess(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	csvData := strings.Join([]string{
		"Product Name,Code,Stock,Price",
		"Widget,W-1,5,9.99",
		"Broken Row,,3,1.00",
		"Gadget,G-1,2,2.50",
	}, "\n")

	result := imp.Import([]byte(csvData), nil)

	if !result.Success {
		t.Error("expected success when at least one row imports")
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
	if result.TotalProcessed != 3 {
		t.Errorf("expected 3 processed, got %d", result.TotalProcessed)
	}
	rowErr, ok := findErrorForRow(result.Errors, 3)
	if !ok {
		t.Fatal("expected an error for row 3")
	}
	if rowErr.Message != "Product SKU is required" {
		t.Errorf("unexpected message: %q", rowErr.Message)
	}

	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 products in store, got %d", count)
	}
}

func TestImportRequiresName(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	result := imp.Import([]byte("Name,SKU\n,X-1\n"), nil)

	if result.Success {
		t.Error("expected failure when nothing imports")
	}
	rowErr, ok := findErrorForRow(result.Errors, 2)
	if !ok {
		t.Fatal("expected an error for row 2")
	}
	if rowErr.Message != "Product name is required" {
		t.Errorf("unexpected message: %q", rowErr.Message)
	}
}

func TestImportDuplicateSKU(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	csvData := "Name,SKU\nWidget,W-1\n"
	first := imp.Import([]byte(csvData), nil)
	if first.Imported != 1 {
		t.Fatalf("first run: expected 1 imported, got %d", first.Imported)
	}

	second := imp.Import([]byte(csvData), nil)
	if second.Imported != 0 {
		t.Errorf("second run: expected 0 imported, got %d", second.Imported)
	}
	if second.Success {
		t.Error("second run should not report success")
	}
	rowErr, ok := findErrorForRow(second.Errors, 2)
	if !ok {
		t.Fatal("expected an error for row 2")
	}
	if rowErr.Message != "Product with SKU 'W-1' already exists" {
		t.Errorf("unexpected message: %q", rowErr.Message)
	}
}

func TestImportCoercionDefaults(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	csvData := "Name,SKU,Price,Stock,Reorder Level\nWidget,W-1,abc,xyz,\n"
	result := imp.Import([]byte(csvData), nil)

	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d (errors: %v)", result.Imported, result.Errors)
	}

	var product model.Product
	if err := db.Where("sku = ?", "W-1").First(&product).Error; err != nil {
		t.Fatalf("product not found: %v", err)
	}
	if !product.UnitPrice.Equal(decimal.Zero) {
		t.Errorf("expected zero price, got %s", product.UnitPrice)
	}
	if product.QuantityInStock != 0 {
		t.Errorf("expected zero stock, got %d", product.QuantityInStock)
	}
	if product.ReorderLevel != 10 {
		t.Errorf("expected default reorder level 10, got %d", product.ReorderLevel)
	}

	messages := make(map[string]bool)
	for _, e := range result.Errors {
		messages[e.Message] = true
	}
	if !messages["Invalid price format, defaulting to 0"] {
		t.Error("missing price warning")
	}
	if !messages["Invalid stock quantity, defaulting to 0"] {
		t.Error("missing stock warning")
	}
}

func TestImportNegativeValuesClamped(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	csvData := "Name,SKU,Price,Stock,Reorder Level\nWidget,W-1,-5.00,-3,-1\n"
	result := imp.Import([]byte(csvData), nil)

	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}

	var product model.Product
	db.Where("sku = ?", "W-1").First(&product)
	if !product.UnitPrice.Equal(decimal.Zero) {
		t.Errorf("expected price clamped to 0, got %s", product.UnitPrice)
	}
	if product.QuantityInStock != 0 {
		t.Errorf("expected stock clamped to 0, got %d", product.QuantityInStock)
	}
	if product.ReorderLevel != 10 {
		t.Errorf("expected reorder level reset to 10, got %d", product.ReorderLevel)
	}
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 warnings, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestImportTruncatesFractionalQuantities(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	result := imp.Import([]byte("Name,SKU,Qty\nWidget,W-1,7.9\n"), nil)
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no warnings, got %v", result.Errors)
	}

	var product model.Product
	db.Where("sku = ?", "W-1").First(&product)
	if product.QuantityInStock != 7 {
		t.Errorf("expected stock 7, got %d", product.QuantityInStock)
	}
}

func TestImportStripsByteOrderMark(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	result := imp.Import([]byte("\uFEFFName,SKU\nWidget,W-1\n"), nil)
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d (errors: %v)", result.Imported, result.Errors)
	}
}

func TestImportLatin1Fallback(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	// "Café" encoded as Latin-1, which is invalid UTF-8.
	data := []byte("Name,SKU\nCaf\xe9,C-1\n")
	result := imp.Import(data, nil)
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d (errors: %v)", result.Imported, result.Errors)
	}

	var product model.Product
	db.Where("sku = ?", "C-1").First(&product)
	if product.Name != "Café" {
		t.Errorf("expected decoded name Café, got %q", product.Name)
	}
}

func TestImportSupplierTokensFiltered(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	csvData := "Name,SKU,Suppliers\nWidget,W-1,\"Acme, nan, NULL, , Best Co\"\n"
	result := imp.Import([]byte(csvData), nil)
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d (errors: %v)", result.Imported, result.Errors)
	}

	var count int64
	db.Model(&model.Supplier{}).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 suppliers created, got %d", count)
	}

	var acme model.Supplier
	if err := db.Where("name = ?", "Acme").First(&acme).Error; err != nil {
		t.Fatalf("Acme not created: %v", err)
	}
	if acme.Email != "acme@example.com" {
		t.Errorf("expected placeholder email acme@example.com, got %q", acme.Email)
	}
	if acme.PhoneNumber != "000-000-0000" {
		t.Errorf("unexpected placeholder phone %q", acme.PhoneNumber)
	}
}

func TestImportCategoryCreatedOnce(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	csvData := "Name,SKU,Category\nWidget,W-1,Hardware\nGadget,G-1,Hardware\n"
	result := imp.Import([]byte(csvData), nil)
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d (errors: %v)", result.Imported, result.Errors)
	}

	var count int64
	db.Model(&model.Category{}).Where("name = ?", "Hardware").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one Hardware category, got %d", count)
	}
}

func TestImportRecordsActor(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	actor := model.User{Username: "importer", Email: "importer@example.com", Password: "x"}
	if err := db.Create(&actor).Error; err != nil {
		t.Fatalf("failed to create actor: %v", err)
	}

	result := imp.Import([]byte("Name,SKU\nWidget,W-1\n"), &actor)
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}

	var product model.Product
	db.Where("sku = ?", "W-1").First(&product)
	if product.CreatedByID == nil || *product.CreatedByID != actor.ID {
		t.Error("expected product to record the importing user")
	}
}

func TestImportEmptyFile(t *testing.T) {
	db := openTestDB(t)
	imp := NewImporter(db, zap.NewNop())

	result := imp.Import([]byte(""), nil)
	if result.Success {
		t.Error("expected failure on empty upload")
	}
	if result.FileError == "" {
		t.Error("expected a file-level error")
	}
}
