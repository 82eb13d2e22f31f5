package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"inventory-service/internal/model"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"gorm.io/gorm"
)

// headerSynonyms maps the column names seen in spreadsheets from different
// sources onto canonical field names. Lookups are case-sensitive; unknown
// headers pass through lower-cased.
var headerSynonyms = map[string]string{
	"Name":         "name",
	"name":         "name",
	"Product Name": "name",
	"product_name": "name",

	"SKU":          "sku",
	"sku":          "sku",
	"Product Code": "sku",
	"Code":         "sku",

	"Category":         "category",
	"category":         "category",
	"Product Category": "category",

	"Description":         "description",
	"description":         "description",
	"Product Description": "description",

	"Unit Price": "unit_price",
	"unit_price": "unit_price",
	"Price":      "unit_price",
	"price":      "unit_price",
	"Cost":       "unit_price",

	"Stock":             "quantity_in_stock",
	"stock":             "quantity_in_stock",
	"quantity_in_stock": "quantity_in_stock",
	"Quantity":          "quantity_in_stock",
	"quantity":          "quantity_in_stock",
	"Qty":               "quantity_in_stock",

	"Reorder Level": "reorder_level",
	"reorder_level": "reorder_level",
	"reorder":       "reorder_level",
	"Reorder":       "reorder_level",
	"Min Stock":     "reorder_level",

	"Suppliers": "suppliers",
	"suppliers": "suppliers",
	"Supplier":  "suppliers",
	"supplier":  "suppliers",
	"Vendor":    "suppliers",
	"vendors":   "suppliers",
}

// RowError is one row-level problem found during import. Non-fatal coercion
// warnings land here too; the row is still imported in that case.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes a CSV import run. Errors is ordered by row number.
type ImportResult struct {
	Success        bool       `json:"success"`
	Imported       int        `json:"imported"`
	TotalProcessed int        `json:"total_processed"`
	Errors         []RowError `json:"errors"`
	FileError      string     `json:"file_error,omitempty"`
}

func (r *ImportResult) addError(row int, format string, args ...interface{}) {
	r.Errors = append(r.Errors, RowError{Row: row, Message: fmt.Sprintf(format, args...)})
}

// Importer runs the CSV bulk-import pipeline.
type Importer struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewImporter creates an importer bound to a database handle.
func NewImporter(db *gorm.DB, log *zap.Logger) *Importer {
	return &Importer{db: db, log: log}
}

// Import parses the uploaded CSV and creates products row by row. Rows are
// processed in a single pass over the reader; one bad row never aborts the
// batch, and the returned result carries every row-level error and warning.
func (imp *Importer) Import(data []byte, actor *model.User) *ImportResult {
	result := &ImportResult{Errors: []RowError{}}

	text, err := decodeUpload(data)
	if err != nil {
		result.FileError = fmt.Sprintf("File reading error: %v", err)
		return result
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		result.FileError = fmt.Sprintf("File reading error: %v", err)
		return result
	}
	columns := normalizeHeaders(header)

	// Header is row 1, so the first data row is row 2.
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.addError(rowNum, "Unexpected error - %v", err)
			continue
		}
		result.TotalProcessed++
		if imp.importRow(rowNum, columns, record, actor, result) {
			result.Imported++
		}
	}

	result.Success = result.Imported > 0
	imp.log.Info("CSV import finished",
		zap.Int("imported", result.Imported),
		zap.Int("processed", result.TotalProcessed),
		zap.Int("errors", len(result.Errors)))
	return result
}

// importRow validates and persists a single data row. Returns true when a
// product was created.
func (imp *Importer) importRow(rowNum int, columns []string, record []string, actor *model.User, result *ImportResult) bool {
	row := make(map[string]string, len(columns))
	for i, col := range columns {
		if col == "" || i >= len(record) {
			continue
		}
		row[col] = strings.TrimSpace(record[i])
	}

	if row["name"] == "" {
		result.addError(rowNum, "Product name is required")
		return false
	}
	if row["sku"] == "" {
		result.addError(rowNum, "Product SKU is required")
		return false
	}

	sku := row["sku"]
	var count int64
	if err := imp.db.Model(&model.Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		result.addError(rowNum, "Unexpected error - %v", err)
		return false
	}
	if count > 0 {
		result.addError(rowNum, "Product with SKU '%s' already exists", sku)
		return false
	}

	var categoryID *uint
	if name := row["category"]; name != "" {
		category, err := imp.getOrCreateCategory(name)
		if err != nil {
			result.addError(rowNum, "Unexpected error - %v", err)
			return false
		}
		categoryID = &category.ID
	}

	unitPrice, warn := parseUnitPrice(row["unit_price"])
	if warn != "" {
		result.addError(rowNum, "%s", warn)
	}
	quantity, warn := parseQuantity(row["quantity_in_stock"])
	if warn != "" {
		result.addError(rowNum, "%s", warn)
	}
	reorderLevel, warn := parseReorderLevel(row["reorder_level"])
	if warn != "" {
		result.addError(rowNum, "%s", warn)
	}

	product := model.Product{
		Name:            row["name"],
		SKU:             sku,
		CategoryID:      categoryID,
		Description:     row["description"],
		UnitPrice:       unitPrice,
		QuantityInStock: quantity,
		ReorderLevel:    reorderLevel,
	}
	if actor != nil {
		product.CreatedByID = &actor.ID
	}

	if err := imp.db.Create(&product).Error; err != nil {
		result.addError(rowNum, "Unexpected error - %v", err)
		return false
	}

	// Supplier association problems are non-fatal; the product stays.
	for _, supplierName := range splitSupplierNames(row["suppliers"]) {
		supplier, err := imp.getOrCreateSupplier(supplierName)
		if err != nil {
			result.addError(rowNum, "Error processing suppliers: %v", err)
			continue
		}
		if err := imp.db.Model(&product).Association("Suppliers").Append(supplier); err != nil {
			result.addError(rowNum, "Error processing suppliers: %v", err)
		}
	}

	return true
}

// getOrCreateCategory looks a category up by exact name and inserts it when
// absent. A concurrent import may win the insert race; the unique index on
// the name rejects the duplicate and the row is re-fetched instead.
func (imp *Importer) getOrCreateCategory(name string) (*model.Category, error) {
	var category model.Category
	err := imp.db.Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = model.Category{Name: name}
	if createErr := imp.db.Create(&category).Error; createErr != nil {
		if fetchErr := imp.db.Where("name = ?", name).First(&category).Error; fetchErr != nil {
			return nil, createErr
		}
		imp.log.Debug("lost category insert race, using existing row", zap.String("name", name))
	}
	return &category, nil
}

// getOrCreateSupplier resolves a supplier by name, creating one with
// placeholder contact details when absent.
func (imp *Importer) getOrCreateSupplier(name string) (*model.Supplier, error) {
	var supplier model.Supplier
	err := imp.db.Where("name = ?", name).First(&supplier).Error
	if err == nil {
		return &supplier, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	supplier = model.Supplier{
		Name:        name,
		Email:       slug.Make(name) + "@example.com",
		PhoneNumber: "000-000-0000",
		Address:     "Unknown",
		City:        "Unknown",
		Country:     "Unknown",
	}
	if createErr := imp.db.Create(&supplier).Error; createErr != nil {
		// Lost the race on the unique email, or the name clashed; re-fetch.
		if fetchErr := imp.db.Where("name = ?", name).First(&supplier).Error; fetchErr != nil {
			return nil, createErr
		}
	}
	return &supplier, nil
}

// decodeUpload tries UTF-8, then UTF-8 with a byte-order mark, then Latin-1.
func decodeUpload(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\uFEFF"), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("file is not valid UTF-8 or Latin-1: %w", err)
	}
	return string(decoded), nil
}

// normalizeHeaders maps raw CSV headers through the synonym table.
func normalizeHeaders(header []string) []string {
	columns := make([]string, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if canonical, ok := headerSynonyms[name]; ok {
			columns[i] = canonical
		} else {
			columns[i] = strings.ToLower(name)
		}
	}
	return columns
}

// splitSupplierNames splits a comma-separated supplier cell, dropping blanks
// and spreadsheet placeholder values.
func splitSupplierNames(value string) []string {
	var names []string
	for _, part := range strings.Split(value, ",") {
		name := strings.TrimSpace(part)
		if name == "" || name == "nan" || strings.EqualFold(name, "null") {
			continue
		}
		names = append(names, name)
	}
	return names
}

func parseUnitPrice(value string) (decimal.Decimal, string) {
	if value == "" {
		return decimal.Zero, ""
	}
	price, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, "Invalid price format, defaulting to 0"
	}
	if price.IsNegative() {
		return decimal.Zero, "Price cannot be negative, set to 0"
	}
	return price, ""
}

func parseQuantity(value string) (int, string) {
	if value == "" {
		return 0, ""
	}
	// Numeric strings with a fractional part are accepted and truncated.
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, "Invalid stock quantity, defaulting to 0"
	}
	quantity := int(f)
	if quantity < 0 {
		return 0, "Stock quantity cannot be negative, set to 0"
	}
	return quantity, ""
}

func parseReorderLevel(value string) (int, string) {
	if value == "" {
		return 10, ""
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 10, "Invalid reorder level, defaulting to 10"
	}
	level := int(f)
	if level < 0 {
		return 10, "Reorder level cannot be negative, set to 10"
	}
	return level, ""
}
