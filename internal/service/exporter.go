package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"inventory-service/internal/model"

	"github.com/xuri/excelize/v2"
)

// utf8BOM prefixes every CSV export so spreadsheet tools pick up the
// encoding.
const utf8BOM = "\uFEFF"

// ExportFilename returns the date-stamped attachment name for a report kind.
func ExportFilename(kind string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", kind, now.Format("20060102"))
}

// WriteProductsCSV writes the product export schema: one row per product in
// input order, suppliers comma-joined, status derived from the stock level.
func WriteProductsCSV(w io.Writer, products []model.Product) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "SKU", "Category", "Suppliers", "Unit Price", "Stock", "Reorder Level", "Status"}); err != nil {
		return err
	}
	for i := range products {
		p := &products[i]
		if err := cw.Write([]string{
			p.Name,
			p.SKU,
			categoryName(p),
			supplierNames(p),
			p.UnitPrice.StringFixed(2),
			strconv.Itoa(p.QuantityInStock),
			strconv.Itoa(p.ReorderLevel),
			p.StockStatus(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInventoryCSV writes the inventory/value report schema with the total
// stock value per product.
func WriteInventoryCSV(w io.Writer, products []model.Product) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "SKU", "Category", "Unit Price", "Stock", "Total Value"}); err != nil {
		return err
	}
	for i := range products {
		p := &products[i]
		if err := cw.Write([]string{
			p.Name,
			p.SKU,
			categoryName(p),
			p.UnitPrice.StringFixed(2),
			strconv.Itoa(p.QuantityInStock),
			p.TotalValue().StringFixed(2),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SupplierReportRow is one aggregated line of the supplier report.
type SupplierReportRow struct {
	Supplier     model.Supplier `json:"supplier"`
	ProductCount int            `json:"product_count"`
	TotalValue   string         `json:"total_value"`
}

// WriteSuppliersCSV writes the supplier report schema.
func WriteSuppliersCSV(w io.Writer, rows []SupplierReportRow) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Supplier Name", "Email", "Phone", "Product Count", "Total Value"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{
			row.Supplier.Name,
			row.Supplier.Email,
			row.Supplier.PhoneNumber,
			strconv.Itoa(row.ProductCount),
			row.TotalValue,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInventoryXLSX writes the inventory report as a spreadsheet.
func WriteInventoryXLSX(w io.Writer, products []model.Product) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"Name", "SKU", "Category", "Unit Price", "Stock", "Total Value"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := range products {
		p := &products[i]
		row := []interface{}{
			p.Name,
			p.SKU,
			categoryName(p),
			p.UnitPrice.InexactFloat64(),
			p.QuantityInStock,
			p.TotalValue().InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func categoryName(p *model.Product) string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

func supplierNames(p *model.Product) string {
	names := make([]string, 0, len(p.Suppliers))
	for _, s := range p.Suppliers {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}
