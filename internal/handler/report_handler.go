package handler

import (
	"net/http"
	"time"

	"inventory-service/internal/auth"
	"inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/internal/service"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryReport returns the per-product stock valuation, as JSON by
// default, as CSV with ?export=csv or as a spreadsheet with ?format=xlsx.
func InventoryReport(c echo.Context) error {
	log := logger.FromContext(c)

	var products []model.Product
	result := database.GetDB().
		Preload("Category").
		Order("name").
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to load products for inventory report", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to build inventory report"})
	}

	if c.QueryParam("format") == "xlsx" {
		prometheus.RecordExport("inventory_report_xlsx")
		filename := "inventory_report_" + time.Now().Format("20060102") + ".xlsx"
		c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		c.Response().WriteHeader(http.StatusOK)
		if err := service.WriteInventoryXLSX(c.Response(), products); err != nil {
			log.Error("Failed to write inventory spreadsheet", zap.Error(err))
			return err
		}
		return nil
	}

	if c.QueryParam("export") == "csv" {
		prometheus.RecordExport("inventory_report")
		filename := service.ExportFilename("inventory_report", time.Now())
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		c.Response().WriteHeader(http.StatusOK)
		if err := service.WriteInventoryCSV(c.Response(), products); err != nil {
			log.Error("Failed to write inventory CSV", zap.Error(err))
			return err
		}
		return nil
	}

	totalValue := decimal.Zero
	items := make([]echo.Map, 0, len(products))
	for i := range products {
		p := &products[i]
		value := p.TotalValue()
		totalValue = totalValue.Add(value)
		items = append(items, echo.Map{
			"name":        p.Name,
			"sku":         p.SKU,
			"category":    p.CategoryName(),
			"unit_price":  p.UnitPrice.StringFixed(2),
			"stock":       p.QuantityInStock,
			"total_value": value.StringFixed(2),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":       items,
		"total_value": totalValue.StringFixed(2),
	})
}

// SupplierReport aggregates product counts and stock value per supplier, as
// JSON by default or as CSV with ?export=csv.
func SupplierReport(c echo.Context) error {
	log := logger.FromContext(c)

	var suppliers []model.Supplier
	if err := database.GetDB().Order("name").Find(&suppliers).Error; err != nil {
		log.Error("Failed to load suppliers for report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to build supplier report"})
	}

	rows := make([]service.SupplierReportRow, 0, len(suppliers))
	for _, supplier := range suppliers {
		var products []model.Product
		database.GetDB().
			Joins("JOIN product_suppliers ps ON ps.product_id = products.id").
			Where("ps.supplier_id = ?", supplier.ID).
			Find(&products)

		value := decimal.Zero
		for i := range products {
			value = value.Add(products[i].TotalValue())
		}
		rows = append(rows, service.SupplierReportRow{
			Supplier:     supplier,
			ProductCount: len(products),
			TotalValue:   value.StringFixed(2),
		})
	}

	if c.QueryParam("export") == "csv" {
		prometheus.RecordExport("supplier_report")
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="supplier_report.csv"`)
		c.Response().WriteHeader(http.StatusOK)
		if err := service.WriteSuppliersCSV(c.Response(), rows); err != nil {
			log.Error("Failed to write supplier CSV", zap.Error(err))
			return err
		}
		return nil
	}

	return c.JSON(http.StatusOK, echo.Map{"suppliers": rows})
}

// SendExpiryAlerts notifies the manager about every product expiring within
// the alert window. Privileged principals only.
func SendExpiryAlerts(c echo.Context) error {
	log := logger.FromContext(c)

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	cutoff := time.Now().Add(7 * 24 * time.Hour)
	var expiring []model.Product
	result := database.GetDB().
		Where("is_perishable = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", true, cutoff).
		Order("expiry_date").
		Find(&expiring)
	if result.Error != nil {
		log.Error("Failed to load expiring products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to send expiry alerts"})
	}

	if notifier != nil {
		for i := range expiring {
			notifier.ExpiryAlert(&expiring[i])
			prometheus.RecordAlert("expiry")
		}
	}

	log.Info("Expiry alerts dispatched", zap.Int("count", len(expiring)))
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Expiry alerts sent",
		"alert_count": len(expiring),
	})
}
