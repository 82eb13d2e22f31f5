package handler

import (
	"net/http"
	"time"

	"inventory-service/internal/auth"
	"inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Dashboard aggregates the landing-page numbers: entity counts, total stock
// value, low-stock and expiring highlights and the latest movements.
func Dashboard(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var totalProducts, totalCategories, totalSuppliers int64
	db.Model(&model.Product{}).Count(&totalProducts)
	db.Model(&model.Category{}).Count(&totalCategories)
	db.Model(&model.Supplier{}).Count(&totalSuppliers)

	var lowStockCount int64
	db.Model(&model.Product{}).
		Where("quantity_in_stock <= reorder_level").
		Count(&lowStockCount)
	prometheus.LowStockGauge.Set(float64(lowStockCount))

	var products []model.Product
	if err := db.Find(&products).Error; err != nil {
		log.Error("Failed to load products for dashboard", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load dashboard"})
	}
	totalValue := decimal.Zero
	for i := range products {
		totalValue = totalValue.Add(products[i].TotalValue())
	}

	var recentMovements []model.StockMovement
	db.Preload("Product").
		Preload("PerformedBy").
		Order("created_at desc").
		Limit(10).
		Find(&recentMovements)

	var lowStockItems []model.Product
	db.Preload("Category").
		Where("quantity_in_stock <= reorder_level").
		Order("quantity_in_stock").
		Limit(5).
		Find(&lowStockItems)

	body := echo.Map{
		"total_products":    totalProducts,
		"total_categories":  totalCategories,
		"total_suppliers":   totalSuppliers,
		"total_stock_value": totalValue.StringFixed(2),
		"low_stock_count":   lowStockCount,
		"low_stock_items":   lowStockItems,
		"recent_movements":  recentMovements,
	}

	// The expiry highlight is for the managers who can act on it.
	if auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		cutoff := time.Now().Add(7 * 24 * time.Hour)
		var expiring []model.Product
		db.Where("is_perishable = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", true, cutoff).
			Order("expiry_date").
			Limit(5).
			Find(&expiring)
		body["expiring_products"] = expiring
	}

	return c.JSON(http.StatusOK, body)
}
