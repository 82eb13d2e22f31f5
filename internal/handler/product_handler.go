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

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	CategoryID      *uint           `json:"category_id"`
	SupplierIDs     []uint          `json:"supplier_ids"`
	Description     string          `json:"description"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	ReorderLevel    *int            `json:"reorder_level"`
	IsPerishable    bool            `json:"is_perishable"`
	ExpiryDate      string          `json:"expiry_date"`
}

// validateProductRequest enforces the product field rules and parses the
// expiry date. Returns a user-facing message on failure.
func validateProductRequest(req *ProductRequest) (*time.Time, string) {
	if req.Name == "" {
		return nil, "Product name is required"
	}
	if req.SKU == "" {
		return nil, "Product SKU is required"
	}
	if req.UnitPrice.IsNegative() {
		return nil, "Unit price cannot be negative"
	}
	if req.QuantityInStock < 0 {
		return nil, "Stock quantity cannot be negative"
	}
	if req.ReorderLevel != nil && *req.ReorderLevel < 0 {
		return nil, "Reorder level cannot be negative"
	}

	var expiry *time.Time
	if req.ExpiryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			return nil, "Invalid expiry date, expected YYYY-MM-DD"
		}
		expiry = &parsed
	}
	if req.IsPerishable && expiry == nil {
		return nil, "Expiry date is required for perishable items."
	}
	if expiry != nil {
		today := time.Now().Truncate(24 * time.Hour)
		if expiry.Before(today) {
			return nil, "Expiry date cannot be in the past."
		}
	}
	return expiry, ""
}

// ListProducts handles the paginated product list with text search and
// category/supplier filters
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("list")

	db := database.GetDB()
	query := db.Model(&model.Product{})

	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ? OR description ILIKE ?", pattern, pattern, pattern)
		log.Info("Filtering products by search", zap.String("search", search))
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category_id = ?", category)
	}
	if supplier := c.QueryParam("supplier"); supplier != "" {
		query = query.Joins("JOIN product_suppliers ps ON ps.product_id = products.id").
			Where("ps.supplier_id = ?", supplier)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	page, pageSize, offset := pagination(c)
	var products []model.Product
	result := query.
		Preload("Category").
		Preload("Suppliers").
		Order("name").
		Limit(pageSize).
		Offset(offset).
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products":  products,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// GetProduct returns a single product with its most recent stock movements
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("get")
	id := c.Param("id")

	var product model.Product
	result := database.GetDB().
		Preload("Category").
		Preload("Suppliers").
		Preload("CreatedBy").
		First(&product, id)
	if result.Error != nil {
		log.Warn("Product not found", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	var movements []model.StockMovement
	database.GetDB().
		Preload("PerformedBy").
		Where("product_id = ?", product.ID).
		Order("created_at desc").
		Limit(10).
		Find(&movements)

	return c.JSON(http.StatusOK, echo.Map{
		"product":       product,
		"movements":     movements,
		"stock_status":  product.StockStatus(),
		"expiring_soon": product.IsExpiringSoon(time.Now()),
	})
}

// CreateProduct creates a product. Open to any authenticated principal.
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("create")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	expiry, msg := validateProductRequest(&req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	var count int64
	database.GetDB().Model(&model.Product{}).Where("sku = ?", req.SKU).Count(&count)
	if count > 0 {
		log.Warn("Product with this SKU already exists", zap.String("sku", req.SKU))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Product with this SKU already exists"})
	}

	reorderLevel := 10
	if req.ReorderLevel != nil {
		reorderLevel = *req.ReorderLevel
	}

	product := model.Product{
		Name:            req.Name,
		SKU:             req.SKU,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		UnitPrice:       req.UnitPrice,
		QuantityInStock: req.QuantityInStock,
		ReorderLevel:    reorderLevel,
		IsPerishable:    req.IsPerishable,
		ExpiryDate:      expiry,
	}
	if principal := middleware.GetPrincipal(c); principal != nil {
		product.CreatedByID = &principal.UserID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&product); result.Error != nil {
		log.Error("Failed to create product",
			zap.String("sku", req.SKU),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	if len(req.SupplierIDs) > 0 {
		var suppliers []model.Supplier
		database.GetDB().Where("id IN ?", req.SupplierIDs).Find(&suppliers)
		if err := database.GetDB().Model(&product).Association("Suppliers").Replace(suppliers); err != nil {
			log.Warn("Failed to associate suppliers", zap.Error(err))
		}
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a product. Open to any authenticated principal;
// quantity changes go through the stock endpoint, not here.
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("update")
	id := c.Param("id")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var product model.Product
	if result := database.GetDB().First(&product, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	// Quantity stays ledger-driven: ignore whatever the payload carries.
	req.QuantityInStock = product.QuantityInStock

	expiry, msg := validateProductRequest(&req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	if req.SKU != product.SKU {
		var count int64
		database.GetDB().Model(&model.Product{}).
			Where("sku = ? AND id != ?", req.SKU, product.ID).
			Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Product with this SKU already exists"})
		}
	}

	product.Name = req.Name
	product.SKU = req.SKU
	product.CategoryID = req.CategoryID
	product.Description = req.Description
	product.UnitPrice = req.UnitPrice
	if req.ReorderLevel != nil {
		product.ReorderLevel = *req.ReorderLevel
	}
	product.IsPerishable = req.IsPerishable
	product.ExpiryDate = expiry

	if result := database.GetDB().Save(&product); result.Error != nil {
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	if req.SupplierIDs != nil {
		var suppliers []model.Supplier
		if len(req.SupplierIDs) > 0 {
			database.GetDB().Where("id IN ?", req.SupplierIDs).Find(&suppliers)
		}
		if err := database.GetDB().Model(&product).Association("Suppliers").Replace(suppliers); err != nil {
			log.Warn("Failed to update supplier associations", zap.Error(err))
		}
	}

	log.Info("Product updated", zap.Uint("product_id", product.ID), zap.String("sku", product.SKU))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product. Privileged principals only.
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("delete")
	id := c.Param("id")

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		log.Warn("Product delete denied by access policy", zap.String("product_id", id))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	result := database.GetDB().Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	log.Info("Product deleted", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully!"})
}
