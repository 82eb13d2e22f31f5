package handler

import (
	"errors"
	"net/http"
	"time"

	"inventory-service/internal/model"
	"inventory-service/internal/service"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StockUpdateRequest defines the structure for stock movement requests
type StockUpdateRequest struct {
	MovementType string `json:"movement_type"`
	Quantity     int    `json:"quantity"`
	Reason       string `json:"reason"`
}

// UpdateStock applies a stock movement to a product. Open to any
// authenticated principal.
func UpdateStock(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req StockUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var product model.Product
	if result := database.GetDB().First(&product, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	actor, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	stock := service.NewStockService(database.GetDB(), notifier, log)
	if err := stock.ApplyMovement(&product, req.MovementType, req.Quantity, req.Reason, actor); err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientStock):
			log.Warn("Stock-out rejected",
				zap.Uint("product_id", product.ID),
				zap.Int("requested", req.Quantity),
				zap.Int("available", product.QuantityInStock))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Insufficient stock!"})
		case errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrReasonRequired),
			errors.Is(err, service.ErrUnknownMovementType):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		default:
			log.Error("Failed to apply stock movement", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update stock"})
		}
	}

	prometheus.RecordStockMovement(req.MovementType)
	if product.IsLowStock() {
		prometheus.RecordAlert("low_stock")
	}
	log.Info("Stock updated",
		zap.Uint("product_id", product.ID),
		zap.String("movement_type", req.MovementType),
		zap.Int("quantity", req.Quantity),
		zap.Int("new_stock", product.QuantityInStock))
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Stock updated successfully!",
		"product":      product,
		"stock_status": product.StockStatus(),
	})
}

// ListStockMovements returns the movement ledger for a product, newest first
func ListStockMovements(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var product model.Product
	if result := database.GetDB().First(&product, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	page, pageSize, offset := pagination(c)

	var total int64
	database.GetDB().Model(&model.StockMovement{}).Where("product_id = ?", product.ID).Count(&total)

	var movements []model.StockMovement
	result := database.GetDB().
		Preload("PerformedBy").
		Where("product_id = ?", product.ID).
		Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&movements)
	if result.Error != nil {
		log.Error("Failed to list stock movements", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve stock movements"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"movements": movements,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}
