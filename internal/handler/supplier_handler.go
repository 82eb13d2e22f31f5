package handler

import (
	"net/http"

	"inventory-service/internal/auth"
	"inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SupplierRequest defines the structure for supplier creation/update requests
type SupplierRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// ListSuppliers returns all suppliers, paginated, ordered by name
func ListSuppliers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("list")

	page, pageSize, offset := pagination(c)

	var total int64
	database.GetDB().Model(&model.Supplier{}).Count(&total)

	var suppliers []model.Supplier
	result := database.GetDB().Order("name").Limit(pageSize).Offset(offset).Find(&suppliers)
	if result.Error != nil {
		log.Error("Failed to list suppliers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve suppliers"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"suppliers": suppliers,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// GetSupplier returns a supplier together with the products it supplies
func GetSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("get")
	id := c.Param("id")

	var supplier model.Supplier
	if result := database.GetDB().First(&supplier, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
	}

	var products []model.Product
	result := database.GetDB().
		Joins("JOIN product_suppliers ps ON ps.product_id = products.id").
		Where("ps.supplier_id = ?", supplier.ID).
		Preload("Category").
		Order("name").
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to load supplier products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve supplier"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"supplier": supplier,
		"products": products,
	})
}

// CreateSupplier creates a supplier. Privileged principals only.
func CreateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("create")

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Supplier name is required"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Supplier email is required"})
	}

	var count int64
	database.GetDB().Model(&model.Supplier{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Supplier with this email already exists"})
	}

	supplier := model.Supplier{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Website:     req.Website,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
	}
	if result := database.GetDB().Create(&supplier); result.Error != nil {
		log.Error("Failed to create supplier", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create supplier"})
	}

	log.Info("Supplier created", zap.Uint("supplier_id", supplier.ID), zap.String("name", supplier.Name))
	return c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier updates a supplier. Privileged principals only.
func UpdateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("update")

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Supplier name is required"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Supplier email is required"})
	}

	var supplier model.Supplier
	if result := database.GetDB().First(&supplier, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
	}

	if req.Email != supplier.Email {
		var count int64
		database.GetDB().Model(&model.Supplier{}).
			Where("email = ? AND id != ?", req.Email, supplier.ID).
			Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Supplier with this email already exists"})
		}
	}

	supplier.Name = req.Name
	supplier.Email = req.Email
	supplier.PhoneNumber = req.PhoneNumber
	supplier.Website = req.Website
	supplier.Address = req.Address
	supplier.City = req.City
	supplier.Country = req.Country
	if result := database.GetDB().Save(&supplier); result.Error != nil {
		log.Error("Failed to update supplier", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update supplier"})
	}

	log.Info("Supplier updated", zap.Uint("supplier_id", supplier.ID))
	return c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier removes a supplier and its product links. Privileged
// principals only.
func DeleteSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("delete")
	id := c.Param("id")

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_suppliers WHERE supplier_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Supplier{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
		}
		log.Error("Failed to delete supplier", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete supplier"})
	}

	log.Info("Supplier deleted", zap.String("supplier_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Supplier deleted successfully!"})
}
