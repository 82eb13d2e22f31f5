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

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories returns all categories, paginated, ordered by name
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("list")

	page, pageSize, offset := pagination(c)

	var total int64
	database.GetDB().Model(&model.Category{}).Count(&total)

	var categories []model.Category
	result := database.GetDB().Order("name").Limit(pageSize).Offset(offset).Find(&categories)
	if result.Error != nil {
		log.Error("Failed to list categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"categories": categories,
		"page":       page,
		"page_size":  pageSize,
		"total":      total,
	})
}

// GetCategory returns a single category
func GetCategory(c echo.Context) error {
	prometheus.RecordCategoryOperation("get")

	var category model.Category
	if result := database.GetDB().First(&category, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}
	return c.JSON(http.StatusOK, category)
}

// CreateCategory creates a category. Privileged principals only.
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("create")

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Category name is required"})
	}

	var count int64
	database.GetDB().Model(&model.Category{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Category with this name already exists"})
	}

	category := model.Category{Name: req.Name, Description: req.Description}
	if result := database.GetDB().Create(&category); result.Error != nil {
		log.Error("Failed to create category", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create category"})
	}

	log.Info("Category created", zap.Uint("category_id", category.ID), zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates a category. Privileged principals only.
func UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("update")

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Category name is required"})
	}

	var category model.Category
	if result := database.GetDB().First(&category, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	if req.Name != category.Name {
		var count int64
		database.GetDB().Model(&model.Category{}).
			Where("name = ? AND id != ?", req.Name, category.ID).
			Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Category with this name already exists"})
		}
	}

	category.Name = req.Name
	category.Description = req.Description
	if result := database.GetDB().Save(&category); result.Error != nil {
		log.Error("Failed to update category", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update category"})
	}

	log.Info("Category updated", zap.Uint("category_id", category.ID))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category and clears product references to it.
// Privileged principals only.
func DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("delete")
	id := c.Param("id")

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		// Products keep existing, only the reference is cleared.
		if err := tx.Model(&model.Product{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Category{}, id)
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
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
		}
		log.Error("Failed to delete category", zap.String("category_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete category"})
	}

	log.Info("Category deleted", zap.String("category_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully!"})
}
