package handler

import (
	"io"
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
	"go.uber.org/zap"
)

// ImportProducts runs the CSV bulk-import pipeline. Privileged principals
// only; a denied request leaves the store untouched.
func ImportProducts(c echo.Context) error {
	log := logger.FromContext(c)

	if !auth.CanMutatePrivileged(middleware.GetPrincipal(c)) {
		prometheus.PermissionDeniedCounter.Inc()
		log.Warn("CSV import denied by access policy")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You do not have permission to perform this action."})
	}

	fileHeader, err := c.FormFile("csv_file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "A CSV file upload is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open upload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Failed to read uploaded file"})
	}
	defer file.Close()

	// Read one byte past the limit so oversized uploads are detected
	// without buffering the whole file.
	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadSize+1))
	if err != nil {
		log.Error("Failed to read upload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Failed to read uploaded file"})
	}

	validation := service.ValidateCSVUpload(fileHeader.Filename, data)
	if !validation.Valid {
		log.Warn("CSV upload rejected by pre-flight validation",
			zap.String("filename", fileHeader.Filename),
			zap.String("reason", validation.Error))
		return c.JSON(http.StatusBadRequest, validation)
	}

	actor, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	importer := service.NewImporter(database.GetDB(), log)
	result := importer.Import(data, actor)

	prometheus.ImportedRowsCounter.Add(float64(result.Imported))
	prometheus.ImportErrorsCounter.Add(float64(len(result.Errors)))

	log.Info("CSV import completed",
		zap.String("filename", fileHeader.Filename),
		zap.Int("imported", result.Imported),
		zap.Int("errors", len(result.Errors)))
	return c.JSON(http.StatusOK, result)
}

// ExportProducts streams the product CSV export. Open to any authenticated
// principal.
func ExportProducts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordExport("products_export")

	var products []model.Product
	result := database.GetDB().
		Preload("Category").
		Preload("Suppliers").
		Order("name").
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to load products for export", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export products"})
	}

	filename := service.ExportFilename("products_export", time.Now())
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)

	if err := service.WriteProductsCSV(c.Response(), products); err != nil {
		log.Error("Failed to write product CSV", zap.Error(err))
		return err
	}

	log.Info("Products exported", zap.Int("count", len(products)), zap.String("filename", filename))
	return nil
}
