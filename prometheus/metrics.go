package prometheus

import (
	"time"

	"inventory-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Domain operation metrics
	ProductOperationsCounter  prometheus.CounterVec
	CategoryOperationsCounter prometheus.CounterVec
	SupplierOperationsCounter prometheus.CounterVec

	// Stock metrics
	StockMovementsCounter prometheus.CounterVec
	LowStockGauge         prometheus.Gauge

	// Import/export metrics
	ImportedRowsCounter prometheus.Counter
	ImportErrorsCounter prometheus.Counter
	ExportsCounter      prometheus.CounterVec

	// Alert metrics
	AlertsSentCounter prometheus.CounterVec

	// Permission metrics
	PermissionDeniedCounter prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Product metrics
	ProductOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_operations_total",
			Help: "Total number of product operations",
		},
		[]string{"operation"},
	)

	// Category metrics
	CategoryOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_category_operations_total",
			Help: "Total number of category operations",
		},
		[]string{"operation"},
	)

	// Supplier metrics
	SupplierOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_supplier_operations_total",
			Help: "Total number of supplier operations",
		},
		[]string{"operation"},
	)

	// Stock movement metrics by movement type
	StockMovementsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Total number of accepted stock movements",
		},
		[]string{"movement_type"},
	)

	LowStockGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_low_stock_products",
			Help: "Number of products at or below their reorder level",
		},
	)

	// Import/export metrics
	ImportedRowsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_import_rows_total",
			Help: "Total number of product rows imported from CSV",
		},
	)

	ImportErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_import_errors_total",
			Help: "Total number of CSV import row errors",
		},
	)

	ExportsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_exports_total",
			Help: "Total number of report exports",
		},
		[]string{"kind"},
	)

	// Alert metrics
	AlertsSentCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_alerts_sent_total",
			Help: "Total number of alert emails requested",
		},
		[]string{"kind"},
	)

	// Permission metrics
	PermissionDeniedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_permission_denied_total",
			Help: "Total number of requests denied by the access policy",
		},
	)
}

// RecordProductOperation increments the product operations counter
func RecordProductOperation(operation string) {
	ProductOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCategoryOperation increments the category operations counter
func RecordCategoryOperation(operation string) {
	CategoryOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordSupplierOperation increments the supplier operations counter
func RecordSupplierOperation(operation string) {
	SupplierOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordStockMovement increments the stock movements counter
func RecordStockMovement(movementType string) {
	StockMovementsCounter.WithLabelValues(movementType).Inc()
}

// RecordExport increments the export counter for a report kind
func RecordExport(kind string) {
	ExportsCounter.WithLabelValues(kind).Inc()
}

// RecordAlert increments the alert counter for an alert kind
func RecordAlert(kind string) {
	AlertsSentCounter.WithLabelValues(kind).Inc()
}

// TrackDBOperation returns a function that records the duration of a
// database operation when invoked:
//
//	defer prometheus.TrackDBOperation("insert")(time.Now())
func TrackDBOperation(operationType string) func(time.Time) {
	return func(start time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(start).Seconds())
	}
}
