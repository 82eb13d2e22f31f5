package service

import (
	"errors"
	"strings"

	"inventory-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stock movement failures surfaced to callers.
var (
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrReasonRequired      = errors.New("a reason is required for every stock movement")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrUnknownMovementType = errors.New("unknown movement type")
)

// Notifier requests alert delivery. Implementations are best-effort and must
// never surface failures to the caller.
type Notifier interface {
	LowStockAlert(product *model.Product)
	ExpiryAlert(product *model.Product)
}

// StockService applies stock movements: it keeps QuantityInStock in sync with
// the append-only StockMovement ledger.
type StockService struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

// NewStockService creates a stock service. notifier may be nil to disable
// alerts.
func NewStockService(db *gorm.DB, notifier Notifier, log *zap.Logger) *StockService {
	return &StockService{db: db, notifier: notifier, log: log}
}

// ApplyMovement applies a movement to the product under the movement-type
// policy and appends the ledger entry in the same transaction. On success the
// product's in-memory quantity is updated; on any failure both the product
// row and the ledger are left untouched.
//
// "in" adds, "out" subtracts and fails on insufficient stock, "adjustment"
// sets the quantity absolutely.
func (s *StockService) ApplyMovement(product *model.Product, movementType string, quantity int, reason string, actor *model.User) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	newQuantity := product.QuantityInStock
	switch movementType {
	case model.MovementIn:
		newQuantity += quantity
	case model.MovementOut:
		if product.QuantityInStock < quantity {
			return ErrInsufficientStock
		}
		newQuantity -= quantity
	case model.MovementAdjustment:
		newQuantity = quantity
	default:
		return ErrUnknownMovementType
	}

	movement := model.StockMovement{
		ProductID:    product.ID,
		MovementType: movementType,
		Quantity:     quantity,
		Reason:       reason,
	}
	if actor != nil {
		movement.PerformedByID = &actor.ID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("id = ?", product.ID).
			Update("quantity_in_stock", newQuantity).Error; err != nil {
			return err
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return err
	}

	product.QuantityInStock = newQuantity
	s.log.Info("stock movement applied",
		zap.Uint("product_id", product.ID),
		zap.String("movement_type", movementType),
		zap.Int("quantity", quantity),
		zap.Int("new_stock", newQuantity))

	// Alerting is decoupled from the transaction: a notification failure
	// must never fail the movement.
	if product.IsLowStock() && s.notifier != nil {
		s.notifier.LowStockAlert(product)
	}

	return nil
}
