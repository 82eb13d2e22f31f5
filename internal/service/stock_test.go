package service

import (
	"errors"
	"testing"

	"inventory-service/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	lowStock []uint
	expiry   []uint
}

func (f *fakeNotifier) LowStockAlert(product *model.Product) {
	f.lowStock = append(f.lowStock, product.ID)
}

func (f *fakeNotifier) ExpiryAlert(product *model.Product) {
	f.expiry = append(f.expiry, product.ID)
}

func createTestProduct(t *testing.T, db *gorm.DB, quantity, reorderLevel int) *model.Product {
	t.Helper()
	product := model.Product{
		Name:            "Widget",
		SKU:             "W-1",
		UnitPrice:       decimal.NewFromFloat(9.99),
		QuantityInStock: quantity,
		ReorderLevel:    reorderLevel,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return &product
}

func movementCount(t *testing.T, db *gorm.DB, productID uint) int64 {
	t.Helper()
	var count int64
	db.Model(&model.StockMovement{}).Where("product_id = ?", productID).Count(&count)
	return count
}

func TestApplyMovementSequence(t *testing.T) {
	db := openTestDB(t)
	svc := NewStockService(db, nil, zap.NewNop())
	product := createTestProduct(t, db, 0, 0)

	steps := []struct {
		movementType string
		quantity     int
		want         int
	}{
		{model.MovementIn, 10, 10},
		{model.MovementOut, 3, 7},
		{model.MovementAdjustment, 5, 5},
	}
	for _, step := range steps {
		if err := svc.ApplyMovement(product, step.movementType, step.quantity, "cycle count", nil); err != nil {
			t.Fatalf("%s movement failed: %v", step.movementType, err)
		}
		if product.QuantityInStock != step.want {
			t.Errorf("after %s: expected quantity %d, got %d", step.movementType, step.want, product.QuantityInStock)
		}
	}

	var stored model.Product
	db.First(&stored, product.ID)
	if stored.QuantityInStock != 5 {
		t.Errorf("expected stored quantity 5, got %d", stored.QuantityInStock)
	}
	if got := movementCount(t, db, product.ID); got != 3 {
		t.Errorf("expected 3 ledger entries, got %d", got)
	}
}

func TestApplyMovementInsufficientStock(t *testing.T) {
	db := openTestDB(t)
	svc := NewStockService(db, nil, zap.NewNop())
	product := createTestProduct(t, db, 5, 0)

	err := svc.ApplyMovement(product, model.MovementOut, 10, "oversell attempt", nil)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	var stored model.Product
	db.First(&stored, product.ID)
	if stored.QuantityInStock != 5 {
		t.Errorf("quantity changed on failed movement: %d", stored.QuantityInStock)
	}
	if product.QuantityInStock != 5 {
		t.Errorf("in-memory quantity changed on failed movement: %d", product.QuantityInStock)
	}
	if got := movementCount(t, db, product.ID); got != 0 {
		t.Errorf("ledger written on failed movement: %d entries", got)
	}
}

func TestApplyMovementAdjustmentIsAbsolute(t *testing.T) {
	db := openTestDB(t)
	svc := NewStockService(db, nil, zap.NewNop())
	product := createTestProduct(t, db, 50, 0)

	if err := svc.ApplyMovement(product, model.MovementAdjustment, 5, "shrinkage", nil); err != nil {
		t.Fatalf("adjustment failed: %v", err)
	}
	if product.QuantityInStock != 5 {
		t.Errorf("expected absolute quantity 5, got %d", product.QuantityInStock)
	}
}

func TestApplyMovementValidation(t *testing.T) {
	db := openTestDB(t)
	svc := NewStockService(db, nil, zap.NewNop())
	product := createTestProduct(t, db, 10, 0)

	if err := svc.ApplyMovement(product, model.MovementIn, 0, "restock", nil); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero quantity: expected ErrInvalidQuantity, got %v", err)
	}
	if err := svc.ApplyMovement(product, model.MovementIn, -4, "restock", nil); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative quantity: expected ErrInvalidQuantity, got %v", err)
	}
	if err := svc.ApplyMovement(product, model.MovementIn, 1, "   ", nil); !errors.Is(err, ErrReasonRequired) {
		t.Errorf("blank reason: expected ErrReasonRequired, got %v", err)
	}
	if err := svc.ApplyMovement(product, "transfer", 1, "restock", nil); !errors.Is(err, ErrUnknownMovementType) {
		t.Errorf("bad type: expected ErrUnknownMovementType, got %v", err)
	}
	if got := movementCount(t, db, product.ID); got != 0 {
		t.Errorf("ledger written on rejected movements: %d entries", got)
	}
}

func TestApplyMovementLowStockNotification(t *testing.T) {
	db := openTestDB(t)
	notifier := &fakeNotifier{}
	svc := NewStockService(db, notifier, zap.NewNop())
	product := createTestProduct(t, db, 20, 10)

	if err := svc.ApplyMovement(product, model.MovementOut, 5, "sale", nil); err != nil {
		t.Fatalf("movement failed: %v", err)
	}
	if len(notifier.lowStock) != 0 {
		t.Error("alert fired while stock is above the reorder level")
	}

	if err := svc.ApplyMovement(product, model.MovementOut, 7, "sale", nil); err != nil {
		t.Fatalf("movement failed: %v", err)
	}
	if len(notifier.lowStock) != 1 {
		t.Errorf("expected one low-stock alert, got %d", len(notifier.lowStock))
	}
}

func TestApplyMovementRecordsActor(t *testing.T) {
	db := openTestDB(t)
	svc := NewStockService(db, nil, zap.NewNop())
	product := createTestProduct(t, db, 0, 0)

	actor := model.User{Username: "clerk", Email: "clerk@example.com", Password: "x"}
	if err := db.Create(&actor).Error; err != nil {
		t.Fatalf("failed to create actor: %v", err)
	}

	if err := svc.ApplyMovement(product, model.MovementIn, 4, "delivery", &actor); err != nil {
		t.Fatalf("movement failed: %v", err)
	}

	var movement model.StockMovement
	db.Where("product_id = ?", product.ID).First(&movement)
	if movement.PerformedByID == nil || *movement.PerformedByID != actor.ID {
		t.Error("expected movement to record the acting user")
	}
	if movement.Reason != "delivery" {
		t.Errorf("unexpected reason %q", movement.Reason)
	}
}
