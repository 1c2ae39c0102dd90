package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go-inventory-agent/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockChange is one ledgered quantity change.
type StockChange struct {
	ProductID    uint
	Delta        int
	MovementType string
	Notes        string
}

// checkManualMovement keeps hand-entered movements consistent with their type:
// opening stock is only booked when a product is created, sales and damage
// take stock out, purchases and returns bring it in.
func checkManualMovement(movementType string, delta int) error {
	if !models.ValidMovementType(movementType) {
		return fmt.Errorf("%w: %q", ErrInvalidMovementType, movementType)
	}
	switch {
	case delta == 0:
		return fmt.Errorf("%w: delta must not be zero", ErrInvalidMovementType)
	case movementType == models.MovementInitialStock:
		return fmt.Errorf("%w: %s is recorded when a product is created", ErrInvalidMovementType, movementType)
	case (movementType == models.MovementSale || movementType == models.MovementDamage) && delta > 0:
		return fmt.Errorf("%w: %s must reduce stock", ErrInvalidMovementType, movementType)
	case (movementType == models.MovementPurchase || movementType == models.MovementReturn) && delta < 0:
		return fmt.Errorf("%w: %s must add stock", ErrInvalidMovementType, movementType)
	}
	return nil
}

// UpdateStock applies delta to a product's quantity and records the movement.
// The change is rejected, and nothing is written, if it would make the quantity negative.
func (s *Service) UpdateStock(ctx context.Context, productID uint, delta int, movementType, notes string) (*models.Product, error) {
	if err := checkManualMovement(movementType, delta); err != nil {
		return nil, err
	}
	var product *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ApplyStockChanges(tx, []StockChange{{
			ProductID:    productID,
			Delta:        delta,
			MovementType: movementType,
			Notes:        notes,
		}}); err != nil {
			return err
		}
		var err error
		product, err = getProduct(tx, "id = ?", productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ApplyStockChanges runs inside a transaction owned by the caller; the first
// rejected change returns an error and the caller is expected to roll back.
func (s *Service) ApplyStockChanges(tx *gorm.DB, changes []StockChange) error {
	for _, c := range changes {
		err := s.applyChange(tx, c)
		s.metrics.StockUpdate(c.MovementType, outcome(err))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyChange(tx *gorm.DB, c StockChange) error {
	if !models.ValidMovementType(c.MovementType) {
		return fmt.Errorf("%w: %q", ErrInvalidMovementType, c.MovementType)
	}

	now := s.now()
	res := tx.Model(&models.Product{}).
		Where("id = ? AND quantity + ? >= 0", c.ProductID, c.Delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", c.Delta),
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&models.Product{}).Where("id = ?", c.ProductID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: id %d", ErrProductNotFound, c.ProductID)
		}
		s.log.Info("stock update rejected",
			zap.Uint("product_id", c.ProductID),
			zap.Int("delta", c.Delta),
			zap.String("movement_type", c.MovementType))
		return fmt.Errorf("%w: product %d cannot change by %d", ErrInsufficientStock, c.ProductID, c.Delta)
	}

	return tx.Create(&models.StockMovement{
		ProductID:      c.ProductID,
		QuantityChange: c.Delta,
		MovementType:   c.MovementType,
		Notes:          c.Notes,
		Timestamp:      now,
	}).Error
}

// CheckAvailability verifies, inside tx, that every product can give up the
// demanded units and returns the products it loaded. Demand is keyed by
// product ID and already summed per product.
func (s *Service) CheckAvailability(tx *gorm.DB, demand map[uint]int) (map[uint]models.Product, error) {
	byID := make(map[uint]models.Product, len(demand))
	if len(demand) == 0 {
		return byID, nil
	}
	ids := make([]uint, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
		}
		if p.Quantity < demand[id] {
			return nil, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientStock, p.Name, p.Quantity, demand[id])
		}
	}
	return byID, nil
}

// StockMovements lists ledger entries, newest first. A nil productID lists all products.
func (s *Service) StockMovements(ctx context.Context, productID *uint, limit int) ([]models.StockMovement, error) {
	q := s.db.WithContext(ctx).Order("timestamp DESC, id DESC")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	movements := []models.StockMovement{}
	err := q.Find(&movements).Error
	return movements, err
}

// ReplayLedger rebuilds a quantity from ledger entries in timestamp order.
func ReplayLedger(movements []models.StockMovement) int {
	sorted := append([]models.StockMovement(nil), movements...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	qty := 0
	for _, m := range sorted {
		qty += m.QuantityChange
	}
	return qty
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInsufficientStock):
		return "rejected"
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidMovementType):
		return "invalid"
	default:
		return "error"
	}
}
