package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PurchaseOrderInput struct {
	PONumber         string                     `json:"po_number"`
	SupplierID       *uint                      `json:"supplier_id"`
	SupplierName     string                     `json:"supplier_name"`
	OrderDate        *time.Time                 `json:"order_date"`
	ExpectedDelivery *time.Time                 `json:"expected_delivery"`
	Items            models.LineItems           `json:"items"`
	Status           models.PurchaseOrderStatus `json:"status"`
	Notes            string                     `json:"notes"`
	ShippingAddress  string                     `json:"shipping_address"`
	CreatedBy        *uint                      `json:"-"`
}

// CreatePurchaseOrder records an order with a supplier, Draft unless told otherwise.
// A supplier given only by name is linked when the directory knows it; an unknown
// name is kept as free text.
func (s *Service) CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput) (*models.PurchaseOrder, error) {
	if err := in.Items.Validate(); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.PODraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStatus, status)
	}
	if status == models.POReceived {
		return nil, fmt.Errorf("%w: create the order first, then mark it received", models.ErrInvalidTransition)
	}

	supplierID, supplierName, err := s.resolveSupplier(ctx, in.SupplierID, strings.TrimSpace(in.SupplierName))
	if err != nil {
		return nil, err
	}

	items := in.Items.WithTotals()
	now := s.now()
	var po models.PurchaseOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := pickNumber(tx, &models.PurchaseOrder{}, "po_number", strings.TrimSpace(in.PONumber), s.poNumber)
		if err != nil {
			return err
		}
		po = models.PurchaseOrder{
			PONumber:         number,
			SupplierID:       supplierID,
			SupplierName:     supplierName,
			OrderDate:        dayOrToday(in.OrderDate, now),
			ExpectedDelivery: in.ExpectedDelivery,
			Items:            items,
			TotalAmount:      models.RoundMoney(items.Subtotal()),
			Status:           status,
			Notes:            in.Notes,
			ShippingAddress:  in.ShippingAddress,
			CreatedBy:        in.CreatedBy,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return tx.Create(&po).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("purchase order created",
		zap.String("po_number", po.PONumber),
		zap.String("supplier", po.SupplierName),
		zap.String("total", po.TotalAmount.StringFixed(2)))
	return &po, nil
}

func (s *Service) resolveSupplier(ctx context.Context, id *uint, name string) (*uint, string, error) {
	if id != nil {
		if s.suppliers == nil {
			return id, name, nil
		}
		sup, err := s.suppliers.Get(ctx, *id)
		if err != nil {
			return nil, "", err
		}
		return &sup.ID, sup.Name, nil
	}
	if name == "" {
		return nil, "", ErrSupplierRequired
	}
	if s.suppliers != nil {
		if sup, err := s.suppliers.FindByName(ctx, name); err == nil {
			return &sup.ID, sup.Name, nil
		}
	}
	return nil, name, nil
}

// ListPurchaseOrders returns the newest orders first; limit <= 0 means 100.
func (s *Service) ListPurchaseOrders(ctx context.Context, limit int) ([]models.PurchaseOrder, error) {
	if limit <= 0 {
		limit = 100
	}
	pos := []models.PurchaseOrder{}
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&pos).Error
	return pos, err
}

// PurchaseOrdersBetween returns orders dated in [from, to).
func (s *Service) PurchaseOrdersBetween(ctx context.Context, from, to time.Time) ([]models.PurchaseOrder, error) {
	pos := []models.PurchaseOrder{}
	err := s.db.WithContext(ctx).
		Where("order_date >= ? AND order_date < ?", from, to).
		Order("order_date, id").
		Find(&pos).Error
	return pos, err
}

func (s *Service) GetPurchaseOrder(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := s.db.WithContext(ctx).First(&po, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPurchaseOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// existingProducts reports which product IDs referenced by items still exist.
func existingProducts(tx *gorm.DB, items models.LineItems) (map[uint]bool, error) {
	var ids []uint
	for _, it := range items {
		if it.ProductID != nil {
			ids = append(ids, *it.ProductID)
		}
	}
	live := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return live, nil
	}
	var found []uint
	if err := tx.Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		live[id] = true
	}
	return live, nil
}

// UpdatePurchaseOrderStatus moves a purchase order along its lifecycle.
// Receiving books one purchase movement per product-linked line, in the same
// transaction as the status change. Lines whose product has been deleted are
// skipped.
func (s *Service) UpdatePurchaseOrderStatus(ctx context.Context, id uint, status models.PurchaseOrderStatus) (*models.PurchaseOrder, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po models.PurchaseOrder
		if err := tx.First(&po, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseOrderNotFound
			}
			return err
		}
		if err := po.Status.TransitionTo(status); err != nil {
			return err
		}
		if err := compareAndSetStatus(tx, &models.PurchaseOrder{}, id, po.Status, status, s.now()); err != nil {
			return err
		}
		if status != models.POReceived || s.stock == nil {
			return nil
		}
		live, err := existingProducts(tx, po.Items)
		if err != nil {
			return err
		}
		var changes []inventory.StockChange
		for _, it := range po.Items {
			if it.ProductID == nil {
				continue
			}
			if !live[*it.ProductID] {
				s.log.Warn("received line for deleted product, no stock booked",
					zap.String("po_number", po.PONumber),
					zap.Uint("product_id", *it.ProductID),
					zap.String("name", it.Name))
				continue
			}
			changes = append(changes, inventory.StockChange{
				ProductID:    *it.ProductID,
				Delta:        it.Quantity,
				MovementType: models.MovementPurchase,
				Notes:        "PO " + po.PONumber,
			})
		}
		return s.stock.ApplyStockChanges(tx, changes)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("purchase order status updated", zap.Uint("po_id", id), zap.String("status", string(status)))
	return s.GetPurchaseOrder(ctx, id)
}
