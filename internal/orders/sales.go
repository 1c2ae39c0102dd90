package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-agent/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SalesOrderInput struct {
	OrderNumber  string           `json:"order_number"`
	CustomerName string           `json:"customer_name"`
	OrderDate    *time.Time       `json:"order_date"`
	DeliveryDate *time.Time       `json:"delivery_date"`
	Items        models.LineItems `json:"items"`
	Notes        string           `json:"notes"`
	CreatedBy    *uint            `json:"-"`
}

// CreateSalesOrder records a customer order as Pending. Stock is not reserved.
func (s *Service) CreateSalesOrder(ctx context.Context, in SalesOrderInput) (*models.SalesOrder, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, ErrCustomerRequired
	}
	if err := in.Items.Validate(); err != nil {
		return nil, err
	}
	items := in.Items.WithTotals()
	now := s.now()

	var order models.SalesOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := pickNumber(tx, &models.SalesOrder{}, "order_number", strings.TrimSpace(in.OrderNumber), s.soNumber)
		if err != nil {
			return err
		}
		order = models.SalesOrder{
			OrderNumber:  number,
			CustomerName: strings.TrimSpace(in.CustomerName),
			OrderDate:    dayOrToday(in.OrderDate, now),
			DeliveryDate: in.DeliveryDate,
			Items:        items,
			TotalAmount:  models.RoundMoney(items.Subtotal()),
			Status:       models.SOPending,
			Notes:        in.Notes,
			CreatedBy:    in.CreatedBy,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListSalesOrders returns the newest orders first; limit <= 0 means 100.
func (s *Service) ListSalesOrders(ctx context.Context, limit int) ([]models.SalesOrder, error) {
	if limit <= 0 {
		limit = 100
	}
	orders := []models.SalesOrder{}
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (s *Service) GetSalesOrder(ctx context.Context, id uint) (*models.SalesOrder, error) {
	var order models.SalesOrder
	err := s.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSalesOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) UpdateSalesOrderStatus(ctx context.Context, id uint, status models.SalesOrderStatus) (*models.SalesOrder, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.SalesOrder
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSalesOrderNotFound
			}
			return err
		}
		if err := order.Status.TransitionTo(status); err != nil {
			return err
		}
		return compareAndSetStatus(tx, &models.SalesOrder{}, id, order.Status, status, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("sales order status updated", zap.Uint("order_id", id), zap.String("status", string(status)))
	return s.GetSalesOrder(ctx, id)
}

// compareAndSetStatus writes the new status only if the row still holds the old one.
func compareAndSetStatus[S ~string](tx *gorm.DB, model any, id uint, from, to S, now time.Time) error {
	res := tx.Model(model).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: status changed concurrently", models.ErrInvalidTransition)
	}
	return nil
}
