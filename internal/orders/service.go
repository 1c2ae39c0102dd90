package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSalesOrderNotFound    = errors.New("sales order not found")
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")
	ErrDuplicateNumber       = errors.New("order number already exists")
	ErrSupplierRequired      = errors.New("purchase order needs a supplier")
	ErrCustomerRequired      = errors.New("sales order needs a customer name")
)

// StockLedger books stock received on purchase orders.
type StockLedger interface {
	ApplyStockChanges(tx *gorm.DB, changes []inventory.StockChange) error
}

// SupplierDirectory resolves suppliers named on purchase orders.
type SupplierDirectory interface {
	Get(ctx context.Context, id uint) (*models.Supplier, error)
	FindByName(ctx context.Context, name string) (*models.Supplier, error)
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	stock     StockLedger
	suppliers SupplierDirectory
	soNumber  utils.CodeFunc
	poNumber  utils.CodeFunc
	now       func() time.Time
}

type Option func(*Service)

// WithNumberFuncs replaces the sales and purchase order number generators.
func WithNumberFuncs(so, po utils.CodeFunc) Option {
	return func(s *Service) {
		if so != nil {
			s.soNumber = so
		}
		if po != nil {
			s.poNumber = po
		}
	}
}

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(db *gorm.DB, log *zap.Logger, stock StockLedger, suppliers SupplierDirectory, opts ...Option) *Service {
	s := &Service{
		db:        db,
		log:       logger.OrNop(log),
		stock:     stock,
		suppliers: suppliers,
		soNumber:  utils.DocumentNumber("SO"),
		poNumber:  utils.DocumentNumber("PO"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pickNumber keeps a supplied number if it is free, or generates one.
func pickNumber(tx *gorm.DB, model any, column, supplied string, next utils.CodeFunc) (string, error) {
	taken := func(code string) (bool, error) {
		var n int64
		err := tx.Model(model).Where(column+" = ?", code).Count(&n).Error
		return n > 0, err
	}
	if supplied == "" {
		return utils.UniqueCode(next, taken)
	}
	exists, err := taken(supplied)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateNumber, supplied)
	}
	return supplied, nil
}

func dayOrToday(t *time.Time, now time.Time) time.Time {
	if t != nil && !t.IsZero() {
		return *t
	}
	return now
}
