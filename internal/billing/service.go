package billing

import (
	"context"
	"errors"
	"time"

	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyBill          = errors.New("bill has no items")
	ErrBillNotFound       = errors.New("bill not found")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrDuplicateNumber    = errors.New("document number already exists")
	ErrSalesOrderRequired = errors.New("sales order lookup is not configured")
)

// StockLedger is the part of the inventory service billing drives.
type StockLedger interface {
	CheckAvailability(tx *gorm.DB, demand map[uint]int) (map[uint]models.Product, error)
	ApplyStockChanges(tx *gorm.DB, changes []inventory.StockChange) error
}

// SalesOrderSource resolves the order an invoice is raised against.
type SalesOrderSource interface {
	GetSalesOrder(ctx context.Context, id uint) (*models.SalesOrder, error)
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	stock         StockLedger
	orders        SalesOrderSource
	billNumber    utils.CodeFunc
	invoiceNumber utils.CodeFunc
	now           func() time.Time
}

type Option func(*Service)

func WithSalesOrders(src SalesOrderSource) Option { return func(s *Service) { s.orders = src } }

// WithNumberFuncs replaces the bill and invoice number generators.
func WithNumberFuncs(bill, invoice utils.CodeFunc) Option {
	return func(s *Service) {
		if bill != nil {
			s.billNumber = bill
		}
		if invoice != nil {
			s.invoiceNumber = invoice
		}
	}
}

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(db *gorm.DB, log *zap.Logger, stock StockLedger, opts ...Option) *Service {
	s := &Service{
		db:            db,
		log:           logger.OrNop(log),
		stock:         stock,
		billNumber:    utils.DocumentNumber("BILL"),
		invoiceNumber: utils.DocumentNumber("INV"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// numberTaken returns an existence check on one unique document-number column.
func numberTaken(tx *gorm.DB, model any, column string) func(string) (bool, error) {
	return func(code string) (bool, error) {
		var n int64
		err := tx.Model(model).Where(column+" = ?", code).Count(&n).Error
		return n > 0, err
	}
}
