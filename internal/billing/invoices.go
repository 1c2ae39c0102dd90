package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceInput describes a new invoice. TaxRate is a fraction; the HTTP layer
// converts the percentage users type.
type InvoiceInput struct {
	InvoiceNumber string               `json:"invoice_number"`
	CustomerName  string               `json:"customer_name"`
	InvoiceDate   *time.Time           `json:"invoice_date"`
	DueDate       *time.Time           `json:"due_date"`
	Items         models.LineItems     `json:"items"`
	TaxRate       decimal.Decimal      `json:"tax_rate"`
	Status        models.InvoiceStatus `json:"status"`
	Notes         string               `json:"notes"`
	CreatedBy     *uint                `json:"-"`
}

func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	return s.createInvoice(ctx, in, nil)
}

// CreateInvoiceFromSalesOrder bills a sales order: items and customer are copied
// from the order unless the input overrides them.
func (s *Service) CreateInvoiceFromSalesOrder(ctx context.Context, salesOrderID uint, in InvoiceInput) (*models.Invoice, error) {
	if s.orders == nil {
		return nil, ErrSalesOrderRequired
	}
	so, err := s.orders.GetSalesOrder(ctx, salesOrderID)
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		in.Items = so.Items
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		in.CustomerName = so.CustomerName
	}
	return s.createInvoice(ctx, in, &so.ID)
}

func (s *Service) createInvoice(ctx context.Context, in InvoiceInput, salesOrderID *uint) (*models.Invoice, error) {
	if err := in.Items.Validate(); err != nil {
		return nil, err
	}
	if err := models.CheckTaxRate(in.TaxRate); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.InvoiceDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStatus, status)
	}

	items := in.Items.WithTotals()
	totals := models.ComputeTotals(items.Subtotal(), in.TaxRate, decimal.Zero)
	now := s.now()
	invoiceDate := now
	if in.InvoiceDate != nil {
		invoiceDate = *in.InvoiceDate
	}

	var invoice models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.pickNumber(tx, strings.TrimSpace(in.InvoiceNumber))
		if err != nil {
			return err
		}
		invoice = models.Invoice{
			InvoiceNumber: number,
			CustomerName:  strings.TrimSpace(in.CustomerName),
			SalesOrderID:  salesOrderID,
			InvoiceDate:   invoiceDate,
			DueDate:       in.DueDate,
			Items:         items,
			Subtotal:      totals.Subtotal,
			TaxRate:       totals.TaxRate,
			TaxAmount:     totals.Tax,
			TotalAmount:   totals.Total,
			Status:        status,
			Notes:         in.Notes,
			CreatedBy:     in.CreatedBy,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) pickNumber(tx *gorm.DB, supplied string) (string, error) {
	taken := numberTaken(tx, &models.Invoice{}, "invoice_number")
	if supplied == "" {
		return utils.UniqueCode(s.invoiceNumber, taken)
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

// ListInvoices returns the newest invoices first; limit <= 0 means 100.
func (s *Service) ListInvoices(ctx context.Context, limit int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = 100
	}
	invoices := []models.Invoice{}
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&invoices).Error
	return invoices, err
}

func (s *Service) GetInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoiceStatus moves an invoice along Draft -> Sent -> Paid/Overdue.
func (s *Service) UpdateInvoiceStatus(ctx context.Context, id uint, status models.InvoiceStatus) (*models.Invoice, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if err := invoice.Status.TransitionTo(status); err != nil {
			return err
		}
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND status = ?", id, invoice.Status).
			Updates(map[string]any{"status": status, "updated_at": s.now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: status changed concurrently", models.ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice status updated", zap.Uint("invoice_id", id), zap.String("status", string(status)))
	return s.GetInvoice(ctx, id)
}
