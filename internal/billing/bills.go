package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultTaxRate is the GST rate applied when a bill names none.
var DefaultTaxRate = decimal.RequireFromString("0.18")

// BillInput is a point-of-sale cart. TaxRate is a fraction; nil means DefaultTaxRate.
type BillInput struct {
	CustomerName    string           `json:"customer_name"`
	CustomerContact string           `json:"customer_contact"`
	Items           models.LineItems `json:"items"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	Discount        decimal.Decimal  `json:"discount"`
	CreatedBy       *uint            `json:"-"`
}

// CreateBill settles a cart all-or-nothing. Inside one transaction it reserves a
// bill number, checks stock for every product line, inserts the bill and books
// one sale movement per product. If any product is short the whole bill is
// rejected with inventory.ErrInsufficientStock and nothing is written.
// Lines without a product reference are billed without touching stock.
func (s *Service) CreateBill(ctx context.Context, in BillInput) (*models.Bill, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyBill
	}
	if err := in.Items.Validate(); err != nil {
		return nil, err
	}
	rate := DefaultTaxRate
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	if err := models.CheckTaxRate(rate); err != nil {
		return nil, err
	}
	if in.Discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount cannot be negative", models.ErrInvalidLineItem)
	}

	items := in.Items.WithTotals()
	demand := map[uint]int{}
	for _, it := range items {
		if it.ProductID != nil {
			demand[*it.ProductID] += it.Quantity
		}
	}

	var bill models.Bill
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := utils.UniqueCode(s.billNumber, numberTaken(tx, &models.Bill{}, "bill_number"))
		if err != nil {
			return err
		}

		products, err := s.stock.CheckAvailability(tx, demand)
		if err != nil {
			return err
		}
		for i, it := range items {
			if it.ProductID == nil {
				continue
			}
			p := products[*it.ProductID]
			if it.Name == "" {
				items[i].Name = p.Name
			}
			if it.SKU == "" {
				items[i].SKU = p.SKU
			}
		}

		totals := models.ComputeTotals(items.Subtotal(), rate, in.Discount)
		bill = models.Bill{
			BillNumber:      number,
			CustomerName:    strings.TrimSpace(in.CustomerName),
			CustomerContact: strings.TrimSpace(in.CustomerContact),
			Items:           items,
			Subtotal:        totals.Subtotal,
			TaxRate:         totals.TaxRate,
			Tax:             totals.Tax,
			Discount:        totals.Discount,
			Total:           totals.Total,
			CreatedBy:       in.CreatedBy,
			CreatedAt:       s.now(),
		}
		if err := tx.Create(&bill).Error; err != nil {
			return err
		}

		return s.stock.ApplyStockChanges(tx, saleChanges(demand, number))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("bill created",
		zap.String("bill_number", bill.BillNumber),
		zap.String("total", bill.Total.StringFixed(2)),
		zap.Int("lines", len(bill.Items)))
	return &bill, nil
}

func saleChanges(demand map[uint]int, billNumber string) []inventory.StockChange {
	ids := make([]uint, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	// Fixed order keeps concurrent bills from locking rows in opposite orders.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	changes := make([]inventory.StockChange, 0, len(ids))
	for _, id := range ids {
		changes = append(changes, inventory.StockChange{
			ProductID:    id,
			Delta:        -demand[id],
			MovementType: models.MovementSale,
			Notes:        "Bill " + billNumber,
		})
	}
	return changes
}

func (s *Service) GetBill(ctx context.Context, id uint) (*models.Bill, error) {
	return s.findBill(ctx, "id = ?", id)
}

func (s *Service) GetBillByNumber(ctx context.Context, number string) (*models.Bill, error) {
	return s.findBill(ctx, "bill_number = ?", number)
}

func (s *Service) findBill(ctx context.Context, query string, arg any) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.WithContext(ctx).Where(query, arg).First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// ListBills returns the newest bills first; limit <= 0 means 100.
func (s *Service) ListBills(ctx context.Context, limit int) ([]models.Bill, error) {
	if limit <= 0 {
		limit = 100
	}
	bills := []models.Bill{}
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&bills).Error
	return bills, err
}

// SearchBills matches bill number or customer name.
func (s *Service) SearchBills(ctx context.Context, term string) ([]models.Bill, error) {
	bills := []models.Bill{}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return bills, nil
	}
	pattern := "%" + strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(term) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(bill_number) LIKE ? ESCAPE '!' OR LOWER(customer_name) LIKE ? ESCAPE '!'", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&bills).Error
	return bills, err
}

// BillsBetween returns bills created in [from, to).
func (s *Service) BillsBetween(ctx context.Context, from, to time.Time) ([]models.Bill, error) {
	bills := []models.Bill{}
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at, id").
		Find(&bills).Error
	return bills, err
}

// TotalSales sums bill totals created in [from, to).
func (s *Service) TotalSales(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	bills, err := s.BillsBetween(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, b := range bills {
		sum = sum.Add(b.Total)
	}
	return sum, nil
}

// DeleteBill removes the bill only. Stock sold on it is not returned.
func (s *Service) DeleteBill(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Bill{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBillNotFound
	}
	s.log.Info("bill deleted", zap.Uint("bill_id", id))
	return nil
}
