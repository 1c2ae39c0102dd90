package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/metrics"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidMovementType = errors.New("invalid movement type")
	ErrInvalidProduct      = errors.New("invalid product")
	ErrSKUExists           = errors.New("sku already exists")
)

// Service owns the product catalog and the stock ledger.
// Product quantities change only through ledgered updates.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.Metrics
	newSKU  utils.CodeFunc
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithSKUFunc replaces the SKU generator.
func WithSKUFunc(f utils.CodeFunc) Option { return func(s *Service) { s.newSKU = f } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(db *gorm.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{db: db, log: logger.OrNop(log), newSKU: utils.SKU, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProductInput holds the caller-supplied fields of a new product.
type ProductInput struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	ReorderLevel int             `json:"reorder_level"`
	Quantity     int             `json:"quantity"`
	SupplierID   *uint           `json:"supplier_id"`
}

// InputFromProduct lifts a decoded product (legacy "stock" key included) into an input.
func InputFromProduct(p models.Product) ProductInput {
	return ProductInput{
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Unit:         p.Unit,
		Price:        p.Price,
		Cost:         p.Cost,
		ReorderLevel: p.ReorderLevel,
		Quantity:     p.Quantity,
		SupplierID:   p.SupplierID,
	}
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case in.Quantity < 0:
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidProduct)
	case in.ReorderLevel < 0:
		return fmt.Errorf("%w: reorder level cannot be negative", ErrInvalidProduct)
	case in.Price.IsNegative() || in.Cost.IsNegative():
		return fmt.Errorf("%w: price and cost cannot be negative", ErrInvalidProduct)
	}
	return nil
}

// CreateProduct inserts the product together with its initial_stock ledger entry.
// A blank SKU is generated; a supplied one must be free.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sku, err := s.pickSKU(tx, strings.TrimSpace(in.SKU))
		if err != nil {
			return err
		}
		now := s.now()
		product = models.Product{
			SKU:          sku,
			Name:         strings.TrimSpace(in.Name),
			Description:  in.Description,
			Category:     strings.TrimSpace(in.Category),
			Unit:         in.Unit,
			Price:        in.Price,
			Cost:         in.Cost,
			ReorderLevel: in.ReorderLevel,
			Quantity:     in.Quantity,
			SupplierID:   in.SupplierID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return tx.Create(&models.StockMovement{
			ProductID:      product.ID,
			QuantityChange: in.Quantity,
			MovementType:   models.MovementInitialStock,
			Notes:          "Initial stock",
			Timestamp:      now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) pickSKU(tx *gorm.DB, supplied string) (string, error) {
	taken := func(code string) (bool, error) {
		var n int64
		err := tx.Model(&models.Product{}).Where("sku = ?", code).Count(&n).Error
		return n > 0, err
	}
	if supplied == "" {
		return utils.UniqueCode(s.newSKU, taken)
	}
	exists, err := taken(supplied)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrSKUExists, supplied)
	}
	return supplied, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return getProduct(s.db.WithContext(ctx), "id = ?", id)
}

func (s *Service) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return getProduct(s.db.WithContext(ctx), "sku = ?", sku)
}

func getProduct(db *gorm.DB, query string, arg any) (*models.Product, error) {
	var p models.Product
	err := db.Where(query, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductFilter narrows ListProducts. Zero values mean no restriction.
type ProductFilter struct {
	Category string
	Limit    int
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Order("name, id")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	products := []models.Product{}
	err := q.Find(&products).Error
	return products, err
}

func (s *Service) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.ListProducts(ctx, ProductFilter{Category: category})
}

// Categories lists the distinct non-empty categories in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("category <> ''").
		Distinct().Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// ProductUpdate carries field edits. Quantity is deliberately absent.
type ProductUpdate struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	Unit          *string          `json:"unit"`
	Price         *decimal.Decimal `json:"price"`
	Cost          *decimal.Decimal `json:"cost"`
	ReorderLevel  *int             `json:"reorder_level"`
	SupplierID    *uint            `json:"supplier_id"`
	ClearSupplier bool             `json:"clear_supplier"` // unlinks the supplier, wins over SupplierID
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, upd ProductUpdate) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
		}
		changes["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		changes["description"] = *upd.Description
	}
	if upd.Category != nil {
		changes["category"] = strings.TrimSpace(*upd.Category)
	}
	if upd.Unit != nil {
		changes["unit"] = *upd.Unit
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
		}
		changes["price"] = *upd.Price
	}
	if upd.Cost != nil {
		if upd.Cost.IsNegative() {
			return nil, fmt.Errorf("%w: cost cannot be negative", ErrInvalidProduct)
		}
		changes["cost"] = *upd.Cost
	}
	if upd.ReorderLevel != nil {
		if *upd.ReorderLevel < 0 {
			return nil, fmt.Errorf("%w: reorder level cannot be negative", ErrInvalidProduct)
		}
		changes["reorder_level"] = *upd.ReorderLevel
	}
	switch {
	case upd.ClearSupplier:
		changes["supplier_id"] = nil
	case upd.SupplierID != nil:
		changes["supplier_id"] = *upd.SupplierID
	}
	if len(changes) == 0 {
		return product, nil
	}
	changes["updated_at"] = s.now()

	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product row only. Ledger entries and document
// line items that mention it are kept as history.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// SearchProducts splits term on whitespace; every token must appear, case-insensitively,
// in at least one of name, SKU, category or description.
func (s *Service) SearchProducts(ctx context.Context, term string) ([]models.Product, error) {
	products := []models.Product{}
	tokens := strings.Fields(strings.ToLower(term))
	if len(tokens) == 0 {
		return products, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Product{})
	for _, tok := range tokens {
		pattern := "%" + escapeLike(tok) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(sku) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern, pattern)
	}
	err := q.Order("name, id").Find(&products).Error
	return products, err
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// LowStockItems returns products at or below their reorder level.
func (s *Service) LowStockItems(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Where("quantity <= reorder_level").
		Order("quantity, name").
		Find(&products).Error
	return products, err
}
