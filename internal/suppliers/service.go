package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrNameRequired     = errors.New("supplier name is required")
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: logger.OrNop(log)}
}

func (s *Service) Create(ctx context.Context, sup models.Supplier) (*models.Supplier, error) {
	sup.ID = 0
	sup.Name = strings.TrimSpace(sup.Name)
	if sup.Name == "" {
		return nil, ErrNameRequired
	}
	if err := s.db.WithContext(ctx).Create(&sup).Error; err != nil {
		return nil, err
	}
	return &sup, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	var sup models.Supplier
	err := s.db.WithContext(ctx).First(&sup, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// FindByName matches the whole name, ignoring case and surrounding space.
func (s *Service) FindByName(ctx context.Context, name string) (*models.Supplier, error) {
	var sup models.Supplier
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id").
		First(&sup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrSupplierNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// List returns suppliers by name; limit <= 0 means all of them.
func (s *Service) List(ctx context.Context, limit int) ([]models.Supplier, error) {
	q := s.db.WithContext(ctx).Order("name, id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	suppliers := []models.Supplier{}
	err := q.Find(&suppliers).Error
	return suppliers, err
}

// Search matches term against name, contact person and email.
func (s *Service) Search(ctx context.Context, term string) ([]models.Supplier, error) {
	suppliers := []models.Supplier{}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return suppliers, nil
	}
	pattern := "%" + strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(term) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(contact_person) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'", pattern, pattern, pattern).
		Order("name, id").
		Find(&suppliers).Error
	return suppliers, err
}

// Update overwrites the editable fields with those of sup.
func (s *Service) Update(ctx context.Context, id uint, sup models.Supplier) (*models.Supplier, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sup.Name) == "" {
		return nil, ErrNameRequired
	}
	err = s.db.WithContext(ctx).Model(existing).Select("name", "contact_person", "email", "phone", "address", "notes").
		Updates(models.Supplier{
			Name:          strings.TrimSpace(sup.Name),
			ContactPerson: sup.ContactPerson,
			Email:         sup.Email,
			Phone:         sup.Phone,
			Address:       sup.Address,
			Notes:         sup.Notes,
		}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Supplier{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSupplierNotFound
	}
	s.log.Info("supplier deleted", zap.Uint("supplier_id", id))
	return nil
}
