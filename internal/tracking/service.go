package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPackageNotFound         = errors.New("package not found")
	ErrDuplicateTrackingNumber = errors.New("tracking number already registered")
	ErrTrackingNumberRequired  = errors.New("tracking number is required")
)

// Lookuper fetches carrier-side tracking information.
type Lookuper interface {
	Lookup(ctx context.Context, trackingNumber, carrier string) Info
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	tracker Lookuper
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(db *gorm.DB, log *zap.Logger, tracker Lookuper, opts ...Option) *Service {
	s := &Service{db: db, log: logger.OrNop(log), tracker: tracker, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type PackageInput struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
	Destination    string `json:"destination"`
	Notes          string `json:"notes"`
	CreatedBy      *uint  `json:"-"`
}

// CreatePackage registers a shipment as Pending with one history event.
func (s *Service) CreatePackage(ctx context.Context, in PackageInput) (*models.Package, error) {
	number := strings.TrimSpace(in.TrackingNumber)
	if number == "" {
		return nil, ErrTrackingNumberRequired
	}
	now := s.now()
	pkg := models.Package{
		TrackingNumber: number,
		Carrier:        strings.TrimSpace(in.Carrier),
		Status:         models.PackagePending,
		Destination:    in.Destination,
		Notes:          in.Notes,
		History: []models.TrackingEvent{{
			Status:    models.PackagePending,
			Details:   "Package registered",
			Timestamp: now,
		}},
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Package{}).Where("tracking_number = ?", number).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateTrackingNumber, number)
		}
		return tx.Create(&pkg).Error
	})
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ListPackages returns the newest packages first; limit <= 0 means 100.
func (s *Service) ListPackages(ctx context.Context, limit int) ([]models.Package, error) {
	if limit <= 0 {
		limit = 100
	}
	pkgs := []models.Package{}
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&pkgs).Error
	return pkgs, err
}

func (s *Service) GetPackage(ctx context.Context, id uint) (*models.Package, error) {
	var pkg models.Package
	err := s.db.WithContext(ctx).First(&pkg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// UpdateStatus appends one event and sets the current status together.
// The row is locked so concurrent updates cannot drop each other's events.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status models.PackageStatus, location, details string) (*models.Package, error) {
	var pkg models.Package
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pkg, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPackageNotFound
			}
			return err
		}
		if err := pkg.Status.TransitionTo(status); err != nil {
			return err
		}

		now := s.now()
		pkg.Status = status
		pkg.UpdatedAt = now
		pkg.History = append(pkg.History, models.TrackingEvent{
			Status:    status,
			Location:  location,
			Details:   details,
			Timestamp: now,
		})
		return tx.Model(&pkg).Select("status", "history", "updated_at").Updates(&pkg).Error
	})
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (s *Service) DeletePackage(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Package{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPackageNotFound
	}
	return nil
}

// Lookup queries the carrier for a stored package without changing it.
func (s *Service) Lookup(ctx context.Context, id uint) (*models.Package, Info, error) {
	pkg, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, Info{}, err
	}
	return pkg, s.tracker.Lookup(ctx, pkg.TrackingNumber, pkg.Carrier), nil
}

// Sync applies the carrier's current status to a stored package. Mock data is
// shown to users but never written, and an unchanged status adds no event.
func (s *Service) Sync(ctx context.Context, id uint) (*models.Package, Info, error) {
	pkg, info, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, Info{}, err
	}
	status, ok := info.Status.PackageStatus()
	if info.IsMock || !ok || status == pkg.Status {
		return pkg, info, nil
	}

	location, details := "", "Carrier update"
	if n := len(info.Events); n > 0 {
		// 17TRACK lists the latest event first.
		location, details = info.Events[0].Location, info.Events[0].Description
	}
	updated, err := s.UpdateStatus(ctx, id, status, location, details)
	if err != nil {
		return nil, info, err
	}
	s.log.Info("package synced from carrier",
		zap.String("tracking_number", updated.TrackingNumber),
		zap.String("status", string(status)))
	return updated, info, nil
}
