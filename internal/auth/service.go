package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingField       = errors.New("username, email and password are required")
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	cost int
	now  func() time.Time
}

type Option func(*Service)

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option { return func(s *Service) { s.cost = cost } }

func NewService(db *gorm.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{db: db, log: logger.OrNop(log), cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a user. A taken username or email yields ErrUserExists.
func (s *Service) CreateUser(ctx context.Context, username, email, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingField
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// The unique indexes catch a registration racing this one.
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate checks a username-or-email and password pair and stamps the login time.
// The returned user still carries the hash; callers must not expose it.
func (s *Service) Authenticate(ctx context.Context, handle, password string) (*models.User, error) {
	handle = strings.TrimSpace(handle)
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", handle, strings.ToLower(handle)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if missing := missingFields(user); len(missing) > 0 {
		s.log.Warn("user record missing fields", zap.Uint("user_id", user.ID), zap.Strings("fields", missing))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Warn("password verification error", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return &user, nil
}

func missingFields(u models.User) []string {
	var missing []string
	if u.Username == "" {
		missing = append(missing, "username")
	}
	if u.Email == "" {
		missing = append(missing, "email")
	}
	if u.PasswordHash == "" {
		missing = append(missing, "password_hash")
	}
	if u.Role == "" {
		missing = append(missing, "role")
	}
	return missing
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

// UserUpdate carries profile and role edits; nil fields are left alone.
type UserUpdate struct {
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

func (s *Service) UpdateUser(ctx context.Context, id uint, upd UserUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if email == "" {
			return nil, ErrMissingField
		}
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("email = ? AND id <> ?", email, id).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrUserExists
		}
		changes["email"] = email
	}
	if upd.Role != nil {
		if !models.ValidRole(*upd.Role) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *upd.Role)
		}
		changes["role"] = *upd.Role
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, ErrMissingField
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes["password_hash"] = string(hash)
	}
	if len(changes) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser is the administrative cleanup path; normal operation never deletes users.
func (s *Service) DeleteUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	s.log.Info("user deleted", zap.Uint("user_id", id))
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}
