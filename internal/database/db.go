package database

import (
	"context"
	"fmt"
	"sync"

	"go-inventory-agent/internal/config"
	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	mu     sync.Mutex
	shared *gorm.DB
)

// Get returns the process-wide handle, connecting on first use.
// A failed connection is not memoized, but the caller is expected to treat it as fatal.
func Get(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if shared != nil {
		return shared, nil
	}
	db, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	shared = db
	return shared, nil
}

// Close releases the shared handle so a later Get reconnects.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if shared == nil {
		return nil
	}
	sqlDB, err := shared.DB()
	shared = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open connects without memoizing and pings within cfg.ConnectTimeout.
func Open(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.GormLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer; one connection keeps writers queued instead of failing.
		sqlDB.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	logger.OrNop(log).Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// InitDB creates tables and the unique/lookup indexes declared on the models.
// It is safe to run on every start: existing tables and indexes are left alone.
func InitDB(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
