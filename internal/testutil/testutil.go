// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"go-inventory-agent/internal/config"
	"go-inventory-agent/internal/database"

	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in a temp dir, closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DBConfig{
		Driver:         "sqlite",
		DSN:            filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000",
		ConnectTimeout: 5 * time.Second,
		LogLevel:       "silent",
	}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.InitDB(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
