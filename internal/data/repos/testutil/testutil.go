// Package testutil provides shared helpers for repo and service tests.
// Each test runs inside a transaction that is rolled back on cleanup, so
// tests can share one migrated database without interfering.
package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/barhand/barhand-backend/internal/data/db"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

var (
	sharedDB  *gorm.DB
	sharedErr error
	once      sync.Once
)

// Logger returns a quiet logger for tests.
func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}

// DB returns a migrated database handle. When TEST_POSTGRES_DSN is set the
// tests run against that postgres instance, otherwise against a shared
// in-memory sqlite database.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	once.Do(func() {
		cfg := &gorm.Config{
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
			DisableForeignKeyConstraintWhenMigrating: true,
			TranslateError:                           true,
		}
		var gdb *gorm.DB
		var err error
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			gdb, err = gorm.Open(postgres.Open(dsn), cfg)
		} else {
			gdb, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), cfg)
		}
		if err != nil {
			sharedErr = err
			return
		}
		if err := db.AutoMigrateAll(gdb); err != nil {
			sharedErr = err
			return
		}
		sharedDB = gdb
	})
	if sharedErr != nil {
		t.Fatalf("open test db: %v", sharedErr)
	}
	return sharedDB
}

// Tx begins a transaction on the shared test database and registers a
// rollback for cleanup.
func Tx(t *testing.T) *gorm.DB {
	t.Helper()
	tx := DB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx
}
