package database

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated in-memory sqlite database private to t.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	return openTestDB(t, t.Name())
}

func openTestDB(t testing.TB, name string) *gorm.DB {
	t.Helper()

	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(zaptest.NewLogger(t)),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	// keep one connection so the shared in-memory database outlives pool churn
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
