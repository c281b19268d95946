// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/config"
	"storefront/db"
)

// New returns a migrated sqlite database private to the calling test.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Open(config.DB{Driver: "sqlite", DSN: dsn}, zap.NewNop())
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		tb.Fatalf("migrate test database: %v", err)
	}

	tb.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}
