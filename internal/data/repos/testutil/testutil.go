// Package testutil opens throwaway databases for repository and engine
// tests. By default each call gets a private in-memory SQLite database;
// set TEST_POSTGRES_DSN to run the same tests against Postgres.
package testutil

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/daybook/internal/db"
	"github.com/yungbote/daybook/internal/pkg/logger"
)

var dbSeq atomic.Int64

// DB opens a migrated database scoped to the test. The SQLite DSN is
// unique per call so parallel tests never share state.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	var (
		conn *gorm.DB
		err  error
	)
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		dsn := fmt.Sprintf("file:daybook_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		tb.Fatalf("migrate test database: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// Tx begins a transaction that rolls back when the test finishes, so
// tests against a shared Postgres database leave no rows behind.
func Tx(tb testing.TB, conn *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := conn.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin test tx: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}

// Logger returns a no-op logger for constructors that require one.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("new test logger: %v", err)
	}
	return log
}
