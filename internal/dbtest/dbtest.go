// Package dbtest opens a migrated sqlite database for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/farxc/dados-abertos/internal/db"
	"github.com/farxc/dados-abertos/internal/migrations"
)

func New(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.New(db.DriverSQLite, db.SQLiteDSN(path), 1, 1, "15m")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := migrations.Up(context.Background(), conn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return conn
}

// Count returns the number of rows in table.
func Count(t testing.TB, conn *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := conn.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
