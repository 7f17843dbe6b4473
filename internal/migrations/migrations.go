// Package migrations holds the embedded schema and applies it with goose.
package migrations

import (
	"context"
	"embed"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/farxc/dados-abertos/internal/db"
)

//go:embed sql/*.sql
var files embed.FS

// goose keeps its dialect and filesystem in package globals.
var mu sync.Mutex

func Up(ctx context.Context, conn *sqlx.DB) error {
	mu.Lock()
	defer mu.Unlock()

	dialect := "postgres"
	if conn.DriverName() == db.DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(files)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}
	if err := goose.UpContext(ctx, conn.DB, "sql"); err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}
