package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	KindLocalities = "localities"
	KindIBGEPasses = "ibge_passes"
	KindCompanies  = "companies"
)

var (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type ImportRunStore struct {
	q sqlx.ExtContext
}

func (rs *ImportRunStore) Insert(ctx context.Context, run *ImportRun) error {
	query := `INSERT INTO import_runs (
		id,
		kind,
		source,
		status,
		created_count,
		processed_rows,
		started_at
	) VALUES (
		:id,
		:kind,
		:source,
		:status,
		:created_count,
		:processed_rows,
		:started_at
	)`

	_, err := sqlx.NamedExecContext(ctx, rs.q, query, run)
	return errors.Wrapf(err, "insert import run %s", run.ID)
}

func (rs *ImportRunStore) Finish(ctx context.Context, run *ImportRun) error {
	query := `UPDATE import_runs SET
		status = :status,
		created_count = :created_count,
		processed_rows = :processed_rows,
		error = :error,
		finished_at = :finished_at
	WHERE id = :id`

	_, err := sqlx.NamedExecContext(ctx, rs.q, query, run)
	return errors.Wrapf(err, "finish import run %s", run.ID)
}

func (rs *ImportRunStore) Latest(ctx context.Context, limit int) ([]ImportRun, error) {
	runs := []ImportRun{}
	err := sqlx.SelectContext(ctx, rs.q, &runs, rs.q.Rebind(`SELECT id, kind, source, status, created_count,
		processed_rows, error, started_at, finished_at
		FROM import_runs ORDER BY started_at DESC LIMIT ?`), limit)
	return runs, errors.Wrap(err, "list import runs")
}
