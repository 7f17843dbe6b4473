package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStorage(sqlx.NewDb(conn, "postgres")), mock
}

func TestExistingCodesUsesPostgresBindVars(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cnpj FROM companies WHERE cnpj IN ($1, $2)`)).
		WithArgs("00000000", "11111111").
		WillReturnRows(sqlmock.NewRows([]string{"cnpj"}).AddRow("11111111"))

	existing, err := s.Companies.ExistingCodes(context.Background(), []string{"00000000", "11111111"})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"11111111": {}}, existing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMunicipalityInsertIgnoreConflictsQuery(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO municipalities (id, name, state_id) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (id) DO NOTHING`)).
		WithArgs(1100015, "Alta Floresta D'Oeste", 11, 1100379, "Alto Alegre dos Parecis", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.Municipalities.InsertIgnoreConflicts(context.Background(), []Municipality{
		{ID: 1100015, Name: "Alta Floresta D'Oeste", StateID: 11},
		{ID: 1100379, Name: "Alto Alegre dos Parecis", StateID: 11},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM regions WHERE id = $1`)).
		WithArgs(1).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.WithTx(context.Background(), func(tx *Storage) error {
		_, err := tx.Regions.GetOrCreate(context.Background(), &Region{ID: 1, Name: "Norte", Acronym: "N"})
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRunsLatest(t *testing.T) {
	s, mock := newMockStorage(t)
	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	msg := "dial tcp: timeout"

	mock.ExpectQuery(`SELECT id, kind, source, status, created_count,.*FROM import_runs ORDER BY started_at DESC LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "kind", "source", "status", "created_count", "processed_rows", "error", "started_at", "finished_at",
		}).AddRow("f3b7c0de-0000-4000-8000-000000000001", KindCompanies, "https://example.test/Empresas0.zip",
			StatusFailure, 0, 0, msg, started, started.Add(time.Minute)))

	runs, err := s.ImportRuns.Latest(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusFailure, runs[0].Status)
	require.NotNil(t, runs[0].Error)
	assert.Equal(t, msg, *runs[0].Error)
	require.NoError(t, mock.ExpectationsWereMet())
}
