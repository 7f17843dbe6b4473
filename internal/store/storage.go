package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// BulkBatchSize bounds the rows sent in a single multi-row statement.
const BulkBatchSize = 1000

type Storage struct {
	db *sqlx.DB

	Regions interface {
		GetOrCreate(ctx context.Context, region *Region) (bool, error)
		List(ctx context.Context) ([]Region, error)
	}

	States interface {
		GetOrCreate(ctx context.Context, state *State) (bool, error)
		All(ctx context.Context) ([]State, error)
		List(ctx context.Context, filter StateFilter) (Page[StateListItem], error)
	}

	Municipalities interface {
		GetOrCreate(ctx context.Context, municipality *Municipality) (bool, error)
		All(ctx context.Context) ([]Municipality, error)
		InsertIgnoreConflicts(ctx context.Context, items []Municipality) (int64, error)
		List(ctx context.Context, filter MunicipalityFilter) (Page[MunicipalityListItem], error)
	}

	Districts interface {
		GetOrCreate(ctx context.Context, district *District) (bool, error)
		InsertIgnoreConflicts(ctx context.Context, items []District) (int64, error)
		List(ctx context.Context, filter DistrictFilter) (Page[DistrictListItem], error)
	}

	Companies interface {
		ExistingCodes(ctx context.Context, codes []string) (map[string]struct{}, error)
		BulkInsert(ctx context.Context, companies []Company, batchSize int) (int64, error)
		BulkUpdate(ctx context.Context, companies []Company, batchSize int) (int64, error)
		Get(ctx context.Context, cnpj string) (*Company, error)
		List(ctx context.Context, filter CompanyFilter) (Page[Company], error)
	}

	ImportRuns interface {
		Insert(ctx context.Context, run *ImportRun) error
		Finish(ctx context.Context, run *ImportRun) error
		Latest(ctx context.Context, limit int) ([]ImportRun, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	s := newStorage(db)
	s.db = db
	return s
}

func newStorage(q sqlx.ExtContext) *Storage {
	return &Storage{
		Regions:        &RegionStore{q: q},
		States:         &StateStore{q: q},
		Municipalities: &MunicipalityStore{q: q},
		Districts:      &DistrictStore{q: q},
		Companies:      &CompanyStore{q: q},
		ImportRuns:     &ImportRunStore{q: q},
	}
}

// WithTx runs fn against a Storage bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Storage) WithTx(ctx context.Context, fn func(tx *Storage) error) (err error) {
	if s.db == nil {
		return errors.New("storage is already bound to a transaction")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(newStorage(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}
