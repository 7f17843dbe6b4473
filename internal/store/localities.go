package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type StateFilter struct {
	Name     string
	RegionID *int64
	Page     int
	PageSize int
}

type MunicipalityFilter struct {
	Name     string
	StateID  *int64
	Page     int
	PageSize int
}

type DistrictFilter struct {
	Name           string
	MunicipalityID *int64
	Page           int
	PageSize       int
}

type RegionStore struct {
	q sqlx.ExtContext
}

func (rs *RegionStore) GetOrCreate(ctx context.Context, region *Region) (bool, error) {
	created, err := getOrCreate(ctx, rs.q,
		`SELECT 1 FROM regions WHERE id = ?`, region.ID,
		`INSERT INTO regions (id, name, acronym) VALUES (:id, :name, :acronym)`, region)
	return created, errors.Wrapf(err, "get or create region %d", region.ID)
}

func (rs *RegionStore) List(ctx context.Context) ([]Region, error) {
	regions := []Region{}
	err := sqlx.SelectContext(ctx, rs.q, &regions, `SELECT id, name, acronym FROM regions ORDER BY name`)
	return regions, errors.Wrap(err, "list regions")
}

type StateStore struct {
	q sqlx.ExtContext
}

func (ss *StateStore) GetOrCreate(ctx context.Context, state *State) (bool, error) {
	created, err := getOrCreate(ctx, ss.q,
		`SELECT 1 FROM states WHERE id = ?`, state.ID,
		`INSERT INTO states (id, name, acronym, region_id) VALUES (:id, :name, :acronym, :region_id)`, state)
	return created, errors.Wrapf(err, "get or create state %d", state.ID)
}

func (ss *StateStore) All(ctx context.Context) ([]State, error) {
	var states []State
	err := sqlx.SelectContext(ctx, ss.q, &states, `SELECT id, name, acronym, region_id FROM states`)
	return states, errors.Wrap(err, "load states")
}

func (ss *StateStore) List(ctx context.Context, filter StateFilter) (Page[StateListItem], error) {
	w := &where{}
	w.contains("s.name", filter.Name)
	if filter.RegionID != nil {
		w.add("s.region_id = ?", *filter.RegionID)
	}

	page, err := listPage[StateListItem](ctx, ss.q,
		`SELECT COUNT(*) FROM states s`,
		`SELECT s.id, s.name, s.acronym, s.region_id, r.name AS region_name
		FROM states s JOIN regions r ON r.id = s.region_id`,
		"s.name", w, filter.Page, filter.PageSize)
	return page, errors.Wrap(err, "list states")
}

type MunicipalityStore struct {
	q sqlx.ExtContext
}

func (ms *MunicipalityStore) GetOrCreate(ctx context.Context, municipality *Municipality) (bool, error) {
	created, err := getOrCreate(ctx, ms.q,
		`SELECT 1 FROM municipalities WHERE id = ?`, municipality.ID,
		`INSERT INTO municipalities (id, name, state_id) VALUES (:id, :name, :state_id)`, municipality)
	return created, errors.Wrapf(err, "get or create municipality %d", municipality.ID)
}

func (ms *MunicipalityStore) All(ctx context.Context) ([]Municipality, error) {
	var municipalities []Municipality
	err := sqlx.SelectContext(ctx, ms.q, &municipalities, `SELECT id, name, state_id FROM municipalities`)
	return municipalities, errors.Wrap(err, "load municipalities")
}

// InsertIgnoreConflicts inserts new rows and silently skips ids that already
// exist. It returns how many rows were actually inserted.
func (ms *MunicipalityStore) InsertIgnoreConflicts(ctx context.Context, items []Municipality) (int64, error) {
	var inserted int64
	err := forEachBatch(len(items), BulkBatchSize, func(lo, hi int) error {
		batch := items[lo:hi]
		args := make([]any, 0, len(batch)*3)
		for _, m := range batch {
			args = append(args, m.ID, m.Name, m.StateID)
		}
		query := `INSERT INTO municipalities (id, name, state_id) VALUES ` +
			placeholders(len(batch), 3) + ` ON CONFLICT (id) DO NOTHING`

		n, err := execAffected(ctx, ms.q, query, args)
		inserted += n
		return err
	})
	return inserted, errors.Wrap(err, "bulk insert municipalities")
}

func (ms *MunicipalityStore) List(ctx context.Context, filter MunicipalityFilter) (Page[MunicipalityListItem], error) {
	w := &where{}
	w.contains("m.name", filter.Name)
	if filter.StateID != nil {
		w.add("m.state_id = ?", *filter.StateID)
	}

	page, err := listPage[MunicipalityListItem](ctx, ms.q,
		`SELECT COUNT(*) FROM municipalities m`,
		`SELECT m.id, m.name, m.state_id, s.acronym AS state_acronym
		FROM municipalities m JOIN states s ON s.id = m.state_id`,
		"m.name", w, filter.Page, filter.PageSize)
	return page, errors.Wrap(err, "list municipalities")
}

type DistrictStore struct {
	q sqlx.ExtContext
}

func (ds *DistrictStore) GetOrCreate(ctx context.Context, district *District) (bool, error) {
	created, err := getOrCreate(ctx, ds.q,
		`SELECT 1 FROM districts WHERE id = ?`, district.ID,
		`INSERT INTO districts (id, name, municipality_id) VALUES (:id, :name, :municipality_id)`, district)
	return created, errors.Wrapf(err, "get or create district %d", district.ID)
}

func (ds *DistrictStore) InsertIgnoreConflicts(ctx context.Context, items []District) (int64, error) {
	var inserted int64
	err := forEachBatch(len(items), BulkBatchSize, func(lo, hi int) error {
		batch := items[lo:hi]
		args := make([]any, 0, len(batch)*3)
		for _, d := range batch {
			args = append(args, d.ID, d.Name, d.MunicipalityID)
		}
		query := `INSERT INTO districts (id, name, municipality_id) VALUES ` +
			placeholders(len(batch), 3) + ` ON CONFLICT (id) DO NOTHING`

		n, err := execAffected(ctx, ds.q, query, args)
		inserted += n
		return err
	})
	return inserted, errors.Wrap(err, "bulk insert districts")
}

func (ds *DistrictStore) List(ctx context.Context, filter DistrictFilter) (Page[DistrictListItem], error) {
	w := &where{}
	w.contains("d.name", filter.Name)
	if filter.MunicipalityID != nil {
		w.add("d.municipality_id = ?", *filter.MunicipalityID)
	}

	page, err := listPage[DistrictListItem](ctx, ds.q,
		`SELECT COUNT(*) FROM districts d`,
		`SELECT d.id, d.name, d.municipality_id, m.name AS municipality_name, s.acronym AS state_acronym
		FROM districts d
		JOIN municipalities m ON m.id = d.municipality_id
		JOIN states s ON s.id = m.state_id`,
		"d.name", w, filter.Page, filter.PageSize)
	return page, errors.Wrap(err, "list districts")
}

func execAffected(ctx context.Context, q sqlx.ExtContext, query string, args []any) (int64, error) {
	result, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
