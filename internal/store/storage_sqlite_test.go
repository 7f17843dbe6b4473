package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxc/dados-abertos/internal/dbtest"
	"github.com/farxc/dados-abertos/internal/store"
)

func seedNorth(t *testing.T, s *store.Storage) {
	t.Helper()
	ctx := context.Background()
	_, err := s.Regions.GetOrCreate(ctx, &store.Region{ID: 1, Name: "Norte", Acronym: "N"})
	require.NoError(t, err)
	_, err = s.States.GetOrCreate(ctx, &store.State{ID: 11, Name: "Rondônia", Acronym: "RO", RegionID: 1})
	require.NoError(t, err)
	_, err = s.States.GetOrCreate(ctx, &store.State{ID: 12, Name: "Acre", Acronym: "AC", RegionID: 1})
	require.NoError(t, err)
}

func TestGetOrCreateIsFirstWriteWins(t *testing.T) {
	conn := dbtest.New(t)
	s := store.NewStorage(conn)
	ctx := context.Background()

	created, err := s.Regions.GetOrCreate(ctx, &store.Region{ID: 1, Name: "Norte", Acronym: "N"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Regions.GetOrCreate(ctx, &store.Region{ID: 1, Name: "North", Acronym: "NO"})
	require.NoError(t, err)
	assert.False(t, created)

	regions, err := s.Regions.List(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "Norte", regions[0].Name)
	assert.Equal(t, "N", regions[0].Acronym)
}

func TestInsertIgnoreConflictsCountsOnlyNewRows(t *testing.T) {
	conn := dbtest.New(t)
	s := store.NewStorage(conn)
	ctx := context.Background()
	seedNorth(t, s)

	n, err := s.Municipalities.InsertIgnoreConflicts(ctx, []store.Municipality{
		{ID: 1100015, Name: "Alta Floresta D'Oeste", StateID: 11},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Municipalities.InsertIgnoreConflicts(ctx, []store.Municipality{
		{ID: 1100015, Name: "Renamed", StateID: 11},
		{ID: 1200013, Name: "Acrelândia", StateID: 12},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	all, err := s.Municipalities.All(ctx)
	require.NoError(t, err)
	names := map[int64]string{}
	for _, m := range all {
		names[m.ID] = m.Name
	}
	assert.Equal(t, "Alta Floresta D'Oeste", names[1100015])
	assert.Equal(t, "Acrelândia", names[1200013])
}

func TestParentDeleteIsRestricted(t *testing.T) {
	conn := dbtest.New(t)
	s := store.NewStorage(conn)
	seedNorth(t, s)

	_, err := conn.Exec(`DELETE FROM regions WHERE id = 1`)
	require.Error(t, err)
	assert.Equal(t, 1, dbtest.Count(t, conn, "regions"))
}

func TestStateAcronymIsUnique(t *testing.T) {
	conn := dbtest.New(t)
	s := store.NewStorage(conn)
	seedNorth(t, s)

	_, err := s.States.GetOrCreate(context.Background(), &store.State{ID: 99, Name: "Other", Acronym: "RO", RegionID: 1})
	require.Error(t, err)
}

func TestWithTxRollsBackEverything(t *testing.T) {
	conn := dbtest.New(t)
	s := store.NewStorage(conn)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *store.Storage) error {
		if _, err := tx.Regions.GetOrCreate(ctx, &store.Region{ID: 1, Name: "Norte", Acronym: "N"}); err != nil {
			return err
		}
		_, err := tx.States.GetOrCreate(ctx, &store.State{ID: 11, Name: "Rondônia", Acronym: "RO", RegionID: 404})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, 0, dbtest.Count(t, conn, "regions"))
}

func TestCompanyUpdateReplacesNonKeyColumns(t *testing.T) {
	conn := dbtest.New(t)
	s := store.NewStorage(conn)
	ctx := context.Background()
	size := "01"

	n, err := s.Companies.BulkInsert(ctx, []store.Company{{
		CNPJ:                     "00000000",
		LegalName:                "BANCO DO BRASIL SA",
		LegalNature:              "2038",
		ResponsibleQualification: "10",
		ShareCapital:             decimal.RequireFromString("1000.00"),
		CompanySize:              &size,
	}}, 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Companies.BulkUpdate(ctx, []store.Company{{
		CNPJ:                     "00000000",
		LegalName:                "BANCO DO BRASIL S.A.",
		LegalNature:              "2038",
		ResponsibleQualification: "16",
		ShareCapital:             decimal.RequireFromString("2500.50"),
	}}, 1000)
	require.NoError(t, err)

	got, err := s.Companies.Get(ctx, "00000000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "BANCO DO BRASIL S.A.", got.LegalName)
	assert.Equal(t, "16", got.ResponsibleQualification)
	assert.True(t, decimal.RequireFromString("2500.50").Equal(got.ShareCapital), got.ShareCapital.String())
	assert.Nil(t, got.CompanySize)

	existing, err := s.Companies.ExistingCodes(ctx, []string{"00000000", "12345678"})
	require.NoError(t, err)
	assert.Contains(t, existing, "00000000")
	assert.NotContains(t, existing, "12345678")

	missing, err := s.Companies.Get(ctx, "12345678")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStateListFiltersAndPaginates(t *testing.T) {
	conn := dbtest.New(t)
	s := store.NewStorage(conn)
	ctx := context.Background()
	seedNorth(t, s)

	page, err := s.States.List(ctx, store.StateFilter{PageSize: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Rondônia", page.Items[0].Name)
	assert.Equal(t, "Norte", page.Items[0].RegionName)

	page, err = s.States.List(ctx, store.StateFilter{Name: "acr", PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "AC", page.Items[0].Acronym)
}
