package localities

import (
	"context"

	"github.com/pkg/errors"

	"github.com/farxc/dados-abertos/internal/logger"
	"github.com/farxc/dados-abertos/internal/store"
)

// PassImporter walks the hierarchy top-down over three endpoints: states
// (with their regions), then municipalities, then districts.
type PassImporter struct {
	storage   *store.Storage
	client    PassFetcher
	appLogger *logger.Logger
}

func NewPassImporter(storage *store.Storage, client PassFetcher, appLogger *logger.Logger) *PassImporter {
	return &PassImporter{storage: storage, client: client, appLogger: appLogger}
}

func (im *PassImporter) Run(ctx context.Context) (Summary, error) {
	const component = "PassImporter"
	var summary Summary

	err := im.storage.WithTx(ctx, func(tx *store.Storage) error {
		regions, states, err := im.importStates(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "states pass")
		}
		municipalities, err := im.importMunicipalities(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "municipalities pass")
		}
		districts, err := im.importDistricts(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "districts pass")
		}
		summary = Summary{Regions: regions, States: states, Municipalities: municipalities, Districts: districts}
		return nil
	})
	if err != nil {
		im.appLogger.Error(component, "Import rolled back: %v", err)
		return Summary{}, err
	}

	logSummary(im.appLogger, component, summary)
	return summary, nil
}

func (im *PassImporter) importStates(ctx context.Context, tx *store.Storage) (regions, states int64, err error) {
	const component = "PassImporter"
	fetched, err := im.client.FetchStates(ctx)
	if err != nil {
		return 0, 0, err
	}
	im.appLogger.Info(component, "Fetched states=%d", len(fetched))

	seenRegions := make(map[int64]struct{})
	for _, s := range fetched {
		if _, ok := seenRegions[s.Region.ID]; !ok {
			created, err := tx.Regions.GetOrCreate(ctx, &store.Region{ID: s.Region.ID, Name: s.Region.Name, Acronym: s.Region.Acronym})
			if err != nil {
				return 0, 0, errors.Wrapf(err, "region %d", s.Region.ID)
			}
			if created {
				regions++
			}
			seenRegions[s.Region.ID] = struct{}{}
		}

		created, err := tx.States.GetOrCreate(ctx, &store.State{ID: s.ID, Name: s.Name, Acronym: s.Acronym, RegionID: s.Region.ID})
		if err != nil {
			return 0, 0, errors.Wrapf(err, "state %d", s.ID)
		}
		if created {
			states++
		}
	}
	return regions, states, nil
}

func (im *PassImporter) importMunicipalities(ctx context.Context, tx *store.Storage) (int64, error) {
	const component = "PassImporter"
	fetched, err := im.client.FetchMunicipalities(ctx)
	if err != nil {
		return 0, err
	}
	im.appLogger.Info(component, "Fetched municipalities=%d", len(fetched))

	known, err := tx.States.All(ctx)
	if err != nil {
		return 0, err
	}
	states := make(map[int64]struct{}, len(known))
	for _, s := range known {
		states[s.ID] = struct{}{}
	}

	rows := make([]store.Municipality, 0, len(fetched))
	seen := make(map[int64]struct{}, len(fetched))
	for _, m := range fetched {
		st, ok := m.State()
		if !ok {
			im.appLogger.Warn(component, "Skipping municipality %d (%s): no ancestry", m.ID, m.Name)
			continue
		}
		if _, ok := states[st.ID]; !ok {
			im.appLogger.Warn(component, "Skipping municipality %d (%s): state %d not found", m.ID, m.Name, st.ID)
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		rows = append(rows, store.Municipality{ID: m.ID, Name: m.Name, StateID: st.ID})
	}

	return tx.Municipalities.InsertIgnoreConflicts(ctx, rows)
}

func (im *PassImporter) importDistricts(ctx context.Context, tx *store.Storage) (int64, error) {
	const component = "PassImporter"
	fetched, err := im.client.FetchDistricts(ctx)
	if err != nil {
		return 0, err
	}
	im.appLogger.Info(component, "Fetched districts=%d", len(fetched))

	known, err := tx.Municipalities.All(ctx)
	if err != nil {
		return 0, err
	}
	municipalities := make(map[int64]struct{}, len(known))
	for _, m := range known {
		municipalities[m.ID] = struct{}{}
	}

	rows := make([]store.District, 0, len(fetched))
	seen := make(map[int64]struct{}, len(fetched))
	for _, d := range fetched {
		if _, ok := municipalities[d.MunicipalityID]; !ok {
			im.appLogger.Warn(component, "Skipping district %d (%s): municipality %d not found", d.ID, d.Name, d.MunicipalityID)
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		rows = append(rows, store.District{ID: d.ID, Name: d.Name, MunicipalityID: d.MunicipalityID})
	}

	return tx.Districts.InsertIgnoreConflicts(ctx, rows)
}
