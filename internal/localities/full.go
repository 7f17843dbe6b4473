package localities

import (
	"context"

	"github.com/pkg/errors"

	"github.com/farxc/dados-abertos/internal/logger"
	"github.com/farxc/dados-abertos/internal/store"
)

// FullImporter builds the four tables from the consolidated district
// collection alone. It cannot see municipalities without districts.
type FullImporter struct {
	storage   *store.Storage
	client    FullDistrictFetcher
	appLogger *logger.Logger
}

func NewFullImporter(storage *store.Storage, client FullDistrictFetcher, appLogger *logger.Logger) *FullImporter {
	return &FullImporter{storage: storage, client: client, appLogger: appLogger}
}

func (im *FullImporter) Run(ctx context.Context) (Summary, error) {
	const component = "FullImporter"
	var summary Summary

	err := im.storage.WithTx(ctx, func(tx *store.Storage) error {
		districts, err := im.client.FetchFullDistricts(ctx)
		if err != nil {
			return err
		}
		if len(districts) == 0 {
			return ErrEmptyResponse
		}
		im.appLogger.Info(component, "Fetched districts=%d", len(districts))

		seen := struct {
			regions, states, municipalities map[int64]struct{}
		}{
			regions:        make(map[int64]struct{}),
			states:         make(map[int64]struct{}),
			municipalities: make(map[int64]struct{}),
		}

		for _, d := range districts {
			region, state, municipality, ok := chain(d.Municipality)
			if !ok {
				im.appLogger.Warn(component, "Skipping district %d (%s): municipality %d has no ancestry",
					d.ID, d.Name, d.Municipality.ID)
				continue
			}

			if _, ok := seen.regions[region.ID]; !ok {
				created, err := tx.Regions.GetOrCreate(ctx, &region)
				if err != nil {
					return errors.Wrapf(err, "region %d", region.ID)
				}
				if created {
					summary.Regions++
				}
				seen.regions[region.ID] = struct{}{}
			}

			if _, ok := seen.states[state.ID]; !ok {
				created, err := tx.States.GetOrCreate(ctx, &state)
				if err != nil {
					return errors.Wrapf(err, "state %d", state.ID)
				}
				if created {
					summary.States++
				}
				seen.states[state.ID] = struct{}{}
			}

			if _, ok := seen.municipalities[municipality.ID]; !ok {
				created, err := tx.Municipalities.GetOrCreate(ctx, &municipality)
				if err != nil {
					return errors.Wrapf(err, "municipality %d", municipality.ID)
				}
				if created {
					summary.Municipalities++
				}
				seen.municipalities[municipality.ID] = struct{}{}
			}

			created, err := tx.Districts.GetOrCreate(ctx, &store.District{ID: d.ID, Name: d.Name, MunicipalityID: municipality.ID})
			if err != nil {
				return errors.Wrapf(err, "district %d", d.ID)
			}
			if created {
				summary.Districts++
			}
		}
		return nil
	})
	if err != nil {
		im.appLogger.Error(component, "Import rolled back: %v", err)
		return Summary{}, err
	}

	logSummary(im.appLogger, component, summary)
	return summary, nil
}
