// Package localities loads the IBGE administrative geography (regions,
// states, municipalities and districts) into the store.
package localities

import (
	"context"

	"github.com/pkg/errors"

	"github.com/farxc/dados-abertos/internal/ibge"
	"github.com/farxc/dados-abertos/internal/logger"
	"github.com/farxc/dados-abertos/internal/store"
)

// ErrEmptyResponse is returned when the consolidated endpoint yields no
// districts at all.
var ErrEmptyResponse = errors.New("upstream returned no districts")

// PassFetcher serves the three-endpoint import.
type PassFetcher interface {
	FetchStates(ctx context.Context) ([]ibge.State, error)
	FetchMunicipalities(ctx context.Context) ([]ibge.Municipality, error)
	FetchDistricts(ctx context.Context) ([]ibge.District, error)
}

// FullDistrictFetcher serves the single-endpoint import.
type FullDistrictFetcher interface {
	FetchFullDistricts(ctx context.Context) ([]ibge.FullDistrict, error)
}

// Summary counts the rows created by one run, per entity.
type Summary struct {
	Regions        int64 `json:"regions"`
	States         int64 `json:"states"`
	Municipalities int64 `json:"municipalities"`
	Districts      int64 `json:"districts"`
}

func (s Summary) Total() int64 {
	return s.Regions + s.States + s.Municipalities + s.Districts
}

// chain resolves the four entities a district hangs from, or false when the
// municipality has no ancestry.
func chain(m ibge.Municipality) (store.Region, store.State, store.Municipality, bool) {
	st, ok := m.State()
	if !ok {
		return store.Region{}, store.State{}, store.Municipality{}, false
	}
	region := store.Region{ID: st.Region.ID, Name: st.Region.Name, Acronym: st.Region.Acronym}
	state := store.State{ID: st.ID, Name: st.Name, Acronym: st.Acronym, RegionID: region.ID}
	municipality := store.Municipality{ID: m.ID, Name: m.Name, StateID: state.ID}
	return region, state, municipality, true
}

func logSummary(appLogger *logger.Logger, component string, s Summary) {
	appLogger.Info(component, "Created regions=%d states=%d municipalities=%d districts=%d",
		s.Regions, s.States, s.Municipalities, s.Districts)
}
