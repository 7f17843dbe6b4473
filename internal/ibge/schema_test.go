package ibge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rondoniaJSON = `{
	"id": 11,
	"sigla": "RO",
	"nome": "Rondônia",
	"regiao": {"id": 1, "sigla": "N", "nome": "Norte"}
}`

const altaFlorestaJSON = `{
	"id": 1100015,
	"nome": "Alta Floresta D'Oeste",
	"microrregiao": {
		"id": 11006,
		"nome": "Cacoal",
		"mesorregiao": {
			"id": 1102,
			"nome": "Leste Rondoniense",
			"UF": {
				"id": 11,
				"sigla": "RO",
				"nome": "Rondônia",
				"regiao": {"id": 1, "sigla": "N", "nome": "Norte"}
			}
		}
	}
}`

func TestParseStateRoundTrip(t *testing.T) {
	state, err := ParseState([]byte(rondoniaJSON))
	require.NoError(t, err)

	assert.Equal(t, State{
		ID:      11,
		Name:    "Rondônia",
		Acronym: "RO",
		Region:  Region{ID: 1, Name: "Norte", Acronym: "N"},
	}, state)
}

func TestParseStateMissingField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{
			name:  "top level name",
			input: `{"id": 11, "sigla": "RO", "regiao": {"id": 1, "sigla": "N", "nome": "Norte"}}`,
			field: "nome",
		},
		{
			name:  "nested region acronym",
			input: `{"id": 11, "sigla": "RO", "nome": "Rondônia", "regiao": {"id": 1, "nome": "Norte"}}`,
			field: "regiao.sigla",
		},
		{
			name:  "region absent",
			input: `{"id": 11, "sigla": "RO", "nome": "Rondônia"}`,
			field: "regiao",
		},
		{
			name:  "id absent",
			input: `{"sigla": "RO", "nome": "Rondônia", "regiao": {"id": 1, "sigla": "N", "nome": "Norte"}}`,
			field: "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseState([]byte(tt.input))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "state", ve.Record)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestParseStateRejectsWrongTypes(t *testing.T) {
	_, err := ParseState([]byte(`{"id": "11", "sigla": "RO", "nome": "Rondônia", "regiao": {"id": 1, "sigla": "N", "nome": "Norte"}}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "id", ve.Field)

	_, err = ParseState([]byte(`{"id": -1, "sigla": "RO", "nome": "Rondônia", "regiao": {"id": 1, "sigla": "N", "nome": "Norte"}}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "id", ve.Field)
	assert.Contains(t, ve.Reason, ">= 0")
}

func TestParseStateAcceptsZeroID(t *testing.T) {
	state, err := ParseState([]byte(`{"id": 0, "sigla": "RO", "nome": "Rondônia", "regiao": {"id": 0, "sigla": "N", "nome": "Norte"}}`))
	require.NoError(t, err)
	assert.Zero(t, state.ID)
	assert.Zero(t, state.Region.ID)
}

func TestParseMunicipalityAncestry(t *testing.T) {
	m, err := ParseMunicipality([]byte(altaFlorestaJSON))
	require.NoError(t, err)
	require.NotNil(t, m.Microregion)

	state, ok := m.State()
	require.True(t, ok)
	assert.EqualValues(t, 11, state.ID)
	assert.Equal(t, "N", state.Region.Acronym)
	assert.Equal(t, "Leste Rondoniense", m.Microregion.Mesoregion.Name)
}

func TestParseMunicipalityWithoutAncestryIsValid(t *testing.T) {
	for _, input := range []string{
		`{"id": 5300108, "nome": "Brasília"}`,
		`{"id": 5300108, "nome": "Brasília", "microrregiao": null}`,
	} {
		m, err := ParseMunicipality([]byte(input))
		require.NoError(t, err)
		assert.Nil(t, m.Microregion)

		_, ok := m.State()
		assert.False(t, ok)
	}
}

func TestParseMunicipalityMalformedAncestryFails(t *testing.T) {
	input := `{
		"id": 1100015,
		"nome": "Alta Floresta D'Oeste",
		"microrregiao": {
			"id": 11006,
			"nome": "Cacoal",
			"mesorregiao": {"id": 1102, "nome": "Leste Rondoniense"}
		}
	}`

	_, err := ParseMunicipality([]byte(input))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "microrregiao.mesorregiao.UF", ve.Field)
}

func TestParseDistrictVariants(t *testing.T) {
	d, err := ParseDistrict([]byte(`{"id": 110001505, "nome": "Alta Floresta D'Oeste", "municipio": {"id": 1100015}}`))
	require.NoError(t, err)
	assert.Equal(t, District{ID: 110001505, Name: "Alta Floresta D'Oeste", MunicipalityID: 1100015}, d)

	full, err := ParseFullDistrict([]byte(`{"id": 110001505, "nome": "Alta Floresta D'Oeste", "municipio": ` + altaFlorestaJSON + `}`))
	require.NoError(t, err)
	assert.EqualValues(t, 1100015, full.Municipality.ID)
	state, ok := full.Municipality.State()
	require.True(t, ok)
	assert.Equal(t, "RO", state.Acronym)

	_, err = ParseDistrict([]byte(`{"id": 110001505, "nome": "Alta Floresta D'Oeste"}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "municipio", ve.Field)
}

func TestParseRecordFromMap(t *testing.T) {
	state, err := ParseRecord(map[string]any{
		"id":     float64(11),
		"sigla":  "RO",
		"nome":   "Rondônia",
		"regiao": map[string]any{"id": 1, "sigla": "N", "nome": "Norte"},
	}, ParseState)
	require.NoError(t, err)
	assert.Equal(t, "Rondônia", state.Name)

	_, err = ParseRecord(map[string]any{"id": 11, "sigla": "RO", "nome": ""}, ParseState)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "nome", ve.Field)
}
