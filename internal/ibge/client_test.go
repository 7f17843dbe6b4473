package ibge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxc/dados-abertos/internal/logger"
)

func newServer(t *testing.T, status int, body string, hits *atomic.Int32, seen *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if seen != nil {
			seen.Store(r.URL.RequestURI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchStates(t *testing.T) {
	var uri atomic.Value
	srv := newServer(t, http.StatusOK, "["+rondoniaJSON+"]", nil, &uri)

	c := NewClient(srv.URL, nil, logger.Discard())
	states, err := c.FetchStates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/estados?orderBy=nome", uri.Load())
	require.Len(t, states, 1)
	assert.Equal(t, "RO", states[0].Acronym)
}

func TestFetchMunicipalitiesAndDistrictsEndpoints(t *testing.T) {
	var uri atomic.Value
	srv := newServer(t, http.StatusOK, "["+altaFlorestaJSON+"]", nil, &uri)
	c := NewClient(srv.URL, nil, logger.Discard())

	municipalities, err := c.FetchMunicipalities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/municipios?orderBy=nome", uri.Load())
	require.Len(t, municipalities, 1)

	srv = newServer(t, http.StatusOK, `[{"id": 110001505, "nome": "Alta Floresta D'Oeste", "municipio": {"id": 1100015}}]`, nil, &uri)
	c = NewClient(srv.URL, nil, logger.Discard())

	districts, err := c.FetchDistricts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/distritos?orderBy=nome", uri.Load())
	require.Len(t, districts, 1)
	assert.EqualValues(t, 1100015, districts[0].MunicipalityID)
}

func TestFetchFailsOnNon2xxWithoutRetry(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, http.StatusServiceUnavailable, "busy", &hits, nil)

	c := NewClient(srv.URL, nil, logger.Discard())
	states, err := c.FetchStates(context.Background())

	assert.Nil(t, states)
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusServiceUnavailable, re.StatusCode)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetchFailsOnConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil, logger.Discard())
	_, err := c.FetchStates(context.Background())

	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Zero(t, re.StatusCode)
	assert.Contains(t, re.URL, "/estados")
}

func TestFetchFailsOnInvalidJSON(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"not": "an array"`, nil, nil)

	c := NewClient(srv.URL, nil, logger.Discard())
	_, err := c.FetchStates(context.Background())

	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusOK, re.StatusCode)
}

func TestFetchPropagatesValidationError(t *testing.T) {
	srv := newServer(t, http.StatusOK, `[`+rondoniaJSON+`, {"id": 12, "sigla": "AC"}]`, nil, nil)

	c := NewClient(srv.URL, nil, logger.Discard())
	states, err := c.FetchStates(context.Background())

	assert.Nil(t, states)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "[1].nome", ve.Field)
}

func TestFullClientPacesAfterEachCall(t *testing.T) {
	body := `[{"id": 110001505, "nome": "Alta Floresta D'Oeste", "municipio": ` + altaFlorestaJSON + `}]`
	var uri atomic.Value
	srv := newServer(t, http.StatusOK, body, nil, &uri)

	c := NewFullClient(srv.URL, nil, 50*time.Millisecond, logger.Discard())
	start := time.Now()
	districts, err := c.FetchFullDistricts(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, "/distritos?orderBy=nome", uri.Load())
	require.Len(t, districts, 1)
	assert.Equal(t, "Cacoal", districts[0].Municipality.Microregion.Name)
}

func TestFullClientPaceHonoursCancellation(t *testing.T) {
	srv := newServer(t, http.StatusOK, `[]`, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewFullClient(srv.URL, nil, time.Hour, logger.Discard())
	_, err := c.FetchFullDistricts(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
