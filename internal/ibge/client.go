package ibge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/farxc/dados-abertos/internal/logger"
)

var LocalidadesURL = "https://servicodados.ibge.gov.br/api/v1/localidades"

const (
	DefaultTimeout       = 20 * time.Second
	FullDistrictsTimeout = 60 * time.Second
	FullDistrictsPace    = 3 * time.Second

	statesEndpoint         = "estados?orderBy=nome"
	municipalitiesEndpoint = "municipios?orderBy=nome"
	districtsEndpoint      = "distritos?orderBy=nome"
)

// RequestError reports a transport failure, a non-2xx status or a body that
// is not a JSON array. StatusCode is zero when no response was received.
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type fetcher struct {
	baseURL    string
	httpClient *http.Client
	appLogger  *logger.Logger
}

// get performs exactly one request; there is no retry.
func (f *fetcher) get(ctx context.Context, endpoint string) ([]json.RawMessage, error) {
	const component = "IBGEClient"
	url := f.baseURL + "/" + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	f.appLogger.Debug(component, "Requesting url=%s", url)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.appLogger.Error(component, "Request failed: url=%s error=%v", url, err)
		return nil, &RequestError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		f.appLogger.Error(component, "Non-2xx response: url=%s status=%s", url, resp.Status)
		return nil, &RequestError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		f.appLogger.Error(component, "Failed to decode JSON: url=%s error=%v", url, err)
		return nil, &RequestError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	f.appLogger.Debug(component, "Received records=%d url=%s", len(records), url)
	return records, nil
}

// parseAll validates every record; the first invalid one fails the whole
// collection.
func parseAll[T any](records []json.RawMessage, parse func([]byte) (T, error)) ([]T, error) {
	out := make([]T, 0, len(records))
	for i, raw := range records {
		item, err := parse(raw)
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				ve.Field = fmt.Sprintf("[%d].%s", i, ve.Field)
			}
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Client reads states, municipalities and districts from their own
// endpoints.
type Client struct {
	fetcher
}

func NewClient(baseURL string, httpClient *http.Client, appLogger *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{fetcher{baseURL: baseURL, httpClient: httpClient, appLogger: appLogger}}
}

func (c *Client) FetchStates(ctx context.Context) ([]State, error) {
	records, err := c.get(ctx, statesEndpoint)
	if err != nil {
		return nil, err
	}
	return parseAll(records, ParseState)
}

func (c *Client) FetchMunicipalities(ctx context.Context) ([]Municipality, error) {
	records, err := c.get(ctx, municipalitiesEndpoint)
	if err != nil {
		return nil, err
	}
	return parseAll(records, ParseMunicipality)
}

func (c *Client) FetchDistricts(ctx context.Context) ([]District, error) {
	records, err := c.get(ctx, districtsEndpoint)
	if err != nil {
		return nil, err
	}
	return parseAll(records, ParseDistrict)
}

// FullClient reads the consolidated district collection in which every
// district embeds its whole ancestry. Each call is followed by a fixed pause
// to stay polite with the upstream service.
type FullClient struct {
	fetcher
	pace time.Duration
}

func NewFullClient(baseURL string, httpClient *http.Client, pace time.Duration, appLogger *logger.Logger) *FullClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: FullDistrictsTimeout}
	}
	return &FullClient{
		fetcher: fetcher{baseURL: baseURL, httpClient: httpClient, appLogger: appLogger},
		pace:    pace,
	}
}

func (c *FullClient) FetchFullDistricts(ctx context.Context) ([]FullDistrict, error) {
	records, err := c.get(ctx, districtsEndpoint)
	if err != nil {
		return nil, err
	}

	if c.pace > 0 {
		select {
		case <-time.After(c.pace):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return parseAll(records, ParseFullDistrict)
}
