// Package fred provides a client for the FRED observations and series APIs.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/econlab/econpipe/pkg/types"
)

const defaultBaseURL = "https://api.stlouisfed.org/fred"

// maxErrorBody bounds how much of an error response is echoed in errors.
const maxErrorBody = 200

// ObservationsResponse is the payload of GET /series/observations.
type ObservationsResponse struct {
	RealtimeStart string                 `json:"realtime_start"`
	RealtimeEnd   string                 `json:"realtime_end"`
	Count         int                    `json:"count"`
	Observations  []types.RawObservation `json:"observations"`
}

// SeriesInfo is the metadata of one series from GET /series.
type SeriesInfo struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Frequency          string `json:"frequency"`
	Units              string `json:"units"`
	SeasonalAdjustment string `json:"seasonal_adjustment"`
	ObservationStart   string `json:"observation_start"`
	ObservationEnd     string `json:"observation_end"`
	LastUpdated        string `json:"last_updated"`
}

type seriesResponse struct {
	Seriess []SeriesInfo `json:"seriess"`
}

// APIError is a non-2xx response from the FRED API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fred api status %d: %s", e.StatusCode, e.Body)
}

// Client calls the FRED API. Calls go through a circuit breaker; once it
// opens, calls fail fast with gobreaker.ErrOpenState until the cooldown
// elapses. The client never retries.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a FRED API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fred",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return c
}

// FetchObservations retrieves observations for a series, optionally bounded
// below by startDate (YYYY-MM-DD, inclusive). It returns the decoded response
// together with the raw payload bytes so callers can archive exactly what the
// API returned.
func (c *Client) FetchObservations(ctx context.Context, seriesID, startDate string) (*ObservationsResponse, []byte, error) {
	if seriesID == "" {
		return nil, nil, fmt.Errorf("series id is required")
	}
	query := url.Values{"series_id": {seriesID}}
	if startDate != "" {
		if _, err := time.Parse("2006-01-02", startDate); err != nil {
			return nil, nil, fmt.Errorf("start date must be YYYY-MM-DD, got %q", startDate)
		}
		query.Set("observation_start", startDate)
	}

	raw, err := c.get(ctx, "/series/observations", query)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching observations for %s: %w", seriesID, err)
	}

	var resp ObservationsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("decoding observations for %s: %w", seriesID, err)
	}
	return &resp, raw, nil
}

// SeriesMetadata retrieves the metadata record for a series.
func (c *Client) SeriesMetadata(ctx context.Context, seriesID string) (*SeriesInfo, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("series id is required")
	}

	raw, err := c.get(ctx, "/series", url.Values{"series_id": {seriesID}})
	if err != nil {
		return nil, fmt.Errorf("fetching series metadata for %s: %w", seriesID, err)
	}

	var resp seriesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding series metadata for %s: %w", seriesID, err)
	}
	if len(resp.Seriess) == 0 {
		return nil, fmt.Errorf("series %s not found", seriesID)
	}
	return &resp.Seriess[0], nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	query.Set("api_key", c.apiKey)
	query.Set("file_type", "json")
	endpoint := c.baseURL + path + "?" + query.Encode()

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", redactAPIKey(err))
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, redactAPIKey(err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: snippet(data)}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

// redactAPIKey strips the api_key query value from transport errors, which
// otherwise embed the full request URL.
func redactAPIKey(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if u, perr := url.Parse(uerr.URL); perr == nil {
			q := u.Query()
			if q.Has("api_key") {
				q.Set("api_key", "REDACTED")
				u.RawQuery = q.Encode()
				uerr.URL = u.String()
			}
		}
	}
	return err
}

func snippet(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
