// Package provider implements the Weather Underground HTTP client. One call
// retrieves every section the category normalizers consume, so a single
// fetch per location per cycle is enough for any mix of bound devices.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/wxtools/stationpoll/internal/wx"
)

// sections is the multi-section query issued for every location.
const sections = "geolookup/alerts_v11/almanac_v11/astronomy_v11/conditions_v11/forecast10day_v11/hourly_v11/yesterday_v11/tide_v11"

const defaultBaseURL = "http://api.wunderground.com/api"

// FetchTimeout bounds one outbound provider call.
const FetchTimeout = 20 * time.Second

// Client fetches the provider's JSON document for a location. The primary
// HTTP client runs behind a circuit breaker; when the primary transport
// errors, one attempt goes through the fallback client before the fetch is
// reported as failed.
type Client struct {
	apiKey   string
	language string
	apiRef   string
	baseURL  string

	primary  *http.Client
	fallback *http.Client
	circuit  *gobreaker.CircuitBreaker
	log      zerolog.Logger
}

func NewClient(primary *http.Client, apiKey, language, apiRef string, log zerolog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wunderground",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if language == "" {
		language = "EN"
	}

	return &Client{
		apiKey:   apiKey,
		language: language,
		apiRef:   apiRef,
		baseURL:  defaultBaseURL,
		primary:  primary,
		fallback: &http.Client{Timeout: FetchTimeout},
		circuit:  cb,
		log:      log.With().Str("component", "provider").Logger(),
	}
}

// SetBaseURL points the client at a different host. Tests use it.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// Ready reports whether the client is configured to make calls.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return wx.ErrMissingAPIKey
	}
	return nil
}

// Fetch retrieves and decodes the full document for one location. A body
// that fails to parse yields an empty document rather than an error: the
// normalizers degrade gracefully against missing keys, which keeps a
// provider-side encoding hiccup from reading as a transport outage.
func (c *Client) Fetch(ctx context.Context, location string) (*wx.Snapshot, error) {
	if c.apiKey == "" {
		return nil, wx.ErrMissingAPIKey
	}

	u := fmt.Sprintf("%s/%s/%s/lang:%s/q/%s.json?apiref=%s",
		c.baseURL, c.apiKey, sections, c.language, url.PathEscape(location), url.QueryEscape(c.apiRef))

	started := time.Now()

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, &wx.TransportError{Location: location, Err: err}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		c.log.Error().Str("location", location).Err(err).Msg("unable to decode provider data, substituting empty document")
		doc = map[string]any{}
	}

	snap := &wx.Snapshot{Location: location, Doc: doc, FetchedAt: time.Now()}

	if snap.BadLocation() {
		return nil, wx.ErrBadLocation
	}

	c.log.Debug().Str("location", location).Dur("elapsed", time.Since(started)).Msg("download complete")
	return snap, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.doOnce(ctx, c.primary, u)
	})
	if err == nil {
		return result.([]byte), nil
	}

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("circuit breaker open: %w", err)
	}

	// Primary transport failed; try the secondary client once before
	// giving up on this location for the cycle.
	c.log.Warn().Err(err).Msg("primary transport failed, retrying via fallback client")
	body, ferr := c.doOnce(ctx, c.fallback, u)
	if ferr != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doOnce(ctx context.Context, client *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
