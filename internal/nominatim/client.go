// Package nominatim wraps the OpenStreetMap Nominatim search API behind a
// minimum-interval rate gate, as required by the provider's usage policy.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultBaseURL     = "https://nominatim.openstreetmap.org"
	defaultUserAgent   = "BloodLink/1.0 (contact@example.com)"
	defaultTimeout     = 15 * time.Second
	defaultMinInterval = 1100 * time.Millisecond
)

// Client is a rate-limited Nominatim search client. All searches are scoped
// to a fixed country bias and result language.
type Client struct {
	baseURL      string
	userAgent    string
	countryCodes string
	language     string
	httpClient   *http.Client
	gate         *intervalGate
}

// Config holds client settings. Zero values fall back to defaults.
type Config struct {
	BaseURL      string
	UserAgent    string
	CountryCodes string
	Language     string
	Timeout      time.Duration
	MinInterval  time.Duration
	Clock        clockwork.Clock
}

// NewClient creates a Nominatim client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		userAgent:    cfg.UserAgent,
		countryCodes: cfg.CountryCodes,
		language:     cfg.Language,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		gate:         newIntervalGate(cfg.Clock, cfg.MinInterval),
	}
}

// SearchParams selects either a free-text query or a postal-code query.
// When PostalCode is set, Query is ignored.
type SearchParams struct {
	Query      string
	PostalCode string
	Limit      int
}

// Place is a single candidate result. Nominatim returns coordinates as
// strings; they are parsed here.
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Search queries the provider and returns its candidate list, provider
// ranking preserved. It blocks until the minimum interval since the
// previous call has elapsed.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Place, error) {
	if err := c.gate.wait(ctx); err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("format", "jsonv2")
	v.Set("addressdetails", "1")
	if params.Limit > 0 {
		v.Set("limit", strconv.Itoa(params.Limit))
	}
	if c.countryCodes != "" {
		v.Set("countrycodes", c.countryCodes)
	}
	if c.language != "" {
		v.Set("accept-language", c.language)
	}
	if params.PostalCode != "" {
		v.Set("postalcode", params.PostalCode)
	} else {
		v.Set("q", params.Query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var raw []rawPlace
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for _, r := range raw {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("parse latitude %q: %w", r.Lat, err)
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("parse longitude %q: %w", r.Lon, err)
		}
		places = append(places, Place{Lat: lat, Lon: lon, DisplayName: r.DisplayName})
	}
	return places, nil
}

// Nominatim API response types. Coordinates arrive as strings.

type rawPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
