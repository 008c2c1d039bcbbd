// Package here provides a client for the HERE geocoding and discover APIs.
package here

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultGeocodeURL  = "https://geocode.search.hereapi.com/v1/geocode"
	defaultDiscoverURL = "https://discover.search.hereapi.com/v1/discover"
	defaultReverseURL  = "https://revgeocode.search.hereapi.com/v1/revgeocode"
)

// Client performs HERE search operations. The forward modes accept a
// free-text query and an optional bias point and return zero or more items;
// an empty result is not an error.
type Client interface {
	// Geocode runs a structured forward-geocode query.
	Geocode(ctx context.Context, query string, at *Position) ([]Item, error)

	// Discover runs a free-text place-discovery query.
	Discover(ctx context.Context, query string, at *Position) ([]Item, error)

	// Reverse resolves a coordinate back to the nearest addresses.
	Reverse(ctx context.Context, lat, lng float64) ([]Item, error)
}

// Position is a WGS84 point as returned by the API.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address holds the address attributes of a search item.
type Address struct {
	Label       string `json:"label"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	District    string `json:"district"`
	Subdistrict string `json:"subdistrict"`
	City        string `json:"city"`
	State       string `json:"state"`
	StateCode   string `json:"stateCode"`
	PostalCode  string `json:"postalCode"`
	CountryName string `json:"countryName"`
}

// Item is a single search result.
type Item struct {
	Title      string    `json:"title"`
	ResultType string    `json:"resultType"`
	Address    Address   `json:"address"`
	Position   *Position `json:"position"`
}

// searchResponse is the wire shape shared by both endpoints.
type searchResponse struct {
	Items []Item `json:"items"`
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithBaseURLs overrides the geocode, discover and revgeocode endpoint URLs.
func WithBaseURLs(geocodeURL, discoverURL, reverseURL string) Option {
	return func(c *client) {
		c.geocodeURL = geocodeURL
		c.discoverURL = discoverURL
		c.reverseURL = reverseURL
	}
}

// WithLimit sets the per-query result limit (default 10).
func WithLimit(n int) Option {
	return func(c *client) {
		c.limit = n
	}
}

type client struct {
	apiKey      string
	geocodeURL  string
	discoverURL string
	reverseURL  string
	limit       int
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a HERE search client with the given options.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:      apiKey,
		geocodeURL:  defaultGeocodeURL,
		discoverURL: defaultDiscoverURL,
		reverseURL:  defaultReverseURL,
		limit:       10,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
