package here

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

// Geocode runs a forward-geocode query, biased at the given point when set.
func (c *client) Geocode(ctx context.Context, query string, at *Position) ([]Item, error) {
	return c.search(ctx, c.geocodeURL, query, at)
}

// Discover runs a free-text discovery query. The API requires a bias point;
// callers always pass one (the postal-code centroid or the municipal center).
func (c *client) Discover(ctx context.Context, query string, at *Position) ([]Item, error) {
	return c.search(ctx, c.discoverURL, query, at)
}

// Reverse resolves a coordinate to the nearest addresses.
func (c *client) Reverse(ctx context.Context, lat, lng float64) ([]Item, error) {
	params := url.Values{
		"at":    {fmt.Sprintf("%f,%f", lat, lng)},
		"lang":  {"pt-BR"},
		"limit": {fmt.Sprintf("%d", c.limit)},
	}
	return c.get(ctx, c.reverseURL, params)
}

func (c *client) search(ctx context.Context, baseURL, query string, at *Position) ([]Item, error) {
	params := url.Values{
		"q":     {query},
		"lang":  {"pt-BR"},
		"limit": {fmt.Sprintf("%d", c.limit)},
		"in":    {"countryCode:BRA"},
	}
	if at != nil {
		params.Set("at", fmt.Sprintf("%f,%f", at.Lat, at.Lng))
	}
	return c.get(ctx, baseURL, params)
}

func (c *client) get(ctx context.Context, baseURL string, params url.Values) ([]Item, error) {
	if c.apiKey == "" {
		return nil, eris.New("here: api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "here: rate limit")
	}

	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "here: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "here: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("here: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "here: read body")
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "here: parse response")
	}

	return sr.Items, nil
}
