package parcel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rotaviva/stops-cli/internal/model"
)

// Attribute names published by the municipal feature service, tried in
// priority order.
var (
	arcgisBlockAttrs = []string{"ci_qdr", "CI_QDR", "quadra", "QUADRA", "qd", "QD"}
	arcgisLotAttrs   = []string{"ci_lot", "CI_LOT", "lote", "LOTE", "lt", "LT"}
)

// ArcGIS queries a municipal ArcGIS feature service for the lot containing a
// point. Goiânia publishes its cadastre this way rather than as a downloadable
// dataset, so unlike Index this lookup is remote and can fail.
type ArcGIS struct {
	baseURL    string
	layer      string
	httpClient *http.Client
}

// NewArcGIS creates a client for the feature service at baseURL (the
// MapServer root). layer selects the lot-boundary layer.
func NewArcGIS(baseURL, layer string, hc *http.Client) *ArcGIS {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &ArcGIS{baseURL: baseURL, layer: layer, httpClient: hc}
}

// arcgisResponse is the subset of the query response consumed here.
type arcgisResponse struct {
	Features []struct {
		Attributes map[string]any `json:"attributes"`
	} `json:"features"`
}

// Lookup runs a point-intersect query against the service. An empty layer
// uses the configured default; no intersecting feature yields a zero match,
// not an error.
func (a *ArcGIS) Lookup(ctx context.Context, lat, lng float64, layer string) (model.ParcelMatch, error) {
	if layer == "" {
		layer = a.layer
	}

	params := url.Values{
		"where":          {"1=1"},
		"geometry":       {fmt.Sprintf("%f,%f", lng, lat)},
		"geometryType":   {"esriGeometryPoint"},
		"inSR":           {"4326"},
		"spatialRel":     {"esriSpatialRelIntersects"},
		"outFields":      {"*"},
		"returnGeometry": {"false"},
		"f":              {"pjson"},
	}

	endpoint := strings.TrimRight(a.baseURL, "/") + "/" + url.PathEscape(layer) + "/query"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return model.ParcelMatch{}, eris.Wrap(err, "parcel: build arcgis request")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return model.ParcelMatch{}, eris.Wrap(err, "parcel: arcgis request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return model.ParcelMatch{}, eris.Errorf("parcel: arcgis returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ParcelMatch{}, eris.Wrap(err, "parcel: read arcgis body")
	}

	var ar arcgisResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return model.ParcelMatch{}, eris.Wrap(err, "parcel: parse arcgis response")
	}

	if len(ar.Features) == 0 {
		return model.ParcelMatch{}, nil
	}

	attrs := ar.Features[0].Attributes
	return model.ParcelMatch{
		Found: true,
		Block: pickAttr(attrs, arcgisBlockAttrs),
		Lot:   pickAttr(attrs, arcgisLotAttrs),
	}, nil
}
