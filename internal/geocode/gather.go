// Package geocode collects geocoding candidates for a row's query variants.
package geocode

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
	"github.com/rotaviva/stops-cli/pkg/here"
)

// Municipal-center bias fallbacks used when no postal-code centroid resolves.
var cityCenters = map[string]model.Coordinate{
	"APARECIDA DE GOIANIA": {Lat: -16.8230, Lng: -49.2470},
	"GOIANIA":              {Lat: -16.6869, Lng: -49.2648},
}

// defaultCenter anchors searches when the city is unknown.
var defaultCenter = model.Coordinate{Lat: -16.6869, Lng: -49.2648}

// Gatherer queries the provider with every variant in both search modes and
// collects the deduplicated candidate set. Provider failures for a variant
// are skipped; an empty total result is a normal outcome, not an error.
type Gatherer struct {
	client here.Client
}

// NewGatherer creates a Gatherer over the given provider client.
func NewGatherer(client here.Client) *Gatherer {
	return &Gatherer{client: client}
}

// BiasPoint resolves the geographic anchor for a row: the postal-code
// centroid when the CEP geocodes, otherwise the municipal center.
func (g *Gatherer) BiasPoint(ctx context.Context, postalCode, city string) model.Coordinate {
	fallback := CityCenter(city)

	cep := ptext.NormalizeCEP(postalCode)
	if len(cep) != 8 {
		return fallback
	}
	if city == "" {
		city = "Goiânia"
	}

	items, err := g.client.Geocode(ctx, cep+", "+city+", GO", nil)
	if err != nil {
		zap.L().Debug("geocode: cep bias lookup failed", zap.String("cep", cep), zap.Error(err))
		return fallback
	}
	for _, it := range items {
		if it.Position != nil {
			return model.Coordinate{Lat: it.Position.Lat, Lng: it.Position.Lng}
		}
	}
	return fallback
}

// CityCenter returns the hardcoded municipal-center fallback for a city.
func CityCenter(city string) model.Coordinate {
	key := ptext.Fold(strings.TrimSpace(city))
	for name, center := range cityCenters {
		if strings.Contains(key, name) {
			return center
		}
	}
	return defaultCenter
}

// Gather issues every variant against both provider modes and returns the
// deduplicated candidates. All variants are tried: stopping at the first hit
// loses recall on streets the provider only resolves under another spelling.
func (g *Gatherer) Gather(ctx context.Context, variants []string, bias model.Coordinate) []model.GeocodeCandidate {
	at := &here.Position{Lat: bias.Lat, Lng: bias.Lng}

	seen := make(map[string]bool)
	var out []model.GeocodeCandidate

	collect := func(items []here.Item) {
		for _, it := range items {
			c := toCandidate(it)
			key := c.DedupeKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}

	for _, variant := range variants {
		items, err := g.client.Geocode(ctx, variant, at)
		if err != nil {
			zap.L().Debug("geocode: variant failed", zap.String("variant", variant), zap.Error(err))
		} else {
			collect(items)
		}

		items, err = g.client.Discover(ctx, variant, at)
		if err != nil {
			zap.L().Debug("geocode: discover variant failed", zap.String("variant", variant), zap.Error(err))
		} else {
			collect(items)
		}
	}

	return out
}

// toCandidate converts a provider item into the internal candidate type,
// validating it once at the boundary.
func toCandidate(it here.Item) model.GeocodeCandidate {
	label := it.Address.Label
	if label == "" {
		label = it.Title
	}

	neighborhood := it.Address.District
	if neighborhood == "" {
		neighborhood = it.Address.Subdistrict
	}

	c := model.GeocodeCandidate{
		Label:        label,
		Street:       it.Address.Street,
		Neighborhood: neighborhood,
		City:         it.Address.City,
		PostalCode:   it.Address.PostalCode,
		ResultType:   normalizeResultType(it.ResultType),
	}
	if it.Position != nil {
		c.Position = &model.Coordinate{Lat: it.Position.Lat, Lng: it.Position.Lng}
	}
	return c
}

// normalizeResultType maps provider result types onto the three internal
// tags: exact address, street, or generic place.
func normalizeResultType(rt string) string {
	switch rt {
	case "houseNumber", "pointAddress":
		return model.ResultTypeAddress
	case "street", "intersection":
		return model.ResultTypeStreet
	default:
		return model.ResultTypePlace
	}
}
