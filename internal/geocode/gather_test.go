package geocode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/pkg/here"
)

type fakeHere struct {
	geocode  map[string][]here.Item
	discover map[string][]here.Item
	calls    []string
}

func (f *fakeHere) Geocode(_ context.Context, query string, _ *here.Position) ([]here.Item, error) {
	f.calls = append(f.calls, "geocode:"+query)
	return f.geocode[query], nil
}

func (f *fakeHere) Discover(_ context.Context, query string, _ *here.Position) ([]here.Item, error) {
	f.calls = append(f.calls, "discover:"+query)
	return f.discover[query], nil
}

func (f *fakeHere) Reverse(context.Context, float64, float64) ([]here.Item, error) {
	return nil, nil
}

func item(label, rt string, lat, lng float64) here.Item {
	return here.Item{
		ResultType: rt,
		Address:    here.Address{Label: label},
		Position:   &here.Position{Lat: lat, Lng: lng},
	}
}

func TestGatherDeduplicates(t *testing.T) {
	fake := &fakeHere{
		geocode: map[string][]here.Item{
			"q1": {item("Rua A, Goiânia", "street", -16.7, -49.3)},
			"q2": {item("Rua A, Goiânia", "street", -16.7, -49.3)},
		},
		discover: map[string][]here.Item{
			"q1": {item("Rua A, Goiânia", "street", -16.7, -49.3)},
			"q2": {item("Rua B, Goiânia", "street", -16.71, -49.31)},
		},
	}
	g := NewGatherer(fake)

	out := g.Gather(context.Background(), []string{"q1", "q2"}, model.Coordinate{Lat: -16.7, Lng: -49.3})

	require.Len(t, out, 2)
	assert.Equal(t, "Rua A, Goiânia", out[0].Label)
	assert.Equal(t, "Rua B, Goiânia", out[1].Label)
}

func TestGatherTriesAllVariantsInBothModes(t *testing.T) {
	fake := &fakeHere{
		geocode: map[string][]here.Item{
			"q1": {item("hit", "houseNumber", -16.7, -49.3)},
		},
	}
	g := NewGatherer(fake)

	g.Gather(context.Background(), []string{"q1", "q2"}, model.Coordinate{})

	// A hit on the first variant must not stop the remaining queries.
	assert.Equal(t, []string{"geocode:q1", "discover:q1", "geocode:q2", "discover:q2"}, fake.calls)
}

func TestToCandidateResultTypes(t *testing.T) {
	cases := map[string]string{
		"houseNumber":  model.ResultTypeAddress,
		"pointAddress": model.ResultTypeAddress,
		"street":       model.ResultTypeStreet,
		"intersection": model.ResultTypeStreet,
		"locality":     model.ResultTypePlace,
		"place":        model.ResultTypePlace,
		"":             model.ResultTypePlace,
	}
	for provider, want := range cases {
		c := toCandidate(here.Item{ResultType: provider})
		assert.Equal(t, want, c.ResultType, provider)
	}
}

func TestToCandidateFallbacks(t *testing.T) {
	c := toCandidate(here.Item{
		Title: "Mercado Central",
		Address: here.Address{
			Subdistrict: "Vila Brasília",
		},
	})
	assert.Equal(t, "Mercado Central", c.Label)
	assert.Equal(t, "Vila Brasília", c.Neighborhood)
	assert.Nil(t, c.Position)
}

func TestCityCenter(t *testing.T) {
	ap := CityCenter("Aparecida de Goiânia")
	assert.InDelta(t, -16.8230, ap.Lat, 0.001)

	gyn := CityCenter("GOIÂNIA")
	assert.InDelta(t, -16.6869, gyn.Lat, 0.001)

	// Unknown cities anchor at the default metro center.
	other := CityCenter("Trindade")
	assert.Equal(t, defaultCenter, other)
}

func TestBiasPointUsesCEPCentroid(t *testing.T) {
	fake := &fakeHere{
		geocode: map[string][]here.Item{
			"74915230, Aparecida de Goiânia, GO": {item("cep", "locality", -16.8100, -49.2500)},
		},
	}
	g := NewGatherer(fake)

	bias := g.BiasPoint(context.Background(), "74.915-230", "Aparecida de Goiânia")
	assert.InDelta(t, -16.8100, bias.Lat, 0.0001)
	assert.InDelta(t, -49.2500, bias.Lng, 0.0001)
}

func TestBiasPointFallsBackToCityCenter(t *testing.T) {
	g := NewGatherer(&fakeHere{})

	// Short CEP: no lookup, municipal center.
	bias := g.BiasPoint(context.Background(), "7491", "Aparecida de Goiânia")
	assert.InDelta(t, -16.8230, bias.Lat, 0.001)

	// Valid CEP but empty geocode result.
	bias = g.BiasPoint(context.Background(), "74915230", "Goiânia")
	assert.InDelta(t, -16.6869, bias.Lat, 0.001)
}
