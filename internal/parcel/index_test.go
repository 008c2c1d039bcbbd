package parcel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaviva/stops-cli/internal/config"
)

// A single rectangular lot around (-16.8230, -49.2470), roughly 100 x 110 m.
const lotGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"quadra": 40, "lote": "027", "bairro": "Setor Central"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[
					[-49.2475, -16.8235],
					[-49.2465, -16.8235],
					[-49.2465, -16.8225],
					[-49.2475, -16.8225],
					[-49.2475, -16.8235]
				]]
			}
		}
	]
}`

// The same lot with lat/lng transposed at export time.
const swappedGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"quadra": "40", "lote": "27"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[
					[-16.8235, -49.2475],
					[-16.8235, -49.2465],
					[-16.8225, -49.2465],
					[-16.8225, -49.2475],
					[-16.8235, -49.2475]
				]]
			}
		}
	]
}`

func writeDataset(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lots.geojson")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testParcelConfig(path string) config.ParcelConfig {
	return config.ParcelConfig{
		DatasetPath:       path,
		BufferMeters:      2,
		CacheSize:         64,
		CacheTTLMins:      15,
		CacheH3Res:        12,
		BlockAttrs:        []string{"quadra", "num_qdr", "NUM_QDR", "QD"},
		LotAttrs:          []string{"lote", "num_lot", "NUM_LOT", "LT"},
		NeighborhoodAttrs: []string{"bairro", "nm_bai", "NM_BAI", "SETOR"},
	}
}

func TestLookupInsideLot(t *testing.T) {
	ix := NewIndex(testParcelConfig(writeDataset(t, lotGeoJSON)))
	require.True(t, ix.Available())

	match := ix.Lookup(-16.8230, -49.2470)
	require.True(t, match.Found)
	assert.Equal(t, "40", match.Block)
	assert.Equal(t, "027", match.Lot)
	assert.Equal(t, "Setor Central", match.Neighborhood)
}

// The first lot is valid; the second decodes to a polygon with zero rings
// and must be dropped at load time.
const degenerateGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"quadra": "40", "lote": "27"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[
					[-49.2475, -16.8235],
					[-49.2465, -16.8235],
					[-49.2465, -16.8225],
					[-49.2475, -16.8225],
					[-49.2475, -16.8235]
				]]
			}
		},
		{
			"type": "Feature",
			"properties": {"quadra": "41", "lote": "1"},
			"geometry": {"type": "Polygon", "coordinates": []}
		}
	]
}`

func TestLoadSkipsDegenerateFeatures(t *testing.T) {
	ix := NewIndex(testParcelConfig(writeDataset(t, degenerateGeoJSON)))

	assert.NotPanics(t, ix.Load)
	require.True(t, ix.Available())

	match := ix.Lookup(-16.8230, -49.2470)
	require.True(t, match.Found)
	assert.Equal(t, "40", match.Block)
}

func TestValidPolygons(t *testing.T) {
	square := [][]Point{{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}

	kept := validPolygons([][][]Point{
		square,
		{},
		{{{0, 0}, {1, 1}}},
	})

	require.Len(t, kept, 1)
	assert.Equal(t, square, kept[0])
}

func TestLookupOutsideLot(t *testing.T) {
	ix := NewIndex(testParcelConfig(writeDataset(t, lotGeoJSON)))

	assert.False(t, ix.Lookup(-16.8300, -49.2470).Found)
	assert.False(t, ix.Lookup(-16.8230, -49.2400).Found)
}

func TestLookupBufferTolerance(t *testing.T) {
	ix := NewIndex(testParcelConfig(writeDataset(t, lotGeoJSON)))

	// ~1 m east of the lot boundary: inside the 2 m buffer.
	match := ix.Lookup(-16.8230, -49.24649)
	assert.True(t, match.Found)

	// ~50 m east: well outside the buffer.
	assert.False(t, ix.Lookup(-16.8230, -49.2460).Found)
}

func TestLookupTransposesSwappedAxes(t *testing.T) {
	ix := NewIndex(testParcelConfig(writeDataset(t, swappedGeoJSON)))
	require.True(t, ix.Available())

	match := ix.Lookup(-16.8230, -49.2470)
	require.True(t, match.Found)
	assert.Equal(t, "40", match.Block)
}

func TestLookupMissingDatasetDegrades(t *testing.T) {
	ix := NewIndex(testParcelConfig("/nonexistent/lots.geojson"))

	assert.False(t, ix.Available())
	assert.False(t, ix.Lookup(-16.8230, -49.2470).Found)
}

func TestLookupCachesRepeatedPoints(t *testing.T) {
	ix := NewIndex(testParcelConfig(writeDataset(t, lotGeoJSON)))

	first := ix.Lookup(-16.8230, -49.2470)
	second := ix.Lookup(-16.8230, -49.2470)
	assert.Equal(t, first, second)
}

func TestRingContains(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	assert.True(t, ringContains(square, Point{5, 5}))
	assert.False(t, ringContains(square, Point{15, 5}))
	assert.False(t, ringContains(square, Point{-1, -1}))
}

func TestFeatureContainsHole(t *testing.T) {
	f := &Feature{Polygons: [][][]Point{{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}},
	}}}

	assert.True(t, featureContains(f, 2, 2, 0))
	assert.False(t, featureContains(f, 5, 5, 0))
}

func TestPickAttrAliasesAndNumbers(t *testing.T) {
	props := map[string]any{"num_qdr": 40.0, "bairro": " Setor Central "}

	assert.Equal(t, "40", pickAttr(props, []string{"quadra", "num_qdr"}))
	assert.Equal(t, "Setor Central", pickAttr(props, []string{"bairro"}))
	assert.Equal(t, "", pickAttr(props, []string{"lote"}))
}
