// Package parcel answers point-in-polygon queries against the municipal
// cadastral lot dataset.
package parcel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Point is a dataset vertex in lng/lat order (GeoJSON axis order).
type Point struct {
	X float64 // longitude
	Y float64 // latitude
}

// Feature is one cadastral lot: its polygon rings plus the block, lot and
// neighborhood attributes. The first ring of each polygon is the outer
// boundary; any further rings are holes.
type Feature struct {
	Polygons     [][][]Point
	Block        string
	Lot          string
	Neighborhood string
}

// attrAliases lists the property names tried, in priority order, for each
// attribute. Municipal exports are inconsistent about casing and naming.
type attrAliases struct {
	block        []string
	lot          []string
	neighborhood []string
}

// loadDataset reads the dataset at path, dispatching on extension.
// GeoJSON (.geojson/.json) and shapefile (.shp) exports are supported.
func loadDataset(path string, aliases attrAliases) ([]Feature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return loadShapefile(path, aliases)
	default:
		return loadGeoJSON(path, aliases)
	}
}

func loadGeoJSON(path string, aliases attrAliases) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "parcel: decode geojson")
	}

	features := make([]Feature, 0, len(fc.Features))
	var skipped int
	for _, f := range fc.Features {
		polys := validPolygons(polygonsOf(f.Geometry))
		if len(polys) == 0 {
			skipped++
			continue
		}
		features = append(features, Feature{
			Polygons:     polys,
			Block:        pickAttr(f.Properties, aliases.block),
			Lot:          pickAttr(f.Properties, aliases.lot),
			Neighborhood: pickAttr(f.Properties, aliases.neighborhood),
		})
	}

	if skipped > 0 {
		zap.L().Debug("parcel: skipped non-polygon or degenerate features", zap.Int("skipped", skipped))
	}
	return features, nil
}

func loadShapefile(path string, aliases attrAliases) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(aliasList []string) string {
		for _, alias := range aliasList {
			idx, ok := fieldIdx[strings.ToLower(alias)]
			if !ok {
				continue
			}
			v := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if v != "" {
				return v
			}
		}
		return ""
	}

	var features []Feature
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			continue
		}
		rings := shpRings(poly)
		if len(rings) == 0 {
			continue
		}
		features = append(features, Feature{
			Polygons:     rings,
			Block:        attr(aliases.block),
			Lot:          attr(aliases.lot),
			Neighborhood: attr(aliases.neighborhood),
		})
	}

	return features, nil
}

// shpRings splits a shapefile polygon's flat point list into rings. Ring
// nesting is not encoded in .shp, so each ring is treated as an outer
// boundary; cadastral lots have no holes in practice.
func shpRings(poly *shp.Polygon) [][][]Point {
	var out [][][]Point
	parts := append([]int32{}, poly.Parts...)
	parts = append(parts, int32(len(poly.Points)))
	for i := 0; i+1 < len(parts); i++ {
		ring := make([]Point, 0, parts[i+1]-parts[i])
		for _, p := range poly.Points[parts[i]:parts[i+1]] {
			ring = append(ring, Point{X: p.X, Y: p.Y})
		}
		if len(ring) >= 3 {
			out = append(out, [][]Point{ring})
		}
	}
	return out
}

// validPolygons drops polygons without a usable outer ring. An empty
// "coordinates" array decodes as a polygon with zero rings and must not
// reach the index.
func validPolygons(polys [][][]Point) [][][]Point {
	out := polys[:0]
	for _, poly := range polys {
		if len(poly) == 0 || len(poly[0]) < 3 {
			continue
		}
		out = append(out, poly)
	}
	return out
}

// polygonsOf extracts polygon rings from a decoded geometry.
func polygonsOf(g geom.T) [][][]Point {
	switch t := g.(type) {
	case *geom.Polygon:
		return [][][]Point{polygonRings(t)}
	case *geom.MultiPolygon:
		out := make([][][]Point, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			out = append(out, polygonRings(t.Polygon(i)))
		}
		return out
	default:
		return nil
	}
}

func polygonRings(p *geom.Polygon) [][]Point {
	rings := make([][]Point, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		ring := make([]Point, 0, len(coords))
		for _, c := range coords {
			ring = append(ring, Point{X: c.X(), Y: c.Y()})
		}
		rings = append(rings, ring)
	}
	return rings
}

func pickAttr(props map[string]any, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := props[alias]; ok {
			s := strings.TrimSpace(toString(v))
			if s != "" {
				return s
			}
		}
	}
	return ""
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// Attribute tables frequently store numeric ids as numbers.
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return ""
	}
}
