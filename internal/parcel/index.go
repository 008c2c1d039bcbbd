package parcel

import (
	"math"
	"sync"
	"time"

	"github.com/tidwall/rtree"
	"go.uber.org/zap"

	"github.com/rotaviva/stops-cli/internal/config"
	"github.com/rotaviva/stops-cli/internal/model"
)

const (
	metersPerDegreeLat = 110540.0
	metersPerDegreeLng = 111320.0
)

// Index holds the cadastral lots in an in-memory R-tree and answers
// point lookups. The dataset is loaded lazily on first use; a missing or
// unreadable dataset degrades the index permanently to "no match" answers
// rather than failing lookups.
type Index struct {
	cfg config.ParcelConfig

	once      sync.Once
	features  []Feature
	tree      rtree.RTreeG[int]
	available bool

	cache *lookupCache
}

func NewIndex(cfg config.ParcelConfig) *Index {
	return &Index{
		cfg:   cfg,
		cache: newLookupCache(cfg.CacheSize, time.Duration(cfg.CacheTTLMins)*time.Minute, cfg.CacheH3Res),
	}
}

// Load builds the index. Safe to call concurrently and more than once.
func (ix *Index) Load() {
	ix.once.Do(ix.load)
}

// Available reports whether the dataset was loaded. It triggers the load.
func (ix *Index) Available() bool {
	ix.Load()
	return ix.available
}

func (ix *Index) load() {
	aliases := attrAliases{
		block:        ix.cfg.BlockAttrs,
		lot:          ix.cfg.LotAttrs,
		neighborhood: ix.cfg.NeighborhoodAttrs,
	}

	features, err := loadDataset(ix.cfg.DatasetPath, aliases)
	if err != nil {
		zap.L().Warn("parcel: dataset unavailable, lookups disabled",
			zap.String("path", ix.cfg.DatasetPath),
			zap.Error(err))
		return
	}
	if len(features) == 0 {
		zap.L().Warn("parcel: dataset is empty, lookups disabled",
			zap.String("path", ix.cfg.DatasetPath))
		return
	}

	if looksSwapped(features) {
		zap.L().Warn("parcel: dataset axes look swapped, transposing coordinates")
		transpose(features)
	}

	for i, f := range features {
		min, max := featureBounds(f)
		ix.tree.Insert(min, max, i)
	}

	ix.features = features
	ix.available = true
	zap.L().Info("parcel: dataset indexed",
		zap.String("path", ix.cfg.DatasetPath),
		zap.Int("features", len(features)))
}

// Lookup returns the attributes of the lot containing the given point, or a
// zero match when no lot contains it (within the configured buffer).
func (ix *Index) Lookup(lat, lng float64) model.ParcelMatch {
	ix.Load()
	if !ix.available {
		return model.ParcelMatch{}
	}

	if match, ok := ix.cache.Get(lat, lng); ok {
		return match
	}

	match := ix.lookup(lat, lng)
	ix.cache.Put(lat, lng, match)
	return match
}

func (ix *Index) lookup(lat, lng float64) model.ParcelMatch {
	// Expand the query point by the buffer so the tree search also returns
	// lots whose boundary passes just outside the point.
	dLat := ix.cfg.BufferMeters / metersPerDegreeLat
	dLng := ix.cfg.BufferMeters / (metersPerDegreeLng * math.Cos(lat*math.Pi/180))

	var hit *Feature
	ix.tree.Search(
		[2]float64{lng - dLng, lat - dLat},
		[2]float64{lng + dLng, lat + dLat},
		func(_, _ [2]float64, idx int) bool {
			f := &ix.features[idx]
			if featureContains(f, lat, lng, ix.cfg.BufferMeters) {
				hit = f
				return false
			}
			return true
		},
	)
	if hit == nil {
		return model.ParcelMatch{}
	}
	return model.ParcelMatch{
		Found:        true,
		Block:        hit.Block,
		Lot:          hit.Lot,
		Neighborhood: hit.Neighborhood,
	}
}

// looksSwapped samples vertices to detect datasets exported in lat/lng order
// instead of GeoJSON's lng/lat. A correctly ordered vertex in the served
// metro area has X (longitude) in (-52,-46) and Y (latitude) in (-25,-10);
// a sampled majority with X in the latitude band and Y in the longitude band
// means the axes were swapped at export time.
func looksSwapped(features []Feature) bool {
	var sampled, swapped int
	for _, f := range features {
		for _, poly := range f.Polygons {
			if len(poly) == 0 || len(poly[0]) == 0 {
				continue
			}
			p := poly[0][0]
			sampled++
			if p.X > -25 && p.X < -10 && p.Y > -52 && p.Y < -46 {
				swapped++
			}
			break
		}
		if sampled >= 25 {
			break
		}
	}
	return sampled > 0 && swapped*2 > sampled
}

func transpose(features []Feature) {
	for fi := range features {
		for pi := range features[fi].Polygons {
			for ri := range features[fi].Polygons[pi] {
				ring := features[fi].Polygons[pi][ri]
				for i := range ring {
					ring[i].X, ring[i].Y = ring[i].Y, ring[i].X
				}
			}
		}
	}
}

func featureBounds(f Feature) (min, max [2]float64) {
	min = [2]float64{math.MaxFloat64, math.MaxFloat64}
	max = [2]float64{-math.MaxFloat64, -math.MaxFloat64}
	for _, poly := range f.Polygons {
		for _, p := range poly[0] {
			min[0] = math.Min(min[0], p.X)
			min[1] = math.Min(min[1], p.Y)
			max[0] = math.Max(max[0], p.X)
			max[1] = math.Max(max[1], p.Y)
		}
	}
	return min, max
}

// featureContains reports whether the point lies inside the feature or
// within bufferMeters of its boundary.
func featureContains(f *Feature, lat, lng float64, bufferMeters float64) bool {
	pt := Point{X: lng, Y: lat}
	for _, poly := range f.Polygons {
		if len(poly) == 0 {
			continue
		}
		if ringContains(poly[0], pt) {
			inHole := false
			for _, hole := range poly[1:] {
				if ringContains(hole, pt) {
					inHole = true
					break
				}
			}
			if !inHole {
				return true
			}
		}
		if bufferMeters > 0 && ringDistanceMeters(poly[0], pt) <= bufferMeters {
			return true
		}
	}
	return false
}

// ringContains is the even-odd ray casting test.
func ringContains(ring []Point, pt Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// ringDistanceMeters returns the distance from pt to the nearest ring
// segment, using a local equirectangular approximation. Lots span a few
// dozen meters, so the flat-earth error is negligible.
func ringDistanceMeters(ring []Point, pt Point) float64 {
	best := math.MaxFloat64
	cosLat := math.Cos(pt.Y * math.Pi / 180)
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		d := segmentDistanceMeters(a, b, pt, cosLat)
		if d < best {
			best = d
		}
	}
	return best
}

func segmentDistanceMeters(a, b, pt Point, cosLat float64) float64 {
	ax := (a.X - pt.X) * metersPerDegreeLng * cosLat
	ay := (a.Y - pt.Y) * metersPerDegreeLat
	bx := (b.X - pt.X) * metersPerDegreeLng * cosLat
	by := (b.Y - pt.Y) * metersPerDegreeLat

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = -(ax*dx + ay*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(cx, cy)
}
