package classify

import (
	"math"

	"github.com/rotaviva/stops-cli/internal/model"
)

const earthRadiusMeters = 6371000.0

// MaxPairwiseMeters returns the largest great-circle distance between any
// two of the given coordinates. Zero or one coordinate yields 0.
func MaxPairwiseMeters(points []model.Coordinate) float64 {
	var max float64
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if d := haversineMeters(points[i], points[j]); d > max {
				max = d
			}
		}
	}
	return max
}

func haversineMeters(a, b model.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}
