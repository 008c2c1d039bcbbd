package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotaviva/stops-cli/internal/config"
	"github.com/rotaviva/stops-cli/internal/model"
)

func testWeights() config.ScoreWeights {
	return config.ScoreWeights{
		PostalCode:         90,
		TypeAddress:        60,
		TypeStreet:         40,
		TypePlace:          15,
		Street:             35,
		StreetInLabel:      15,
		City:               35,
		Neighborhood:       18,
		BlockInLabel:       45,
		LotInLabel:         45,
		NoCoordinate:       -1000,
		ParcelFound:        200,
		ParcelBlockMatch:   250,
		ParcelBlockWrong:   -120,
		ParcelLotMatch:     250,
		ParcelLotWrong:     -120,
		ParcelNeighborhood: 25,
	}
}

func coord(lat, lng float64) *model.Coordinate {
	return &model.Coordinate{Lat: lat, Lng: lng}
}

func TestScoreMonotonic(t *testing.T) {
	s := NewScorer(testWeights())
	wanted := model.NormalizedAddress{
		Street:       "Rua 25-E",
		Neighborhood: "Setor Central",
		City:         "Aparecida de Goiânia",
		PostalCode:   "74915230",
	}

	c := model.GeocodeCandidate{
		ResultType: model.ResultTypeStreet,
		Position:   coord(-16.82, -49.24),
	}
	base := s.Score(c, wanted)

	c.Street = "Rua 25-E"
	withStreet := s.Score(c, wanted)
	assert.Greater(t, withStreet, base)

	c.City = "Aparecida de Goiânia"
	withCity := s.Score(c, wanted)
	assert.Greater(t, withCity, withStreet)

	c.Neighborhood = "Setor Central"
	withNeighborhood := s.Score(c, wanted)
	assert.Greater(t, withNeighborhood, withCity)

	c.PostalCode = "74915-230"
	withCEP := s.Score(c, wanted)
	assert.Greater(t, withCEP, withNeighborhood)
}

func TestScoreNoCoordinateAlwaysLowest(t *testing.T) {
	s := NewScorer(testWeights())
	wanted := model.NormalizedAddress{
		Street:     "Rua 25-E",
		City:       "Aparecida de Goiânia",
		PostalCode: "74915230",
	}

	// Perfect field agreement, but no coordinate.
	perfect := model.GeocodeCandidate{
		Label:      "Rua 25-E, Aparecida de Goiânia",
		Street:     "Rua 25-E",
		City:       "Aparecida de Goiânia",
		PostalCode: "74915230",
		ResultType: model.ResultTypeAddress,
	}
	// Nothing matches, but it has a coordinate.
	empty := model.GeocodeCandidate{
		ResultType: model.ResultTypePlace,
		Position:   coord(-16.7, -49.3),
	}

	assert.Less(t, s.Score(perfect, wanted), s.Score(empty, wanted))
}

func TestScoreResultTypeOrdering(t *testing.T) {
	s := NewScorer(testWeights())
	wanted := model.NormalizedAddress{Street: "Rua 10"}

	mk := func(rt string) int {
		return s.Score(model.GeocodeCandidate{ResultType: rt, Position: coord(0, 0)}, wanted)
	}

	assert.Greater(t, mk(model.ResultTypeAddress), mk(model.ResultTypeStreet))
	assert.Greater(t, mk(model.ResultTypeStreet), mk(model.ResultTypePlace))
}

func TestScoreBlockLotInLabel(t *testing.T) {
	s := NewScorer(testWeights())
	wanted := model.NormalizedAddress{Block: "40", Lot: "27"}

	plain := model.GeocodeCandidate{
		Label:      "Rua 25-E, Aparecida de Goiânia",
		Position:   coord(-16.8, -49.2),
		ResultType: model.ResultTypeStreet,
	}
	tagged := plain
	tagged.Label = "Rua 25-E Quadra 40 Lote 27, Aparecida de Goiânia"

	assert.Equal(t,
		s.Score(plain, wanted)+testWeights().BlockInLabel+testWeights().LotInLabel,
		s.Score(tagged, wanted))

	// Abbreviated, glued spelling still counts.
	tagged.Label = "RUA 25-E QD40 LT27"
	assert.Greater(t, s.Score(tagged, wanted), s.Score(plain, wanted))
}

func TestRankOrdersDescending(t *testing.T) {
	s := NewScorer(testWeights())
	wanted := model.NormalizedAddress{Street: "Rua 10", City: "Goiânia"}

	candidates := []model.GeocodeCandidate{
		{Label: "weak", ResultType: model.ResultTypePlace, Position: coord(1, 1)},
		{Label: "none"},
		{Label: "strong", Street: "Rua 10", City: "Goiânia", ResultType: model.ResultTypeAddress, Position: coord(2, 2)},
	}

	scored := s.Rank(candidates, wanted)
	assert.Equal(t, "strong", scored[0].Candidate.Label)
	assert.Equal(t, "weak", scored[1].Candidate.Label)
	assert.Equal(t, "none", scored[2].Candidate.Label)
}
