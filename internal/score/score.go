// Package score ranks geocoding candidates against the wanted address fields.
package score

import (
	"sort"
	"strings"

	"github.com/rotaviva/stops-cli/internal/config"
	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
)

// Scorer applies the weighted partial-match rules. The rule set is additive
// and order-independent: every independent match only ever adds score.
type Scorer struct {
	w config.ScoreWeights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w config.ScoreWeights) *Scorer {
	return &Scorer{w: w}
}

// Score computes the geocode-match score of one candidate. Candidates
// without a coordinate get the (large negative) NoCoordinate weight so they
// rank below any candidate that can actually be routed to.
func (s *Scorer) Score(c model.GeocodeCandidate, wanted model.NormalizedAddress) int {
	if c.Position == nil {
		return s.w.NoCoordinate
	}

	var total int

	cepWant := ptext.NormalizeCEP(wanted.PostalCode)
	cepGot := ptext.NormalizeCEP(c.PostalCode)
	if cepWant != "" && cepGot != "" && cepWant == cepGot {
		total += s.w.PostalCode
	}

	switch c.ResultType {
	case model.ResultTypeAddress:
		total += s.w.TypeAddress
	case model.ResultTypeStreet:
		total += s.w.TypeStreet
	case model.ResultTypePlace:
		total += s.w.TypePlace
	}

	label := ptext.Fold(c.Label)

	streetWant := ptext.Fold(wanted.Street)
	streetGot := ptext.Fold(c.Street)
	if streetWant != "" && streetGot != "" && containsEither(streetGot, streetWant) {
		total += s.w.Street
	}
	if streetWant != "" && strings.Contains(label, streetWant) {
		total += s.w.StreetInLabel
	}

	cityWant := ptext.Fold(wanted.City)
	cityGot := ptext.Fold(c.City)
	if cityWant != "" && cityGot != "" && containsEither(cityGot, cityWant) {
		total += s.w.City
	}

	nbWant := ptext.Fold(wanted.Neighborhood)
	nbGot := ptext.Fold(c.Neighborhood)
	if nbWant != "" && nbGot != "" && containsEither(nbGot, nbWant) {
		total += s.w.Neighborhood
	}

	if wanted.Block != "" && labelHasToken(label, wanted.Block, "QUADRA", "QD", "Q") {
		total += s.w.BlockInLabel
	}
	if wanted.Lot != "" && labelHasToken(label, wanted.Lot, "LOTE", "LT", "L") {
		total += s.w.LotInLabel
	}

	return total
}

// Rank scores every candidate and returns them in descending total order.
func (s *Scorer) Rank(candidates []model.GeocodeCandidate, wanted model.NormalizedAddress) []model.ScoredCandidate {
	scored := make([]model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, model.ScoredCandidate{
			Candidate: c,
			Score:     s.Score(c, wanted),
		})
	}
	SortByTotal(scored)
	return scored
}

// SortByTotal orders candidates by combined score, best first. The sort is
// stable so provider order breaks ties deterministically.
func SortByTotal(scored []model.ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Total() > scored[j].Total()
	})
}

// containsEither reports a substring match in either direction, tolerating
// provider labels that are longer or shorter than the wanted value.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// labelHasToken checks whether a block/lot value appears in the label under
// any of its keyword spellings ("QUADRA 40", "QD 40", "QD40", "Q40").
func labelHasToken(label, value string, keywords ...string) bool {
	v := ptext.Fold(value)
	for _, kw := range keywords {
		if strings.Contains(label, kw+" "+v) || strings.Contains(label, kw+v) {
			return true
		}
	}
	return false
}
