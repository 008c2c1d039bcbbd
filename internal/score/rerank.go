package score

import (
	"strings"

	"github.com/rotaviva/stops-cli/internal/config"
	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
)

// ParcelLookup answers coordinate-to-parcel queries. Implemented by
// parcel.Index; kept as an interface here so re-ranking is testable without
// a dataset.
type ParcelLookup interface {
	Lookup(lat, lng float64) model.ParcelMatch
}

// ReRanker re-scores the top geocode candidates using the cadastral map.
// Only rows in the covered municipality reach it.
type ReRanker struct {
	parcels ParcelLookup
	w       config.ScoreWeights
	topK    int
}

// NewReRanker creates a ReRanker over the given parcel lookup.
func NewReRanker(parcels ParcelLookup, w config.ScoreWeights, topK int) *ReRanker {
	if topK <= 0 {
		topK = 3
	}
	return &ReRanker{parcels: parcels, w: w, topK: topK}
}

// ReRank queries the parcel map at each of the top-K candidates' coordinates
// and folds a parcel-match score into the total, then re-sorts. It returns
// the re-ranked slice and the parcel match of the new best candidate (zero
// ParcelMatch when the best candidate hit no parcel).
func (r *ReRanker) ReRank(scored []model.ScoredCandidate, wanted model.NormalizedAddress) ([]model.ScoredCandidate, model.ParcelMatch) {
	if r.parcels == nil || len(scored) == 0 {
		return scored, model.ParcelMatch{}
	}

	k := r.topK
	if k > len(scored) {
		k = len(scored)
	}

	matches := make(map[string]model.ParcelMatch, k)
	for i := 0; i < k; i++ {
		pos := scored[i].Candidate.Position
		if pos == nil {
			continue
		}
		match := r.parcels.Lookup(pos.Lat, pos.Lng)
		if !match.Found {
			continue
		}
		matches[scored[i].Candidate.DedupeKey()] = match
		scored[i].ParcelScore = r.parcelScore(match, wanted)
	}

	SortByTotal(scored)

	return scored, matches[scored[0].Candidate.DedupeKey()]
}

// parcelScore combines the base found bonus with block/lot agreement.
func (r *ReRanker) parcelScore(match model.ParcelMatch, wanted model.NormalizedAddress) int {
	total := r.w.ParcelFound

	if wanted.Block != "" && match.Block != "" {
		if sameValue(wanted.Block, match.Block) {
			total += r.w.ParcelBlockMatch
		} else {
			total += r.w.ParcelBlockWrong
		}
	}
	if wanted.Lot != "" && match.Lot != "" {
		if sameValue(wanted.Lot, match.Lot) {
			total += r.w.ParcelLotMatch
		} else {
			total += r.w.ParcelLotWrong
		}
	}
	if wanted.Neighborhood != "" && match.Neighborhood != "" &&
		containsEither(ptext.Fold(wanted.Neighborhood), ptext.Fold(match.Neighborhood)) {
		total += r.w.ParcelNeighborhood
	}

	return total
}

// sameValue compares block/lot identifiers after zero-stripping ("04" == "4").
func sameValue(a, b string) bool {
	return strings.EqualFold(ptext.TrimLeadingZeros(a), ptext.TrimLeadingZeros(b))
}
