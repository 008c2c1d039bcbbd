package model

import "fmt"

// Result-type tags as normalized from the geocoding provider.
const (
	ResultTypeAddress = "houseNumber"
	ResultTypeStreet  = "street"
	ResultTypePlace   = "place"
)

// GeocodeCandidate is a single result returned by the geocoding provider for
// one query variant. Ephemeral; deduplicated by DedupeKey.
type GeocodeCandidate struct {
	Label        string      `json:"label"`
	Street       string      `json:"street"`
	Neighborhood string      `json:"neighborhood"`
	City         string      `json:"city"`
	PostalCode   string      `json:"postal_code"`
	ResultType   string      `json:"result_type"`
	Position     *Coordinate `json:"position,omitempty"`
}

// DedupeKey identifies a candidate by label and coordinate. Coordinates are
// rounded to five decimals (~1 m) so the same place returned by both provider
// modes collapses to one entry.
func (c GeocodeCandidate) DedupeKey() string {
	if c.Position == nil {
		return c.Label
	}
	return fmt.Sprintf("%s|%.5f,%.5f", c.Label, c.Position.Lat, c.Position.Lng)
}

// ScoredCandidate pairs a candidate with its geocode-match score and, after
// re-ranking, its parcel-match score.
type ScoredCandidate struct {
	Candidate   GeocodeCandidate `json:"candidate"`
	Score       int              `json:"score"`
	ParcelScore int              `json:"parcel_score"`
}

// Total is the combined ranking score.
func (s ScoredCandidate) Total() int {
	return s.Score + s.ParcelScore
}

// ParcelMatch is the result of a coordinate-to-polygon lookup against the
// cadastral dataset.
type ParcelMatch struct {
	Found        bool   `json:"found"`
	Block        string `json:"block,omitempty"`
	Lot          string `json:"lot,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
}
