// Package model defines the domain types shared across the resolution pipeline.
package model

// Status is the final confidence classification of a resolved stop.
type Status string

const (
	// StatusOK means street, block and lot are all present and the chosen
	// coordinate survived every downgrade check.
	StatusOK Status = "OK"
	// StatusPartial means some, but not all, structural evidence is present.
	StatusPartial Status = "PARTIAL"
	// StatusNotFound means no usable evidence was recovered for the row.
	StatusNotFound Status = "NOT_FOUND"
	// StatusCondominium is terminal: the raw text describes an apartment or
	// building without block/lot tokens, so no lookup is attempted.
	StatusCondominium Status = "CONDOMINIUM"
)

// Reason is a machine-readable code explaining why a row received its status.
type Reason string

const (
	ReasonOKConfident   Reason = "OK_CONFIDENT"
	ReasonMissingFields Reason = "MISSING_FIELDS"
	ReasonNoEvidence    Reason = "NO_EVIDENCE"
	ReasonEmptyAddress  Reason = "EMPTY_ADDRESS"
	ReasonCondominium   Reason = "CONDOMINIUM"
	ReasonLowScore      Reason = "LOW_SCORE"
	ReasonNoCoord       Reason = "NO_COORD"
	ReasonQLConflict    Reason = "QL_CONFLICT"
	ReasonHereSpread    Reason = "HERE_SPREAD"
	ReasonMissingCore   Reason = "MISSING_CORE"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RawAddressRow is one input row as ingested from a spreadsheet. Immutable.
type RawAddressRow struct {
	Sequence     string `json:"sequence"`
	Address      string `json:"address"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// NormalizedAddress is the structured field set extracted from raw text.
// Fields that could not be extracted are empty strings, never absent.
type NormalizedAddress struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Block        string `json:"block"`
	Lot          string `json:"lot"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Notes        string `json:"notes"`
}

// HasStructure reports whether any of the structural fields used by the
// classifier (street, block, lot, neighborhood) is present.
func (n NormalizedAddress) HasStructure() bool {
	return n.Street != "" || n.Block != "" || n.Lot != "" || n.Neighborhood != ""
}

// ResolvedStop is the final output for one input row. Created once by the
// orchestrator and never mutated after return.
type ResolvedStop struct {
	Sequence     string            `json:"sequence"`
	Original     string            `json:"original"`
	Normalized   NormalizedAddress `json:"normalized"`
	Position     *Coordinate       `json:"position,omitempty"`
	Block        string            `json:"block"`
	Lot          string            `json:"lot"`
	Neighborhood string            `json:"neighborhood"`
	City         string            `json:"city"`
	PostalCode   string            `json:"postal_code"`
	Notes        string            `json:"notes"`
	Status       Status            `json:"status"`
	Reason       Reason            `json:"reason"`

	// Diagnostics.
	Model   string            `json:"model,omitempty"`
	UsedLLM bool              `json:"used_llm"`
	Top     []ScoredCandidate `json:"top,omitempty"`
}
