// Package classify turns resolution evidence into a final status and
// decision reason.
package classify

import (
	"github.com/rotaviva/stops-cli/internal/config"
	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
)

// Input is the evidence gathered for one row: the extracted fields, the
// winning candidate (if any) and the block/lot/neighborhood chosen for the
// output (parcel-derived when available, text-derived otherwise).
type Input struct {
	Street string
	Block  string
	Lot    string

	// TextBlock and TextLot are the values extracted from the raw text,
	// kept separately so conflicts with parcel-derived values are visible.
	TextBlock string
	TextLot   string
	Parcel    model.ParcelMatch

	Position *model.Coordinate
	Score    int
	HasBest  bool

	// TopPositions holds the coordinates of the top-ranked candidates,
	// used for the disambiguation spread check.
	TopPositions []model.Coordinate

	Neighborhood string
}

// Outcome is the classifier verdict. Position is nil whenever a downgrade
// fired; OK always carries a coordinate.
type Outcome struct {
	Status   model.Status
	Reason   model.Reason
	Position *model.Coordinate
}

type Classifier struct {
	cfg config.ClassifyConfig
}

func New(cfg config.ClassifyConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify applies the base evidence rule, then the ordered downgrade
// rules. A downgrade fires at most once; the first one to fire fixes the
// reason and drops the coordinate.
func (c *Classifier) Classify(in Input) Outcome {
	out := Outcome{
		Status:   c.baseStatus(in),
		Position: in.Position,
	}
	switch out.Status {
	case model.StatusOK:
		out.Reason = model.ReasonOKConfident
	case model.StatusPartial:
		out.Reason = model.ReasonMissingFields
	default:
		out.Reason = model.ReasonNoEvidence
	}

	downgrade := func(reason model.Reason) {
		if out.Status == model.StatusOK {
			out.Status = model.StatusPartial
		}
		out.Reason = reason
		out.Position = nil
	}

	switch {
	case in.HasBest && in.Score < c.cfg.MinScore:
		downgrade(model.ReasonLowScore)
	case out.Status == model.StatusOK && in.Position == nil:
		downgrade(model.ReasonNoCoord)
	case blockLotConflict(in):
		downgrade(model.ReasonQLConflict)
	case MaxPairwiseMeters(in.TopPositions) > c.cfg.SpreadMeters:
		downgrade(model.ReasonHereSpread)
	case out.Status == model.StatusOK &&
		(in.Street == "" || in.Block == "" || in.Lot == "" || out.Position == nil):
		downgrade(model.ReasonMissingCore)
	}

	return out
}

// baseStatus encodes the evidence rule: street, block and lot together mean
// a fully identified lot; otherwise any partial evidence is PARTIAL and no
// evidence at all is NOT_FOUND.
func (c *Classifier) baseStatus(in Input) model.Status {
	if in.Street != "" && in.Block != "" && in.Lot != "" {
		return model.StatusOK
	}
	present := 0
	for _, v := range []string{in.Street, in.Block, in.Lot, in.Neighborhood} {
		if v != "" {
			present++
		}
	}
	if present == 0 {
		return model.StatusNotFound
	}
	return model.StatusPartial
}

// blockLotConflict reports a disagreement between text-extracted and
// parcel-derived block/lot values when both sides are present.
func blockLotConflict(in Input) bool {
	if !in.Parcel.Found {
		return false
	}
	if differ(in.TextBlock, in.Parcel.Block) || differ(in.TextLot, in.Parcel.Lot) {
		return true
	}
	return false
}

func differ(text, parcel string) bool {
	if text == "" || parcel == "" {
		return false
	}
	return ptext.TrimLeadingZeros(ptext.Fold(text)) != ptext.TrimLeadingZeros(ptext.Fold(parcel))
}
