// Package extract turns raw free-text delivery addresses into structured
// field sets using an ordered chain of extraction strategies.
package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
	"github.com/rotaviva/stops-cli/pkg/normalize"
)

// Strategy is one extraction attempt. Strategies run in priority order and
// their outputs are merged field by field, earlier strategies winning.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, row model.RawAddressRow) (model.NormalizedAddress, error)
}

// Info carries extraction diagnostics for the output row.
type Info struct {
	UsedLLM bool
	Model   string
}

// Extractor runs the strategy chain and merges the results.
type Extractor struct {
	strategies []Strategy
	state      string
}

// New creates an extractor. When llm is nil only pattern extraction runs.
// state is the default state code applied when no strategy produces one.
func New(llm normalize.Client, state string) *Extractor {
	strategies := []Strategy{}
	if llm != nil {
		strategies = append(strategies, &llmStrategy{client: llm})
	}
	strategies = append(strategies, patternStrategy{})
	return &Extractor{strategies: strategies, state: state}
}

// Extract produces the normalized field set for one row. It never fails:
// a strategy error only removes that strategy's evidence. When every
// strategy yields nothing, all fields are empty strings.
func (e *Extractor) Extract(ctx context.Context, row model.RawAddressRow) (model.NormalizedAddress, Info) {
	var info Info
	results := make([]model.NormalizedAddress, 0, len(e.strategies))

	for _, s := range e.strategies {
		n, err := s.Attempt(ctx, row)
		if err != nil {
			zap.L().Debug("extract: strategy failed",
				zap.String("strategy", s.Name()),
				zap.Error(err),
			)
			continue
		}
		if ls, ok := s.(*llmStrategy); ok {
			info.UsedLLM = true
			info.Model = ls.client.Model()
		}
		results = append(results, n)
	}

	merged := mergeFields(results)

	// Spreadsheet hints fill fields no strategy produced.
	if merged.Neighborhood == "" {
		merged.Neighborhood = row.Neighborhood
	}
	if merged.City == "" {
		merged.City = row.City
	}
	if merged.PostalCode == "" {
		merged.PostalCode = row.PostalCode
	}
	if merged.State == "" {
		merged.State = e.state
	}

	merged.Block = ptext.TrimLeadingZeros(merged.Block)
	merged.Lot = ptext.TrimLeadingZeros(merged.Lot)
	merged.PostalCode = ptext.NormalizeCEP(merged.PostalCode)
	merged.Notes = stripBlockLotTokens(merged.Notes)

	return merged, info
}

// mergeFields merges strategy outputs field by field in priority order.
func mergeFields(results []model.NormalizedAddress) model.NormalizedAddress {
	var out model.NormalizedAddress
	for _, r := range results {
		pick(&out.Street, r.Street)
		pick(&out.Number, r.Number)
		pick(&out.Block, r.Block)
		pick(&out.Lot, r.Lot)
		pick(&out.Neighborhood, r.Neighborhood)
		pick(&out.City, r.City)
		pick(&out.State, r.State)
		pick(&out.PostalCode, r.PostalCode)
		pick(&out.Notes, r.Notes)
	}
	return out
}

func pick(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// patternStrategy applies the deterministic token matcher. It cannot fail.
type patternStrategy struct{}

func (patternStrategy) Name() string { return "pattern" }

func (patternStrategy) Attempt(_ context.Context, row model.RawAddressRow) (model.NormalizedAddress, error) {
	return extractPattern(row.Address), nil
}

// llmStrategy asks the normalization model for the full field set.
type llmStrategy struct {
	client normalize.Client
}

func (s *llmStrategy) Name() string { return "llm" }

func (s *llmStrategy) Attempt(ctx context.Context, row model.RawAddressRow) (model.NormalizedAddress, error) {
	res, err := s.client.Normalize(ctx, normalize.Request{
		Address:      row.Address,
		Neighborhood: row.Neighborhood,
		City:         row.City,
		PostalCode:   row.PostalCode,
	})
	if err != nil {
		return model.NormalizedAddress{}, err
	}
	f := res.Fields
	return model.NormalizedAddress{
		Street:       f.Street,
		Number:       f.Number,
		Block:        f.Block,
		Lot:          f.Lot,
		Neighborhood: f.Neighborhood,
		City:         f.City,
		State:        f.State,
		PostalCode:   f.PostalCode,
		Notes:        f.Notes,
	}, nil
}
