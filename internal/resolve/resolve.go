// Package resolve runs the full per-row resolution pipeline over a batch
// of input rows.
package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rotaviva/stops-cli/internal/classify"
	"github.com/rotaviva/stops-cli/internal/config"
	"github.com/rotaviva/stops-cli/internal/extract"
	"github.com/rotaviva/stops-cli/internal/geocode"
	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
	"github.com/rotaviva/stops-cli/internal/query"
	"github.com/rotaviva/stops-cli/internal/score"
)

// ParcelIndex is the cadastral lookup the re-ranker consults. Available
// reports whether the dataset could be loaded; when it returns false the
// pipeline skips parcel re-ranking entirely.
type ParcelIndex interface {
	score.ParcelLookup
	Available() bool
}

// Resolver orchestrates extract → variants → gather → score → re-rank →
// classify for each row, bounded by a worker pool.
type Resolver struct {
	cfg        config.ResolveConfig
	extractor  *extract.Extractor
	variants   *query.Builder
	gatherer   *geocode.Gatherer
	scorer     *score.Scorer
	reranker   *score.ReRanker
	classifier *classify.Classifier
	parcels    ParcelIndex
}

// Deps bundles the external collaborators of the pipeline.
type Deps struct {
	Extractor *extract.Extractor
	Gatherer  *geocode.Gatherer
	Parcels   ParcelIndex
}

func New(cfg config.Config, deps Deps) *Resolver {
	return &Resolver{
		cfg:        cfg.Resolve,
		extractor:  deps.Extractor,
		variants:   query.NewBuilder(cfg.Resolve.MaxVariants),
		gatherer:   deps.Gatherer,
		scorer:     score.NewScorer(cfg.Score),
		reranker:   score.NewReRanker(deps.Parcels, cfg.Score, cfg.Resolve.TopK),
		classifier: classify.New(cfg.Classify),
		parcels:    deps.Parcels,
	}
}

// ResolveAll processes every row with a bounded worker pool and returns
// results in input order. Individual row failures never abort the batch;
// the optional progress callback is invoked once per finished row.
func (r *Resolver) ResolveAll(ctx context.Context, rows []model.RawAddressRow, progress func()) []model.ResolvedStop {
	results := make([]model.ResolvedStop, len(rows))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Workers)
	for i, row := range rows {
		group.Go(func() error {
			results[i] = r.Resolve(ctx, row)
			if progress != nil {
				progress()
			}
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// Resolve runs the pipeline for a single row. It never returns an error:
// failures along the way degrade the row's status instead.
func (r *Resolver) Resolve(ctx context.Context, row model.RawAddressRow) model.ResolvedStop {
	raw := strings.TrimSpace(row.Address)

	if raw == "" {
		return model.ResolvedStop{
			Sequence: row.Sequence,
			Status:   model.StatusNotFound,
			Reason:   model.ReasonEmptyAddress,
		}
	}

	if extract.IsCondominium(raw) {
		return model.ResolvedStop{
			Sequence: row.Sequence,
			Original: raw,
			Status:   model.StatusCondominium,
			Reason:   model.ReasonCondominium,
		}
	}

	normalized, info := r.extractor.Extract(ctx, row)
	r.fillDefaults(&normalized)

	variants := r.variants.Build(normalized, raw)
	bias := r.gatherer.BiasPoint(ctx, normalized.PostalCode, normalized.City)
	candidates := r.gatherer.Gather(ctx, variants, bias)
	scored := r.scorer.Rank(candidates, normalized)

	var match model.ParcelMatch
	if r.parcelCovered(normalized.City) {
		scored, match = r.reranker.ReRank(scored, normalized)
	}

	block, lot, neighborhood := chooseFields(normalized, match)

	in := classify.Input{
		Street:       normalized.Street,
		Block:        block,
		Lot:          lot,
		Neighborhood: neighborhood,
		TextBlock:    normalized.Block,
		TextLot:      normalized.Lot,
		Parcel:       match,
	}
	if len(scored) > 0 {
		best := scored[0]
		in.HasBest = true
		in.Score = best.Total()
		in.Position = best.Candidate.Position
		in.TopPositions = topPositions(scored, r.cfg.TopK)
	}
	outcome := r.classifier.Classify(in)

	zap.L().Debug("resolve: row classified",
		zap.String("sequence", row.Sequence),
		zap.String("status", string(outcome.Status)),
		zap.String("reason", string(outcome.Reason)),
		zap.Int("candidates", len(candidates)))

	return model.ResolvedStop{
		Sequence:     row.Sequence,
		Original:     raw,
		Normalized:   normalized,
		Position:     outcome.Position,
		Block:        block,
		Lot:          lot,
		Neighborhood: neighborhood,
		City:         normalized.City,
		PostalCode:   normalized.PostalCode,
		Notes:        normalized.Notes,
		Status:       outcome.Status,
		Reason:       outcome.Reason,
		Model:        info.Model,
		UsedLLM:      info.UsedLLM,
		Top:          topK(scored, r.cfg.TopK),
	}
}

func (r *Resolver) fillDefaults(n *model.NormalizedAddress) {
	if n.City == "" {
		n.City = r.cfg.DefaultCity
	}
	if n.State == "" {
		n.State = r.cfg.DefaultState
	}
}

// parcelCovered gates the cadastral re-rank on the row's municipality. City
// strings arrive with state suffixes or abbreviated ("Aparecida de Goiânia -
// GO", "Aparecida"), so the match keys on the distinctive leading token of
// the configured municipality rather than strict equality.
func (r *Resolver) parcelCovered(city string) bool {
	if r.parcels == nil || !r.parcels.Available() {
		return false
	}
	key := ptext.Fold(r.cfg.ParcelCity)
	if i := strings.IndexByte(key, ' '); i > 0 {
		key = key[:i]
	}
	return key != "" && strings.Contains(ptext.Fold(city), key)
}

// chooseFields prefers parcel-derived block/lot/neighborhood over the
// text-extracted values; the cadastre is authoritative when it matched.
func chooseFields(n model.NormalizedAddress, match model.ParcelMatch) (block, lot, neighborhood string) {
	block, lot, neighborhood = n.Block, n.Lot, n.Neighborhood
	if !match.Found {
		return block, lot, neighborhood
	}
	if match.Block != "" {
		block = ptext.TrimLeadingZeros(match.Block)
	}
	if match.Lot != "" {
		lot = ptext.TrimLeadingZeros(match.Lot)
	}
	if match.Neighborhood != "" {
		neighborhood = match.Neighborhood
	}
	return block, lot, neighborhood
}

func topPositions(scored []model.ScoredCandidate, k int) []model.Coordinate {
	out := make([]model.Coordinate, 0, k)
	for _, sc := range scored {
		if len(out) == k {
			break
		}
		if sc.Candidate.Position != nil {
			out = append(out, *sc.Candidate.Position)
		}
	}
	return out
}

func topK(scored []model.ScoredCandidate, k int) []model.ScoredCandidate {
	if len(scored) <= k {
		return scored
	}
	return scored[:k]
}
