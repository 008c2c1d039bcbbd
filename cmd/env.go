package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rotaviva/stops-cli/internal/extract"
	"github.com/rotaviva/stops-cli/internal/geocode"
	"github.com/rotaviva/stops-cli/internal/history"
	"github.com/rotaviva/stops-cli/internal/parcel"
	"github.com/rotaviva/stops-cli/internal/resolve"
	"github.com/rotaviva/stops-cli/pkg/here"
	"github.com/rotaviva/stops-cli/pkg/normalize"
)

// env holds the wired pipeline and its stateful collaborators.
type env struct {
	Resolver *resolve.Resolver
	Geocoder here.Client
	Parcels  *parcel.Index
	Lots     *parcel.ArcGIS
	History  *history.Store
}

func (e *env) Close() {
	if e.History != nil {
		_ = e.History.Close()
	}
}

func initEnv(ctx context.Context) (*env, error) {
	if cfg.Here.Key == "" {
		return nil, eris.New("here.key is required (STOPS_HERE_KEY)")
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Here.TimeoutSecs) * time.Second}
	hereClient := here.NewClient(cfg.Here.Key,
		here.WithBaseURLs(cfg.Here.GeocodeURL, cfg.Here.DiscoverURL, cfg.Here.ReverseURL),
		here.WithRateLimit(cfg.Here.RPS),
		here.WithHTTPClient(httpClient),
	)

	var llm normalize.Client
	if cfg.LLM.Key != "" {
		llm = normalize.NewClient(cfg.LLM.Key, cfg.LLM.Model,
			normalize.WithMaxTokens(cfg.LLM.MaxTokens))
	}

	parcels := parcel.NewIndex(cfg.Parcel)
	parcels.Load()

	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(*cfg, resolve.Deps{
		Extractor: extract.New(llm, cfg.Resolve.DefaultState),
		Gatherer:  geocode.NewGatherer(hereClient),
		Parcels:   parcels,
	})

	return &env{
		Resolver: resolver,
		Geocoder: hereClient,
		Parcels:  parcels,
		Lots:     parcel.NewArcGIS(cfg.Parcel.ArcGISURL, cfg.Parcel.ArcGISLayer, httpClient),
		History:  store,
	}, nil
}
