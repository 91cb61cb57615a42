package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/maply-labs/risk-engine/internal/dataset"
	"github.com/maply-labs/risk-engine/internal/fetcher"
	"github.com/maply-labs/risk-engine/internal/pipeline"
	"github.com/maply-labs/risk-engine/internal/scoring"
	"github.com/maply-labs/risk-engine/internal/store"
)

// initStore opens the configured run-history store and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewStore(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEngine wires the fetcher, reconciler, and model options into a pipeline
// engine. st may be nil.
func initEngine(st store.Store) *pipeline.Engine {
	resolver := &fetcher.Resolver{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
			RatePerSec: cfg.Fetch.RatePerSec,
		}),
		FTP: fetcher.NewFTPFetcher(fetcher.FTPOptions{
			Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		}),
	}

	reconciler := dataset.NewReconciler(resolver, cfg.Fetch.MaxConcurrency)

	boostOpts := scoring.BoostOptions{
		Rounds:       cfg.Model.Rounds,
		LearningRate: cfg.Model.LearningRate,
		MaxDepth:     cfg.Model.MaxDepth,
	}

	return pipeline.New(reconciler, boostOpts, st)
}
