// Package pipeline composes reconciliation, feature engineering, model
// training, and inference into the single entry point external consumers call.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/maply-labs/risk-engine/internal/dataset"
	"github.com/maply-labs/risk-engine/internal/features"
	"github.com/maply-labs/risk-engine/internal/model"
	"github.com/maply-labs/risk-engine/internal/scoring"
	"github.com/maply-labs/risk-engine/internal/store"
)

// Engine runs the risk scoring pipeline. A fresh model is trained on every
// invocation; concurrent invocations are independent.
type Engine struct {
	reconciler *dataset.Reconciler
	boostOpts  scoring.BoostOptions
	store      store.Store // optional; nil disables run history
}

// New creates an Engine. st may be nil to skip run recording.
func New(reconciler *dataset.Reconciler, boostOpts scoring.BoostOptions, st store.Store) *Engine {
	return &Engine{reconciler: reconciler, boostOpts: boostOpts, store: st}
}

// Run executes the full pipeline over the given dataset locations and returns
// the uniform success/error envelope. No error escapes this boundary: every
// failure is converted into an error envelope, and no partial results are
// returned.
func (e *Engine) Run(ctx context.Context, locations []string) model.Envelope {
	log := zap.L().With(zap.String("component", "pipeline"))
	start := time.Now()

	runID := e.recordStart(ctx, locations)

	results, err := e.run(ctx, locations)
	if err != nil {
		log.Error("pipeline failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		e.recordFailure(ctx, runID, err)
		return model.ErrorEnvelope(eris.Cause(err).Error())
	}

	log.Info("pipeline complete",
		zap.Int("regions", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	e.recordSuccess(ctx, runID, results)
	return model.SuccessEnvelope(results)
}

func (e *Engine) run(ctx context.Context, locations []string) ([]model.RegionResult, error) {
	table, err := e.reconciler.Load(ctx, locations)
	if err != nil {
		return nil, err
	}

	regions, err := features.Engineer(table)
	if err != nil {
		return nil, err
	}

	trained, err := scoring.Train(regions, e.boostOpts)
	if err != nil {
		return nil, err
	}

	return trained.RiskLevels(regions)
}

func (e *Engine) recordStart(ctx context.Context, locations []string) string {
	if e.store == nil {
		return ""
	}
	run, err := e.store.CreateRun(ctx, locations)
	if err != nil {
		zap.L().Warn("pipeline: record run start", zap.Error(err))
		return ""
	}
	return run.ID
}

func (e *Engine) recordSuccess(ctx context.Context, runID string, results []model.RegionResult) {
	if e.store == nil || runID == "" {
		return
	}
	if err := e.store.CompleteRun(ctx, runID, results); err != nil {
		zap.L().Warn("pipeline: record run success", zap.Error(err))
	}
}

func (e *Engine) recordFailure(ctx context.Context, runID string, runErr error) {
	if e.store == nil || runID == "" {
		return
	}
	if err := e.store.FailRun(ctx, runID, runErr.Error()); err != nil {
		zap.L().Warn("pipeline: record run failure", zap.Error(err))
	}
}
