// Package store persists pipeline run history and scored region results.
package store

import (
	"context"

	"github.com/maply-labs/risk-engine/internal/model"
)

// Store defines the persistence interface for pipeline runs.
type Store interface {
	// CreateRun records a new run in the running state.
	CreateRun(ctx context.Context, sources []string) (*model.Run, error)

	// CompleteRun marks a run succeeded and stores its scored regions.
	CompleteRun(ctx context.Context, runID string, results []model.RegionResult) error

	// FailRun marks a run failed with the given message.
	FailRun(ctx context.Context, runID string, message string) error

	// GetRun fetches one run including its results.
	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// ListRuns returns the most recent runs, newest first, without results.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// LatestResults returns the scored regions of the most recent
	// successful run, or nil if there is none.
	LatestResults(ctx context.Context) ([]model.RegionResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
