package model

import "time"

// RunStatus tracks a pipeline run through its lifecycle.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID          string         `json:"id"`
	Sources     []string       `json:"sources"`
	Status      RunStatus      `json:"status"`
	RegionCount int            `json:"region_count"`
	Error       string         `json:"error,omitempty"`
	Results     []RegionResult `json:"results,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
