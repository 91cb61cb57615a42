// Package model holds the shared value types passed between pipeline stages.
package model

// Risk tiers, a non-overlapping partition of the 0-100 safety score range.
const (
	RiskLow      = "Low Risk"      // score >= 80
	RiskModerate = "Moderate Risk" // 60 <= score < 80
	RiskHigh     = "High Risk"     // score < 60
)

// ClassifyRisk maps a final safety score to its risk tier.
// Boundaries are inclusive on the lower bound: exactly 80.00 is Low Risk,
// exactly 60.00 is Moderate Risk.
func ClassifyRisk(score float64) string {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// RegionResult is one scored administrative region, the terminal output of
// the pipeline and the unit served to navigation and chat consumers.
type RegionResult struct {
	State        string  `json:"state"`
	District     string  `json:"district"`
	SafetyScore  float64 `json:"safety_score"`
	RiskCategory string  `json:"risk_category"`
}

// Envelope is the uniform success/error response returned by the pipeline.
// On success TotalRegions and Data are set; on error only Message is.
type Envelope struct {
	Status       string         `json:"status"`
	TotalRegions int            `json:"total_regions,omitempty"`
	Data         []RegionResult `json:"data,omitempty"`
	Message      string         `json:"message,omitempty"`
}

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessEnvelope wraps scored regions in a success envelope.
func SuccessEnvelope(data []RegionResult) Envelope {
	return Envelope{
		Status:       StatusSuccess,
		TotalRegions: len(data),
		Data:         data,
	}
}

// ErrorEnvelope wraps a failure message in an error envelope.
func ErrorEnvelope(msg string) Envelope {
	return Envelope{Status: StatusError, Message: msg}
}
