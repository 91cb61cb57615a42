package scoring

import (
	"math"

	"go.uber.org/zap"

	"github.com/maply-labs/risk-engine/internal/features"
	"github.com/maply-labs/risk-engine/internal/model"
)

// featureVector extracts the fixed model feature set from an engineered region.
func featureVector(r features.Region) []float64 {
	return []float64{r.TotalCrimes, r.DVToTotalRatio, r.PublicToTotalRatio}
}

// TrainedModel is an immutable fitted scaler + booster pair. Train produces a
// fresh one per pipeline run; callers own any caching.
type TrainedModel struct {
	scaler  *RobustScaler
	booster *booster
}

// Train fits the scaler and the boosted regressor on the engineered batch,
// targeting the batch-relative safety score.
//
// Training data with fewer than two distinct feature rows, or a constant
// target, returns ErrInsufficientData.
func Train(regions []features.Region, opts BoostOptions) (*TrainedModel, error) {
	x := make([][]float64, len(regions))
	y := make([]float64, len(regions))
	for i, r := range regions {
		x[i] = featureVector(r)
		y[i] = r.SafetyScore
	}

	if countDistinctRows(x) < 2 || constantTarget(y) {
		return nil, ErrInsufficientData
	}

	scaler, err := FitScaler(x)
	if err != nil {
		return nil, err
	}

	b, err := fitBooster(scaler.Transform(x), y, opts)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("model trained",
		zap.Int("rows", len(regions)),
		zap.Int("rounds", opts.Rounds),
		zap.Int("max_depth", opts.MaxDepth),
		zap.Float64("learning_rate", opts.LearningRate),
	)

	return &TrainedModel{scaler: scaler, booster: b}, nil
}

// RiskLevels predicts a safety score for each region, clips it to [0, 100],
// rounds to two decimals, and classifies the risk tier. Output preserves
// input row order. A nil receiver returns ErrModelNotTrained.
func (m *TrainedModel) RiskLevels(regions []features.Region) ([]model.RegionResult, error) {
	if m == nil || m.booster == nil {
		return nil, ErrModelNotTrained
	}

	results := make([]model.RegionResult, 0, len(regions))
	for _, r := range regions {
		scaled := m.scaler.Transform([][]float64{featureVector(r)})
		score := clamp(m.booster.predict(scaled[0]), 0, 100)
		score = math.Round(score*100) / 100

		results = append(results, model.RegionResult{
			State:        r.State,
			District:     r.District,
			SafetyScore:  score,
			RiskCategory: model.ClassifyRisk(score),
		})
	}
	return results, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func countDistinctRows(x [][]float64) int {
	seen := make(map[[3]float64]bool, len(x))
	for _, row := range x {
		seen[[3]float64{row[0], row[1], row[2]}] = true
	}
	return len(seen)
}

func constantTarget(y []float64) bool {
	if len(y) == 0 {
		return true
	}
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}
