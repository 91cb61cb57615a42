package scoring

import (
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
)

// RobustScaler centers each feature on its median and scales by its
// interquartile range, so outlier districts do not dominate the scale.
type RobustScaler struct {
	center []float64
	scale  []float64
}

// FitScaler computes per-feature median and IQR over the rows of X.
func FitScaler(x [][]float64) (*RobustScaler, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, eris.New("scaler: empty feature matrix")
	}

	nFeat := len(x[0])
	s := &RobustScaler{
		center: make([]float64, nFeat),
		scale:  make([]float64, nFeat),
	}

	col := make([]float64, len(x))
	for j := 0; j < nFeat; j++ {
		for i, row := range x {
			if len(row) != nFeat {
				return nil, eris.Errorf("scaler: ragged row %d (want %d features, got %d)", i, nFeat, len(row))
			}
			col[i] = row[j]
		}
		sort.Float64s(col)

		s.center[j] = stat.Quantile(0.5, stat.Empirical, col, nil)
		iqr := stat.Quantile(0.75, stat.Empirical, col, nil) - stat.Quantile(0.25, stat.Empirical, col, nil)
		if iqr == 0 {
			// Constant feature: leave it centered but unscaled.
			iqr = 1
		}
		s.scale[j] = iqr
	}

	return s, nil
}

// Transform returns a scaled copy of X.
func (s *RobustScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.center[j]) / s.scale[j]
		}
		out[i] = scaled
	}
	return out
}
