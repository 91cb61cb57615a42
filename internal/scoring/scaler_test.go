package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitScaler_MedianIQR(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}

	s, err := FitScaler(x)
	require.NoError(t, err)

	assert.Equal(t, 2.0, s.center[0])
	assert.Equal(t, 2.0, s.scale[0]) // q3=3, q1=1

	out := s.Transform([][]float64{{2}, {4}})
	assert.Equal(t, 0.0, out[0][0])
	assert.Equal(t, 1.0, out[1][0])
}

func TestFitScaler_ConstantFeature(t *testing.T) {
	x := [][]float64{{5, 1}, {5, 2}, {5, 3}}

	s, err := FitScaler(x)
	require.NoError(t, err)

	// Zero IQR falls back to unit scale so transform stays finite.
	out := s.Transform(x)
	for _, row := range out {
		assert.Equal(t, 0.0, row[0])
	}
}

func TestFitScaler_OutlierResistance(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {1000}}

	s, err := FitScaler(x)
	require.NoError(t, err)

	// The median center ignores the outlier entirely.
	assert.Equal(t, 3.0, s.center[0])
}

func TestFitScaler_Errors(t *testing.T) {
	_, err := FitScaler(nil)
	assert.Error(t, err)

	_, err = FitScaler([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}
