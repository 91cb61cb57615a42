package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree_SplitsPerfectly(t *testing.T) {
	x := [][]float64{{1}, {2}, {10}, {11}}
	y := []float64{5, 5, 50, 50}
	idx := []int{0, 1, 2, 3}

	tree := buildTree(x, y, idx, 0, 3)

	assert.Equal(t, 5.0, tree.predict([]float64{1.5}))
	assert.Equal(t, 50.0, tree.predict([]float64{10.5}))
}

func TestBuildTree_SingleSampleIsLeaf(t *testing.T) {
	tree := buildTree([][]float64{{1}}, []float64{7}, []int{0}, 0, 3)
	assert.True(t, tree.leaf)
	assert.Equal(t, 7.0, tree.value)
}

func TestBuildTree_ConstantFeatureIsLeaf(t *testing.T) {
	x := [][]float64{{1}, {1}, {1}}
	y := []float64{1, 2, 3}

	tree := buildTree(x, y, []int{0, 1, 2}, 0, 3)
	assert.True(t, tree.leaf)
	assert.InDelta(t, 2.0, tree.value, 1e-9)
}

func TestFitBooster_FitsTrainingData(t *testing.T) {
	// Distinct single-feature rows: 100 shrunken rounds converge tightly.
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{10, 20, 80, 90}

	b, err := fitBooster(x, y, DefaultBoostOptions())
	require.NoError(t, err)

	for i, row := range x {
		assert.InDelta(t, y[i], b.predict(row), 0.01)
	}
}

func TestFitBooster_BadInputs(t *testing.T) {
	_, err := fitBooster(nil, nil, DefaultBoostOptions())
	assert.Error(t, err)

	_, err = fitBooster([][]float64{{1}}, []float64{1, 2}, DefaultBoostOptions())
	assert.Error(t, err)

	_, err = fitBooster([][]float64{{1}}, []float64{1}, BoostOptions{})
	assert.Error(t, err)
}
