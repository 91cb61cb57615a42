package scoring

import "github.com/rotisserie/eris"

// BoostOptions holds the gradient-boosting hyperparameters.
type BoostOptions struct {
	Rounds       int     // number of boosting rounds
	LearningRate float64 // shrinkage applied to each tree
	MaxDepth     int     // depth limit for each tree
}

// DefaultBoostOptions matches the reference configuration: 100 shallow trees
// with a small learning rate.
func DefaultBoostOptions() BoostOptions {
	return BoostOptions{Rounds: 100, LearningRate: 0.1, MaxDepth: 3}
}

// booster is a fitted gradient-boosted regression ensemble.
type booster struct {
	base  float64
	trees []*treeNode
	lr    float64
}

// fitBooster fits least-squares gradient boosting: start from the target mean
// and repeatedly fit a shallow tree to the current residuals.
func fitBooster(x [][]float64, y []float64, opts BoostOptions) (*booster, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, eris.Errorf("booster: bad training shape (%d rows, %d targets)", len(x), len(y))
	}
	if opts.Rounds <= 0 || opts.LearningRate <= 0 || opts.MaxDepth <= 0 {
		return nil, eris.Errorf("booster: bad options %+v", opts)
	}

	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}

	b := &booster{base: meanAt(y, idx), lr: opts.LearningRate, trees: make([]*treeNode, 0, opts.Rounds)}

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = b.base
	}

	residual := make([]float64, len(y))
	for round := 0; round < opts.Rounds; round++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}

		tree := buildTree(x, residual, idx, 0, opts.MaxDepth)
		b.trees = append(b.trees, tree)

		for i, row := range x {
			pred[i] += b.lr * tree.predict(row)
		}
	}

	return b, nil
}

// predict returns the ensemble prediction for one sample.
func (b *booster) predict(row []float64) float64 {
	out := b.base
	for _, t := range b.trees {
		out += b.lr * t.predict(row)
	}
	return out
}
