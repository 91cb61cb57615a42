package scoring

import "sort"

// treeNode is one node of a regression tree. Leaves carry the mean target of
// the samples routed to them.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// buildTree grows a least-squares regression tree to maxDepth. Splits stop
// when a node holds fewer than two samples or no split reduces the error.
func buildTree(x [][]float64, y []float64, idx []int, depth, maxDepth int) *treeNode {
	if depth >= maxDepth || len(idx) < 2 {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	feature, threshold, ok := bestSplit(x, y, idx)
	if !ok {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(x, y, leftIdx, depth+1, maxDepth),
		right:     buildTree(x, y, rightIdx, depth+1, maxDepth),
	}
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two children. Thresholds are midpoints between
// consecutive distinct feature values.
func bestSplit(x [][]float64, y []float64, idx []int) (feature int, threshold float64, ok bool) {
	nFeat := len(x[idx[0]])
	bestErr := sseAt(y, idx)

	order := make([]int, len(idx))
	for j := 0; j < nFeat; j++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return x[order[a]][j] < x[order[b]][j] })

		// Prefix sums over the sorted order let each candidate split be
		// evaluated in constant time.
		var leftSum, leftSq float64
		totalSum, totalSq := sumsAt(y, idx)

		for k := 0; k < len(order)-1; k++ {
			v := y[order[k]]
			leftSum += v
			leftSq += v * v

			cur, next := x[order[k]][j], x[order[k+1]][j]
			if cur == next {
				continue
			}

			nLeft := float64(k + 1)
			nRight := float64(len(order) - k - 1)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq

			err := (leftSq - leftSum*leftSum/nLeft) + (rightSq - rightSum*rightSum/nRight)
			if err < bestErr-1e-12 {
				bestErr = err
				feature = j
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

// predict routes one sample to its leaf.
func (n *treeNode) predict(row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func sumsAt(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func sseAt(y []float64, idx []int) float64 {
	mean := meanAt(y, idx)
	var sse float64
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return sse
}
