// Package boosted is the regression-tree alternative to the weighted
// moving-average forecast: a single gradient-boosted ensemble trained on
// engineered lag/rolling features over all historical rows.
package boosted

import (
	"fmt"
	"math"
	"sort"
)

type Options struct {
	// boosting iterations, defaults to 100
	Rounds int
	// shrinkage applied to every tree, defaults to 0.1
	LearningRate float64
	// maximum tree depth, defaults to 3
	MaxDepth int
	// minimum samples on each side of a split, defaults to 2
	MinLeafSize int
}

func (o *Options) applyDefaults() {
	if o.Rounds <= 0 {
		o.Rounds = 100
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.1
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 3
	}
	if o.MinLeafSize <= 0 {
		o.MinLeafSize = 2
	}
}

// Ensemble is a least-squares boosted forest: a bias plus shrunken
// regression trees fit to successive residuals.
type Ensemble struct {
	bias      float64
	shrinkage float64
	trees     []*treeNode
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

func (n *treeNode) isLeaf() bool {
	return n.left == nil
}

func (n *treeNode) predict(features []float64) float64 {
	for !n.isLeaf() {
		if features[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func (e *Ensemble) Predict(features []float64) float64 {
	out := e.bias
	for _, tree := range e.trees {
		out += e.shrinkage * tree.predict(features)
	}
	return out
}

// Train fits an ensemble to the rows of x with squared-error loss.
func Train(x [][]float64, y []float64, opts Options) (*Ensemble, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("feature/target length mismatch: %d != %d", len(x), len(y))
	}
	opts.applyDefaults()

	var bias float64
	for _, v := range y {
		bias += v
	}
	bias /= float64(len(y))

	e := &Ensemble{bias: bias, shrinkage: opts.LearningRate}

	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - bias
	}
	indices := make([]int, len(y))
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < opts.Rounds; round++ {
		tree := buildTree(x, residuals, indices, opts.MaxDepth, opts.MinLeafSize)
		if tree == nil {
			break
		}
		e.trees = append(e.trees, tree)
		for i := range residuals {
			residuals[i] -= opts.LearningRate * tree.predict(x[i])
		}
	}
	return e, nil
}

func mean(residuals []float64, indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += residuals[i]
	}
	return sum / float64(len(indices))
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

func buildTree(x [][]float64, residuals []float64, indices []int, depth, minLeaf int) *treeNode {
	if len(indices) == 0 {
		return nil
	}
	leafValue := mean(residuals, indices)
	if depth == 0 || len(indices) < minLeaf*2 {
		return &treeNode{value: leafValue}
	}

	best, ok := bestSplit(x, residuals, indices, minLeaf)
	if !ok {
		return &treeNode{value: leafValue}
	}

	var left, right []int
	for _, i := range indices {
		if x[i][best.feature] < best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   best.feature,
		threshold: best.threshold,
		left:      buildTree(x, residuals, left, depth-1, minLeaf),
		right:     buildTree(x, residuals, right, depth-1, minLeaf),
	}
}

// bestSplit finds the threshold with the largest squared-error reduction
// across all features, by scanning each feature in sorted order with
// prefix sums.
func bestSplit(x [][]float64, residuals []float64, indices []int, minLeaf int) (split, bool) {
	n := len(indices)
	var totalSum float64
	for _, i := range indices {
		totalSum += residuals[i]
	}

	best := split{gain: 0}
	found := false
	order := make([]int, n)

	for feature := range x[indices[0]] {
		copy(order, indices)
		sort.Slice(order, func(a, b int) bool {
			return x[order[a]][feature] < x[order[b]][feature]
		})

		var leftSum float64
		for pos := 0; pos < n-1; pos++ {
			leftSum += residuals[order[pos]]
			leftCount := pos + 1
			rightCount := n - leftCount
			if leftCount < minLeaf || rightCount < minLeaf {
				continue
			}
			// can't split between identical feature values
			if x[order[pos]][feature] == x[order[pos+1]][feature] {
				continue
			}

			rightSum := totalSum - leftSum
			// variance-reduction gain, constant terms dropped
			gain := leftSum*leftSum/float64(leftCount) +
				rightSum*rightSum/float64(rightCount) -
				totalSum*totalSum/float64(n)
			if gain > best.gain+1e-12 {
				best = split{
					feature:   feature,
					threshold: (x[order[pos]][feature] + x[order[pos+1]][feature]) / 2,
					gain:      gain,
				}
				found = true
			}
		}
	}
	return best, found
}

// MAE is the mean absolute error between predictions and actuals.
func MAE(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(len(actual))
}

// MAPE is the mean absolute percentage error over rows with nonzero
// actuals; rows that sold nothing carry no meaningful percentage.
func MAPE(predicted, actual []float64) float64 {
	var sum float64
	var n int
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((predicted[i] - actual[i]) / actual[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
