package tree

import (
	"errors"
	"math"
	"sort"
)

// Classifier is a compact CART-style binary classifier using gini impurity.
// Features are float64 values with NaN for missing cells; categorical
// predictors are expected to arrive label-encoded as small integer codes.
// Feature subsampling is the caller's concern via FitIndices' pick callback.
type Classifier struct {
	MaxDepth int // 0 => no depth limit
	MinLeaf  int // minimum samples per leaf

	root *node
}

type node struct {
	leaf      bool
	feature   int
	threshold float64
	left      *node
	right     *node

	prob float64 // P(class 1) at a leaf
	n    int
}

// Option configures a Classifier
type Option func(*Classifier)

func WithMaxDepth(d int) Option { return func(t *Classifier) { t.MaxDepth = d } }
func WithMinLeaf(n int) Option  { return func(t *Classifier) { t.MinLeaf = n } }

// NewClassifier returns a tree with sensible defaults
func NewClassifier(opts ...Option) *Classifier {
	t := &Classifier{MinLeaf: 1}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit grows the tree on X (n rows of equal width) and binary labels y
func (t *Classifier) Fit(X [][]float64, y []int) error {
	return t.FitIndices(X, y, nil, nil)
}

// FitIndices grows the tree on a subset of rows, optionally restricting the
// features tried at each split to a shuffled prefix chosen via pick. A nil
// idx uses every row; a nil pick uses every feature.
func (t *Classifier) FitIndices(X [][]float64, y []int, idx []int, pick func(p int) []int) error {
	if len(X) == 0 {
		return errors.New("tree: empty training data")
	}
	if len(y) != len(X) {
		return errors.New("tree: feature and label counts differ")
	}
	p := len(X[0])
	for _, row := range X {
		if len(row) != p {
			return errors.New("tree: ragged feature rows")
		}
	}
	if idx == nil {
		idx = make([]int, len(X))
		for i := range idx {
			idx[i] = i
		}
	}
	if pick == nil {
		pick = func(p int) []int {
			feats := make([]int, p)
			for j := range feats {
				feats[j] = j
			}
			return feats
		}
	}
	t.root = t.grow(X, y, idx, 0, pick)
	return nil
}

// PredictProba returns P(class 1) for each row
func (t *Classifier) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = t.predictRow(row)
	}
	return out
}

// Predict returns 0/1 labels at the 0.5 threshold
func (t *Classifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, p := range t.PredictProba(X) {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (t *Classifier) predictRow(row []float64) float64 {
	n := t.root
	if n == nil {
		return 0.5
	}
	for !n.leaf {
		v := row[n.feature]
		if math.IsNaN(v) {
			// Missing value: follow the branch that saw more samples.
			if n.left.n >= n.right.n {
				n = n.left
			} else {
				n = n.right
			}
			continue
		}
		if v <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prob
}

func (t *Classifier) grow(X [][]float64, y []int, idx []int, depth int, pick func(p int) []int) *node {
	ones := 0
	for _, i := range idx {
		ones += y[i]
	}
	n := &node{n: len(idx), prob: float64(ones) / float64(len(idx))}

	pure := ones == 0 || ones == len(idx)
	if pure || len(idx) < 2*t.MinLeaf || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		n.leaf = true
		return n
	}

	feature, threshold, gain := t.bestSplit(X, y, idx, pick(len(X[0])))
	if feature < 0 || gain <= 0 {
		n.leaf = true
		return n
	}

	var left, right []int
	var nans []int
	for _, i := range idx {
		v := X[i][feature]
		switch {
		case math.IsNaN(v):
			nans = append(nans, i)
		case v <= threshold:
			left = append(left, i)
		default:
			right = append(right, i)
		}
	}
	// Missing values follow the larger child.
	if len(left) >= len(right) {
		left = append(left, nans...)
	} else {
		right = append(right, nans...)
	}
	if len(left) < t.MinLeaf || len(right) < t.MinLeaf {
		n.leaf = true
		return n
	}

	n.feature = feature
	n.threshold = threshold
	n.left = t.grow(X, y, left, depth+1, pick)
	n.right = t.grow(X, y, right, depth+1, pick)
	return n
}

// bestSplit scans midpoints between distinct sorted values of each candidate
// feature and returns the split with the highest gini gain.
func (t *Classifier) bestSplit(X [][]float64, y []int, idx []int, features []int) (int, float64, float64) {
	type valueLabel struct {
		v   float64
		one int
	}

	parent := giniOf(idx, y)
	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0

	for _, f := range features {
		values := make([]valueLabel, 0, len(idx))
		for _, i := range idx {
			if v := X[i][f]; !math.IsNaN(v) {
				values = append(values, valueLabel{v: v, one: y[i]})
			}
		}
		if len(values) < 2 {
			continue
		}
		sort.Slice(values, func(a, b int) bool { return values[a].v < values[b].v })

		totalOnes := 0
		for _, vl := range values {
			totalOnes += vl.one
		}

		leftN, leftOnes := 0, 0
		for s := 1; s < len(values); s++ {
			leftN++
			leftOnes += values[s-1].one
			if values[s].v == values[s-1].v {
				continue
			}
			rightN := len(values) - leftN
			rightOnes := totalOnes - leftOnes

			wLeft := float64(leftN) / float64(len(values))
			gain := parent - wLeft*gini(leftOnes, leftN) - (1-wLeft)*gini(rightOnes, rightN)
			if gain > bestGain {
				bestFeature = f
				bestThreshold = (values[s-1].v + values[s].v) / 2
				bestGain = gain
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func giniOf(idx []int, y []int) float64 {
	ones := 0
	for _, i := range idx {
		ones += y[i]
	}
	return gini(ones, len(idx))
}

func gini(ones, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(ones) / float64(n)
	return 2 * p * (1 - p)
}

// Accuracy is the fraction of matching labels
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}
