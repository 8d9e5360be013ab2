package tree

import (
	"errors"
	"math"
	"math/rand"
	"sync"
)

// Forest is a bootstrap-aggregated ensemble of Classifier trees with random
// feature subsampling at each split. Votes are averaged P(class 1).
type Forest struct {
	NEstimators int
	MaxDepth    int
	MinLeaf     int
	MaxFeatures int // 0 => floor(sqrt(p))
	Seed        int64

	trees []*Classifier
}

// ForestOption configures a Forest
type ForestOption func(*Forest)

func WithNEstimators(n int) ForestOption     { return func(f *Forest) { f.NEstimators = n } }
func WithForestDepth(d int) ForestOption     { return func(f *Forest) { f.MaxDepth = d } }
func WithForestMinLeaf(n int) ForestOption   { return func(f *Forest) { f.MinLeaf = n } }
func WithForestFeatures(k int) ForestOption  { return func(f *Forest) { f.MaxFeatures = k } }
func WithForestSeed(seed int64) ForestOption { return func(f *Forest) { f.Seed = seed } }

// NewForest returns a forest with sensible defaults
func NewForest(opts ...ForestOption) *Forest {
	f := &Forest{NEstimators: 100, MinLeaf: 1, Seed: 1}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit trains every tree on an independent bootstrap sample. Trees train
// concurrently; each gets its own seeded source so results are reproducible
// for a fixed Seed regardless of scheduling.
func (f *Forest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("forest: empty training data")
	}
	if len(y) != len(X) {
		return errors.New("forest: feature and label counts differ")
	}

	n := len(X)
	p := len(X[0])
	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > p {
		maxFeatures = int(math.Sqrt(float64(p)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	f.trees = make([]*Classifier, f.NEstimators)
	errCh := make(chan error, f.NEstimators)
	var wg sync.WaitGroup

	for i := 0; i < f.NEstimators; i++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(f.Seed + int64(treeIdx)))

			sample := make([]int, n)
			for j := range sample {
				sample[j] = rng.Intn(n)
			}

			pick := func(p int) []int {
				feats := rng.Perm(p)
				return feats[:maxFeatures]
			}

			t := NewClassifier(WithMaxDepth(f.MaxDepth), WithMinLeaf(f.MinLeaf))
			if err := t.FitIndices(X, y, sample, pick); err != nil {
				errCh <- err
				return
			}
			f.trees[treeIdx] = t
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// PredictProba averages P(class 1) across all trees
func (f *Forest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(f.trees) == 0 {
		return out
	}
	for _, t := range f.trees {
		for i, p := range t.PredictProba(X) {
			out[i] += p
		}
	}
	for i := range out {
		out[i] /= float64(len(f.trees))
	}
	return out
}

// Predict returns majority-vote 0/1 labels
func (f *Forest) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, p := range f.PredictProba(X) {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}
