package tree

import (
	"math/rand"
	"testing"
)

func clusteredData(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		label := i % 2
		center := float64(label) * 6
		X[i] = []float64{
			center + rng.NormFloat64(),
			center + rng.NormFloat64(),
			rng.NormFloat64(), // pure noise
		}
		y[i] = label
	}
	return X, y
}

func TestForest_LearnsClusteredData(t *testing.T) {
	X, y := clusteredData(200, 3)

	f := NewForest(WithNEstimators(50), WithForestSeed(9))
	if err := f.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if acc := Accuracy(y, f.Predict(X)); acc < 0.95 {
		t.Errorf("expected training accuracy >= 0.95, got %v", acc)
	}
}

func TestForest_DeterministicForFixedSeed(t *testing.T) {
	X, y := clusteredData(120, 5)
	probe, _ := clusteredData(30, 17)

	var first []float64
	for run := 0; run < 3; run++ {
		f := NewForest(WithNEstimators(25), WithForestSeed(42))
		if err := f.Fit(X, y); err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		probs := f.PredictProba(probe)
		if first == nil {
			first = probs
			continue
		}
		for i := range probs {
			if probs[i] != first[i] {
				t.Fatalf("run %d diverged at row %d: %v != %v", run, i, probs[i], first[i])
			}
		}
	}
}

func TestForest_DifferentSeedsDiffer(t *testing.T) {
	X, y := clusteredData(120, 5)
	probe, _ := clusteredData(30, 17)

	a := NewForest(WithNEstimators(25), WithForestSeed(1))
	b := NewForest(WithNEstimators(25), WithForestSeed(2))
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	pa, pb := a.PredictProba(probe), b.PredictProba(probe)
	same := true
	for i := range pa {
		if pa[i] != pb[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different seeds to grow different forests")
	}
}

func TestForest_RejectsBadInput(t *testing.T) {
	f := NewForest()
	if err := f.Fit(nil, nil); err == nil {
		t.Error("expected error on empty training data")
	}
	if err := f.Fit([][]float64{{1}}, []int{0, 1}); err == nil {
		t.Error("expected error on mismatched label count")
	}
}

func TestForest_PredictBeforeFit(t *testing.T) {
	f := NewForest()
	probs := f.PredictProba([][]float64{{1, 2}})
	if len(probs) != 1 || probs[0] != 0 {
		t.Errorf("expected zero probability before fit, got %v", probs)
	}
}
