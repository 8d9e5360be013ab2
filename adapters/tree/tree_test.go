package tree

import (
	"math"
	"testing"
)

func separableData() ([][]float64, []int) {
	X := [][]float64{
		{1, 0}, {2, 1}, {1.5, 0}, {2.5, 1},
		{8, 0}, {9, 1}, {8.5, 0}, {9.5, 1},
	}
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}
	return X, y
}

func TestClassifier_PerfectlySeparableData(t *testing.T) {
	X, y := separableData()

	c := NewClassifier(WithMinLeaf(1))
	if err := c.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	pred := c.Predict(X)
	if acc := Accuracy(y, pred); acc != 1.0 {
		t.Errorf("expected perfect accuracy on separable data, got %v", acc)
	}
}

func TestClassifier_SplitsOnTheInformativeFeature(t *testing.T) {
	X, y := separableData()

	c := NewClassifier()
	if err := c.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if c.root.leaf {
		t.Fatal("expected an internal root node")
	}
	if c.root.feature != 0 {
		t.Errorf("expected split on feature 0, got %d", c.root.feature)
	}
	if c.root.threshold <= 2.5 || c.root.threshold >= 8 {
		t.Errorf("threshold %v does not separate the clusters", c.root.threshold)
	}
}

func TestClassifier_MissingValuesFollowLargerChild(t *testing.T) {
	X, y := separableData()

	c := NewClassifier()
	if err := c.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	// A row missing the split feature still gets a prediction.
	probs := c.PredictProba([][]float64{{math.NaN(), 0}})
	if len(probs) != 1 || math.IsNaN(probs[0]) {
		t.Fatalf("expected a defined probability, got %v", probs)
	}
}

func TestClassifier_MaxDepthLimitsTheTree(t *testing.T) {
	X, y := separableData()

	c := NewClassifier(WithMaxDepth(1))
	if err := c.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if !c.root.left.leaf || !c.root.right.leaf {
		t.Error("depth 1 tree must have leaf children at the root")
	}
}

func TestClassifier_PickRestrictsSplitFeatures(t *testing.T) {
	// Feature 0 separates the classes; a pick that withholds it forces the
	// tree onto feature 1 (or a leaf), never feature 0.
	X, y := separableData()

	c := NewClassifier()
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	pick := func(p int) []int { return []int{1} }
	if err := c.FitIndices(X, y, idx, pick); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	var walk func(n *node)
	walk = func(n *node) {
		if n == nil || n.leaf {
			return
		}
		if n.feature == 0 {
			t.Errorf("split used feature 0 despite pick withholding it")
		}
		walk(n.left)
		walk(n.right)
	}
	walk(c.root)
}

func TestClassifier_RejectsBadInput(t *testing.T) {
	c := NewClassifier()
	if err := c.Fit(nil, nil); err == nil {
		t.Error("expected error on empty training data")
	}
	if err := c.Fit([][]float64{{1, 2}}, []int{0, 1}); err == nil {
		t.Error("expected error on mismatched label count")
	}
	if err := c.Fit([][]float64{{1, 2}, {1}}, []int{0, 1}); err == nil {
		t.Error("expected error on ragged rows")
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy([]int{1, 0, 1, 0}, []int{1, 0, 0, 0}); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
	if got := Accuracy(nil, nil); got != 0 {
		t.Errorf("expected 0 on empty input, got %v", got)
	}
	if got := Accuracy([]int{1}, []int{1, 0}); got != 0 {
		t.Errorf("expected 0 on length mismatch, got %v", got)
	}
}
