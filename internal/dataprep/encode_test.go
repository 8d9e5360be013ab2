package dataprep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outcomelab/domain/table"
)

func TestEncodeFeatures(t *testing.T) {
	tbl := table.New(4)
	require.NoError(t, tbl.AddNumeric("age", []float64{30, 40, math.NaN(), 60}))
	require.NoError(t, tbl.AddCategorical("city", []string{"rome", "oslo", "rome", ""}))
	require.NoError(t, tbl.AddCategorical("outcome", []string{"no", "yes", "", "yes"}))

	x, names, y, err := EncodeFeatures(tbl, "outcome")
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "city"}, names)
	// Row 2 is dropped for its missing outcome.
	require.Len(t, x, 3)
	assert.Equal(t, []int{0, 1, 1}, y)

	// Levels sort to [oslo rome], so oslo=0 and rome=1.
	assert.Equal(t, 1.0, x[0][1])
	assert.Equal(t, 0.0, x[1][1])
	assert.True(t, math.IsNaN(x[2][1]), "missing label encodes as NaN")
	assert.Equal(t, 60.0, x[2][0])
}

func TestEncodeFeatures_Errors(t *testing.T) {
	tbl := table.New(2)
	require.NoError(t, tbl.AddCategorical("outcome", []string{"no", "yes"}))
	_, _, _, err := EncodeFeatures(tbl, "outcome")
	assert.Error(t, err, "a table with no predictors cannot be encoded")

	tbl2 := table.New(2)
	require.NoError(t, tbl2.AddNumeric("x", []float64{1, 2}))
	require.NoError(t, tbl2.AddCategorical("outcome", []string{"", ""}))
	_, _, _, err = EncodeFeatures(tbl2, "outcome")
	assert.Error(t, err, "an outcome with no present values cannot be encoded")
}

func TestHoldoutSplit(t *testing.T) {
	train, test := HoldoutSplit(10, 0.25)
	assert.Equal(t, []int{0, 4, 8}, test)
	assert.Len(t, train, 7)

	// Train and test partition the index range.
	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i])
		seen[i] = true
	}
	assert.Len(t, seen, 10)
}

func TestHoldoutSplit_BadFractionFallsBack(t *testing.T) {
	_, test := HoldoutSplit(8, 0)
	assert.Equal(t, []int{0, 4}, test)

	_, test = HoldoutSplit(8, 1.5)
	assert.Equal(t, []int{0, 4}, test)
}

func TestHoldoutSplit_Deterministic(t *testing.T) {
	a1, b1 := HoldoutSplit(100, 0.2)
	a2, b2 := HoldoutSplit(100, 0.2)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}
