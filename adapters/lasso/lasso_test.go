package lasso

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outcomelab/internal/testkit"
)

func TestFit_HeavyPenaltyZeroesEverything(t *testing.T) {
	tbl := testkit.GenerateCohort(400, 3)

	result, err := NewFitter(100).Fit(context.Background(), tbl, "outcome",
		tbl.PredictorKeys("outcome"))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Nonzero)
	for _, c := range result.Coefficients[1:] {
		assert.Zero(t, c.Estimate, "coefficient %s should be shrunk to zero", c.Name)
	}
}

func TestFit_LightPenaltyKeepsTheSignal(t *testing.T) {
	tbl := testkit.GenerateCohort(2000, 3)

	result, err := NewFitter(0.01).Fit(context.Background(), tbl, "outcome",
		tbl.PredictorKeys("outcome"))
	require.NoError(t, err)

	assert.Greater(t, result.Nonzero, 0)
	assert.Equal(t, 2000, result.Rows)

	byName := make(map[string]float64, len(result.Coefficients))
	for _, c := range result.Coefficients {
		byName[c.Name] = c.Estimate
	}
	assert.Greater(t, byName["age"], 0.0)
	assert.Greater(t, byName["smoker=yes"], 0.0)
	assert.Less(t, byName["dose"], 0.0)
}

func TestFit_PenaltyOrdering(t *testing.T) {
	// More penalty can only keep fewer (or equal) coefficients alive.
	tbl := testkit.GenerateCohort(800, 5)
	predictors := tbl.PredictorKeys("outcome")

	light, err := NewFitter(0.01).Fit(context.Background(), tbl, "outcome", predictors)
	require.NoError(t, err)
	heavy, err := NewFitter(0.5).Fit(context.Background(), tbl, "outcome", predictors)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, light.Nonzero, heavy.Nonzero)
}

func TestFit_RejectsNegativeLambda(t *testing.T) {
	tbl := testkit.GenerateCohort(50, 1)
	_, err := NewFitter(-0.1).Fit(context.Background(), tbl, "outcome",
		tbl.PredictorKeys("outcome"))
	require.Error(t, err)
}

func TestFit_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tbl := testkit.GenerateCohort(50, 1)
	_, err := NewFitter(0.1).Fit(ctx, tbl, "outcome", tbl.PredictorKeys("outcome"))
	require.Error(t, err)
}
