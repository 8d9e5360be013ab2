package selection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outcomelab/domain/core"
	"outcomelab/domain/model"
	"outcomelab/domain/table"
	"outcomelab/internal/errors"
	"outcomelab/ports"
)

// scriptedFitter returns canned scores keyed by the sorted predictor set. It
// errors on any set it has no script for, so tests catch unexpected fits.
type scriptedFitter struct {
	mu     sync.Mutex
	scores map[string]float64
	calls  int
}

func (f *scriptedFitter) Fit(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (model.FitResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	key := setKey(predictors)
	score, ok := f.scores[key]
	if !ok {
		return model.FitResult{}, fmt.Errorf("no scripted score for set %q", key)
	}
	return model.FitResult{Score: score, Params: len(predictors) + 1}, nil
}

func setKey(predictors []core.ColumnKey) string {
	keys := make([]string, len(predictors))
	for i, k := range predictors {
		keys[i] = k.String()
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func newABCTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New(4)
	require.NoError(t, tbl.AddNumeric("A", []float64{1, 2, 3, 4}))
	require.NoError(t, tbl.AddNumeric("B", []float64{4, 3, 2, 1}))
	require.NoError(t, tbl.AddNumeric("C", []float64{1, 1, 2, 2}))
	require.NoError(t, tbl.AddNumeric("y", []float64{0, 1, 0, 1}))
	return tbl
}

func keys(names ...string) []core.ColumnKey {
	out := make([]core.ColumnKey, len(names))
	for i, n := range names {
		out[i] = core.ColumnKey(n)
	}
	return out
}

func TestRun_GreedyEliminationTrace(t *testing.T) {
	fitter := &scriptedFitter{scores: map[string]float64{
		"A,B,C": 100,
		"B,C":   95, // remove A
		"A,C":   110,
		"A,B":   105,
		"C":     90, // remove B
		"B":     97,
		"":      93, // removing C would make things worse
	}}

	selector := New(fitter)
	result, err := selector.Run(context.Background(), newABCTable(t), "y", keys("A", "B", "C"))
	require.NoError(t, err)

	assert.Equal(t, keys("C"), result.Predictors)
	assert.Equal(t, 90.0, result.Score)
	assert.Equal(t, 100.0, result.Baseline)

	require.Len(t, result.Steps, 3)
	assert.Equal(t, core.ColumnKey("A"), result.Steps[0].Removed)
	assert.Equal(t, core.ColumnKey("B"), result.Steps[1].Removed)
	assert.Equal(t, core.ColumnKey(""), result.Steps[2].Removed)

	// First round considered every single-removal candidate.
	require.Len(t, result.Steps[0].Candidates, 3)
	assert.Equal(t, 95.0, result.Steps[0].Candidates[0].Score)
	assert.Equal(t, 110.0, result.Steps[0].Candidates[1].Score)
	assert.Equal(t, 105.0, result.Steps[0].Candidates[2].Score)
}

func TestRun_TerminatesImmediatelyWhenFullModelWins(t *testing.T) {
	fitter := &scriptedFitter{scores: map[string]float64{
		"A,B,C": 50,
		"B,C":   51,
		"A,C":   52,
		"A,B":   53,
	}}

	result, err := New(fitter).Run(context.Background(), newABCTable(t), "y", keys("A", "B", "C"))
	require.NoError(t, err)

	assert.Equal(t, keys("A", "B", "C"), result.Predictors)
	assert.Equal(t, 50.0, result.Score)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, core.ColumnKey(""), result.Steps[0].Removed)
}

func TestRun_TieWithBaselineKeepsFullModel(t *testing.T) {
	// A removal that merely matches the full model's score is not strictly
	// better, so the loop stops.
	fitter := &scriptedFitter{scores: map[string]float64{
		"A,B,C": 80,
		"B,C":   80,
		"A,C":   80,
		"A,B":   81,
	}}

	result, err := New(fitter).Run(context.Background(), newABCTable(t), "y", keys("A", "B", "C"))
	require.NoError(t, err)
	assert.Equal(t, keys("A", "B", "C"), result.Predictors)
	assert.Equal(t, 80.0, result.Score)
}

func TestRun_TiedRemovalsDropEarliestPredictor(t *testing.T) {
	fitter := &scriptedFitter{scores: map[string]float64{
		"A,B,C": 100,
		"B,C":   95,
		"A,C":   95, // ties with removing A; A comes first
		"A,B":   99,
		"B":     96,
		"C":     96,
	}}

	result, err := New(fitter).Run(context.Background(), newABCTable(t), "y", keys("A", "B", "C"))
	require.NoError(t, err)

	require.NotEmpty(t, result.Steps)
	assert.Equal(t, core.ColumnKey("A"), result.Steps[0].Removed)
	assert.Equal(t, keys("B", "C"), result.Predictors)
}

func TestRun_IsDeterministicAcrossRepeats(t *testing.T) {
	scores := map[string]float64{
		"A,B,C": 100,
		"B,C":   95,
		"A,C":   110,
		"A,B":   105,
		"C":     90,
		"B":     97,
		"":      93,
	}
	tbl := newABCTable(t)

	var first *Result
	for i := 0; i < 5; i++ {
		result, err := New(&scriptedFitter{scores: scores}).Run(context.Background(), tbl, "y", keys("A", "B", "C"))
		require.NoError(t, err)
		if first == nil {
			first = result
			continue
		}
		assert.Equal(t, first.Predictors, result.Predictors)
		assert.Equal(t, first.Score, result.Score)
		assert.Equal(t, len(first.Steps), len(result.Steps))
	}
}

func TestRun_PredictorSetShrinksMonotonically(t *testing.T) {
	fitter := &scriptedFitter{scores: map[string]float64{
		"A,B,C": 100,
		"B,C":   95,
		"A,C":   110,
		"A,B":   105,
		"C":     90,
		"B":     97,
		"":      93,
	}}

	result, err := New(fitter).Run(context.Background(), newABCTable(t), "y", keys("A", "B", "C"))
	require.NoError(t, err)

	size := 3
	for _, step := range result.Steps {
		require.Len(t, step.Candidates, size)
		if step.Removed != "" {
			size--
		}
	}
	assert.Len(t, result.Predictors, size)
}

func TestRun_EliminatingEveryPredictorFails(t *testing.T) {
	// Removing the last predictor improves the score, which would leave an
	// empty working set.
	fitter := &scriptedFitter{scores: map[string]float64{
		"A": 100,
		"":  50,
	}}

	tbl := table.New(2)
	require.NoError(t, tbl.AddNumeric("A", []float64{1, 2}))
	require.NoError(t, tbl.AddNumeric("y", []float64{0, 1}))

	_, err := New(fitter).Run(context.Background(), tbl, "y", keys("A"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRun_FullModelFitErrorAborts(t *testing.T) {
	fitter := ports.FitterFunc(func(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (model.FitResult, error) {
		return model.FitResult{}, fmt.Errorf("separation")
	})

	result, err := New(fitter).Run(context.Background(), newABCTable(t), "y", keys("A", "B", "C"))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, errors.CodeFitFailed, errors.GetCode(err))
}

func TestRun_ReducedFitErrorAbortsWithNoPartialResult(t *testing.T) {
	fitter := ports.FitterFunc(func(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (model.FitResult, error) {
		if setKey(predictors) == "A,C" { // the fit without B blows up
			return model.FitResult{}, fmt.Errorf("did not converge")
		}
		return model.FitResult{Score: 100}, nil
	})

	result, err := New(fitter).Run(context.Background(), newABCTable(t), "y", keys("A", "B", "C"))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, errors.CodeFitFailed, errors.GetCode(err))
	assert.Contains(t, err.Error(), "without B")
}

func TestRun_ValidatesInputs(t *testing.T) {
	tbl := newABCTable(t)
	fitter := &scriptedFitter{scores: map[string]float64{}}

	tests := []struct {
		name    string
		outcome core.ColumnKey
		initial []core.ColumnKey
	}{
		{"empty initial set", "y", nil},
		{"outcome as predictor", "y", keys("A", "y")},
		{"duplicate predictor", "y", keys("A", "A")},
		{"unknown predictor", "y", keys("A", "Z")},
		{"unknown outcome", "missing", keys("A")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(fitter).Run(context.Background(), tbl, tc.outcome, tc.initial)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Zero(t, fitter.calls, "validation must reject before any fit")
		})
	}
}

func TestRun_DoesNotMutateInitialSlice(t *testing.T) {
	fitter := &scriptedFitter{scores: map[string]float64{
		"A,B,C": 100,
		"B,C":   95,
		"A,C":   110,
		"A,B":   105,
		"B":     96,
		"C":     96,
	}}

	initial := keys("A", "B", "C")
	_, err := New(fitter).Run(context.Background(), newABCTable(t), "y", initial)
	require.NoError(t, err)
	assert.Equal(t, keys("A", "B", "C"), initial)
}

func TestRun_CancelledContextStopsTheRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fitter := ports.FitterFunc(func(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (model.FitResult, error) {
		if err := ctx.Err(); err != nil {
			return model.FitResult{}, err
		}
		return model.FitResult{Score: 100}, nil
	})

	_, err := New(fitter).Run(ctx, newABCTable(t), "y", keys("A", "B", "C"))
	require.Error(t, err)
}
