package selection

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"outcomelab/domain/core"
	"outcomelab/domain/table"
	"outcomelab/internal"
	"outcomelab/internal/errors"
	"outcomelab/ports"
)

// Candidate is one removal considered during an iteration. An empty Removed
// key is the "remove none" candidate carrying the current full model's score.
type Candidate struct {
	Removed core.ColumnKey `json:"removed,omitempty"`
	Score   float64        `json:"score"`
}

// Step records one iteration of the elimination loop
type Step struct {
	Baseline   float64        `json:"baseline"`
	Candidates []Candidate    `json:"candidates"`
	Removed    core.ColumnKey `json:"removed,omitempty"` // empty on the terminating step
}

// Result is the outcome of a completed backward elimination
type Result struct {
	Predictors []core.ColumnKey `json:"predictors"`
	Score      float64          `json:"score"`
	Baseline   float64          `json:"baseline"` // score of the full initial model
	Steps      []Step           `json:"steps"`
}

// Selector performs greedy backward stepwise elimination: starting from all
// candidate predictors, each round refits the model with every single
// predictor left out and drops the one whose removal lowers the information
// criterion the most, stopping when keeping the current set scores best.
// Locally optimal, not globally optimal.
type Selector struct {
	fitter ports.BinomialFitter
	logger *internal.Logger
}

// New creates a selector around an injected fitting collaborator
func New(fitter ports.BinomialFitter) *Selector {
	return &Selector{fitter: fitter, logger: internal.DefaultLogger}
}

// NewWithLogger creates a selector with an explicit logger
func NewWithLogger(fitter ports.BinomialFitter, logger *internal.Logger) *Selector {
	return &Selector{fitter: fitter, logger: logger}
}

// Run executes backward elimination over the initial predictor set. The table
// is never mutated; the working set shrinks by exactly one predictor per
// non-terminating iteration, so the loop runs at most len(initial) times.
// A failed fit aborts the whole run with no partial result.
func (s *Selector) Run(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, initial []core.ColumnKey) (*Result, error) {
	if err := validateInputs(tbl, outcome, initial); err != nil {
		return nil, err
	}

	current := make([]core.ColumnKey, len(initial))
	copy(current, initial)

	result := &Result{}

	for {
		baseline, err := s.fitter.Fit(ctx, tbl, outcome, current)
		if err != nil {
			return nil, errors.FitFailed("full model fit failed", err)
		}
		if len(result.Steps) == 0 {
			result.Baseline = baseline.Score
		}

		scores, err := s.fitReduced(ctx, tbl, outcome, current)
		if err != nil {
			return nil, err
		}

		step := Step{Baseline: baseline.Score, Candidates: make([]Candidate, len(current))}
		for i, key := range current {
			step.Candidates[i] = Candidate{Removed: key, Score: scores[i]}
		}

		// Strict comparison against the running best keeps ties on the
		// "remove none" candidate first, then on the earliest predictor in
		// the original column order.
		best := -1
		bestScore := baseline.Score
		for i, score := range scores {
			if score < bestScore {
				best = i
				bestScore = score
			}
		}

		if best < 0 {
			result.Steps = append(result.Steps, step)
			result.Predictors = current
			result.Score = baseline.Score
			s.logger.Info("stepwise: converged with %d of %d predictors (score %.4f)",
				len(current), len(initial), baseline.Score)
			return result, nil
		}

		removed := current[best]
		step.Removed = removed
		result.Steps = append(result.Steps, step)
		s.logger.Debug("stepwise: dropping %s (%.4f -> %.4f)", removed, baseline.Score, bestScore)

		current = append(current[:best:best], current[best+1:]...)
		if len(current) == 0 {
			// Every predictor eliminated: the termination rule can no longer
			// apply, treat as a contract violation rather than fitting an
			// intercept-only model.
			return nil, errors.InvalidInput("stepwise selection eliminated every predictor")
		}
	}
}

// fitReduced fits all one-predictor-removed models for the current set. Fits
// run concurrently against the same immutable snapshot; scores land in a slice
// indexed by candidate position so the selection outcome does not depend on
// scheduling order.
func (s *Selector) fitReduced(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, current []core.ColumnKey) ([]float64, error) {
	scores := make([]float64, len(current))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range current {
		g.Go(func() error {
			reduced := make([]core.ColumnKey, 0, len(current)-1)
			reduced = append(reduced, current[:i]...)
			reduced = append(reduced, current[i+1:]...)

			res, err := s.fitter.Fit(gctx, tbl, outcome, reduced)
			if err != nil {
				return errors.FitFailed("reduced model fit failed without "+current[i].String(), err)
			}
			scores[i] = res.Score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func validateInputs(tbl *table.Table, outcome core.ColumnKey, initial []core.ColumnKey) error {
	if len(initial) == 0 {
		return errors.InvalidInput("initial predictor set cannot be empty")
	}
	if !tbl.HasColumn(outcome) {
		return errors.InvalidInput("outcome column " + outcome.String() + " not found in table")
	}
	seen := make(map[core.ColumnKey]bool, len(initial))
	for _, key := range initial {
		if key == outcome {
			return errors.InvalidInput("outcome column " + outcome.String() + " cannot be a predictor")
		}
		if seen[key] {
			return errors.InvalidInput("duplicate predictor " + key.String())
		}
		seen[key] = true
		if !tbl.HasColumn(key) {
			return errors.InvalidInput("predictor column " + key.String() + " not found in table")
		}
	}
	return nil
}
