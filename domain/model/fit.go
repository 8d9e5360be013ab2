package model

import (
	"math"
	"strings"

	"outcomelab/domain/core"
)

// Term is one estimated coefficient of a fitted model. Indicator terms derived
// from a categorical predictor are named "column=level"; numeric predictors
// and the intercept keep their plain name.
type Term struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	PValue   float64 `json:"p_value"`
}

// FitResult is the outcome of fitting a binomial regression on one predictor
// subset. Score is the information criterion (AIC); lower is better.
type FitResult struct {
	Score    float64 `json:"score"`
	Deviance float64 `json:"deviance"`
	Params   int     `json:"params"`
	Rows     int     `json:"rows"`
	Terms    []Term  `json:"terms"`
}

// PredictorSignificance returns the smallest p-value among the terms belonging
// to a predictor. A categorical predictor expanded into several indicator
// terms contributes the minimum over all of them. Returns 1 when the predictor
// has no term in the fit.
func (r FitResult) PredictorSignificance(key core.ColumnKey) float64 {
	prefix := key.String() + "="
	p := math.NaN()
	for _, term := range r.Terms {
		if term.Name != key.String() && !strings.HasPrefix(term.Name, prefix) {
			continue
		}
		if math.IsNaN(p) || term.PValue < p {
			p = term.PValue
		}
	}
	if math.IsNaN(p) {
		return 1
	}
	return p
}

// Term looks up a coefficient by name
func (r FitResult) Term(name string) (Term, bool) {
	for _, term := range r.Terms {
		if term.Name == name {
			return term, true
		}
	}
	return Term{}, false
}
