package lasso

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"outcomelab/adapters/glm"
	"outcomelab/domain/core"
	"outcomelab/domain/table"
)

// Fitter fits an L1-penalized logistic regression by proximal gradient
// descent with soft-thresholding. Predictor columns are standardized before
// fitting, so estimates are on the standardized scale; the intercept is never
// penalized. Larger Lambda shrinks more coefficients to exactly zero.
type Fitter struct {
	Lambda  float64
	MaxIter int
	Tol     float64
}

// Coefficient is one penalized estimate, zero when eliminated by the penalty
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
}

// Result reports the surviving coefficients of a penalized fit
type Result struct {
	Lambda       float64       `json:"lambda"`
	Rows         int           `json:"rows"`
	Coefficients []Coefficient `json:"coefficients"`
	Nonzero      int           `json:"nonzero"` // nonzero count excluding the intercept
}

// NewFitter returns a fitter for a fixed penalty weight
func NewFitter(lambda float64) *Fitter {
	return &Fitter{Lambda: lambda, MaxIter: 2000, Tol: 1e-7}
}

// Fit runs the penalized fit over the same complete-case, indicator-expanded
// design the unpenalized GLM uses.
func (f *Fitter) Fit(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (*Result, error) {
	if f.Lambda < 0 {
		return nil, fmt.Errorf("lasso: lambda must be non-negative, got %v", f.Lambda)
	}

	x, y, names, err := glm.Design(tbl, outcome, predictors)
	if err != nil {
		return nil, err
	}
	n, p := x.Dims()

	std := standardize(x)

	beta := make([]float64, p)
	grad := make([]float64, p)
	mu := make([]float64, n)

	// Step size from the Lipschitz bound of the mean logistic loss,
	// L <= ||X||_F^2 / (4n).
	lipschitz := mat.Norm(std, 2)
	lipschitz = lipschitz * lipschitz / (4 * float64(n))
	if lipschitz <= 0 {
		return nil, fmt.Errorf("lasso: degenerate design matrix")
	}
	step := 1 / lipschitz

	for iter := 0; iter < f.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			eta := 0.0
			for j := 0; j < p; j++ {
				eta += std.At(i, j) * beta[j]
			}
			mu[i] = 1 / (1 + math.Exp(-eta))
		}
		for j := 0; j < p; j++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += std.At(i, j) * (mu[i] - y[i])
			}
			grad[j] = sum / float64(n)
		}

		delta := 0.0
		for j := 0; j < p; j++ {
			next := beta[j] - step*grad[j]
			if j > 0 { // intercept stays unpenalized
				next = softThreshold(next, step*f.Lambda)
			}
			if d := math.Abs(next - beta[j]); d > delta {
				delta = d
			}
			beta[j] = next
		}

		if delta < f.Tol {
			break
		}
	}

	result := &Result{Lambda: f.Lambda, Rows: n, Coefficients: make([]Coefficient, p)}
	for j := 0; j < p; j++ {
		result.Coefficients[j] = Coefficient{Name: names[j], Estimate: beta[j]}
		if j > 0 && beta[j] != 0 {
			result.Nonzero++
		}
	}
	return result, nil
}

// standardize centers and scales every non-intercept column to unit variance,
// leaving constant columns untouched. Returns a new matrix.
func standardize(x *mat.Dense) *mat.Dense {
	n, p := x.Dims()
	out := mat.DenseCopyOf(x)
	for j := 1; j < p; j++ {
		mean := 0.0
		for i := 0; i < n; i++ {
			mean += x.At(i, j)
		}
		mean /= float64(n)

		variance := 0.0
		for i := 0; i < n; i++ {
			d := x.At(i, j) - mean
			variance += d * d
		}
		variance /= float64(n)
		sd := math.Sqrt(variance)
		if sd == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			out.Set(i, j, (x.At(i, j)-mean)/sd)
		}
	}
	return out
}

func softThreshold(v, threshold float64) float64 {
	switch {
	case v > threshold:
		return v - threshold
	case v < -threshold:
		return v + threshold
	default:
		return 0
	}
}
