package glm

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"outcomelab/domain/core"
	"outcomelab/domain/model"
	"outcomelab/domain/table"
)

// Fitter fits a binomial (logistic) regression by iteratively reweighted
// least squares and scores it with AIC = deviance + 2 * parameters.
// Deterministic and side-effect free, as the selection loop requires.
type Fitter struct {
	MaxIter int
	Tol     float64
}

// NewFitter returns a fitter with standard IRLS settings
func NewFitter() *Fitter {
	return &Fitter{MaxIter: 50, Tol: 1e-8}
}

// Fit implements ports.BinomialFitter
func (f *Fitter) Fit(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (model.FitResult, error) {
	design, err := buildDesign(tbl, outcome, predictors)
	if err != nil {
		return model.FitResult{}, err
	}

	beta, xtwx, err := f.irls(ctx, design)
	if err != nil {
		return model.FitResult{}, err
	}

	n, p := design.x.Dims()
	deviance := binomialDeviance(design.x, design.y, beta)
	result := model.FitResult{
		Score:    deviance + 2*float64(p),
		Deviance: deviance,
		Params:   p,
		Rows:     n,
		Terms:    make([]model.Term, p),
	}

	// Wald z-tests from the inverse Fisher information at the optimum.
	var cov mat.Dense
	if err := cov.Inverse(xtwx); err != nil {
		return model.FitResult{}, fmt.Errorf("information matrix is singular: %w", err)
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	for j := 0; j < p; j++ {
		se := math.Sqrt(cov.At(j, j))
		z := beta.AtVec(j) / se
		result.Terms[j] = model.Term{
			Name:     design.names[j],
			Estimate: beta.AtVec(j),
			StdErr:   se,
			PValue:   2 * normal.Survival(math.Abs(z)),
		}
	}

	return result, nil
}

// irls runs iteratively reweighted least squares and returns the coefficient
// vector plus the final weighted information matrix X'WX.
func (f *Fitter) irls(ctx context.Context, design *designMatrix) (*mat.VecDense, *mat.Dense, error) {
	n, p := design.x.Dims()
	if n <= p {
		return nil, nil, fmt.Errorf("cannot fit %d parameters on %d rows", p, n)
	}

	beta := mat.NewVecDense(p, nil)
	eta := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, n)

	xtwx := mat.NewDense(p, p, nil)
	xtwz := mat.NewVecDense(p, nil)
	next := mat.NewVecDense(p, nil)

	for iter := 0; iter < f.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		// Working response and weights at the current linear predictor.
		for i := 0; i < n; i++ {
			eta[i] = mat.Dot(design.x.RowView(i), beta)
			mu := sigmoid(eta[i])
			wi := mu * (1 - mu)
			if wi < 1e-10 {
				wi = 1e-10
			}
			w[i] = wi
			z[i] = eta[i] + (design.y[i]-mu)/wi
		}

		weightedNormalEquations(design.x, w, z, xtwx, xtwz)
		if err := next.SolveVec(xtwx, xtwz); err != nil {
			return nil, nil, fmt.Errorf("singular design matrix: %w", err)
		}

		delta := 0.0
		for j := 0; j < p; j++ {
			d := math.Abs(next.AtVec(j) - beta.AtVec(j))
			if d > delta {
				delta = d
			}
		}
		beta.CopyVec(next)

		if delta < f.Tol {
			return beta, xtwx, nil
		}
	}

	// Typical causes: perfectly separable outcome or quasi-complete
	// separation driving coefficients to infinity.
	return nil, nil, fmt.Errorf("IRLS did not converge in %d iterations", f.MaxIter)
}

// weightedNormalEquations fills xtwx = X'WX and xtwz = X'Wz in place
func weightedNormalEquations(x *mat.Dense, w, z []float64, xtwx *mat.Dense, xtwz *mat.VecDense) {
	n, p := x.Dims()
	for j := 0; j < p; j++ {
		for k := j; k < p; k++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += w[i] * x.At(i, j) * x.At(i, k)
			}
			xtwx.Set(j, k, sum)
			xtwx.Set(k, j, sum)
		}
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += w[i] * x.At(i, j) * z[i]
		}
		xtwz.SetVec(j, sum)
	}
}

// binomialDeviance computes -2 * log-likelihood of the fitted model
func binomialDeviance(x *mat.Dense, y []float64, beta *mat.VecDense) float64 {
	n, _ := x.Dims()
	ll := 0.0
	for i := 0; i < n; i++ {
		mu := sigmoid(mat.Dot(x.RowView(i), beta))
		mu = math.Min(math.Max(mu, 1e-12), 1-1e-12)
		if y[i] == 1 {
			ll += math.Log(mu)
		} else {
			ll += math.Log(1 - mu)
		}
	}
	return -2 * ll
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
