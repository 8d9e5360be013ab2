package ports

import (
	"context"

	"outcomelab/domain/core"
	"outcomelab/domain/model"
	"outcomelab/domain/table"
)

// BinomialFitter fits a two-outcome regression model on the complete-case rows
// of {outcome} ∪ predictors and reports an information criterion score plus
// per-term significance. Implementations must be deterministic and free of
// side effects: the selection loop never retries a failed fit.
type BinomialFitter interface {
	Fit(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (model.FitResult, error)
}

// FitterFunc adapts a plain function to the BinomialFitter interface
type FitterFunc func(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (model.FitResult, error)

// Fit implements BinomialFitter
func (f FitterFunc) Fit(ctx context.Context, tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (model.FitResult, error) {
	return f(ctx, tbl, outcome, predictors)
}
