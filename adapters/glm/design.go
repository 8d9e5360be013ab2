package glm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"outcomelab/domain/core"
	"outcomelab/domain/table"
)

const interceptName = "(Intercept)"

// designMatrix holds the expanded regression inputs for one predictor subset:
// complete-case rows only, intercept first, categorical predictors expanded
// into indicator columns against their first level as reference.
type designMatrix struct {
	x     *mat.Dense
	y     []float64
	names []string // column names aligned with x, names[0] == interceptName
	rows  []int    // original table row indices
}

// buildDesign assembles the design matrix for {outcome} ∪ predictors using
// only rows with no missing value among those columns.
func buildDesign(tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (*designMatrix, error) {
	keys := append([]core.ColumnKey{outcome}, predictors...)
	rows := tbl.CompleteCases(keys...)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no complete-case rows for outcome %s with %d predictors", outcome, len(predictors))
	}

	outcomeValues, _, err := tbl.BinaryValues(outcome)
	if err != nil {
		return nil, err
	}
	y := make([]float64, len(rows))
	for i, row := range rows {
		y[i] = outcomeValues[row]
	}

	names := []string{interceptName}
	type columnFill func(dst []float64)
	var fills []columnFill

	for _, key := range predictors {
		col, ok := tbl.Column(key)
		if !ok {
			return nil, fmt.Errorf("predictor column %s not found", key)
		}
		switch col.Kind {
		case table.KindNumeric:
			values, _ := tbl.Numeric(key)
			names = append(names, key.String())
			fills = append(fills, func(dst []float64) {
				for i, row := range rows {
					dst[i] = values[row]
				}
			})
		case table.KindCategorical:
			levels := tbl.Levels(key)
			if len(levels) < 2 {
				return nil, fmt.Errorf("categorical predictor %s has %d levels, need at least 2", key, len(levels))
			}
			values, _ := tbl.Labels(key)
			// First level is the reference; one indicator per remaining level.
			for _, level := range levels[1:] {
				names = append(names, key.String()+"="+level)
				fills = append(fills, func(dst []float64) {
					for i, row := range rows {
						if values[row] == level {
							dst[i] = 1
						}
					}
				})
			}
		default:
			return nil, fmt.Errorf("predictor column %s has unsupported kind %s", key, col.Kind)
		}
	}

	x := mat.NewDense(len(rows), len(names), nil)
	for i := range rows {
		x.Set(i, 0, 1)
	}
	for j, fill := range fills {
		dst := make([]float64, len(rows))
		fill(dst)
		x.SetCol(j+1, dst)
	}

	return &designMatrix{x: x, y: y, names: names, rows: rows}, nil
}

// Design exposes the expanded design matrix for collaborators that share the
// same complete-case and indicator-expansion rules (e.g. penalized fits).
func Design(tbl *table.Table, outcome core.ColumnKey, predictors []core.ColumnKey) (x *mat.Dense, y []float64, names []string, err error) {
	d, err := buildDesign(tbl, outcome, predictors)
	if err != nil {
		return nil, nil, nil, err
	}
	return d.x, d.y, d.names, nil
}
