package dataprep

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"outcomelab/domain/core"
	"outcomelab/domain/table"
)

// ImputeMethod selects how missing numeric predictor cells are filled
type ImputeMethod string

const (
	ImputeMean   ImputeMethod = "mean"
	ImputeMedian ImputeMethod = "median"
	ImputeMode   ImputeMethod = "mode"
)

// DropMissingOutcome returns a table restricted to rows where the outcome is
// present. Rows with missing predictors survive; the fitter's complete-case
// rule handles those per subset.
func DropMissingOutcome(tbl *table.Table, outcome core.ColumnKey) (*table.Table, error) {
	if !tbl.HasColumn(outcome) {
		return nil, fmt.Errorf("dataprep: outcome column %q not found", outcome)
	}
	rows := tbl.CompleteCases(outcome)
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataprep: every row is missing the outcome %q", outcome)
	}
	return tbl.SelectRows(rows), nil
}

// Impute fills missing predictor cells and returns a new table. Numeric
// columns use the configured method; categorical columns always take the most
// frequent label (ties broken lexicographically). The outcome column is never
// touched.
func Impute(tbl *table.Table, outcome core.ColumnKey, method ImputeMethod) (*table.Table, error) {
	out := table.New(tbl.Rows())

	for _, col := range tbl.Columns() {
		switch col.Kind {
		case table.KindNumeric:
			src, _ := tbl.Numeric(col.Key)
			values := make([]float64, len(src))
			copy(values, src)
			if col.Key != outcome {
				if err := imputeNumeric(values, method); err != nil {
					return nil, fmt.Errorf("dataprep: column %q: %w", col.Key, err)
				}
			}
			if err := out.AddNumeric(col.Key, values); err != nil {
				return nil, err
			}
		case table.KindCategorical:
			src, _ := tbl.Labels(col.Key)
			values := make([]string, len(src))
			copy(values, src)
			if col.Key != outcome {
				imputeCategorical(values)
			}
			if err := out.AddCategorical(col.Key, values); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func imputeNumeric(values []float64, method ImputeMethod) error {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == len(values) {
		return nil
	}
	if len(present) == 0 {
		return fmt.Errorf("all values missing")
	}

	var fill float64
	var err error
	switch method {
	case ImputeMean:
		fill, err = stats.Mean(present)
	case ImputeMedian:
		fill, err = stats.Median(present)
	case ImputeMode:
		var modes []float64
		modes, err = stats.Mode(present)
		if err == nil && len(modes) > 0 {
			fill = modes[0]
		} else if err == nil {
			// No repeated value; fall back to the median.
			fill, err = stats.Median(present)
		}
	default:
		return fmt.Errorf("unknown impute method %q", method)
	}
	if err != nil {
		return err
	}

	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = fill
		}
	}
	return nil
}

func imputeCategorical(values []string) {
	counts := make(map[string]int)
	for _, v := range values {
		if v != "" {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	mode := labels[0]
	for _, label := range labels[1:] {
		if counts[label] > counts[mode] {
			mode = label
		}
	}

	for i, v := range values {
		if v == "" {
			values[i] = mode
		}
	}
}
