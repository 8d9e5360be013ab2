package dataprep

import (
	"fmt"
	"math"

	"outcomelab/domain/core"
	"outcomelab/domain/table"
)

// EncodeFeatures builds a label-encoded feature matrix for tree models:
// numeric columns pass through with NaN marking missing cells, categorical
// columns become integer level codes in sorted level order. Rows missing the
// outcome are skipped. Returns the matrix, the feature names in column order,
// and the 0/1 outcome labels.
func EncodeFeatures(tbl *table.Table, outcome core.ColumnKey) ([][]float64, []string, []int, error) {
	outcomeValues, _, err := tbl.BinaryValues(outcome)
	if err != nil {
		return nil, nil, nil, err
	}

	predictors := tbl.PredictorKeys(outcome)
	if len(predictors) == 0 {
		return nil, nil, nil, fmt.Errorf("dataprep: table has no predictor columns")
	}

	names := make([]string, len(predictors))
	columns := make([][]float64, len(predictors))
	for j, key := range predictors {
		names[j] = key.String()
		col, _ := tbl.Column(key)
		switch col.Kind {
		case table.KindNumeric:
			values, _ := tbl.Numeric(key)
			columns[j] = values
		case table.KindCategorical:
			values, _ := tbl.Labels(key)
			codes := make(map[string]float64, 8)
			for i, level := range tbl.Levels(key) {
				codes[level] = float64(i)
			}
			encoded := make([]float64, len(values))
			for i, v := range values {
				if v == "" {
					encoded[i] = math.NaN()
				} else {
					encoded[i] = codes[v]
				}
			}
			columns[j] = encoded
		}
	}

	var x [][]float64
	var y []int
	for row := 0; row < tbl.Rows(); row++ {
		if math.IsNaN(outcomeValues[row]) {
			continue
		}
		features := make([]float64, len(predictors))
		for j := range predictors {
			features[j] = columns[j][row]
		}
		x = append(x, features)
		y = append(y, int(outcomeValues[row]))
	}
	if len(x) == 0 {
		return nil, nil, nil, fmt.Errorf("dataprep: no rows with a present outcome")
	}
	return x, names, y, nil
}

// HoldoutSplit deterministically partitions row indices into train and test
// sets by a fixed stride so repeated runs see the same split.
func HoldoutSplit(n int, fraction float64) (train, test []int) {
	if fraction <= 0 || fraction >= 1 {
		fraction = 0.25
	}
	stride := int(math.Round(1 / fraction))
	if stride < 2 {
		stride = 2
	}
	for i := 0; i < n; i++ {
		if i%stride == 0 {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}
	return train, test
}
