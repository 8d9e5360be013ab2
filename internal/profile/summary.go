package profile

import (
	"math"

	"github.com/montanaflynn/stats"

	"outcomelab/domain/core"
	"outcomelab/domain/table"
)

// ColumnSummary describes one column of the dataset for the report
type ColumnSummary struct {
	Key          core.ColumnKey   `json:"key"`
	Kind         table.ColumnKind `json:"kind"`
	Missing      int              `json:"missing"`
	MissingRatio float64          `json:"missing_ratio"`

	// Numeric columns
	Mean   float64 `json:"mean,omitempty"`
	StdDev float64 `json:"std_dev,omitempty"`
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Median float64 `json:"median,omitempty"`
	Q25    float64 `json:"q25,omitempty"`
	Q75    float64 `json:"q75,omitempty"`

	// Categorical columns
	Cardinality int    `json:"cardinality,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// Profile summarizes every column of a table in column order
func Profile(tbl *table.Table) []ColumnSummary {
	columns := tbl.Columns()
	out := make([]ColumnSummary, 0, len(columns))
	for _, col := range columns {
		out = append(out, summarize(tbl, col))
	}
	return out
}

func summarize(tbl *table.Table, col table.Column) ColumnSummary {
	s := ColumnSummary{Key: col.Key, Kind: col.Kind}
	s.Missing = tbl.MissingCount(col.Key)
	if tbl.Rows() > 0 {
		s.MissingRatio = float64(s.Missing) / float64(tbl.Rows())
	}

	switch col.Kind {
	case table.KindNumeric:
		values, _ := tbl.Numeric(col.Key)
		present := make([]float64, 0, len(values))
		for _, v := range values {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		if len(present) == 0 {
			return s
		}
		s.Mean, _ = stats.Mean(present)
		s.StdDev, _ = stats.StandardDeviation(present)
		s.Min, _ = stats.Min(present)
		s.Max, _ = stats.Max(present)
		s.Median, _ = stats.Median(present)
		s.Q25, _ = stats.Percentile(present, 25)
		s.Q75, _ = stats.Percentile(present, 75)
	case table.KindCategorical:
		levels := tbl.Levels(col.Key)
		s.Cardinality = len(levels)
		s.Mode = modeLabel(tbl, col.Key, levels)
	}
	return s
}

func modeLabel(tbl *table.Table, key core.ColumnKey, levels []string) string {
	values, _ := tbl.Labels(key)
	counts := make(map[string]int, len(levels))
	for _, v := range values {
		if v != "" {
			counts[v]++
		}
	}
	mode := ""
	for _, level := range levels {
		if mode == "" || counts[level] > counts[mode] {
			mode = level
		}
	}
	return mode
}
