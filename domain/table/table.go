package table

import (
	"fmt"
	"math"
	"sort"

	"outcomelab/domain/core"
)

// ColumnKind distinguishes how a column's cells are stored and modeled
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// Column describes one named, typed column of a table
type Column struct {
	Key  core.ColumnKey `json:"key"`
	Kind ColumnKind     `json:"kind"`
}

// Table is a column-oriented table of observations. Numeric cells use NaN for
// missing values; categorical cells use the empty string. Column order is the
// order columns were added and is preserved by every accessor.
type Table struct {
	columns []Column
	numeric map[core.ColumnKey][]float64
	labels  map[core.ColumnKey][]string
	rows    int
}

// New creates an empty table with a fixed row count
func New(rows int) *Table {
	return &Table{
		numeric: make(map[core.ColumnKey][]float64),
		labels:  make(map[core.ColumnKey][]string),
		rows:    rows,
	}
}

// AddNumeric appends a numeric column. The value slice is not copied.
func (t *Table) AddNumeric(key core.ColumnKey, values []float64) error {
	if err := t.checkNewColumn(key, len(values)); err != nil {
		return err
	}
	t.columns = append(t.columns, Column{Key: key, Kind: KindNumeric})
	t.numeric[key] = values
	return nil
}

// AddCategorical appends a categorical column. The value slice is not copied.
func (t *Table) AddCategorical(key core.ColumnKey, values []string) error {
	if err := t.checkNewColumn(key, len(values)); err != nil {
		return err
	}
	t.columns = append(t.columns, Column{Key: key, Kind: KindCategorical})
	t.labels[key] = values
	return nil
}

func (t *Table) checkNewColumn(key core.ColumnKey, n int) error {
	if key == "" {
		return fmt.Errorf("table: column key cannot be empty")
	}
	if t.HasColumn(key) {
		return fmt.Errorf("table: duplicate column %q", key)
	}
	if n != t.rows {
		return fmt.Errorf("table: column %q has %d values, table has %d rows", key, n, t.rows)
	}
	return nil
}

// Rows returns the observation count
func (t *Table) Rows() int {
	return t.rows
}

// Columns returns the ordered column descriptors
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column descriptor by key
func (t *Table) Column(key core.ColumnKey) (Column, bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether a column exists
func (t *Table) HasColumn(key core.ColumnKey) bool {
	_, ok := t.Column(key)
	return ok
}

// Numeric returns the backing values of a numeric column
func (t *Table) Numeric(key core.ColumnKey) ([]float64, bool) {
	v, ok := t.numeric[key]
	return v, ok
}

// Labels returns the backing values of a categorical column
func (t *Table) Labels(key core.ColumnKey) ([]string, bool) {
	v, ok := t.labels[key]
	return v, ok
}

// IsMissing reports whether the cell at (key, row) holds no value
func (t *Table) IsMissing(key core.ColumnKey, row int) bool {
	if v, ok := t.numeric[key]; ok {
		return math.IsNaN(v[row])
	}
	if v, ok := t.labels[key]; ok {
		return v[row] == ""
	}
	return true
}

// MissingCount counts missing cells in a column
func (t *Table) MissingCount(key core.ColumnKey) int {
	n := 0
	for row := 0; row < t.rows; row++ {
		if t.IsMissing(key, row) {
			n++
		}
	}
	return n
}

// CompleteCases returns the row indices with no missing value among the given
// columns, in ascending order.
func (t *Table) CompleteCases(keys ...core.ColumnKey) []int {
	rows := make([]int, 0, t.rows)
	for row := 0; row < t.rows; row++ {
		ok := true
		for _, key := range keys {
			if t.IsMissing(key, row) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// PredictorKeys returns every column key except the outcome, in column order
func (t *Table) PredictorKeys(outcome core.ColumnKey) []core.ColumnKey {
	keys := make([]core.ColumnKey, 0, len(t.columns))
	for _, c := range t.columns {
		if c.Key != outcome {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Levels returns the sorted distinct non-missing labels of a categorical column
func (t *Table) Levels(key core.ColumnKey) []string {
	values, ok := t.labels[key]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var levels []string
	for _, v := range values {
		if v != "" && !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	sort.Strings(levels)
	return levels
}

// SelectRows builds a new table containing only the given rows, preserving
// column order and kinds.
func (t *Table) SelectRows(rows []int) *Table {
	out := New(len(rows))
	for _, c := range t.columns {
		switch c.Kind {
		case KindNumeric:
			src := t.numeric[c.Key]
			vals := make([]float64, len(rows))
			for i, row := range rows {
				vals[i] = src[row]
			}
			out.columns = append(out.columns, c)
			out.numeric[c.Key] = vals
		case KindCategorical:
			src := t.labels[c.Key]
			vals := make([]string, len(rows))
			for i, row := range rows {
				vals[i] = src[row]
			}
			out.columns = append(out.columns, c)
			out.labels[c.Key] = vals
		}
	}
	return out
}

// BinaryValues encodes a two-valued column as 0/1 per row (NaN where missing)
// and returns the level pair as [negative, positive]. Categorical columns must
// have exactly two levels; numeric columns must contain only 0 and 1.
func (t *Table) BinaryValues(key core.ColumnKey) ([]float64, [2]string, error) {
	var levels [2]string

	if values, ok := t.labels[key]; ok {
		distinct := t.Levels(key)
		if len(distinct) != 2 {
			return nil, levels, fmt.Errorf("table: column %q has %d levels, binary outcome needs exactly 2", key, len(distinct))
		}
		levels[0], levels[1] = distinct[0], distinct[1]
		out := make([]float64, len(values))
		for i, v := range values {
			switch v {
			case "":
				out[i] = math.NaN()
			case distinct[1]:
				out[i] = 1
			default:
				out[i] = 0
			}
		}
		return out, levels, nil
	}

	if values, ok := t.numeric[key]; ok {
		levels[0], levels[1] = "0", "1"
		out := make([]float64, len(values))
		for i, v := range values {
			if math.IsNaN(v) {
				out[i] = math.NaN()
				continue
			}
			if v != 0 && v != 1 {
				return nil, levels, fmt.Errorf("table: column %q has non-binary value %v at row %d", key, v, i)
			}
			out[i] = v
		}
		return out, levels, nil
	}

	return nil, levels, fmt.Errorf("table: column %q not found", key)
}
