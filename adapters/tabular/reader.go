package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"outcomelab/domain/core"
	"outcomelab/domain/table"
)

// Reader loads Excel and CSV files into a typed table. The first row is the
// header; cell strings are trimmed and classified per column as numeric or
// categorical.
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// missingTokens are cell values treated as absent
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"null": true,
}

// NewReader creates a reader for an .xlsx or .csv file
func NewReader(filePath string) *Reader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// Read implements ports.TableReader
func (r *Reader) Read() (*table.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("data file not found: %s", r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSV()
	case "xlsx":
		rows, err = r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have a header row and at least one data row", r.fileType)
	}

	return buildTable(rows)
}

func (r *Reader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *Reader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// buildTable trims cells, infers each column's kind, and assembles the table
func buildTable(rows [][]string) (*table.Table, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == "" {
			return nil, fmt.Errorf("column %d has an empty header", i)
		}
	}

	nRows := len(rows) - 1
	tbl := table.New(nRows)

	for colIdx, header := range headers {
		cells := make([]string, nRows)
		for i := 1; i < len(rows); i++ {
			if colIdx < len(rows[i]) {
				cells[i-1] = strings.TrimSpace(rows[i][colIdx])
			}
		}

		key := core.ColumnKey(header)
		if inferNumeric(cells) {
			values := make([]float64, nRows)
			for i, cell := range cells {
				if missingTokens[cell] {
					values[i] = math.NaN()
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					// Stray non-numeric cell in a numeric column
					values[i] = math.NaN()
					continue
				}
				values[i] = v
			}
			if err := tbl.AddNumeric(key, values); err != nil {
				return nil, err
			}
			continue
		}

		values := make([]string, nRows)
		for i, cell := range cells {
			if !missingTokens[cell] {
				values[i] = cell
			}
		}
		if err := tbl.AddCategorical(key, values); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

// inferNumeric classifies a column as numeric when nearly all present cells
// parse as floats and the values are not a small set of integer codes (those
// read better as categories).
func inferNumeric(cells []string) bool {
	present := 0
	numeric := 0
	integers := 0
	unique := make(map[string]bool)

	for _, cell := range cells {
		if missingTokens[cell] {
			continue
		}
		present++
		unique[cell] = true
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			numeric++
			if v == math.Trunc(v) {
				integers++
			}
		}
	}
	if present == 0 {
		return false
	}
	if float64(numeric)/float64(present) < 0.9 {
		return false
	}
	// Low-cardinality integer codes behave like labels.
	if integers == numeric && len(unique) <= 5 && float64(len(unique))/float64(present) < 0.1 {
		return false
	}
	return true
}
