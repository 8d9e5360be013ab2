package ports

import "outcomelab/domain/table"

// TableReader loads a tabular dataset from some backing file or store
type TableReader interface {
	Read() (*table.Table, error)
}
