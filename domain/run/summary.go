package run

import (
	"time"

	"outcomelab/domain/core"
)

// Summary captures one complete analysis run for reporting and archival
type Summary struct {
	RunID      core.RunID     `json:"run_id" db:"run_id"`
	Dataset    string         `json:"dataset" db:"dataset"`
	Outcome    core.ColumnKey `json:"outcome" db:"outcome"`
	Rows       int            `json:"rows" db:"rows"`
	Columns    int            `json:"columns" db:"columns"`
	Seed       int64          `json:"seed" db:"seed"`
	StartedAt  time.Time      `json:"started_at" db:"started_at"`
	FinishedAt time.Time      `json:"finished_at" db:"finished_at"`

	// Stepwise selection outcome
	BaselineScore float64          `json:"baseline_score" db:"baseline_score"`
	FinalScore    float64          `json:"final_score" db:"final_score"`
	Selected      []core.ColumnKey `json:"selected" db:"-"`

	// Companion model metrics
	TreeAccuracy   float64 `json:"tree_accuracy" db:"tree_accuracy"`
	ForestAccuracy float64 `json:"forest_accuracy" db:"forest_accuracy"`
	LassoNonzero   int     `json:"lasso_nonzero" db:"lasso_nonzero"`
}

// NewSummary starts a summary for a run over the given dataset
func NewSummary(dataset string, outcome core.ColumnKey, seed int64) *Summary {
	return &Summary{
		RunID:     core.RunID(core.NewID()),
		Dataset:   dataset,
		Outcome:   outcome,
		Seed:      seed,
		StartedAt: time.Now(),
	}
}

// Duration returns the wall-clock runtime of the run
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
