package postgres

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"outcomelab/domain/run"
	"outcomelab/internal/errors"
	"outcomelab/ports"
)

// RunArchiveImpl implements RunArchive for PostgreSQL
type RunArchiveImpl struct {
	db *sqlx.DB
}

// NewRunArchive connects to PostgreSQL and ensures the archive table exists
func NewRunArchive(databaseURL string) (ports.RunArchive, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to run archive database")
	}
	archive := &RunArchiveImpl{db: db}
	if err := archive.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return archive, nil
}

func (r *RunArchiveImpl) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id          TEXT PRIMARY KEY,
			dataset         TEXT NOT NULL,
			outcome         TEXT NOT NULL,
			rows            INT NOT NULL,
			columns         INT NOT NULL,
			seed            BIGINT NOT NULL,
			started_at      TIMESTAMPTZ NOT NULL,
			finished_at     TIMESTAMPTZ NOT NULL,
			baseline_score  DOUBLE PRECISION NOT NULL,
			final_score     DOUBLE PRECISION NOT NULL,
			selected        TEXT NOT NULL,
			tree_accuracy   DOUBLE PRECISION NOT NULL,
			forest_accuracy DOUBLE PRECISION NOT NULL,
			lasso_nonzero   INT NOT NULL
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create analysis_runs table")
	}
	return nil
}

// Save persists one completed run summary
func (r *RunArchiveImpl) Save(ctx context.Context, summary *run.Summary) error {
	selected := make([]string, len(summary.Selected))
	for i, key := range summary.Selected {
		selected[i] = key.String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			run_id, dataset, outcome, rows, columns, seed,
			started_at, finished_at, baseline_score, final_score,
			selected, tree_accuracy, forest_accuracy, lasso_nonzero
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		summary.RunID, summary.Dataset, summary.Outcome, summary.Rows, summary.Columns, summary.Seed,
		summary.StartedAt, summary.FinishedAt, summary.BaselineScore, summary.FinalScore,
		strings.Join(selected, ","), summary.TreeAccuracy, summary.ForestAccuracy, summary.LassoNonzero,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert run summary")
	}
	return nil
}

// Close releases the database connection
func (r *RunArchiveImpl) Close() error {
	return r.db.Close()
}
