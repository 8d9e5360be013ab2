package ports

import (
	"context"

	"outcomelab/domain/run"
)

// RunArchive persists completed run summaries. The pipeline treats archival as
// optional: a nil archive disables it.
type RunArchive interface {
	Save(ctx context.Context, summary *run.Summary) error
}
