package driven

import (
	"context"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

// RunStore persists analysis runs and their lineage.
type RunStore interface {
	// SaveRun stores or replaces a run.
	SaveRun(ctx context.Context, run *domain.AnalysisRun) error

	// GetRun retrieves a run by id. Returns domain.ErrNotFound if missing.
	GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error)

	// ListRuns returns all runs, newest first, without hypotheses.
	ListRuns(ctx context.Context) ([]domain.AnalysisRun, error)

	// GetLineage returns the lineage of one pathway of a run.
	// Returns domain.ErrNotFound if the run or pathway is missing.
	GetLineage(ctx context.Context, runID, pathwayID string) (*domain.Lineage, error)
}
