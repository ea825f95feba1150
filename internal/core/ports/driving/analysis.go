package driving

import (
	"context"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

// AnalysisService runs pathway discovery and serves past results.
type AnalysisService interface {
	// Analyze runs the full pipeline for the given seed genes.
	// On cancellation or a fatal error the partial result is still returned
	// alongside the error, with LastStage set to the last completed stage.
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)

	// GetRun returns a persisted run.
	GetRun(ctx context.Context, runID string) (*domain.AnalysisRun, error)

	// ListRuns returns persisted runs, newest first.
	ListRuns(ctx context.Context) ([]domain.AnalysisRun, error)

	// Lineage returns the lineage of one pathway of a persisted run.
	Lineage(ctx context.Context, runID, pathwayID string) (*domain.Lineage, error)
}

// AnalysisRequest describes one analysis.
type AnalysisRequest struct {
	// Seeds are the raw seed gene identifiers.
	Seeds []string

	// Config overrides the service configuration when non-nil.
	Config *domain.AnalysisConfig
}

// AnalysisResult holds every stage output of a run. Fields of stages that
// did not complete are left empty.
type AnalysisResult struct {
	Run *domain.AnalysisRun

	Seeds        []domain.SeedGene
	Neighborhood *domain.Neighborhood
	Primaries    []domain.PrimaryPathway
	Secondaries  []domain.SecondaryPathwayInstance
	Aggregation  domain.AggregationResult
	Filtered     []domain.ScoredHypothesis
	Hypotheses   []domain.ScoredHypothesis
}

// Records returns the ranked output rows.
func (r *AnalysisResult) Records() []domain.HypothesisRecord {
	out := make([]domain.HypothesisRecord, 0, len(r.Hypotheses))
	for i := range r.Hypotheses {
		out = append(out, r.Hypotheses[i].Record())
	}
	return out
}

// Lineage returns the lineage of a ranked pathway by canonical id.
func (r *AnalysisResult) Lineage(pathwayID string) (*domain.Lineage, error) {
	if r.Run == nil {
		return nil, domain.ErrNotFound
	}
	return r.Run.Lineage(pathwayID)
}
