package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
// Runs are copied on the way in and out.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.AnalysisRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.AnalysisRun),
	}
}

// SaveRun stores or replaces a run.
func (s *RunStore) SaveRun(_ context.Context, run *domain.AnalysisRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = copyRun(run)
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyRun(&run)
	return &out, nil
}

// ListRuns returns all runs, newest first, without hypotheses or lineage.
func (s *RunStore) ListRuns(_ context.Context) ([]domain.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.AnalysisRun, 0, len(s.runs))
	for _, run := range s.runs {
		summary := copyRun(&run)
		summary.Hypotheses = nil
		summary.Lineages = nil
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// GetLineage returns the lineage of one pathway of a run.
func (s *RunStore) GetLineage(ctx context.Context, runID, pathwayID string) (*domain.Lineage, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return run.Lineage(pathwayID)
}

func copyRun(run *domain.AnalysisRun) domain.AnalysisRun {
	out := *run
	out.Seeds = append([]domain.SeedGene(nil), run.Seeds...)
	out.Hypotheses = append([]domain.ScoredHypothesis(nil), run.Hypotheses...)
	out.Lineages = append([]domain.Lineage(nil), run.Lineages...)
	out.Diagnostics = append([]domain.Diagnostic(nil), run.Diagnostics...)
	return out
}
