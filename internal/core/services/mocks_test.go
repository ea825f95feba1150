package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

// --- Mock implementations ---

var errFlaky = errors.New("connection reset")

// mockNeighborSource implements driven.NeighborSource for testing.
type mockNeighborSource struct {
	mu        sync.Mutex
	neighbors map[string][]domain.NeighborGene
	// failures is the number of leading calls per gene that fail.
	failures map[string]int
	calls    map[string]int
	// delays staggers completion per gene.
	delays map[string]time.Duration
}

func newMockNeighborSource(neighbors map[string][]domain.NeighborGene) *mockNeighborSource {
	return &mockNeighborSource{
		neighbors: neighbors,
		failures:  make(map[string]int),
		calls:     make(map[string]int),
		delays:    make(map[string]time.Duration),
	}
}

func (m *mockNeighborSource) Name() string { return "mock-network" }

func (m *mockNeighborSource) GetNeighbors(ctx context.Context, gene string, k int) ([]domain.NeighborGene, error) {
	m.mu.Lock()
	m.calls[gene]++
	call := m.calls[gene]
	fail := call <= m.failures[gene]
	delay := m.delays[gene]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errFlaky
	}
	out := m.neighbors[gene]
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *mockNeighborSource) callCount(gene string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[gene]
}

// mockMembershipSource implements driven.PathwayMembershipSource for testing.
type mockMembershipSource struct {
	pathways map[domain.DatabaseKind][]domain.PathwayRecord
	errs     map[domain.DatabaseKind]error
}

func (m *mockMembershipSource) Name() string { return "mock-pathways" }

func (m *mockMembershipSource) GetPathways(
	_ context.Context, genes []string, database domain.DatabaseKind,
) ([]domain.PathwayRecord, error) {
	if err := m.errs[database]; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(genes))
	for _, g := range genes {
		set[g] = struct{}{}
	}
	var out []domain.PathwayRecord
	for _, p := range m.pathways[database] {
		if len(domain.Intersect(p.Members, set)) > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// mockDiscoverer implements driven.PathwayDiscoverer for testing.
type mockDiscoverer struct {
	results map[string][]domain.SecondaryPathwayInstance
	errs    map[string]error
}

func (m *mockDiscoverer) Name() string { return "mock-discovery" }

func (m *mockDiscoverer) Discover(
	_ context.Context, primary domain.PrimaryPathway,
) ([]domain.SecondaryPathwayInstance, error) {
	if err := m.errs[primary.ID()]; err != nil {
		return nil, err
	}
	return m.results[primary.ID()], nil
}

// mockLiterature implements driven.LiteratureSource for testing.
type mockLiterature struct {
	counts map[string]int
	err    error
}

func (m *mockLiterature) Name() string { return "mock-literature" }

func (m *mockLiterature) Search(_ context.Context, query string) ([]domain.Citation, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Citation, m.counts[query])
	for i := range out {
		out[i] = domain.Citation{ID: query, Relevance: 1}
	}
	return out, nil
}

// mockReference implements driven.DiseaseGeneReference for testing.
type mockReference map[string]float64

func (m mockReference) Lookup(gene string) (float64, bool) {
	s, ok := m[gene]
	return s, ok
}

// mockRegistry implements driven.GeneRegistry for testing.
type mockRegistry map[string]bool

func (m mockRegistry) Known(gene string) bool { return m[gene] }

// mockRunStore implements driven.RunStore for testing.
type mockRunStore struct {
	mu    sync.Mutex
	saved []*domain.AnalysisRun
}

func (m *mockRunStore) SaveRun(_ context.Context, run *domain.AnalysisRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, run)
	return nil
}

func (m *mockRunStore) GetRun(_ context.Context, id string) (*domain.AnalysisRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRunStore) ListRuns(_ context.Context) ([]domain.AnalysisRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AnalysisRun, 0, len(m.saved))
	for _, r := range m.saved {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRunStore) GetLineage(ctx context.Context, runID, pathwayID string) (*domain.Lineage, error) {
	run, err := m.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return run.Lineage(pathwayID)
}

// mockObserver implements driven.CallObserver for testing.
type mockObserver struct {
	mu     sync.Mutex
	calls  []observedCall
	stages []domain.Stage
}

type observedCall struct {
	source   string
	attempts int
	failed   bool
}

func (m *mockObserver) ObserveCall(source string, attempts int, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, observedCall{source: source, attempts: attempts, failed: err != nil})
}

func (m *mockObserver) ObserveStage(stage domain.Stage, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

// --- Helpers ---

// testPolicy retries without sleeping.
func testPolicy(attempts int) retryPolicy {
	return retryPolicy{
		attempts: attempts,
		initial:  time.Millisecond,
		factor:   2,
		timeout:  time.Second,
		sleep:    func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
	}
}

func pathway(db domain.DatabaseKind, id, name string, members ...string) domain.PathwayRecord {
	return domain.NormalizePathway(db, id, name, "", members)
}

func primary(db domain.DatabaseKind, id string, padj float64) domain.PrimaryPathway {
	return domain.PrimaryPathway{Pathway: pathway(db, id, id), PAdj: padj, PValue: padj}
}

func instance(db domain.DatabaseKind, id, name, sourcePrimary string, genes ...string) domain.SecondaryPathwayInstance {
	return domain.SecondaryPathwayInstance{
		Pathway:       pathway(db, id, name, genes...),
		EvidenceGenes: genes,
		SourcePrimary: sourcePrimary,
		Via:           "membership",
	}
}
