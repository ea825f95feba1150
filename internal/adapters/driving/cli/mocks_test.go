package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driving"
)

type mockAnalysisService struct {
	lastRequest driving.AnalysisRequest
	analyzeErr  error
	runs        []domain.AnalysisRun
}

func (m *mockAnalysisService) Analyze(_ context.Context, req driving.AnalysisRequest) (*driving.AnalysisResult, error) {
	m.lastRequest = req
	run := sampleRun()
	if m.analyzeErr != nil {
		run.Status = domain.RunStatusFailed
		run.Hypotheses = nil
		run.LastStage = domain.StageEnrichment
	}
	return &driving.AnalysisResult{Run: run, Hypotheses: run.Hypotheses}, m.analyzeErr
}

func (m *mockAnalysisService) GetRun(_ context.Context, runID string) (*domain.AnalysisRun, error) {
	for i := range m.runs {
		if m.runs[i].ID == runID {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockAnalysisService) ListRuns(_ context.Context) ([]domain.AnalysisRun, error) {
	return m.runs, nil
}

func (m *mockAnalysisService) Lineage(ctx context.Context, runID, pathwayID string) (*domain.Lineage, error) {
	run, err := m.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return run.Lineage(pathwayID)
}

func sampleRun() *domain.AnalysisRun {
	hippo := domain.NormalizePathway(domain.DatabaseKEGG, "hsa04390", "Hippo signaling pathway", "", []string{"YAP1", "TEAD1", "LATS1"})
	primary := domain.PrimaryPathway{Pathway: hippo, EvidenceGenes: []string{"YAP1", "TEAD1"}, PAdj: 0.001}
	secondary := domain.SecondaryPathwayInstance{
		Pathway:       domain.NormalizePathway(domain.DatabaseReactome, "R-HSA-2028269", "Signaling by Hippo", "", []string{"YAP1", "LATS2"}),
		EvidenceGenes: []string{"YAP1"},
		SourcePrimary: primary.ID(),
		Via:           "membership",
	}
	agg := domain.AggregatedPathway{
		CanonicalID: secondary.Pathway.CanonicalID(),
		Name:        "Signaling by Hippo",
		Database:    domain.DatabaseReactome,
		Sources:     []domain.SecondaryPathwayInstance{secondary},
		Support:     1,
		Score:       1,
		Strategy:    domain.StrategyIntersection,
	}

	return &domain.AnalysisRun{
		ID:        "run-1",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		Status:    domain.RunStatusCompleted,
		LastStage: domain.StageComplete,
		Seeds:     []domain.SeedGene{{Symbol: "YAP1", Valid: true}, {Symbol: "XYZ!", Reason: "malformed symbol"}},
		Strategy:  domain.StrategyIntersection,
		Hypotheses: []domain.ScoredHypothesis{{
			Pathway:       agg,
			NES:           0.812,
			Rank:          1,
			PAdj:          0.001,
			EvidenceGenes: []string{"YAP1"},
			SeedGenes:     []string{"YAP1"},
			CitationCount: 4,
		}},
		Lineages: []domain.Lineage{{
			PathwayID:          agg.CanonicalID,
			SeedGenes:          []string{"YAP1"},
			PrimaryPathways:    []domain.PrimaryPathway{primary},
			SecondaryInstances: []domain.SecondaryPathwayInstance{secondary},
			AggregatedPathway:  agg,
		}},
		Diagnostics: []domain.Diagnostic{{
			Stage:   domain.StageScoring,
			Kind:    domain.DiagnosticUnavailable,
			Item:    agg.CanonicalID,
			Message: "literature unavailable",
		}},
	}
}

type mockMetrics struct {
	addr chan string
}

func (m *mockMetrics) Serve(ctx context.Context, addr string) error {
	m.addr <- addr
	<-ctx.Done()
	return nil
}

// setupTestServices installs a mock service and returns a cleanup func.
func setupTestServices() (*mockAnalysisService, func()) {
	oldBootstrap, oldServices := bootstrap, services
	svc := &mockAnalysisService{runs: []domain.AnalysisRun{*sampleRun()}}
	bootstrap = func(context.Context, string) (*Services, error) {
		return &Services{
			Analysis:     svc,
			Config:       domain.DefaultAnalysisConfig(),
			RenderConfig: func() ([]byte, error) { return []byte("[analysis]\nfdr_threshold = 0.05\n"), nil },
		}, nil
	}
	services = nil

	return svc, func() {
		bootstrap, services = oldBootstrap, oldServices
		rootCmd.SetArgs(nil)
	}
}

var errBoom = errors.New("boom")
