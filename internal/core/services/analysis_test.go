package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driving"
)

type analysisFixture struct {
	neighbors  *mockNeighborSource
	membership *mockMembershipSource
	discoverer *mockDiscoverer
	store      *mockRunStore
	observer   *mockObserver
	cfg        domain.AnalysisConfig
}

func newAnalysisFixture() *analysisFixture {
	neighbors := newMockNeighborSource(map[string][]domain.NeighborGene{
		"TP53": {nb("G1", 0.9), nb("G2", 0.9), nb("G3", 0.8), nb("G4", 0.8), nb("G5", 0.7), nb("G6", 0.7)},
		"YAP1": {nb("G7", 0.9), nb("G8", 0.9), nb("G9", 0.8), nb("G10", 0.8), nb("G11", 0.7), nb("G12", 0.7)},
	})
	membership := &mockMembershipSource{pathways: map[domain.DatabaseKind][]domain.PathwayRecord{
		domain.DatabaseKEGG: {
			pathway(domain.DatabaseKEGG, "P1", "p53 signaling", members("F", 4, "TP53", "G1", "G2", "G3", "G4", "G5")...),
			pathway(domain.DatabaseKEGG, "P2", "Hippo signaling", members("H", 4, "YAP1", "G7", "G8", "G9", "G10", "G11")...),
		},
	}}
	discoverer := &mockDiscoverer{results: map[string][]domain.SecondaryPathwayInstance{
		"KEGG:P1": {
			instance(domain.DatabaseKEGG, "REGEN", "Heart regeneration and repair", "", "TP53", "G1"),
			instance(domain.DatabaseKEGG, "OLF", "Olfactory transduction", "", "G2"),
		},
		"KEGG:P2": {
			instance(domain.DatabaseKEGG, "REGEN", "Heart regeneration and repair", "", "YAP1", "G7"),
			instance(domain.DatabaseKEGG, "WOUND", "Wound healing", "", "G8"),
		},
	}}

	cfg := domain.DefaultAnalysisConfig()
	cfg.Databases = []domain.DatabaseKind{domain.DatabaseKEGG}
	cfg.RetryInitialDelay = time.Millisecond

	return &analysisFixture{
		neighbors:  neighbors,
		membership: membership,
		discoverer: discoverer,
		store:      &mockRunStore{},
		observer:   &mockObserver{},
		cfg:        cfg,
	}
}

func (f *analysisFixture) service() *AnalysisService {
	s := NewAnalysisService(f.cfg, f.neighbors, f.membership, f.discoverer, mockReference{"TP53": 0.8, "G1": 0.4})
	s.SetLiteratureSource(&mockLiterature{counts: map[string]int{"Heart regeneration and repair heart regeneration": 3}})
	s.SetGeneRegistry(mockRegistry{"TP53": true, "YAP1": true})
	s.SetRunStore(f.store)
	s.SetObserver(f.observer)
	return s
}

func TestAnalysisService_FullRun(t *testing.T) {
	f := newAnalysisFixture()
	s := f.service()

	res, err := s.Analyze(context.Background(), driving.AnalysisRequest{
		Seeds: []string{"tp53", "YAP1", "TP53", "not a gene!", "MYSTERY1"},
	})

	require.NoError(t, err)
	run := res.Run
	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, domain.StageComplete, run.LastStage)
	assert.Equal(t, domain.StrategyIntersection, run.Strategy)
	assert.NotEmpty(t, run.ID)

	require.Len(t, res.Seeds, 4)
	var invalid int
	for _, d := range run.Diagnostics {
		if d.Kind == domain.DiagnosticValidation {
			invalid++
		}
	}
	assert.Equal(t, 2, invalid)

	assert.Equal(t, 14, res.Neighborhood.Size())
	require.Len(t, res.Primaries, 2)
	assert.Len(t, res.Secondaries, 4)

	records := res.Records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 1, rec.Rank)
	assert.Equal(t, "KEGG:REGEN", rec.PathwayID)
	assert.Equal(t, "Heart regeneration and repair", rec.PathwayName)
	assert.Equal(t, 4, rec.EvidenceCount)
	assert.Equal(t, []string{"TP53", "YAP1"}, rec.SeedGenes)
	assert.True(t, rec.LiteratureSupport)
	assert.Equal(t, 3, rec.CitationCount)
	assert.Equal(t, 2, rec.KeyNodeCount)
	assert.Greater(t, rec.NESScore, 0.0)

	lin, err := res.Lineage("KEGG:REGEN")
	require.NoError(t, err)
	assert.Equal(t, []string{"TP53", "YAP1"}, lin.SeedGenes)
	require.Len(t, lin.PrimaryPathways, 2)
	assert.Equal(t, "KEGG:P1", lin.PrimaryPathways[0].ID())
	require.Len(t, lin.SecondaryInstances, 2)
	assert.Equal(t, "KEGG:P1", lin.SecondaryInstances[0].SourcePrimary)
	assert.Equal(t, "KEGG:P2", lin.SecondaryInstances[1].SourcePrimary)

	stored, err := s.Lineage(context.Background(), run.ID, "KEGG:REGEN")
	require.NoError(t, err)
	assert.Equal(t, lin.PathwayID, stored.PathwayID)

	_, err = s.Lineage(context.Background(), run.ID, "KEGG:OLF")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []domain.Stage{
		domain.StageValidation, domain.StageNeighborhood, domain.StageEnrichment, domain.StageDiscovery,
		domain.StageAggregation, domain.StageRelevance, domain.StageScoring,
	}, f.observer.stages)
}

func TestAnalysisService_Deterministic(t *testing.T) {
	f := newAnalysisFixture()
	seeds := []string{"TP53", "YAP1"}

	first, err := f.service().Analyze(context.Background(), driving.AnalysisRequest{Seeds: seeds})
	require.NoError(t, err)

	f.neighbors.delays["TP53"] = 10 * time.Millisecond
	second, err := f.service().Analyze(context.Background(), driving.AnalysisRequest{Seeds: []string{"YAP1", "TP53"}})
	require.NoError(t, err)

	assert.Equal(t, first.Records(), second.Records())
	assert.Equal(t, first.Neighborhood.Genes, second.Neighborhood.Genes)
}

func TestAnalysisService_ZeroPrimaries(t *testing.T) {
	f := newAnalysisFixture()
	f.membership.pathways = nil

	res, err := f.service().Analyze(context.Background(), driving.AnalysisRequest{Seeds: []string{"TP53"}})

	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, res.Run.Status)
	assert.Equal(t, domain.StrategyFallbackEmpty, res.Run.Strategy)
	assert.Equal(t, domain.StrategyFallbackEmpty, res.Aggregation.Strategy)
	assert.Empty(t, res.Hypotheses)
	assert.Empty(t, res.Records())

	var degenerate bool
	for _, d := range res.Run.Diagnostics {
		degenerate = degenerate || d.Kind == domain.DiagnosticDegenerate
	}
	assert.True(t, degenerate)
}

func TestAnalysisService_InvalidConfigFailsBeforeStages(t *testing.T) {
	f := newAnalysisFixture()
	cfg := f.cfg
	cfg.Strategy = "majority"
	cfg.FDRThreshold = 2

	res, err := f.service().Analyze(context.Background(), driving.AnalysisRequest{Seeds: []string{"TP53"}, Config: &cfg})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Zero(t, f.neighbors.callCount("TP53"))
	assert.Empty(t, f.store.saved)
}

func TestAnalysisService_RetryRecovers(t *testing.T) {
	f := newAnalysisFixture()
	f.neighbors.failures["TP53"] = 2

	res, err := f.service().Analyze(context.Background(), driving.AnalysisRequest{Seeds: []string{"TP53", "YAP1"}})

	require.NoError(t, err)
	for _, d := range res.Run.Diagnostics {
		assert.NotEqual(t, domain.DiagnosticUnavailable, d.Kind)
	}
	assert.True(t, res.Neighborhood.Contains("G1"))
}

func TestAnalysisService_RetryExhaustedContinues(t *testing.T) {
	f := newAnalysisFixture()
	f.neighbors.failures["TP53"] = 3

	res, err := f.service().Analyze(context.Background(), driving.AnalysisRequest{Seeds: []string{"TP53", "YAP1"}})

	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, res.Run.Status)

	var unavailable []domain.Diagnostic
	for _, d := range res.Run.Diagnostics {
		if d.Kind == domain.DiagnosticUnavailable {
			unavailable = append(unavailable, d)
		}
	}
	require.Len(t, unavailable, 1)
	assert.Equal(t, "TP53", unavailable[0].Item)
	assert.False(t, res.Neighborhood.Contains("G1"))
}

type cancellingDiscoverer struct {
	cancel context.CancelFunc
}

func (c *cancellingDiscoverer) Name() string { return "cancelling" }

func (c *cancellingDiscoverer) Discover(context.Context, domain.PrimaryPathway) ([]domain.SecondaryPathwayInstance, error) {
	c.cancel()
	return nil, nil
}

func TestAnalysisService_CancelledBetweenStages(t *testing.T) {
	f := newAnalysisFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewAnalysisService(f.cfg, f.neighbors, f.membership, &cancellingDiscoverer{cancel: cancel}, nil)
	s.SetRunStore(f.store)

	res, err := s.Analyze(ctx, driving.AnalysisRequest{Seeds: []string{"TP53", "YAP1"}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, res)
	assert.Equal(t, domain.RunStatusCancelled, res.Run.Status)
	assert.Equal(t, domain.StageEnrichment, res.Run.LastStage)
	assert.Len(t, res.Primaries, 2)
	assert.Empty(t, res.Hypotheses)

	require.Len(t, f.store.saved, 1)
	assert.Equal(t, domain.RunStatusCancelled, f.store.saved[0].Status)
}

func TestAnalysisService_HistoryWithoutStore(t *testing.T) {
	s := NewAnalysisService(domain.DefaultAnalysisConfig(), nil, nil, nil, nil)

	_, err := s.ListRuns(context.Background())
	assert.ErrorIs(t, err, errNoRunStore)
	_, err = s.GetRun(context.Background(), "x")
	assert.ErrorIs(t, err, errNoRunStore)
}

func TestBuildLineages_MissingPrimary(t *testing.T) {
	h := domain.ScoredHypothesis{Pathway: domain.AggregatedPathway{
		CanonicalID: "KEGG:X",
		Sources:     []domain.SecondaryPathwayInstance{instance(domain.DatabaseKEGG, "X", "X", "KEGG:GONE")},
	}}

	_, err := buildLineages([]domain.ScoredHypothesis{h}, nil)

	assert.ErrorIs(t, err, domain.ErrLineageInvariant)
}
