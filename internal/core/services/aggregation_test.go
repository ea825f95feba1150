package services

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

func aggregationFixture() ([]domain.PrimaryPathway, []domain.SecondaryPathwayInstance) {
	primaries := []domain.PrimaryPathway{
		primary(domain.DatabaseKEGG, "P1", 0.001),
		primary(domain.DatabaseKEGG, "P2", 0.01),
		primary(domain.DatabaseReactome, "P3", 0.04),
	}
	instances := []domain.SecondaryPathwayInstance{
		instance(domain.DatabaseKEGG, "S1", "Shared twice", "KEGG:P1", "A", "B"),
		instance(domain.DatabaseKEGG, "S1", "Shared twice", "KEGG:P2", "B", "C"),
		instance(domain.DatabaseKEGG, "S2", "Single", "KEGG:P1", "A"),
		instance(domain.DatabaseGOBP, "0001", "Everywhere", "KEGG:P1", "A"),
		instance(domain.DatabaseGOBP, "0001", "Everywhere", "KEGG:P2", "C"),
		instance(domain.DatabaseGOBP, "0001", "Everywhere", "REACTOME:P3", "D"),
	}
	return primaries, instances
}

func mustStrategy(t *testing.T, cfg domain.AnalysisConfig) AggregationStrategy {
	t.Helper()
	s, err := NewAggregationStrategy(cfg)
	require.NoError(t, err)
	return s
}

func assertLineage(t *testing.T, res domain.AggregationResult, primaries []domain.PrimaryPathway) {
	t.Helper()
	ids := make(map[string]bool)
	for _, p := range primaries {
		ids[p.ID()] = true
	}
	for _, p := range res.Pathways {
		require.NotEmpty(t, p.Sources, p.CanonicalID)
		for _, inst := range p.Sources {
			assert.True(t, ids[inst.SourcePrimary], "%s -> %s", p.CanonicalID, inst.SourcePrimary)
			assert.Equal(t, p.CanonicalID, inst.ID())
		}
	}
}

func TestAggregator_Intersection(t *testing.T) {
	primaries, instances := aggregationFixture()
	cfg := domain.DefaultAnalysisConfig()
	cfg.MinSupportThreshold = 2

	res, err := NewAggregator(mustStrategy(t, cfg)).Aggregate(instances, primaries)

	require.NoError(t, err)
	assertLineage(t, res, primaries)
	assert.Equal(t, domain.StrategyIntersection, res.Strategy)
	assert.Equal(t, 6, res.TotalInstances)
	assert.Equal(t, 3, res.Groups)
	require.Len(t, res.Pathways, 2)

	assert.Equal(t, "GO:0000001", res.Pathways[0].CanonicalID)
	assert.Equal(t, 3, res.Pathways[0].Support)
	assert.Equal(t, 3.0, res.Pathways[0].Score)

	// Backed by exactly two primaries: retained.
	assert.Equal(t, "KEGG:S1", res.Pathways[1].CanonicalID)
	assert.Equal(t, 2, res.Pathways[1].Support)
	assert.Equal(t, []string{"A", "B", "C"}, res.Pathways[1].EvidenceGenes())
	assert.Equal(t, []string{"KEGG:P1", "KEGG:P2"}, res.Pathways[1].PrimaryIDs())
}

func TestAggregator_IntersectionDropsSingleSupport(t *testing.T) {
	primaries, instances := aggregationFixture()
	cfg := domain.DefaultAnalysisConfig()
	cfg.MinSupportThreshold = 2

	res, err := NewAggregator(mustStrategy(t, cfg)).Aggregate(instances, primaries)
	require.NoError(t, err)

	for _, p := range res.Pathways {
		assert.NotEqual(t, "KEGG:S2", p.CanonicalID)
	}
}

func TestAggregator_Frequency(t *testing.T) {
	primaries, instances := aggregationFixture()
	cfg := domain.DefaultAnalysisConfig()
	cfg.Strategy = domain.StrategyFrequency
	cfg.FrequencyThreshold = 0.3

	res, err := NewAggregator(mustStrategy(t, cfg)).Aggregate(instances, primaries)

	require.NoError(t, err)
	assertLineage(t, res, primaries)
	assert.Equal(t, domain.StrategyFrequency, res.Strategy)
	require.Len(t, res.Pathways, 2)
	assert.InDelta(t, 0.5, res.Pathways[0].Score, 1e-12)
	assert.InDelta(t, 1.0/3, res.Pathways[1].Score, 1e-12)
}

func TestAggregator_Weighted(t *testing.T) {
	primaries, instances := aggregationFixture()
	cfg := domain.DefaultAnalysisConfig()
	cfg.Strategy = domain.StrategyWeighted
	cfg.WeightedTopN = 2

	res, err := NewAggregator(mustStrategy(t, cfg)).Aggregate(instances, primaries)

	require.NoError(t, err)
	assertLineage(t, res, primaries)
	require.Len(t, res.Pathways, 2)

	// KEGG:S1 = 1.0*3 + 1.0*2; GO:0000001 = 0.8*(3+2+log10(25)).
	assert.Equal(t, "GO:0000001", res.Pathways[0].CanonicalID)
	assert.Equal(t, "KEGG:S1", res.Pathways[1].CanonicalID)
	assert.InDelta(t, 5.0, res.Pathways[1].Score, 1e-9)
}

func TestAggregator_WeightedOrderIndependent(t *testing.T) {
	primaries, instances := aggregationFixture()
	cfg := domain.DefaultAnalysisConfig()
	cfg.Strategy = domain.StrategyWeighted

	agg := NewAggregator(mustStrategy(t, cfg))
	want, err := agg.Aggregate(instances, primaries)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.SecondaryPathwayInstance(nil), instances...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := agg.Aggregate(shuffled, primaries)
		require.NoError(t, err)
		require.Len(t, got.Pathways, len(want.Pathways))
		for j := range want.Pathways {
			assert.Equal(t, want.Pathways[j].CanonicalID, got.Pathways[j].CanonicalID)
			assert.Equal(t, want.Pathways[j].Score, got.Pathways[j].Score)
		}
	}
}

func TestAggregator_EmptyInputFallback(t *testing.T) {
	cfg := domain.DefaultAnalysisConfig()
	res, err := NewAggregator(mustStrategy(t, cfg)).Aggregate(nil, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.StrategyFallbackEmpty, res.Strategy)
	assert.True(t, res.IsEmpty())
	assert.NotNil(t, res.Pathways)
}

func TestAggregator_NothingRetainedFallback(t *testing.T) {
	primaries, instances := aggregationFixture()
	cfg := domain.DefaultAnalysisConfig()
	cfg.MinSupportThreshold = 10

	res, err := NewAggregator(mustStrategy(t, cfg)).Aggregate(instances, primaries)

	require.NoError(t, err)
	assert.Equal(t, domain.StrategyFallbackEmpty, res.Strategy)
	assert.Equal(t, 3, res.Groups)
}

func TestAggregator_BrokenLineage(t *testing.T) {
	primaries, instances := aggregationFixture()
	instances = append(instances, instance(domain.DatabaseKEGG, "S9", "Orphan", "KEGG:MISSING", "A"))

	_, err := NewAggregator(mustStrategy(t, domain.DefaultAnalysisConfig())).Aggregate(instances, primaries)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLineageInvariant))
	var lerr *domain.LineageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "KEGG:MISSING", lerr.PrimaryID)
}

func TestNewAggregationStrategy_Unknown(t *testing.T) {
	cfg := domain.DefaultAnalysisConfig()
	cfg.Strategy = "majority"

	_, err := NewAggregationStrategy(cfg)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
