package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/logger"
)

// AggregationStrategy decides which grouped pathways are retained and how
// they are scored. Implementations are the closed set returned by
// NewAggregationStrategy.
type AggregationStrategy interface {
	// Name returns the strategy label reported on results.
	Name() domain.AggregationStrategyName

	// Select scores every group and returns the retained pathways.
	Select(groups []domain.AggregatedPathway, actx aggregationContext) []domain.AggregatedPathway
}

// aggregationContext carries run-wide inputs shared by strategies.
type aggregationContext struct {
	totalInstances int
	primaries      map[string]domain.PrimaryPathway
}

// NewAggregationStrategy returns the strategy configured in cfg.
func NewAggregationStrategy(cfg domain.AnalysisConfig) (AggregationStrategy, error) {
	switch cfg.Strategy {
	case domain.StrategyIntersection:
		return intersectionStrategy{minSupport: cfg.MinSupportThreshold}, nil
	case domain.StrategyFrequency:
		return frequencyStrategy{threshold: cfg.FrequencyThreshold}, nil
	case domain.StrategyWeighted:
		return weightedStrategy{topN: cfg.WeightedTopN, trust: cfg.TrustWeight}, nil
	default:
		return nil, &domain.ConfigError{
			Field:  "aggregation_strategy",
			Reason: fmt.Sprintf("unknown strategy %q", cfg.Strategy),
		}
	}
}

// intersectionStrategy keeps pathways reached from enough distinct primaries.
type intersectionStrategy struct {
	minSupport int
}

func (intersectionStrategy) Name() domain.AggregationStrategyName { return domain.StrategyIntersection }

func (s intersectionStrategy) Select(groups []domain.AggregatedPathway, _ aggregationContext) []domain.AggregatedPathway {
	out := make([]domain.AggregatedPathway, 0, len(groups))
	for _, g := range groups {
		if g.Support >= s.minSupport {
			g.Score = float64(g.Support)
			out = append(out, g)
		}
	}
	return out
}

// frequencyStrategy keeps pathways whose share of all instances reaches the
// threshold.
type frequencyStrategy struct {
	threshold float64
}

func (frequencyStrategy) Name() domain.AggregationStrategyName { return domain.StrategyFrequency }

func (s frequencyStrategy) Select(groups []domain.AggregatedPathway, actx aggregationContext) []domain.AggregatedPathway {
	out := make([]domain.AggregatedPathway, 0, len(groups))
	if actx.totalInstances == 0 {
		return out
	}
	for _, g := range groups {
		freq := float64(len(g.Sources)) / float64(actx.totalInstances)
		if freq >= s.threshold {
			g.Score = freq
			out = append(out, g)
		}
	}
	return out
}

// weightedStrategy scores each instance by database trust times the
// significance of its primary and keeps the top N.
type weightedStrategy struct {
	topN  int
	trust func(domain.DatabaseKind) float64
}

func (weightedStrategy) Name() domain.AggregationStrategyName { return domain.StrategyWeighted }

func (s weightedStrategy) Select(groups []domain.AggregatedPathway, actx aggregationContext) []domain.AggregatedPathway {
	out := make([]domain.AggregatedPathway, 0, len(groups))
	for _, g := range groups {
		terms := make([]float64, 0, len(g.Sources))
		for _, inst := range g.Sources {
			primary := actx.primaries[inst.SourcePrimary]
			terms = append(terms, s.trust(inst.Pathway.Database)*significance(primary.PAdj))
		}
		g.Score = stableSum(terms)
		out = append(out, g)
	}
	sortAggregated(out)
	if s.topN > 0 && len(out) > s.topN {
		out = out[:s.topN]
	}
	return out
}

// Aggregator merges secondary instances into deduplicated pathways.
type Aggregator struct {
	strategy AggregationStrategy
}

// NewAggregator creates an aggregator using the given strategy.
func NewAggregator(strategy AggregationStrategy) *Aggregator {
	return &Aggregator{strategy: strategy}
}

// Aggregate groups instances by canonical id. Every group keeps its full
// instance list whatever the strategy. An empty input, or one from which
// the strategy retains nothing, yields the fallback_empty label.
// Returns a *domain.LineageError if an instance references a primary that
// is not in primaries.
func (a *Aggregator) Aggregate(
	instances []domain.SecondaryPathwayInstance, primaries []domain.PrimaryPathway,
) (domain.AggregationResult, error) {
	result := domain.AggregationResult{
		Strategy:       domain.StrategyFallbackEmpty,
		Pathways:       []domain.AggregatedPathway{},
		TotalInstances: len(instances),
	}
	if len(instances) == 0 {
		return result, nil
	}

	byID := make(map[string]domain.PrimaryPathway, len(primaries))
	for _, p := range primaries {
		byID[p.ID()] = p
	}

	index := make(map[string]int)
	var groups []domain.AggregatedPathway
	for _, inst := range instances {
		id := inst.ID()
		if _, ok := byID[inst.SourcePrimary]; !ok {
			return result, &domain.LineageError{PathwayID: id, PrimaryID: inst.SourcePrimary}
		}
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, domain.AggregatedPathway{
				CanonicalID: id,
				Name:        inst.Pathway.Name,
				Description: inst.Pathway.Description,
				Database:    inst.Pathway.Database,
			})
		}
		groups[i].Sources = append(groups[i].Sources, inst)
	}
	for i := range groups {
		groups[i].Support = len(groups[i].PrimaryIDs())
		groups[i].Strategy = a.strategy.Name()
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CanonicalID < groups[j].CanonicalID })
	result.Groups = len(groups)

	retained := a.strategy.Select(groups, aggregationContext{totalInstances: len(instances), primaries: byID})
	if err := checkLineage(retained, byID); err != nil {
		return result, err
	}
	if len(retained) == 0 {
		logger.Info("No pathway passed %s aggregation", a.strategy.Name())
		return result, nil
	}

	sortAggregated(retained)
	result.Strategy = a.strategy.Name()
	result.Pathways = retained
	return result, nil
}

func checkLineage(pathways []domain.AggregatedPathway, primaries map[string]domain.PrimaryPathway) error {
	for _, p := range pathways {
		if len(p.Sources) == 0 {
			return &domain.LineageError{PathwayID: p.CanonicalID}
		}
		for _, inst := range p.Sources {
			if _, ok := primaries[inst.SourcePrimary]; !ok {
				return &domain.LineageError{PathwayID: p.CanonicalID, PrimaryID: inst.SourcePrimary}
			}
		}
	}
	return nil
}

func sortAggregated(pathways []domain.AggregatedPathway) {
	sort.SliceStable(pathways, func(i, j int) bool {
		if pathways[i].Score != pathways[j].Score {
			return pathways[i].Score > pathways[j].Score
		}
		return pathways[i].CanonicalID < pathways[j].CanonicalID
	})
}
