package services

import (
	"context"
	"sort"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
	"github.com/custodia-labs/pathscout/internal/logger"
)

// DiscoveryEngine expands each primary pathway into secondary instances.
type DiscoveryEngine struct {
	discoverer  driven.PathwayDiscoverer
	policy      retryPolicy
	concurrency int
}

// NewDiscoveryEngine creates an engine over a discoverer.
func NewDiscoveryEngine(discoverer driven.PathwayDiscoverer, policy retryPolicy, concurrency int) *DiscoveryEngine {
	return &DiscoveryEngine{discoverer: discoverer, policy: policy, concurrency: concurrency}
}

// Discover returns one instance per result the discoverer reports, tagged
// with its source primary. Instances are grouped by primary in input order
// and sorted by canonical id within a primary. Repeated and self-referencing
// results are kept as reported.
func (d *DiscoveryEngine) Discover(
	ctx context.Context, primaries []domain.PrimaryPathway,
) ([]domain.SecondaryPathwayInstance, []domain.Diagnostic, error) {
	found := make([][]domain.SecondaryPathwayInstance, len(primaries))
	diags := make([]*domain.Diagnostic, len(primaries))

	err := runBounded(ctx, d.concurrency, len(primaries), func(ctx context.Context, i int) error {
		primary := primaries[i]
		id := primary.ID()
		instances, err := callWithRetry(ctx, d.policy, d.discoverer.Name(), id,
			func(ctx context.Context) ([]domain.SecondaryPathwayInstance, error) {
				return d.discoverer.Discover(ctx, primary)
			})
		if err != nil {
			if isCancellation(err) {
				return err
			}
			diag := unavailable(domain.StageDiscovery, err)
			diags[i] = &diag
			logger.Warn("Discovery failed for %s: %v", id, err)
			return nil
		}

		out := make([]domain.SecondaryPathwayInstance, 0, len(instances))
		for _, inst := range instances {
			inst.SourcePrimary = id
			out = append(out, inst)
		}
		sort.SliceStable(out, func(a, b int) bool { return out[a].ID() < out[b].ID() })
		found[i] = out
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var all []domain.SecondaryPathwayInstance
	for _, instances := range found {
		all = append(all, instances...)
	}
	logger.Debug("Discovered %d secondary instances from %d primaries", len(all), len(primaries))
	return all, collectDiagnostics(diags), nil
}
