// Package discovery provides PathwayDiscoverer implementations.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure MembershipDiscoverer implements the interface.
var _ driven.PathwayDiscoverer = (*MembershipDiscoverer)(nil)

// ViaMembership tags instances found through shared pathway members.
const ViaMembership = "membership"

// Config holds discovery settings.
type Config struct {
	// Databases are searched for related pathways.
	Databases []domain.DatabaseKind

	// MinShared is the minimum number of evidence genes a related pathway
	// must share with the primary.
	MinShared int

	// MaxPerPrimary bounds the pathways returned per primary; 0 means no
	// bound.
	MaxPerPrimary int
}

// DefaultConfig returns default discovery settings.
func DefaultConfig() Config {
	return Config{
		Databases: []domain.DatabaseKind{domain.DatabaseKEGG, domain.DatabaseReactome, domain.DatabaseGOBP},
		MinShared: 2,
	}
}

// MembershipDiscoverer finds pathways that share evidence genes with a
// primary pathway, i.e. its network neighbours in pathway space.
type MembershipDiscoverer struct {
	source driven.PathwayMembershipSource
	config Config
}

// NewMembershipDiscoverer creates a discoverer over a membership source.
func NewMembershipDiscoverer(source driven.PathwayMembershipSource, cfg Config) *MembershipDiscoverer {
	if cfg.MinShared < 1 {
		cfg.MinShared = 1
	}
	return &MembershipDiscoverer{source: source, config: cfg}
}

// Name returns the discoverer name.
func (d *MembershipDiscoverer) Name() string {
	return "membership-" + d.source.Name()
}

type candidate struct {
	instance domain.SecondaryPathwayInstance
	shared   int
}

// Discover returns pathways sharing at least MinShared evidence genes with
// the primary, most shared first. A database that fails is reported only
// if every database fails.
func (d *MembershipDiscoverer) Discover(
	ctx context.Context, primary domain.PrimaryPathway,
) ([]domain.SecondaryPathwayInstance, error) {
	evidence := make(map[string]struct{}, len(primary.EvidenceGenes))
	for _, g := range primary.EvidenceGenes {
		evidence[g] = struct{}{}
	}

	var candidates []candidate
	var errs []error
	for _, db := range d.config.Databases {
		records, err := d.source.GetPathways(ctx, primary.EvidenceGenes, db)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", db, err))
			continue
		}
		for _, rec := range records {
			if rec.CanonicalID() == primary.ID() {
				continue
			}
			shared := domain.Intersect(rec.Members, evidence)
			if len(shared) < d.config.MinShared {
				continue
			}
			candidates = append(candidates, candidate{
				instance: domain.SecondaryPathwayInstance{
					Pathway:       rec,
					EvidenceGenes: shared,
					Via:           ViaMembership,
				},
				shared: len(shared),
			})
		}
	}
	if len(errs) > 0 && len(errs) == len(d.config.Databases) {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].shared != candidates[j].shared {
			return candidates[i].shared > candidates[j].shared
		}
		return candidates[i].instance.ID() < candidates[j].instance.ID()
	})
	if d.config.MaxPerPrimary > 0 && len(candidates) > d.config.MaxPerPrimary {
		candidates = candidates[:d.config.MaxPerPrimary]
	}

	out := make([]domain.SecondaryPathwayInstance, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.instance)
	}
	return out, nil
}
