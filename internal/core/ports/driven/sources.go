package driven

import (
	"context"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

// NeighborSource returns functional neighbours of a gene, best first.
// Implementations may fail per gene; the caller retries and degrades.
type NeighborSource interface {
	// Name identifies the source in diagnostics and metrics.
	Name() string

	// GetNeighbors returns up to k neighbours ordered by confidence.
	GetNeighbors(ctx context.Context, gene string, k int) ([]domain.NeighborGene, error)
}

// PathwayMembershipSource returns pathway memberships from one database.
type PathwayMembershipSource interface {
	// Name identifies the source in diagnostics and metrics.
	Name() string

	// GetPathways returns every pathway of the database containing at least
	// one of the given genes. Members are the genome-wide member lists.
	GetPathways(ctx context.Context, genes []string, database domain.DatabaseKind) ([]domain.PathwayRecord, error)
}

// LiteratureSource searches the literature for a gene or pathway.
type LiteratureSource interface {
	// Name identifies the source in diagnostics and metrics.
	Name() string

	// Search returns citations matching the query.
	Search(ctx context.Context, query string) ([]domain.Citation, error)
}

// PathwayDiscoverer finds pathways plausibly linked to a primary pathway,
// by gene co-mention or network proximity.
type PathwayDiscoverer interface {
	// Name identifies the discoverer in diagnostics and metrics.
	Name() string

	// Discover returns related pathways. EvidenceGenes of the returned
	// instances are filled in; SourcePrimary is set by the caller.
	Discover(ctx context.Context, primary domain.PrimaryPathway) ([]domain.SecondaryPathwayInstance, error)
}
