package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
	"github.com/custodia-labs/pathscout/internal/logger"
)

// Ensure LiteratureDiscoverer implements the interface.
var _ driven.PathwayDiscoverer = (*LiteratureDiscoverer)(nil)

// ViaLiterature tags instances confirmed by literature co-mention.
const ViaLiterature = "literature"

// maxQueryGenes bounds the evidence genes named in one co-mention query.
const maxQueryGenes = 5

// LiteratureConfig holds co-mention confirmation settings.
type LiteratureConfig struct {
	// MinCoMentions is the number of citations that confirms a candidate.
	MinCoMentions int

	// RequireConfirmation drops candidates the literature does not confirm.
	RequireConfirmation bool
}

// LiteratureDiscoverer confirms the candidates of another discoverer by
// searching for papers that mention the primary pathway, the candidate
// and their shared genes together.
type LiteratureDiscoverer struct {
	candidates driven.PathwayDiscoverer
	literature driven.LiteratureSource
	config     LiteratureConfig
}

// NewLiteratureDiscoverer wraps a candidate discoverer with co-mention
// confirmation.
func NewLiteratureDiscoverer(
	candidates driven.PathwayDiscoverer,
	literature driven.LiteratureSource,
	cfg LiteratureConfig,
) *LiteratureDiscoverer {
	if cfg.MinCoMentions < 1 {
		cfg.MinCoMentions = 1
	}
	return &LiteratureDiscoverer{candidates: candidates, literature: literature, config: cfg}
}

// Name returns the discoverer name.
func (d *LiteratureDiscoverer) Name() string {
	return d.literature.Name() + "+" + d.candidates.Name()
}

// Discover returns the candidates, tagging confirmed ones ViaLiterature.
// A failed lookup leaves the candidate unconfirmed; the call fails only
// when confirmation is required and every lookup failed.
func (d *LiteratureDiscoverer) Discover(
	ctx context.Context, primary domain.PrimaryPathway,
) ([]domain.SecondaryPathwayInstance, error) {
	candidates, err := d.candidates.Discover(ctx, primary)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SecondaryPathwayInstance, 0, len(candidates))
	var errs []error
	for _, inst := range candidates {
		citations, err := d.literature.Search(ctx, CoMentionQuery(primary, inst))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("co-mention lookup for %s failed: %v", inst.ID(), err)
			errs = append(errs, fmt.Errorf("%s: %w", inst.ID(), err))
		}
		if err == nil && len(citations) >= d.config.MinCoMentions {
			inst.Via = ViaLiterature
		} else if d.config.RequireConfirmation {
			continue
		}
		out = append(out, inst)
	}
	if d.config.RequireConfirmation && len(errs) > 0 && len(errs) == len(candidates) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// CoMentionQuery builds the search for papers naming both pathways and at
// least one of their shared genes.
func CoMentionQuery(primary domain.PrimaryPathway, candidate domain.SecondaryPathwayInstance) string {
	q := fmt.Sprintf("%q AND %q", primary.Pathway.Name, candidate.Pathway.Name)
	genes := candidate.EvidenceGenes
	if len(genes) > maxQueryGenes {
		genes = genes[:maxQueryGenes]
	}
	if len(genes) > 0 {
		q += " AND (" + strings.Join(genes, " OR ") + ")"
	}
	return q
}
