package services

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
	"github.com/custodia-labs/pathscout/internal/logger"
)

// EnrichmentEngine tests which pathways are overrepresented in a
// neighborhood.
type EnrichmentEngine struct {
	source      driven.PathwayMembershipSource
	exclusions  driven.ExclusionList
	policy      retryPolicy
	concurrency int
}

// NewEnrichmentEngine creates an engine over a membership source.
// exclusions may be nil.
func NewEnrichmentEngine(
	source driven.PathwayMembershipSource,
	exclusions driven.ExclusionList,
	policy retryPolicy,
	concurrency int,
) *EnrichmentEngine {
	return &EnrichmentEngine{
		source:      source,
		exclusions:  exclusions,
		policy:      policy,
		concurrency: concurrency,
	}
}

// Enrich returns the primary pathways with corrected p-value at most
// cfg.FDRThreshold, ordered by corrected p-value then canonical id.
// P-values of every tested pathway across all databases are pooled before
// correction. A database whose lookup fails is skipped with a diagnostic.
func (e *EnrichmentEngine) Enrich(
	ctx context.Context, n *domain.Neighborhood, cfg domain.AnalysisConfig,
) ([]domain.PrimaryPathway, []domain.Diagnostic, error) {
	genes := n.Symbols()
	set := make(map[string]struct{}, len(genes))
	for _, g := range genes {
		set[g] = struct{}{}
	}

	found := make([][]domain.PathwayRecord, len(cfg.Databases))
	diags := make([]*domain.Diagnostic, len(cfg.Databases))
	err := runBounded(ctx, e.concurrency, len(cfg.Databases), func(ctx context.Context, i int) error {
		db := cfg.Databases[i]
		records, err := callWithRetry(ctx, e.policy, e.source.Name(), db.String(),
			func(ctx context.Context) ([]domain.PathwayRecord, error) {
				return e.source.GetPathways(ctx, genes, db)
			})
		if err != nil {
			if isCancellation(err) {
				return err
			}
			d := unavailable(domain.StageEnrichment, err)
			diags[i] = &d
			logger.Warn("Pathway lookup failed for %s: %v", db, err)
			return nil
		}
		found[i] = records
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var tested []domain.PrimaryPathway
	seen := make(map[string]struct{})
	for i, db := range cfg.Databases {
		records := found[i]
		sort.SliceStable(records, func(a, b int) bool {
			return records[a].CanonicalID() < records[b].CanonicalID()
		})
		for _, rec := range records {
			if rec.Database == "" {
				rec.Database = db
			}
			id := rec.CanonicalID()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			size := len(rec.Members)
			if size < cfg.MinPathwaySize || size > cfg.MaxPathwaySize {
				continue
			}
			evidence := domain.Intersect(rec.Members, set)
			if len(evidence) < cfg.MinOverlap {
				continue
			}
			tested = append(tested, domain.PrimaryPathway{
				Pathway:       rec,
				EvidenceGenes: evidence,
				PathwaySize:   size,
				PValue:        overrepresentation(len(evidence), len(genes), size, cfg.BackgroundSize),
			})
		}
	}

	pvalues := make([]float64, len(tested))
	for i := range tested {
		pvalues[i] = tested[i].PValue
	}
	adjusted := benjaminiHochberg(pvalues)

	known := newKnownSet(cfg.AlreadyKnown)
	retained := make([]domain.PrimaryPathway, 0)
	for i := range tested {
		tested[i].PAdj = adjusted[i]
		if tested[i].PAdj > cfg.FDRThreshold {
			continue
		}
		if known.matches(tested[i].Pathway) || (e.exclusions != nil && e.exclusions.IsExcluded(tested[i].Pathway)) {
			logger.Debug("Excluding already-known pathway %s", tested[i].ID())
			continue
		}
		retained = append(retained, tested[i])
	}

	sort.SliceStable(retained, func(a, b int) bool {
		if retained[a].PAdj != retained[b].PAdj {
			return retained[a].PAdj < retained[b].PAdj
		}
		return retained[a].ID() < retained[b].ID()
	})

	logger.Info("Tested %d pathways, %d significant at FDR %.3g", len(tested), len(retained), cfg.FDRThreshold)
	return retained, collectDiagnostics(diags), nil
}

// knownSet matches pathways by canonical id or case-insensitive name.
type knownSet map[string]struct{}

func newKnownSet(entries []string) knownSet {
	k := make(knownSet, len(entries))
	for _, e := range entries {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			k[e] = struct{}{}
		}
	}
	return k
}

func (k knownSet) matches(p domain.PathwayRecord) bool {
	if len(k) == 0 {
		return false
	}
	if _, ok := k[strings.ToLower(p.CanonicalID())]; ok {
		return true
	}
	_, ok := k[strings.ToLower(p.Name)]
	return ok
}
