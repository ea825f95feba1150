package services

import (
	"context"
	"sort"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
	"github.com/custodia-labs/pathscout/internal/logger"
)

// NeighborhoodAssembler expands seed genes into a bounded neighborhood.
type NeighborhoodAssembler struct {
	source      driven.NeighborSource
	policy      retryPolicy
	concurrency int
}

// NewNeighborhoodAssembler creates an assembler over a neighbour source.
func NewNeighborhoodAssembler(source driven.NeighborSource, policy retryPolicy, concurrency int) *NeighborhoodAssembler {
	return &NeighborhoodAssembler{source: source, policy: policy, concurrency: concurrency}
}

// candidate accumulates one gene across seeds.
type candidate struct {
	score  float64
	source string
	isSeed bool
	seeds  map[string]struct{}
}

// Assemble requests up to k neighbours per seed and unions them with the
// seeds. When the union exceeds limit, every seed is kept and the remaining
// slots go to the best-scored neighbours. A seed whose lookup fails
// contributes no neighbours and a diagnostic.
//
//nolint:gocognit // Union, truncation and edge remapping belong together
func (a *NeighborhoodAssembler) Assemble(
	ctx context.Context, seeds []string, k, limit int,
) (*domain.Neighborhood, []domain.Diagnostic, error) {
	seeds = domain.NormalizeGeneList(seeds)

	found := make([][]domain.NeighborGene, len(seeds))
	diags := make([]*domain.Diagnostic, len(seeds))
	err := runBounded(ctx, a.concurrency, len(seeds), func(ctx context.Context, i int) error {
		seed := seeds[i]
		neighbors, err := callWithRetry(ctx, a.policy, a.source.Name(), seed,
			func(ctx context.Context) ([]domain.NeighborGene, error) {
				return a.source.GetNeighbors(ctx, seed, k)
			})
		if err != nil {
			if isCancellation(err) {
				return err
			}
			d := unavailable(domain.StageNeighborhood, err)
			diags[i] = &d
			logger.Warn("Neighbour lookup failed for seed %s: %v", seed, err)
			return nil
		}
		if len(neighbors) > k {
			neighbors = neighbors[:k]
		}
		found[i] = neighbors
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	genes := make(map[string]*candidate, len(seeds))
	for _, s := range seeds {
		genes[s] = &candidate{score: 1, isSeed: true, seeds: map[string]struct{}{s: {}}}
	}

	type pair struct{ a, b string }
	edgeScores := make(map[pair]float64)

	for i, seed := range seeds {
		for _, nb := range found[i] {
			sym := domain.NormalizeSymbol(nb.Symbol)
			if sym == "" || sym == seed {
				continue
			}
			c, ok := genes[sym]
			if !ok {
				c = &candidate{score: nb.Score, source: nb.Source, seeds: make(map[string]struct{})}
				genes[sym] = c
			} else if !c.isSeed && nb.Score > c.score {
				c.score = nb.Score
				c.source = nb.Source
			}
			c.seeds[seed] = struct{}{}

			key := pair{seed, sym}
			if sym < seed {
				key = pair{sym, seed}
			}
			if nb.Score > edgeScores[key] {
				edgeScores[key] = nb.Score
			}
		}
	}

	var seedSyms, others []string
	for sym, c := range genes {
		if c.isSeed {
			seedSyms = append(seedSyms, sym)
		} else {
			others = append(others, sym)
		}
	}
	sort.Strings(seedSyms)
	sort.Slice(others, func(i, j int) bool {
		ci, cj := genes[others[i]], genes[others[j]]
		if ci.score != cj.score {
			return ci.score > cj.score
		}
		return others[i] < others[j]
	})

	if len(seedSyms)+len(others) > limit {
		room := limit - len(seedSyms)
		if room < 0 {
			room = 0
		}
		logger.Debug("Neighborhood of %d genes truncated to %d (%d seeds kept)",
			len(seedSyms)+len(others), len(seedSyms)+room, len(seedSyms))
		others = others[:room]
	}

	table := make([]domain.GeneRecord, 0, len(seedSyms)+len(others))
	for _, sym := range append(seedSyms, others...) {
		c := genes[sym]
		table = append(table, domain.GeneRecord{
			Symbol: sym,
			Score:  c.score,
			IsSeed: c.isSeed,
			Seeds:  sortedSet(c.seeds),
		})
	}

	index := make(map[string]int, len(table))
	for i, g := range table {
		index[g.Symbol] = i
	}
	edges := make([]domain.Edge, 0, len(edgeScores))
	for key, score := range edgeScores {
		from, okA := index[key.a]
		to, okB := index[key.b]
		if !okA || !okB {
			continue
		}
		if from > to {
			from, to = to, from
		}
		edges = append(edges, domain.Edge{From: from, To: to, Score: score})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	return domain.NewNeighborhood(table, edges), collectDiagnostics(diags), nil
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func collectDiagnostics(slots []*domain.Diagnostic) []domain.Diagnostic {
	out := make([]domain.Diagnostic, 0)
	for _, d := range slots {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}
