package services

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
	"github.com/custodia-labs/pathscout/internal/logger"
)

// NESScorer combines statistical, network, relevance, literature and
// disease evidence into the final ranking.
type NESScorer struct {
	literature  driven.LiteratureSource
	disease     *DiseaseScorer
	policy      retryPolicy
	concurrency int
	cfg         domain.AnalysisConfig
}

// NewNESScorer creates a scorer. literature may be nil, in which case every
// pathway has zero citations.
func NewNESScorer(
	literature driven.LiteratureSource,
	disease *DiseaseScorer,
	policy retryPolicy,
	cfg domain.AnalysisConfig,
) *NESScorer {
	return &NESScorer{
		literature:  literature,
		disease:     disease,
		policy:      policy,
		concurrency: cfg.MaxConcurrency,
		cfg:         cfg,
	}
}

// Score fills in the remaining evidence of every filtered hypothesis and
// returns them ranked and truncated to TopHypothesesCount.
func (s *NESScorer) Score(
	ctx context.Context,
	filtered []domain.ScoredHypothesis,
	n *domain.Neighborhood,
	primaries []domain.PrimaryPathway,
) ([]domain.ScoredHypothesis, []domain.Diagnostic, error) {
	citations, diags, err := s.searchLiterature(ctx, filtered)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]domain.PrimaryPathway, len(primaries))
	for _, p := range primaries {
		byID[p.ID()] = p
	}
	centrality := geneCentrality(n)

	out := make([]domain.ScoredHypothesis, len(filtered))
	for i, h := range filtered {
		h.EvidenceGenes = h.Pathway.EvidenceGenes()
		h.SeedGenes = n.OriginSeeds(h.EvidenceGenes)
		h.KeyNodes = keyNodes(h.Pathway, n)
		h.PAdj = bestPAdj(h.Pathway, byID)
		h.CitationCount = citations[i]
		h.LiteratureSupport = citations[i] >= s.cfg.MinCitations
		if s.disease != nil {
			h.DiseaseAssociation = s.disease.Score(h.EvidenceGenes)
		}

		h.Components = domain.NESComponents{
			Statistical: s.statistical(h.Pathway, byID),
			Network:     s.network(h.KeyNodes, n, centrality),
			Relevance:   h.Relevance,
			Literature:  s.literatureScore(h.CitationCount),
			Disease:     h.DiseaseAssociation,
		}
		h.NES = combine(h.Components, s.cfg.NESWeights)
		out[i] = h
	}

	ranked := RankHypotheses(out, s.cfg.TopHypothesesCount)
	return ranked, diags, nil
}

// RankHypotheses orders by NES descending then canonical id, assigns ranks
// 1..M with no ties and keeps the first limit entries (all when limit <= 0).
func RankHypotheses(hypotheses []domain.ScoredHypothesis, limit int) []domain.ScoredHypothesis {
	sort.SliceStable(hypotheses, func(i, j int) bool {
		if hypotheses[i].NES != hypotheses[j].NES {
			return hypotheses[i].NES > hypotheses[j].NES
		}
		return hypotheses[i].Pathway.CanonicalID < hypotheses[j].Pathway.CanonicalID
	})
	for i := range hypotheses {
		hypotheses[i].Rank = i + 1
	}
	if limit > 0 && len(hypotheses) > limit {
		hypotheses = hypotheses[:limit]
	}
	return hypotheses
}

func combine(c domain.NESComponents, w domain.NESWeights) float64 {
	return w.Statistical*c.Statistical +
		w.Network*c.Network +
		w.Relevance*c.Relevance +
		w.Literature*c.Literature +
		w.Disease*c.Disease
}

func (s *NESScorer) searchLiterature(
	ctx context.Context, filtered []domain.ScoredHypothesis,
) ([]int, []domain.Diagnostic, error) {
	counts := make([]int, len(filtered))
	if s.literature == nil {
		return counts, []domain.Diagnostic{}, ctx.Err()
	}

	diags := make([]*domain.Diagnostic, len(filtered))
	err := runBounded(ctx, s.concurrency, len(filtered), func(ctx context.Context, i int) error {
		query := filtered[i].Pathway.Name
		if s.cfg.LiteratureContext != "" {
			query += " " + s.cfg.LiteratureContext
		}
		hits, err := callWithRetry(ctx, s.policy, s.literature.Name(), query,
			func(ctx context.Context) ([]domain.Citation, error) {
				return s.literature.Search(ctx, query)
			})
		if err != nil {
			if isCancellation(err) {
				return err
			}
			d := unavailable(domain.StageScoring, err)
			diags[i] = &d
			logger.Warn("Literature search failed for %s: %v", filtered[i].Pathway.CanonicalID, err)
			return nil
		}
		counts[i] = len(hits)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return counts, collectDiagnostics(diags), nil
}

// statistical averages the capped significance of the distinct primaries.
func (s *NESScorer) statistical(p domain.AggregatedPathway, primaries map[string]domain.PrimaryPathway) float64 {
	ids := p.PrimaryIDs()
	if len(ids) == 0 || s.cfg.PValueCap <= 0 {
		return 0
	}
	terms := make([]float64, 0, len(ids))
	for _, id := range ids {
		terms = append(terms, math.Min(1, significance(primaries[id].PAdj)/s.cfg.PValueCap))
	}
	return stableSum(terms) / float64(len(terms))
}

// network blends the saturated key-node count with their mean centrality.
func (s *NESScorer) network(keys []string, n *domain.Neighborhood, centrality []float64) float64 {
	if len(keys) == 0 {
		return 0
	}
	count := 1.0
	if s.cfg.KeyNodeSaturation > 0 {
		count = math.Min(1, float64(len(keys))/float64(s.cfg.KeyNodeSaturation))
	}
	var sum float64
	for _, g := range keys {
		if i, ok := n.Index(g); ok && i < len(centrality) {
			sum += centrality[i]
		}
	}
	return 0.5*count + 0.5*sum/float64(len(keys))
}

func (s *NESScorer) literatureScore(citations int) float64 {
	if citations <= 0 || s.cfg.CitationSaturation <= 0 {
		return 0
	}
	return math.Min(1, math.Log1p(float64(citations))/math.Log1p(float64(s.cfg.CitationSaturation)))
}

// keyNodes returns the evidence genes inside the neighborhood that are
// seeds or shared by at least two contributing instances.
func keyNodes(p domain.AggregatedPathway, n *domain.Neighborhood) []string {
	counts := make(map[string]int)
	for _, inst := range p.Sources {
		for _, g := range inst.EvidenceGenes {
			counts[g]++
		}
	}
	out := make([]string, 0)
	for g, c := range counts {
		i, ok := n.Index(g)
		if !ok {
			continue
		}
		if n.Genes[i].IsSeed || c >= 2 {
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

func bestPAdj(p domain.AggregatedPathway, primaries map[string]domain.PrimaryPathway) float64 {
	best := 1.0
	for _, id := range p.PrimaryIDs() {
		if pr, ok := primaries[id]; ok && pr.PAdj < best {
			best = pr.PAdj
		}
	}
	return best
}

// geneCentrality returns the betweenness of every neighborhood gene,
// scaled so the most central gene has 1.
func geneCentrality(n *domain.Neighborhood) []float64 {
	out := make([]float64, n.Size())
	if n.Size() == 0 || len(n.Edges) == 0 {
		return out
	}

	g := simple.NewUndirectedGraph()
	for i := range n.Genes {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range n.Edges {
		g.SetEdge(simple.Edge{F: simple.Node(int64(e.From)), T: simple.Node(int64(e.To))})
	}

	var peak float64
	for id, b := range network.Betweenness(g) {
		out[id] = b
		peak = math.Max(peak, b)
	}
	if peak > 0 {
		for i := range out {
			out[i] /= peak
		}
	}
	return out
}
