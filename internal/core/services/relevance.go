package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

// Relevance weights of the four lexicon signals.
const (
	repairWeight    = 0.60
	processWeight   = 0.25
	tissueWeight    = 0.15
	offDomainWeight = 0.50
)

// ComputeRelevance combines the lexicon signals into a score in [0, 1].
func ComputeRelevance(s domain.RelevanceSignals) float64 {
	return clamp01(repairWeight*s.Repair + processWeight*s.Process + tissueWeight*s.Tissue - offDomainWeight*s.OffDomain)
}

// RelevanceFilter scores aggregated pathways against a domain lexicon.
type RelevanceFilter struct {
	lexicon     domain.Lexicon
	tissueGenes map[string]struct{}
	saturation  int
	boost       float64
	threshold   float64
	tiers       domain.ProgressiveThresholds
	maxResults  int
}

// NewRelevanceFilter creates a filter from the semantic settings of cfg.
func NewRelevanceFilter(cfg domain.AnalysisConfig) *RelevanceFilter {
	genes := make(map[string]struct{}, len(cfg.Lexicon.TissueGenes))
	for _, g := range cfg.Lexicon.TissueGenes {
		genes[domain.NormalizeSymbol(g)] = struct{}{}
	}
	return &RelevanceFilter{
		lexicon:     cfg.Lexicon,
		tissueGenes: genes,
		saturation:  cfg.TermSaturation,
		boost:       cfg.SemanticRepairBoost,
		threshold:   cfg.SemanticRelevanceThreshold,
		tiers:       cfg.ProgressiveThresholds,
		maxResults:  cfg.SemanticMaxResults,
	}
}

// Signals computes the lexicon signals of one pathway.
func (f *RelevanceFilter) Signals(p domain.AggregatedPathway) domain.RelevanceSignals {
	text := strings.ToLower(strings.ReplaceAll(p.Name+" "+p.Description, "_", " "))

	var tissueHits int
	for _, g := range p.EvidenceGenes() {
		if _, ok := f.tissueGenes[g]; ok {
			tissueHits++
		}
	}

	return domain.RelevanceSignals{
		Repair:    clamp01(f.saturate(countTerms(text, f.lexicon.Repair)) * f.boost),
		Process:   f.saturate(countTerms(text, f.lexicon.Process)),
		Tissue:    max(f.saturate(countTerms(text, f.lexicon.Tissue)), f.saturate(tissueHits)),
		OffDomain: f.saturate(countTerms(text, f.lexicon.OffDomain)),
	}
}

// Filter drops pathways below the relevance threshold or the low tier,
// assigns tiers and keeps the most relevant maxResults, ordered by
// relevance then id.
func (f *RelevanceFilter) Filter(pathways []domain.AggregatedPathway) []domain.ScoredHypothesis {
	out := make([]domain.ScoredHypothesis, 0, len(pathways))
	for _, p := range pathways {
		signals := f.Signals(p)
		relevance := ComputeRelevance(signals)
		if relevance < f.threshold {
			continue
		}
		tier, ok := f.tiers.TierFor(relevance)
		if !ok {
			continue
		}
		out = append(out, domain.ScoredHypothesis{
			Pathway:       p,
			Relevance:     relevance,
			Signals:       signals,
			Tier:          tier,
			EvidenceGenes: p.EvidenceGenes(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		return out[i].Pathway.CanonicalID < out[j].Pathway.CanonicalID
	})
	if f.maxResults > 0 && len(out) > f.maxResults {
		out = out[:f.maxResults]
	}
	return out
}

func (f *RelevanceFilter) saturate(hits int) float64 {
	if f.saturation <= 0 {
		return clamp01(float64(hits))
	}
	return clamp01(float64(hits) / float64(f.saturation))
}

// countTerms returns how many distinct terms occur in text.
func countTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && strings.Contains(text, t) {
			n++
		}
	}
	return n
}
