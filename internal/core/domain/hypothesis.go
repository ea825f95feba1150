package domain

// Tier buckets filtered pathways by relevance.
type Tier string

// Progressive relevance tiers.
const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Citation is one literature hit.
type Citation struct {
	ID        string  `json:"id"`
	Relevance float64 `json:"relevance"`
}

// RelevanceSignals are the lexicon-derived components of semantic relevance.
type RelevanceSignals struct {
	Repair    float64 `json:"repair"`
	Process   float64 `json:"process"`
	Tissue    float64 `json:"tissue"`
	OffDomain float64 `json:"off_domain"`
}

// NESComponents are the normalised inputs of the composite score.
type NESComponents struct {
	Statistical float64 `json:"statistical"`
	Network     float64 `json:"network"`
	Relevance   float64 `json:"relevance"`
	Literature  float64 `json:"literature"`
	Disease     float64 `json:"disease"`
}

// ScoredHypothesis is one ranked pathway of a completed run.
type ScoredHypothesis struct {
	Pathway            AggregatedPathway `json:"pathway"`
	Relevance          float64           `json:"semantic_relevance"`
	Signals            RelevanceSignals  `json:"relevance_signals"`
	Tier               Tier              `json:"tier"`
	DiseaseAssociation float64           `json:"disease_association"`
	NES                float64           `json:"nes_score"`
	Components         NESComponents     `json:"nes_components"`
	Rank               int               `json:"rank"`
	LiteratureSupport  bool              `json:"literature_support"`
	CitationCount      int               `json:"citation_count"`
	KeyNodes           []string          `json:"key_nodes"`

	// PAdj is the best corrected p-value among contributing primaries.
	PAdj          float64  `json:"p_adj"`
	EvidenceGenes []string `json:"evidence_genes"`
	SeedGenes     []string `json:"seed_genes"`
}

// HypothesisRecord is the stable, strategy-independent output row.
type HypothesisRecord struct {
	Rank              int      `json:"rank"`
	PathwayID         string   `json:"pathway_id"`
	PathwayName       string   `json:"pathway_name"`
	NESScore          float64  `json:"nes_score"`
	PAdj              float64  `json:"p_adj"`
	EvidenceCount     int      `json:"evidence_count"`
	SeedGenes         []string `json:"seed_genes"`
	LiteratureSupport bool     `json:"literature_support"`
	CitationCount     int      `json:"citation_count"`
	KeyNodeCount      int      `json:"key_node_count"`
}

// Record converts a hypothesis to its output row.
func (h ScoredHypothesis) Record() HypothesisRecord {
	return HypothesisRecord{
		Rank:              h.Rank,
		PathwayID:         h.Pathway.CanonicalID,
		PathwayName:       h.Pathway.Name,
		NESScore:          h.NES,
		PAdj:              h.PAdj,
		EvidenceCount:     len(h.EvidenceGenes),
		SeedGenes:         h.SeedGenes,
		LiteratureSupport: h.LiteratureSupport,
		CitationCount:     h.CitationCount,
		KeyNodeCount:      len(h.KeyNodes),
	}
}

// Lineage traces a hypothesis back to the seed genes.
type Lineage struct {
	PathwayID          string                     `json:"pathway_id"`
	SeedGenes          []string                   `json:"seed_genes"`
	PrimaryPathways    []PrimaryPathway           `json:"primary_pathways"`
	SecondaryInstances []SecondaryPathwayInstance `json:"secondary_instances"`
	AggregatedPathway  AggregatedPathway          `json:"aggregated_pathway"`
}
