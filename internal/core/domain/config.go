package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ProgressiveThresholds bound the relevance tiers.
type ProgressiveThresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
}

// TierFor returns the tier of a relevance score. Scores under Low reach no
// tier and ok is false.
func (t ProgressiveThresholds) TierFor(relevance float64) (tier Tier, ok bool) {
	switch {
	case relevance >= t.High:
		return TierHigh, true
	case relevance >= t.Medium:
		return TierMedium, true
	case relevance >= t.Low:
		return TierLow, true
	default:
		return "", false
	}
}

// NESWeights weight the NES components.
type NESWeights struct {
	Statistical float64 `json:"statistical"`
	Network     float64 `json:"network"`
	Relevance   float64 `json:"relevance"`
	Literature  float64 `json:"literature"`
	Disease     float64 `json:"disease"`
}

// Sum returns the total weight.
func (w NESWeights) Sum() float64 {
	return w.Statistical + w.Network + w.Relevance + w.Literature + w.Disease
}

// AnalysisConfig holds every tunable of an analysis run.
type AnalysisConfig struct {
	// Neighborhood assembly.
	NeighborsPerSeed int `json:"neighbors_per_seed"`
	NeighborhoodCap  int `json:"neighborhood_cap"`

	// Primary enrichment.
	BackgroundSize int            `json:"background_size"`
	MinOverlap     int            `json:"min_overlap"`
	MinPathwaySize int            `json:"min_pathway_size"`
	MaxPathwaySize int            `json:"max_pathway_size"`
	FDRThreshold   float64        `json:"fdr_threshold"`
	Databases      []DatabaseKind `json:"databases"`
	AlreadyKnown   []string       `json:"already_known,omitempty"`

	// Aggregation.
	Strategy            AggregationStrategyName  `json:"aggregation_strategy"`
	MinSupportThreshold int                      `json:"min_support_threshold"`
	FrequencyThreshold  float64                  `json:"frequency_threshold"`
	WeightedTopN        int                      `json:"weighted_top_n"`
	TrustWeights        map[DatabaseKind]float64 `json:"trust_weights"`

	// Semantic relevance.
	SemanticRelevanceThreshold float64               `json:"semantic_relevance_threshold"`
	SemanticRepairBoost        float64               `json:"semantic_repair_boost"`
	SemanticMaxResults         int                   `json:"semantic_max_results"`
	ProgressiveThresholds      ProgressiveThresholds `json:"semantic_progressive_thresholds"`
	TermSaturation             int                   `json:"term_saturation"`
	Lexicon                    Lexicon               `json:"lexicon"`

	// Disease association.
	DiseaseTopK      int     `json:"disease_top_k"`
	DiseaseDecayBase float64 `json:"disease_decay_base"`

	// NES.
	NESWeights         NESWeights `json:"nes_weights"`
	PValueCap          float64    `json:"pvalue_cap"`
	KeyNodeSaturation  int        `json:"key_node_saturation"`
	CitationSaturation int        `json:"citation_saturation"`
	MinCitations       int        `json:"min_citations"`
	LiteratureContext  string     `json:"literature_context"`
	TopHypothesesCount int        `json:"top_hypotheses_count"`

	// External calls.
	MaxRetries         int           `json:"max_retries"`
	RetryBackoffFactor float64       `json:"retry_backoff_factor"`
	RetryInitialDelay  time.Duration `json:"retry_initial_delay"`
	RequestTimeout     time.Duration `json:"request_timeout"`
	MaxConcurrency     int           `json:"max_concurrency"`
}

// DefaultAnalysisConfig returns the built-in configuration.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		NeighborsPerSeed: 25,
		NeighborhoodCap:  300,

		BackgroundSize: 20000,
		MinOverlap:     2,
		MinPathwaySize: 5,
		MaxPathwaySize: 500,
		FDRThreshold:   0.05,
		Databases:      []DatabaseKind{DatabaseKEGG, DatabaseReactome, DatabaseGOBP},

		Strategy:            StrategyIntersection,
		MinSupportThreshold: 2,
		FrequencyThreshold:  0.05,
		WeightedTopN:        50,
		TrustWeights: map[DatabaseKind]float64{
			DatabaseKEGG:         1.0,
			DatabaseReactome:     1.0,
			DatabaseGOBP:         0.8,
			DatabaseWikiPathways: 0.7,
			DatabaseHallmark:     0.9,
			DatabaseCustom:       0.5,
		},

		SemanticRelevanceThreshold: 0.2,
		SemanticRepairBoost:        1.0,
		SemanticMaxResults:         50,
		ProgressiveThresholds:      ProgressiveThresholds{High: 0.7, Medium: 0.45, Low: 0.2},
		TermSaturation:             2,
		Lexicon:                    DefaultLexicon(),

		DiseaseTopK:      10,
		DiseaseDecayBase: 0.9,

		NESWeights: NESWeights{
			Statistical: 0.30,
			Network:     0.20,
			Relevance:   0.20,
			Literature:  0.15,
			Disease:     0.15,
		},
		PValueCap:          10,
		KeyNodeSaturation:  5,
		CitationSaturation: 50,
		MinCitations:       1,
		LiteratureContext:  "heart regeneration",
		TopHypothesesCount: 20,

		MaxRetries:         3,
		RetryBackoffFactor: 2.0,
		RetryInitialDelay:  250 * time.Millisecond,
		RequestTimeout:     30 * time.Second,
		MaxConcurrency:     8,
	}
}

// TrustWeight returns the trust weight of a database, 1.0 when unset.
func (c AnalysisConfig) TrustWeight(db DatabaseKind) float64 {
	if w, ok := c.TrustWeights[db]; ok {
		return w
	}
	return 1.0
}

// Validate checks every field and returns all problems joined.
// Each problem is a *ConfigError, so errors.Is(err, ErrConfiguration) holds.
//
//nolint:gocyclo // Flat list of independent range checks
func (c AnalysisConfig) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if c.NeighborsPerSeed < 1 {
		fail("neighbors_per_seed", "must be >= 1, got %d", c.NeighborsPerSeed)
	}
	if c.NeighborhoodCap < 1 {
		fail("neighborhood_cap", "must be >= 1, got %d", c.NeighborhoodCap)
	}
	if c.BackgroundSize < 1 {
		fail("background_size", "must be >= 1, got %d", c.BackgroundSize)
	}
	if c.MinOverlap < 1 {
		fail("min_overlap", "must be >= 1, got %d", c.MinOverlap)
	}
	if c.MinPathwaySize < 1 || c.MaxPathwaySize < c.MinPathwaySize {
		fail("pathway_size", "need 1 <= min (%d) <= max (%d)", c.MinPathwaySize, c.MaxPathwaySize)
	}
	if !inUnitInterval(c.FDRThreshold) || c.FDRThreshold == 0 {
		fail("fdr_threshold", "must be in (0, 1], got %v", c.FDRThreshold)
	}
	if len(c.Databases) == 0 {
		fail("databases", "at least one pathway database is required")
	}
	for _, db := range c.Databases {
		if !db.IsValid() {
			fail("databases", "unknown database %q", db)
		}
	}
	for db, w := range c.TrustWeights {
		if !db.IsValid() {
			fail("trust_weights", "unknown database %q", db)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			fail("trust_weights", "weight for %s must be a finite value >= 0, got %v", db, w)
		}
	}

	if !c.Strategy.IsValid() {
		fail("aggregation_strategy", "must be one of intersection, frequency, weighted, got %q", c.Strategy)
	}
	if c.MinSupportThreshold < 1 {
		fail("min_support_threshold", "must be >= 1, got %d", c.MinSupportThreshold)
	}
	if !inUnitInterval(c.FrequencyThreshold) || c.FrequencyThreshold == 0 {
		fail("frequency_threshold", "must be in (0, 1], got %v", c.FrequencyThreshold)
	}
	if c.WeightedTopN < 1 {
		fail("weighted_top_n", "must be >= 1, got %d", c.WeightedTopN)
	}

	if !inUnitInterval(c.SemanticRelevanceThreshold) {
		fail("semantic_relevance_threshold", "must be in [0, 1], got %v", c.SemanticRelevanceThreshold)
	}
	if c.SemanticRepairBoost <= 0 || math.IsInf(c.SemanticRepairBoost, 0) {
		fail("semantic_repair_boost", "must be > 0, got %v", c.SemanticRepairBoost)
	}
	if c.SemanticMaxResults < 1 {
		fail("semantic_max_results", "must be >= 1, got %d", c.SemanticMaxResults)
	}
	t := c.ProgressiveThresholds
	if !inUnitInterval(t.High) || !inUnitInterval(t.Medium) || !inUnitInterval(t.Low) {
		fail("semantic_progressive_thresholds", "all thresholds must be in [0, 1]")
	} else if t.High < t.Medium || t.Medium < t.Low {
		fail("semantic_progressive_thresholds", "need high >= medium >= low, got %v/%v/%v", t.High, t.Medium, t.Low)
	}
	if c.TermSaturation < 1 {
		fail("term_saturation", "must be >= 1, got %d", c.TermSaturation)
	}

	if c.DiseaseTopK < 1 {
		fail("disease_top_k", "must be >= 1, got %d", c.DiseaseTopK)
	}
	if c.DiseaseDecayBase <= 0 || c.DiseaseDecayBase > 1 {
		fail("disease_decay_base", "must be in (0, 1], got %v", c.DiseaseDecayBase)
	}

	w := c.NESWeights
	if w.Statistical < 0 || w.Network < 0 || w.Relevance < 0 || w.Literature < 0 || w.Disease < 0 {
		fail("nes_weights", "weights must be >= 0")
	} else if w.Sum() <= 0 {
		fail("nes_weights", "weights must not all be zero")
	}
	if c.PValueCap <= 0 {
		fail("pvalue_cap", "must be > 0, got %v", c.PValueCap)
	}
	if c.KeyNodeSaturation < 1 {
		fail("key_node_saturation", "must be >= 1, got %d", c.KeyNodeSaturation)
	}
	if c.CitationSaturation < 1 {
		fail("citation_saturation", "must be >= 1, got %d", c.CitationSaturation)
	}
	if c.MinCitations < 0 {
		fail("min_citations", "must be >= 0, got %d", c.MinCitations)
	}
	if c.TopHypothesesCount < 1 {
		fail("top_hypotheses_count", "must be >= 1, got %d", c.TopHypothesesCount)
	}

	if c.MaxRetries < 1 {
		fail("max_retries", "must be >= 1, got %d", c.MaxRetries)
	}
	if c.RetryBackoffFactor < 1 {
		fail("retry_backoff_factor", "must be >= 1, got %v", c.RetryBackoffFactor)
	}
	if c.RetryInitialDelay < 0 {
		fail("retry_initial_delay", "must be >= 0, got %s", c.RetryInitialDelay)
	}
	if c.RequestTimeout <= 0 {
		fail("request_timeout", "must be > 0, got %s", c.RequestTimeout)
	}
	if c.MaxConcurrency < 1 {
		fail("max_concurrency", "must be >= 1, got %d", c.MaxConcurrency)
	}

	return errors.Join(errs...)
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
