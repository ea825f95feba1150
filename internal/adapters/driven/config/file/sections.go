package file

import (
	"github.com/custodia-labs/pathscout/internal/core/domain"
)

// fileConfig mirrors the TOML layout. Nil fields keep their defaults.
type fileConfig struct {
	Analysis    *analysisSection    `toml:"analysis,omitempty"`
	Aggregation *aggregationSection `toml:"aggregation,omitempty"`
	Semantic    *semanticSection    `toml:"semantic,omitempty"`
	Disease     *diseaseSection     `toml:"disease,omitempty"`
	NES         *nesSection         `toml:"nes,omitempty"`
	Network     *networkSection     `toml:"network,omitempty"`
	Lexicon     *lexiconSection     `toml:"lexicon,omitempty"`
	Discovery   *discoverySection   `toml:"discovery,omitempty"`
	Sources     *sourcesSection     `toml:"sources,omitempty"`
	Storage     *storageSection     `toml:"storage,omitempty"`
}

type analysisSection struct {
	NeighborsPerSeed *int      `toml:"neighbors_per_seed,omitempty"`
	NeighborhoodCap  *int      `toml:"neighborhood_cap,omitempty"`
	BackgroundSize   *int      `toml:"background_size,omitempty"`
	MinOverlap       *int      `toml:"min_overlap,omitempty"`
	MinPathwaySize   *int      `toml:"min_pathway_size,omitempty"`
	MaxPathwaySize   *int      `toml:"max_pathway_size,omitempty"`
	FDRThreshold     *float64  `toml:"fdr_threshold,omitempty"`
	Databases        []string  `toml:"databases,omitempty"`
	AlreadyKnown     *[]string `toml:"already_known,omitempty"`
}

type aggregationSection struct {
	Strategy            *string            `toml:"strategy,omitempty"`
	MinSupportThreshold *int               `toml:"min_support_threshold,omitempty"`
	FrequencyThreshold  *float64           `toml:"frequency_threshold,omitempty"`
	WeightedTopN        *int               `toml:"weighted_top_n,omitempty"`
	TrustWeights        map[string]float64 `toml:"trust_weights,omitempty"`
}

type thresholdsSection struct {
	High   *float64 `toml:"high,omitempty"`
	Medium *float64 `toml:"medium,omitempty"`
	Low    *float64 `toml:"low,omitempty"`
}

type semanticSection struct {
	RelevanceThreshold    *float64           `toml:"relevance_threshold,omitempty"`
	RepairBoost           *float64           `toml:"repair_boost,omitempty"`
	MaxResults            *int               `toml:"max_results,omitempty"`
	TermSaturation        *int               `toml:"term_saturation,omitempty"`
	ProgressiveThresholds *thresholdsSection `toml:"progressive_thresholds,omitempty"`
}

type diseaseSection struct {
	TopK      *int     `toml:"top_k,omitempty"`
	DecayBase *float64 `toml:"decay_base,omitempty"`
}

type weightsSection struct {
	Statistical *float64 `toml:"statistical,omitempty"`
	Network     *float64 `toml:"network,omitempty"`
	Relevance   *float64 `toml:"relevance,omitempty"`
	Literature  *float64 `toml:"literature,omitempty"`
	Disease     *float64 `toml:"disease,omitempty"`
}

type nesSection struct {
	Weights            *weightsSection `toml:"weights,omitempty"`
	PValueCap          *float64        `toml:"pvalue_cap,omitempty"`
	KeyNodeSaturation  *int            `toml:"key_node_saturation,omitempty"`
	CitationSaturation *int            `toml:"citation_saturation,omitempty"`
	MinCitations       *int            `toml:"min_citations,omitempty"`
	LiteratureContext  *string         `toml:"literature_context,omitempty"`
	TopHypothesesCount *int            `toml:"top_hypotheses_count,omitempty"`
}

type networkSection struct {
	MaxRetries         *int     `toml:"max_retries,omitempty"`
	RetryBackoffFactor *float64 `toml:"retry_backoff_factor,omitempty"`
	RetryInitialDelay  *string  `toml:"retry_initial_delay,omitempty"`
	RequestTimeout     *string  `toml:"request_timeout,omitempty"`
	MaxConcurrency     *int     `toml:"max_concurrency,omitempty"`
	RequestsPerSecond  *float64 `toml:"requests_per_second,omitempty"`
}

type lexiconSection struct {
	Repair      *[]string `toml:"repair,omitempty"`
	Process     *[]string `toml:"process,omitempty"`
	Tissue      *[]string `toml:"tissue,omitempty"`
	TissueGenes *[]string `toml:"tissue_genes,omitempty"`
	OffDomain   *[]string `toml:"off_domain,omitempty"`
}

type discoverySection struct {
	MinShared           *int  `toml:"min_shared,omitempty"`
	MaxPerPrimary       *int  `toml:"max_per_primary,omitempty"`
	LiteratureConfirm   *bool `toml:"literature_confirm,omitempty"`
	MinCoMentions       *int  `toml:"min_co_mentions,omitempty"`
	RequireConfirmation *bool `toml:"require_confirmation,omitempty"`
}

type sourcesSection struct {
	InteractionsFile  *string           `toml:"interactions_file,omitempty"`
	Neo4jURI          *string           `toml:"neo4j_uri,omitempty"`
	Neo4jUser         *string           `toml:"neo4j_user,omitempty"`
	Neo4jPassword     *string           `toml:"neo4j_password,omitempty"`
	GMT               map[string]string `toml:"gmt,omitempty"`
	DiseaseScoresFile *string           `toml:"disease_scores_file,omitempty"`
	ExclusionsFile    *string           `toml:"exclusions_file,omitempty"`
	PubMedBaseURL     *string           `toml:"pubmed_base_url,omitempty"`
	PubMedAPIKey      *string           `toml:"pubmed_api_key,omitempty"`
	PubMedEmail       *string           `toml:"pubmed_email,omitempty"`
}

type storageSection struct {
	DataDir *string `toml:"data_dir,omitempty"`
}

// apply overlays the set fields onto cfg.
//
//nolint:gocyclo // One branch per section
func (f *fileConfig) apply(cfg *Config) error {
	a := &cfg.Analysis

	if s := f.Analysis; s != nil {
		set(&a.NeighborsPerSeed, s.NeighborsPerSeed)
		set(&a.NeighborhoodCap, s.NeighborhoodCap)
		set(&a.BackgroundSize, s.BackgroundSize)
		set(&a.MinOverlap, s.MinOverlap)
		set(&a.MinPathwaySize, s.MinPathwaySize)
		set(&a.MaxPathwaySize, s.MaxPathwaySize)
		set(&a.FDRThreshold, s.FDRThreshold)
		set(&a.AlreadyKnown, s.AlreadyKnown)
		if s.Databases != nil {
			a.Databases = make([]domain.DatabaseKind, len(s.Databases))
			for i, db := range s.Databases {
				a.Databases[i] = domain.DatabaseKind(db)
			}
		}
	}

	if s := f.Aggregation; s != nil {
		if s.Strategy != nil {
			a.Strategy = domain.AggregationStrategyName(*s.Strategy)
		}
		set(&a.MinSupportThreshold, s.MinSupportThreshold)
		set(&a.FrequencyThreshold, s.FrequencyThreshold)
		set(&a.WeightedTopN, s.WeightedTopN)
		// Listed weights replace defaults per database; others stay.
		if len(s.TrustWeights) > 0 {
			weights := make(map[domain.DatabaseKind]float64, len(a.TrustWeights)+len(s.TrustWeights))
			for db, w := range a.TrustWeights {
				weights[db] = w
			}
			for db, w := range s.TrustWeights {
				weights[domain.DatabaseKind(db)] = w
			}
			a.TrustWeights = weights
		}
	}

	if s := f.Semantic; s != nil {
		set(&a.SemanticRelevanceThreshold, s.RelevanceThreshold)
		set(&a.SemanticRepairBoost, s.RepairBoost)
		set(&a.SemanticMaxResults, s.MaxResults)
		set(&a.TermSaturation, s.TermSaturation)
		if t := s.ProgressiveThresholds; t != nil {
			set(&a.ProgressiveThresholds.High, t.High)
			set(&a.ProgressiveThresholds.Medium, t.Medium)
			set(&a.ProgressiveThresholds.Low, t.Low)
		}
	}

	if s := f.Disease; s != nil {
		set(&a.DiseaseTopK, s.TopK)
		set(&a.DiseaseDecayBase, s.DecayBase)
	}

	if s := f.NES; s != nil {
		if w := s.Weights; w != nil {
			set(&a.NESWeights.Statistical, w.Statistical)
			set(&a.NESWeights.Network, w.Network)
			set(&a.NESWeights.Relevance, w.Relevance)
			set(&a.NESWeights.Literature, w.Literature)
			set(&a.NESWeights.Disease, w.Disease)
		}
		set(&a.PValueCap, s.PValueCap)
		set(&a.KeyNodeSaturation, s.KeyNodeSaturation)
		set(&a.CitationSaturation, s.CitationSaturation)
		set(&a.MinCitations, s.MinCitations)
		set(&a.LiteratureContext, s.LiteratureContext)
		set(&a.TopHypothesesCount, s.TopHypothesesCount)
	}

	if s := f.Network; s != nil {
		set(&a.MaxRetries, s.MaxRetries)
		set(&a.RetryBackoffFactor, s.RetryBackoffFactor)
		set(&a.MaxConcurrency, s.MaxConcurrency)
		set(&cfg.RequestsPerSecond, s.RequestsPerSecond)
		if err := parseDuration("network.retry_initial_delay", s.RetryInitialDelay, &a.RetryInitialDelay); err != nil {
			return err
		}
		if err := parseDuration("network.request_timeout", s.RequestTimeout, &a.RequestTimeout); err != nil {
			return err
		}
	}

	if s := f.Lexicon; s != nil {
		set(&a.Lexicon.Repair, s.Repair)
		set(&a.Lexicon.Process, s.Process)
		set(&a.Lexicon.Tissue, s.Tissue)
		set(&a.Lexicon.TissueGenes, s.TissueGenes)
		set(&a.Lexicon.OffDomain, s.OffDomain)
	}

	if s := f.Discovery; s != nil {
		set(&cfg.Discovery.MinShared, s.MinShared)
		set(&cfg.Discovery.MaxPerPrimary, s.MaxPerPrimary)
		set(&cfg.Discovery.LiteratureConfirm, s.LiteratureConfirm)
		set(&cfg.Discovery.MinCoMentions, s.MinCoMentions)
		set(&cfg.Discovery.RequireConfirmation, s.RequireConfirmation)
	}

	if s := f.Sources; s != nil {
		src := &cfg.Sources
		set(&src.InteractionsFile, s.InteractionsFile)
		set(&src.Neo4jURI, s.Neo4jURI)
		set(&src.Neo4jUser, s.Neo4jUser)
		set(&src.Neo4jPassword, s.Neo4jPassword)
		set(&src.DiseaseScoresFile, s.DiseaseScoresFile)
		set(&src.ExclusionsFile, s.ExclusionsFile)
		set(&src.PubMedBaseURL, s.PubMedBaseURL)
		set(&src.PubMedAPIKey, s.PubMedAPIKey)
		set(&src.PubMedEmail, s.PubMedEmail)
		for db, p := range s.GMT {
			src.GMTFiles[domain.DatabaseKind(db)] = p
		}
	}

	if s := f.Storage; s != nil {
		set(&cfg.DataDir, s.DataDir)
	}
	return nil
}

// fromConfig builds a fully populated file layout for rendering.
func fromConfig(cfg Config) fileConfig {
	a := cfg.Analysis

	dbs := make([]string, len(a.Databases))
	for i, db := range a.Databases {
		dbs[i] = string(db)
	}
	trust := make(map[string]float64, len(a.TrustWeights))
	for db, w := range a.TrustWeights {
		trust[string(db)] = w
	}
	gmt := make(map[string]string, len(cfg.Sources.GMTFiles))
	for db, p := range cfg.Sources.GMTFiles {
		gmt[string(db)] = p
	}

	src := &sourcesSection{GMT: gmt}
	optional := optionalString
	src.InteractionsFile = optional(cfg.Sources.InteractionsFile)
	src.Neo4jURI = optional(cfg.Sources.Neo4jURI)
	src.Neo4jUser = optional(cfg.Sources.Neo4jUser)
	src.DiseaseScoresFile = optional(cfg.Sources.DiseaseScoresFile)
	src.ExclusionsFile = optional(cfg.Sources.ExclusionsFile)
	src.PubMedBaseURL = optional(cfg.Sources.PubMedBaseURL)
	src.PubMedEmail = optional(cfg.Sources.PubMedEmail)

	return fileConfig{
		Analysis: &analysisSection{
			NeighborsPerSeed: ptr(a.NeighborsPerSeed),
			NeighborhoodCap:  ptr(a.NeighborhoodCap),
			BackgroundSize:   ptr(a.BackgroundSize),
			MinOverlap:       ptr(a.MinOverlap),
			MinPathwaySize:   ptr(a.MinPathwaySize),
			MaxPathwaySize:   ptr(a.MaxPathwaySize),
			FDRThreshold:     ptr(a.FDRThreshold),
			Databases:        dbs,
			AlreadyKnown:     optionalList(a.AlreadyKnown),
		},
		Aggregation: &aggregationSection{
			Strategy:            ptr(string(a.Strategy)),
			MinSupportThreshold: ptr(a.MinSupportThreshold),
			FrequencyThreshold:  ptr(a.FrequencyThreshold),
			WeightedTopN:        ptr(a.WeightedTopN),
			TrustWeights:        trust,
		},
		Semantic: &semanticSection{
			RelevanceThreshold: ptr(a.SemanticRelevanceThreshold),
			RepairBoost:        ptr(a.SemanticRepairBoost),
			MaxResults:         ptr(a.SemanticMaxResults),
			TermSaturation:     ptr(a.TermSaturation),
			ProgressiveThresholds: &thresholdsSection{
				High:   ptr(a.ProgressiveThresholds.High),
				Medium: ptr(a.ProgressiveThresholds.Medium),
				Low:    ptr(a.ProgressiveThresholds.Low),
			},
		},
		Disease: &diseaseSection{
			TopK:      ptr(a.DiseaseTopK),
			DecayBase: ptr(a.DiseaseDecayBase),
		},
		NES: &nesSection{
			Weights: &weightsSection{
				Statistical: ptr(a.NESWeights.Statistical),
				Network:     ptr(a.NESWeights.Network),
				Relevance:   ptr(a.NESWeights.Relevance),
				Literature:  ptr(a.NESWeights.Literature),
				Disease:     ptr(a.NESWeights.Disease),
			},
			PValueCap:          ptr(a.PValueCap),
			KeyNodeSaturation:  ptr(a.KeyNodeSaturation),
			CitationSaturation: ptr(a.CitationSaturation),
			MinCitations:       ptr(a.MinCitations),
			LiteratureContext:  ptr(a.LiteratureContext),
			TopHypothesesCount: ptr(a.TopHypothesesCount),
		},
		Network: &networkSection{
			MaxRetries:         ptr(a.MaxRetries),
			RetryBackoffFactor: ptr(a.RetryBackoffFactor),
			RetryInitialDelay:  ptr(a.RetryInitialDelay.String()),
			RequestTimeout:     ptr(a.RequestTimeout.String()),
			MaxConcurrency:     ptr(a.MaxConcurrency),
			RequestsPerSecond:  ptr(cfg.RequestsPerSecond),
		},
		Lexicon: &lexiconSection{
			Repair:      ptr(a.Lexicon.Repair),
			Process:     ptr(a.Lexicon.Process),
			Tissue:      ptr(a.Lexicon.Tissue),
			TissueGenes: ptr(a.Lexicon.TissueGenes),
			OffDomain:   ptr(a.Lexicon.OffDomain),
		},
		Discovery: &discoverySection{
			MinShared:           ptr(cfg.Discovery.MinShared),
			MaxPerPrimary:       ptr(cfg.Discovery.MaxPerPrimary),
			LiteratureConfirm:   ptr(cfg.Discovery.LiteratureConfirm),
			MinCoMentions:       ptr(cfg.Discovery.MinCoMentions),
			RequireConfirmation: ptr(cfg.Discovery.RequireConfirmation),
		},
		Sources: src,
		Storage: &storageSection{DataDir: optionalString(cfg.DataDir)},
	}
}

func optionalList(v []string) *[]string {
	if len(v) == 0 {
		return nil
	}
	return &v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
