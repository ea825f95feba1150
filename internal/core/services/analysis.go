package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
	"github.com/custodia-labs/pathscout/internal/core/ports/driving"
	"github.com/custodia-labs/pathscout/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// errNoRunStore is returned by the history methods when nothing persists runs.
var errNoRunStore = errors.New("run store not configured")

// AnalysisService runs the discovery pipeline stage by stage.
type AnalysisService struct {
	cfg         domain.AnalysisConfig
	neighbors   driven.NeighborSource
	memberships driven.PathwayMembershipSource
	discoverer  driven.PathwayDiscoverer
	reference   driven.DiseaseGeneReference

	// Optional collaborators.
	literature driven.LiteratureSource
	registry   driven.GeneRegistry
	exclusions driven.ExclusionList
	runStore   driven.RunStore
	observer   driven.CallObserver

	now func() time.Time
}

// NewAnalysisService creates an analysis service. The reference tables
// must be fully loaded; they are only read during runs.
func NewAnalysisService(
	cfg domain.AnalysisConfig,
	neighbors driven.NeighborSource,
	memberships driven.PathwayMembershipSource,
	discoverer driven.PathwayDiscoverer,
	reference driven.DiseaseGeneReference,
) *AnalysisService {
	return &AnalysisService{
		cfg:         cfg,
		neighbors:   neighbors,
		memberships: memberships,
		discoverer:  discoverer,
		reference:   reference,
		now:         time.Now,
	}
}

// SetLiteratureSource enables literature support in the NES.
func (s *AnalysisService) SetLiteratureSource(source driven.LiteratureSource) {
	s.literature = source
}

// SetGeneRegistry enables seed validation against known identifiers.
func (s *AnalysisService) SetGeneRegistry(registry driven.GeneRegistry) {
	s.registry = registry
}

// SetExclusionList sets the already-known pathways removed after enrichment.
func (s *AnalysisService) SetExclusionList(list driven.ExclusionList) {
	s.exclusions = list
}

// SetRunStore enables run persistence.
func (s *AnalysisService) SetRunStore(store driven.RunStore) {
	s.runStore = store
}

// SetObserver sets the call and stage observer.
func (s *AnalysisService) SetObserver(observer driven.CallObserver) {
	s.observer = observer
}

// Analyze runs every stage in order. Configuration errors are returned
// before any stage runs. Cancellation is checked between stages; the
// partial result is returned together with the context error.
//
//nolint:gocyclo,funlen // Orchestration function with necessary sequential steps
func (s *AnalysisService) Analyze(ctx context.Context, req driving.AnalysisRequest) (*driving.AnalysisResult, error) {
	cfg := s.cfg
	if req.Config != nil {
		cfg = *req.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := NewAggregationStrategy(cfg)
	if err != nil {
		return nil, err
	}

	policy := newRetryPolicy(cfg, s.observer)
	run := &domain.AnalysisRun{
		ID:          uuid.New().String(),
		CreatedAt:   s.now(),
		Strategy:    strategy.Name(),
		Hypotheses:  []domain.ScoredHypothesis{},
		Lineages:    []domain.Lineage{},
		Diagnostics: []domain.Diagnostic{},
	}
	result := &driving.AnalysisResult{Run: run}
	logger.Info("Starting analysis %s with %d seed(s), strategy %s", run.ID, len(req.Seeds), cfg.Strategy)

	var valid []string
	err = s.runStage(ctx, run, domain.StageValidation, func(context.Context) error {
		seeds, diags := s.validateSeeds(req.Seeds)
		result.Seeds = seeds
		run.Seeds = seeds
		run.Diagnostics = append(run.Diagnostics, diags...)
		for _, sd := range seeds {
			if sd.Valid {
				valid = append(valid, sd.Symbol)
			}
		}
		return nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	err = s.runStage(ctx, run, domain.StageNeighborhood, func(ctx context.Context) error {
		assembler := NewNeighborhoodAssembler(s.neighbors, policy, cfg.MaxConcurrency)
		n, diags, err := assembler.Assemble(ctx, valid, cfg.NeighborsPerSeed, cfg.NeighborhoodCap)
		if err != nil {
			return err
		}
		result.Neighborhood = n
		run.Diagnostics = append(run.Diagnostics, diags...)
		return nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	err = s.runStage(ctx, run, domain.StageEnrichment, func(ctx context.Context) error {
		engine := NewEnrichmentEngine(s.memberships, s.exclusions, policy, cfg.MaxConcurrency)
		primaries, diags, err := engine.Enrich(ctx, result.Neighborhood, cfg)
		if err != nil {
			return err
		}
		result.Primaries = primaries
		run.Diagnostics = append(run.Diagnostics, diags...)
		if len(primaries) == 0 {
			run.Diagnostics = append(run.Diagnostics, domain.Diagnostic{
				Stage:   domain.StageEnrichment,
				Kind:    domain.DiagnosticDegenerate,
				Message: "no pathway passed the FDR threshold",
			})
		}
		return nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	err = s.runStage(ctx, run, domain.StageDiscovery, func(ctx context.Context) error {
		engine := NewDiscoveryEngine(s.discoverer, policy, cfg.MaxConcurrency)
		instances, diags, err := engine.Discover(ctx, result.Primaries)
		if err != nil {
			return err
		}
		result.Secondaries = instances
		run.Diagnostics = append(run.Diagnostics, diags...)
		return nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	err = s.runStage(ctx, run, domain.StageAggregation, func(context.Context) error {
		agg, err := NewAggregator(strategy).Aggregate(result.Secondaries, result.Primaries)
		if err != nil {
			return err
		}
		result.Aggregation = agg
		run.Strategy = agg.Strategy
		if agg.IsEmpty() && len(result.Primaries) > 0 {
			run.Diagnostics = append(run.Diagnostics, domain.Diagnostic{
				Stage:   domain.StageAggregation,
				Kind:    domain.DiagnosticDegenerate,
				Message: fmt.Sprintf("no pathway retained by %s aggregation", strategy.Name()),
			})
		}
		return nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	err = s.runStage(ctx, run, domain.StageRelevance, func(context.Context) error {
		result.Filtered = NewRelevanceFilter(cfg).Filter(result.Aggregation.Pathways)
		return nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	err = s.runStage(ctx, run, domain.StageScoring, func(ctx context.Context) error {
		disease := NewDiseaseScorer(s.reference, cfg.DiseaseTopK, cfg.DiseaseDecayBase)
		scorer := NewNESScorer(s.literature, disease, policy, cfg)
		ranked, diags, err := scorer.Score(ctx, result.Filtered, result.Neighborhood, result.Primaries)
		if err != nil {
			return err
		}
		lineages, err := buildLineages(ranked, result.Primaries)
		if err != nil {
			return err
		}
		result.Hypotheses = ranked
		run.Hypotheses = ranked
		run.Lineages = lineages
		run.Diagnostics = append(run.Diagnostics, diags...)
		return nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	run.LastStage = domain.StageComplete
	return s.finish(ctx, result, nil)
}

// runStage executes one stage if the context is still live and records it
// as the last completed stage on success.
func (s *AnalysisService) runStage(
	ctx context.Context, run *domain.AnalysisRun, stage domain.Stage, fn func(context.Context) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := logger.Stage(string(stage))
	start := time.Now()
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	done()
	if s.observer != nil {
		s.observer.ObserveStage(stage, time.Since(start))
	}
	run.LastStage = stage
	return nil
}

// finish stamps the run status and persists it. Persistence failures are
// logged and never mask the analysis outcome.
func (s *AnalysisService) finish(
	ctx context.Context, result *driving.AnalysisResult, err error,
) (*driving.AnalysisResult, error) {
	run := result.Run
	run.FinishedAt = s.now()
	switch {
	case err == nil:
		run.Status = domain.RunStatusCompleted
		logger.Info("Analysis %s completed with %d hypotheses", run.ID, len(run.Hypotheses))
	case isCancellation(err):
		run.Status = domain.RunStatusCancelled
		run.Error = err.Error()
		logger.Warn("Analysis %s cancelled after stage %q", run.ID, run.LastStage)
	default:
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
		logger.Warn("Analysis %s failed: %v", run.ID, err)
	}

	if s.runStore != nil {
		if serr := s.runStore.SaveRun(context.WithoutCancel(ctx), run); serr != nil {
			logger.Warn("Failed to save run %s: %v", run.ID, serr)
		}
	}
	return result, err
}

// validateSeeds normalises and de-duplicates the seeds and marks the
// unrecognised ones invalid.
func (s *AnalysisService) validateSeeds(raw []string) ([]domain.SeedGene, []domain.Diagnostic) {
	seeds := make([]domain.SeedGene, 0, len(raw))
	diags := make([]domain.Diagnostic, 0)
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		sym := domain.NormalizeSymbol(r)
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}

		seed := domain.SeedGene{Symbol: sym, Valid: true}
		switch {
		case !domain.IsWellFormedSymbol(sym):
			seed.Valid = false
			seed.Reason = "malformed gene identifier"
		case s.registry != nil && !s.registry.Known(sym):
			seed.Valid = false
			seed.Reason = "unrecognised gene identifier"
		}
		if !seed.Valid {
			diags = append(diags, domain.Diagnostic{
				Stage:   domain.StageValidation,
				Kind:    domain.DiagnosticValidation,
				Item:    r,
				Message: fmt.Sprintf("%s: %s", seed.Reason, domain.ErrValidation),
			})
			logger.Warn("Skipping seed %q: %s", r, seed.Reason)
		}
		seeds = append(seeds, seed)
	}
	return seeds, diags
}

// buildLineages traces each hypothesis back to its primaries and seeds.
func buildLineages(hypotheses []domain.ScoredHypothesis, primaries []domain.PrimaryPathway) ([]domain.Lineage, error) {
	byID := make(map[string]domain.PrimaryPathway, len(primaries))
	for _, p := range primaries {
		byID[p.ID()] = p
	}

	out := make([]domain.Lineage, 0, len(hypotheses))
	for _, h := range hypotheses {
		lin := domain.Lineage{
			PathwayID:          h.Pathway.CanonicalID,
			SeedGenes:          h.SeedGenes,
			SecondaryInstances: h.Pathway.Sources,
			AggregatedPathway:  h.Pathway,
		}
		for _, id := range h.Pathway.PrimaryIDs() {
			p, ok := byID[id]
			if !ok {
				return nil, &domain.LineageError{PathwayID: h.Pathway.CanonicalID, PrimaryID: id}
			}
			lin.PrimaryPathways = append(lin.PrimaryPathways, p)
		}
		out = append(out, lin)
	}
	return out, nil
}

// GetRun returns a persisted run.
func (s *AnalysisService) GetRun(ctx context.Context, runID string) (*domain.AnalysisRun, error) {
	if s.runStore == nil {
		return nil, errNoRunStore
	}
	return s.runStore.GetRun(ctx, runID)
}

// ListRuns returns persisted runs, newest first.
func (s *AnalysisService) ListRuns(ctx context.Context) ([]domain.AnalysisRun, error) {
	if s.runStore == nil {
		return nil, errNoRunStore
	}
	return s.runStore.ListRuns(ctx)
}

// Lineage returns the lineage of one pathway of a persisted run.
func (s *AnalysisService) Lineage(ctx context.Context, runID, pathwayID string) (*domain.Lineage, error) {
	if s.runStore == nil {
		return nil, errNoRunStore
	}
	return s.runStore.GetLineage(ctx, runID, pathwayID)
}
