package main

import (
	"context"
	"errors"
	"slices"

	"github.com/custodia-labs/pathscout/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pathscout/internal/adapters/driven/discovery"
	"github.com/custodia-labs/pathscout/internal/adapters/driven/literature/pubmed"
	"github.com/custodia-labs/pathscout/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/pathscout/internal/adapters/driven/network/neo4j"
	"github.com/custodia-labs/pathscout/internal/adapters/driven/network/tsv"
	"github.com/custodia-labs/pathscout/internal/adapters/driven/pathways/gmt"
	reffile "github.com/custodia-labs/pathscout/internal/adapters/driven/reference/file"
	"github.com/custodia-labs/pathscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pathscout/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pathscout/internal/adapters/driving/cli"
	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
	"github.com/custodia-labs/pathscout/internal/core/services"
	"github.com/custodia-labs/pathscout/internal/logger"
)

// loadConfig reads the config file, or the defaults when path is empty.
func loadConfig(path string) (file.Config, error) {
	if path == "" {
		return file.Parse(nil)
	}
	return file.Load(path)
}

// bootstrap wires every adapter into the analysis service.
//
//nolint:gocyclo // Linear wiring
func bootstrap(ctx context.Context, configPath string) (*cli.Services, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (*cli.Services, error) {
		_ = closeAll()
		return nil, err
	}

	neighbors, registry, err := neighborSource(ctx, cfg.Sources, &closers)
	if err != nil {
		return fail(err)
	}

	if len(cfg.Sources.GMTFiles) == 0 {
		return fail(&domain.ConfigError{Field: "sources.gmt", Reason: "at least one gene set file is required"})
	}
	pathways := gmt.NewSource()
	for _, db := range sortedDatabases(cfg.Sources.GMTFiles) {
		if err := pathways.LoadFile(db, cfg.Sources.GMTFiles[db]); err != nil {
			return fail(err)
		}
		logger.Debug("loaded %s gene sets", db)
	}
	if registry == nil {
		registry = pathways
	}

	disease := reffile.NewDiseaseTable(nil)
	if p := cfg.Sources.DiseaseScoresFile; p != "" {
		if disease, err = reffile.LoadDiseaseTable(p); err != nil {
			return fail(err)
		}
	}

	literature := pubmed.NewClient(pubmed.Config{
		BaseURL:           cfg.Sources.PubMedBaseURL,
		APIKey:            cfg.Sources.PubMedAPIKey,
		Email:             cfg.Sources.PubMedEmail,
		Timeout:           cfg.Analysis.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	svc := services.NewAnalysisService(cfg.Analysis, neighbors, pathways, pathwayDiscoverer(cfg.Discovery, pathways, literature), disease)
	svc.SetGeneRegistry(registry)
	svc.SetLiteratureSource(literature)

	if p := cfg.Sources.ExclusionsFile; p != "" {
		list, err := reffile.LoadExclusionList(p)
		if err != nil {
			return fail(err)
		}
		svc.SetExclusionList(list)
	}

	var store driven.RunStore
	sqliteStore, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		logger.Warn("run history disabled, keeping runs in memory: %v", err)
		store = memory.NewRunStore()
	} else {
		closers = append(closers, sqliteStore.Close)
		store = sqliteStore
	}
	svc.SetRunStore(store)

	observer := prometheus.NewObserver()
	svc.SetObserver(observer)

	return &cli.Services{
		Analysis:     svc,
		Config:       cfg.Analysis,
		RenderConfig: func() ([]byte, error) { return file.Render(cfg) },
		Metrics:      observer,
		Close:        closeAll,
	}, nil
}

// pathwayDiscoverer finds related pathways by shared members, confirmed by
// literature co-mention when enabled.
func pathwayDiscoverer(
	cfg file.Discovery,
	pathways *gmt.Source,
	literature driven.LiteratureSource,
) driven.PathwayDiscoverer {
	membership := discovery.NewMembershipDiscoverer(pathways, discovery.Config{
		Databases:     pathways.Databases(),
		MinShared:     cfg.MinShared,
		MaxPerPrimary: cfg.MaxPerPrimary,
	})
	if !cfg.LiteratureConfirm {
		return membership
	}
	return discovery.NewLiteratureDiscoverer(membership, literature, discovery.LiteratureConfig{
		MinCoMentions:       cfg.MinCoMentions,
		RequireConfirmation: cfg.RequireConfirmation,
	})
}

// neighborSource prefers a local interaction table over Neo4j. The table
// doubles as the gene registry.
func neighborSource(
	ctx context.Context,
	src file.Sources,
	closers *[]func() error,
) (driven.NeighborSource, driven.GeneRegistry, error) {
	switch {
	case src.InteractionsFile != "":
		table, err := tsv.Load(src.InteractionsFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("loaded %d genes from %s", table.Size(), src.InteractionsFile)
		return table, table, nil

	case src.Neo4jURI != "":
		driver, err := neo4j.NewBoltDriver(ctx, neo4j.Config{
			URI:      src.Neo4jURI,
			Username: src.Neo4jUser,
			Password: src.Neo4jPassword,
		})
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, func() error { return driver.Close(context.Background()) })
		return neo4j.NewNeighborSource(driver), nil, nil

	default:
		return nil, nil, &domain.ConfigError{Field: "sources", Reason: "set interactions_file or neo4j_uri"}
	}
}

func sortedDatabases(files map[domain.DatabaseKind]string) []domain.DatabaseKind {
	out := make([]domain.DatabaseKind, 0, len(files))
	for db := range files {
		out = append(out, db)
	}
	slices.Sort(out)
	return out
}
