package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driving"
	"github.com/custodia-labs/pathscout/internal/logger"
)

var version = "dev"

var (
	configPath string
	verbose    bool
	debug      bool
)

// MetricsServer exposes collected metrics over HTTP until ctx is done.
type MetricsServer interface {
	Serve(ctx context.Context, addr string) error
}

// Services are the collaborators commands run against.
type Services struct {
	Analysis driving.AnalysisService
	Config   domain.AnalysisConfig

	// RenderConfig encodes the effective configuration.
	RenderConfig func() ([]byte, error)

	// Metrics is optional.
	Metrics MetricsServer

	// Close releases adapters. Optional.
	Close func() error
}

// Bootstrap builds the services from an optional config file path.
type Bootstrap func(ctx context.Context, configPath string) (*Services, error)

var (
	bootstrap Bootstrap
	services  *Services
)

var rootCmd = &cobra.Command{
	Use:   "pathscout",
	Short: "Discover and rank pathway hypotheses from seed genes",
	Long: `pathscout expands seed genes into an interaction neighbourhood,
finds enriched pathways, discovers related pathways and ranks the
aggregated candidates by a composite evidence score.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		switch {
		case debug:
			logger.SetLevel(logger.LevelDebug)
		case verbose:
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log stage progress")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug detail")
}

// SetBootstrap registers the function that wires the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if services != nil && services.Close != nil {
			if err := services.Close(); err != nil {
				logger.Warn("close: %v", err)
			}
		}
		services = nil
	}()
	return rootCmd.ExecuteContext(ctx)
}

// loadServices bootstraps the services once per process.
func loadServices(ctx context.Context) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errors.New("analysis service not configured")
	}
	s, err := bootstrap(ctx, configPath)
	if err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}
	if s == nil || s.Analysis == nil {
		return nil, errors.New("analysis service not configured")
	}
	services = s
	return services, nil
}
