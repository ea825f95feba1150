package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

// Environment variables that override secrets in the file.
const (
	EnvNeo4jPassword = "PATHSCOUT_NEO4J_PASSWORD"
	EnvPubMedAPIKey  = "PATHSCOUT_PUBMED_API_KEY"
)

// Sources locates the reference data and remote services.
type Sources struct {
	InteractionsFile  string
	Neo4jURI          string
	Neo4jUser         string
	Neo4jPassword     string
	GMTFiles          map[domain.DatabaseKind]string
	DiseaseScoresFile string
	ExclusionsFile    string
	PubMedBaseURL     string
	PubMedAPIKey      string
	PubMedEmail       string
}

// Discovery tunes the membership discoverer and its literature
// confirmation.
type Discovery struct {
	MinShared     int
	MaxPerPrimary int

	// LiteratureConfirm searches PubMed for co-mentions of each candidate.
	LiteratureConfirm   bool
	MinCoMentions       int
	RequireConfirmation bool
}

// Config is the full application configuration.
type Config struct {
	Analysis          domain.AnalysisConfig
	Sources           Sources
	Discovery         Discovery
	RequestsPerSecond float64
	DataDir           string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Analysis:  domain.DefaultAnalysisConfig(),
		Sources:   Sources{GMTFiles: map[domain.DatabaseKind]string{}},
		Discovery: Discovery{MinShared: 3, MaxPerPrimary: 25, MinCoMentions: 1},
	}
}

// Validate checks the analysis settings and the adapter settings.
func (c Config) Validate() error {
	errs := []error{c.Analysis.Validate()}
	if c.Discovery.MinShared < 1 {
		errs = append(errs, &domain.ConfigError{Field: "discovery.min_shared", Reason: "must be >= 1"})
	}
	if c.Discovery.MaxPerPrimary < 0 {
		errs = append(errs, &domain.ConfigError{Field: "discovery.max_per_primary", Reason: "must be >= 0"})
	}
	if c.Discovery.MinCoMentions < 1 {
		errs = append(errs, &domain.ConfigError{Field: "discovery.min_co_mentions", Reason: "must be >= 1"})
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, &domain.ConfigError{Field: "network.requests_per_second", Reason: "must be >= 0"})
	}
	for db := range c.Sources.GMTFiles {
		if !db.IsValid() {
			errs = append(errs, &domain.ConfigError{Field: "sources.gmt", Reason: fmt.Sprintf("unknown database %q", db)})
		}
	}
	return errors.Join(errs...)
}

// Load reads a TOML file and overlays it on the defaults.
// Relative source paths are resolved against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Sources.resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes TOML and overlays it on the defaults. Unknown keys are
// rejected. Environment secrets win over the file. The result is not
// validated.
func Parse(data []byte) (Config, error) {
	var f fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, &domain.ConfigError{Field: "file", Reason: strict.String()}
		}
		return Config{}, &domain.ConfigError{Field: "file", Reason: err.Error()}
	}

	cfg := Default()
	if err := f.apply(&cfg); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(EnvNeo4jPassword); v != "" {
		cfg.Sources.Neo4jPassword = v
	}
	if v := os.Getenv(EnvPubMedAPIKey); v != "" {
		cfg.Sources.PubMedAPIKey = v
	}
	return cfg, nil
}

// Render encodes cfg as TOML. Secrets are left out.
func Render(cfg Config) ([]byte, error) {
	return toml.Marshal(fromConfig(cfg))
}

func (s *Sources) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	s.InteractionsFile = abs(s.InteractionsFile)
	s.DiseaseScoresFile = abs(s.DiseaseScoresFile)
	s.ExclusionsFile = abs(s.ExclusionsFile)
	for db, p := range s.GMTFiles {
		s.GMTFiles[db] = abs(p)
	}
}

func parseDuration(field string, v *string, dst *time.Duration) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return &domain.ConfigError{Field: field, Reason: fmt.Sprintf("invalid duration %q", *v)}
	}
	*dst = d
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func ptr[T any](v T) *T {
	return &v
}
