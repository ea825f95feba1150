package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driving"
	"github.com/custodia-labs/pathscout/internal/logger"
)

var (
	analyzeJSON        bool
	analyzeStrategy    string
	analyzeLimit       int
	analyzeSeedsFile   string
	analyzeKnown       []string
	analyzeContext     string
	analyzeMetricsAddr string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [gene...]",
	Short: "Rank pathway hypotheses for seed genes",
	Long: `Runs the full pipeline for the given seed genes: neighbourhood
assembly, enrichment, secondary discovery, aggregation, relevance
filtering and evidence scoring. Seeds may also be read from a file,
one symbol per line.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.BoolVar(&analyzeJSON, "json", false, "output results as JSON")
	f.StringVarP(&analyzeStrategy, "strategy", "s", "", "aggregation strategy (intersection, frequency, weighted)")
	f.IntVarP(&analyzeLimit, "limit", "n", 0, "maximum number of hypotheses")
	f.StringVarP(&analyzeSeedsFile, "seeds-file", "f", "", "file with one seed gene per line")
	f.StringSliceVar(&analyzeKnown, "known", nil, "pathway ids or names to exclude as already known")
	f.StringVar(&analyzeContext, "context", "", "literature context appended to queries")
	f.StringVar(&analyzeMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	seeds := append([]string(nil), args...)
	if analyzeSeedsFile != "" {
		fromFile, err := readSeeds(analyzeSeedsFile)
		if err != nil {
			return err
		}
		seeds = append(seeds, fromFile...)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seed genes given: %w", domain.ErrInvalidInput)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	cfg := svc.Config
	if analyzeStrategy != "" {
		cfg.Strategy = domain.AggregationStrategyName(analyzeStrategy)
	}
	if analyzeLimit > 0 {
		cfg.TopHypothesesCount = analyzeLimit
	}
	if analyzeContext != "" {
		cfg.LiteratureContext = analyzeContext
	}
	if len(analyzeKnown) > 0 {
		cfg.AlreadyKnown = append(append([]string(nil), cfg.AlreadyKnown...), analyzeKnown...)
	}

	if analyzeMetricsAddr != "" && svc.Metrics != nil {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := svc.Metrics.Serve(metricsCtx, analyzeMetricsAddr); err != nil {
				logger.Warn("metrics server: %v", err)
			}
		}()
		logger.Info("serving metrics on %s/metrics", analyzeMetricsAddr)
	}

	result, err := svc.Analysis.Analyze(ctx, driving.AnalysisRequest{Seeds: seeds, Config: &cfg})
	if result != nil && result.Run != nil {
		if outErr := outputAnalysis(cmd, result); outErr != nil {
			return outErr
		}
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readSeeds reads one symbol per line, skipping blanks and # comments.
func readSeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seeds file: %w", err)
	}
	defer f.Close()

	var seeds []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, strings.Fields(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seeds file: %w", err)
	}
	return seeds, nil
}

type analysisOutput struct {
	RunID       string                         `json:"run_id"`
	Status      domain.RunStatus               `json:"status"`
	LastStage   domain.Stage                   `json:"last_stage"`
	Strategy    domain.AggregationStrategyName `json:"strategy"`
	Seeds       []domain.SeedGene              `json:"seeds"`
	Hypotheses  []domain.HypothesisRecord      `json:"hypotheses"`
	Diagnostics []domain.Diagnostic            `json:"diagnostics"`
}

func outputAnalysis(cmd *cobra.Command, result *driving.AnalysisResult) error {
	run := result.Run
	if analyzeJSON {
		out := analysisOutput{
			RunID:       run.ID,
			Status:      run.Status,
			LastStage:   run.LastStage,
			Strategy:    run.Strategy,
			Seeds:       run.Seeds,
			Hypotheses:  result.Records(),
			Diagnostics: run.Diagnostics,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Run %s (%s, last stage %s)\n", run.ID, run.Status, run.LastStage)
	for _, s := range run.Seeds {
		if !s.Valid {
			cmd.Printf("  skipped seed %s: %s\n", s.Symbol, s.Reason)
		}
	}
	cmd.Println()

	records := result.Records()
	if len(records) == 0 {
		cmd.Println("No hypotheses found.")
	} else {
		printRecords(cmd, records)
	}

	if n := len(run.Diagnostics); n > 0 {
		cmd.Println()
		cmd.Printf("%d diagnostic(s):\n", n)
		for _, d := range run.Diagnostics {
			cmd.Printf("  [%s/%s] %s: %s\n", d.Stage, d.Kind, d.Item, d.Message)
		}
	}
	return nil
}

func printRecords(cmd *cobra.Command, records []domain.HypothesisRecord) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPATHWAY\tNAME\tNES\tP_ADJ\tGENES\tCITES\tKEY")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%.2e\t%d\t%d\t%d\n",
			r.Rank, r.PathwayID, truncate(r.PathwayName, 48), r.NESScore, r.PAdj,
			r.EvidenceCount, r.CitationCount, r.KeyNodeCount)
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
