package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

var runsJSON bool

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored analysis runs",
	RunE:  runListRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the ranked hypotheses of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

func init() {
	runsCmd.PersistentFlags().BoolVar(&runsJSON, "json", false, "output as JSON")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	runs, err := svc.Analysis.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("list runs failed: %w", err)
	}

	if runsJSON {
		return printJSON(cmd, runs)
	}
	if len(runs) == 0 {
		cmd.Println("No runs stored.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tSTRATEGY\tSEEDS\tHYPOTHESES")
	for i := range runs {
		r := &runs[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Strategy, len(r.Seeds), len(r.Hypotheses))
	}
	return w.Flush()
}

func runShowRun(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	run, err := svc.Analysis.GetRun(ctx, args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("get run failed: %w", err)
	}

	if runsJSON {
		return printJSON(cmd, run)
	}

	cmd.Printf("Run %s (%s, last stage %s)\n", run.ID, run.Status, run.LastStage)
	if run.Error != "" {
		cmd.Printf("  error: %s\n", run.Error)
	}
	cmd.Println()
	records := run.Records()
	if len(records) == 0 {
		cmd.Println("No hypotheses found.")
		return nil
	}
	printRecords(cmd, records)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
