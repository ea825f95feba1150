package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

var lineageJSON bool

var lineageCmd = &cobra.Command{
	Use:   "lineage [run-id] [pathway-id]",
	Short: "Trace a ranked pathway back to its seed genes",
	Long: `Shows the seed genes, primary pathways and secondary instances
that produced one aggregated pathway of a stored run.`,
	Args: cobra.ExactArgs(2),
	RunE: runLineage,
}

func init() {
	lineageCmd.Flags().BoolVar(&lineageJSON, "json", false, "output lineage as JSON")
	rootCmd.AddCommand(lineageCmd)
}

func runLineage(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	l, err := svc.Analysis.Lineage(ctx, args[0], args[1])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no lineage for %s in run %s", args[1], args[0])
	}
	if err != nil {
		return fmt.Errorf("lineage failed: %w", err)
	}

	if lineageJSON {
		data, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal lineage: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	p := l.AggregatedPathway
	cmd.Printf("%s  %s\n", p.CanonicalID, p.Name)
	cmd.Printf("  support %d, score %.3f\n", p.Support, p.Score)
	cmd.Printf("  seeds: %s\n", strings.Join(l.SeedGenes, ", "))
	cmd.Println()
	cmd.Println("Primary pathways:")
	for i := range l.PrimaryPathways {
		pp := &l.PrimaryPathways[i]
		cmd.Printf("  %s  %s (p_adj %.2e, %d genes)\n", pp.ID(), pp.Pathway.Name, pp.PAdj, len(pp.EvidenceGenes))
	}
	cmd.Println("Secondary instances:")
	for i := range l.SecondaryInstances {
		s := &l.SecondaryInstances[i]
		cmd.Printf("  %s via %s from %s\n", s.Pathway.CanonicalID(), s.Via, s.SourcePrimary)
	}
	return nil
}
