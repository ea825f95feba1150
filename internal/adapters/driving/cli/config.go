package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the configuration as TOML: built-in defaults overlaid with
the file given by --config. The output is a valid config file.`,
	RunE: runConfig,
}

var configCheck bool

func init() {
	configCmd.Flags().BoolVar(&configCheck, "check", false, "only validate, print nothing on success")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(commandContext(cmd))
	if err != nil {
		return err
	}
	if configCheck {
		return svc.Config.Validate()
	}
	if svc.RenderConfig == nil {
		return errors.New("config rendering not available")
	}

	data, err := svc.RenderConfig()
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	cmd.Print(string(data))
	return nil
}
