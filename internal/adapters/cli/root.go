// Package cli wires the labeling pipeline behind the wms-labeler
// command surface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

var configFile string

// NewRootCommand creates the root command for the CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wms-labeler",
		Short: "Walmart Canada pallet label pipeline",
		Long: `wms-labeler assembles shipment data from the WMS store, renders
Walmart Canada pallet labels and streams them to network label printers,
checkpointing progress so interrupted jobs can be resumed.

Examples:
  wms-labeler run --shipment-id 8000141715
  wms-labeler run-move --carrier-move-id 205109 --dry-run
  wms-labeler jobs list
  wms-labeler jobs resume SHIPMENT-8000141715-b91f
  wms-labeler db-test
  wms-labeler config`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to an env-format config file (overrides discovery)")

	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewDbTestCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewRunMoveCommand())
	rootCmd.AddCommand(NewJobsCommand())

	return rootCmd
}

// Execute runs the root command and exits with the taxonomy code of any
// failure.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var typed *shared.Error
		if ok := asPipelineError(err, &typed); ok && typed.Hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", typed.Hint)
		}
		os.Exit(shared.ExitCodeFor(err))
	}
}
