package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigCommand dumps the effective configuration with secrets
// redacted.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration (secrets redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			for _, pair := range a.cfg.Redacted() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", pair[0], pair[1])
			}
			return nil
		},
	}
}
