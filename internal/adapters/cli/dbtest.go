package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// NewDbTestCommand runs a store connectivity probe.
func NewDbTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "db-test",
		Short: "Probe connectivity to the WMS store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			db, err := a.openDB()
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return shared.NewDbError("cannot access connection pool", err)
			}

			timeout := time.Duration(a.cfg.Pool.ValidationTimeoutMs) * time.Millisecond
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				return shared.NewDbError("store ping failed", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "store connection OK")
			return nil
		},
	}
}
