package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tbg-logistics/wms-labeler/internal/application/jobs"
	"github.com/tbg-logistics/wms-labeler/internal/domain/printing"
)

// NewRunMoveCommand prints all pallet labels for a carrier move,
// stop by stop, with stop and trailer info tags in between.
func NewRunMoveCommand() *cobra.Command {
	var (
		carrierMoveID string
		dryRun        bool
		printerID     string
		outputDir     string
	)

	cmd := &cobra.Command{
		Use:   "run-move",
		Short: "Print pallet labels for a whole carrier move",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			preparer, err := a.buildPreparer()
			if err != nil {
				return err
			}
			move, err := preparer.PrepareCarrierMoveJob(cmd.Context(), carrierMoveID)
			if err != nil {
				return err
			}
			tasks, err := jobs.BuildCarrierMoveTasks(move, a.logger)
			if err != nil {
				return err
			}

			var printer *printing.PrinterConfig
			if !dryRun {
				registry, err := a.loadRegistry()
				if err != nil {
					return err
				}
				printer, err = a.selectPrinter(registry, printerID, moveSelectionContext(move))
				if err != nil {
					return err
				}
			}

			dir := outputDir
			if dir == "" {
				dir = filepath.Join(a.cfg.Output.Dir, "move-"+move.CarrierMoveID)
			}

			executor := a.newExecutor()
			cp, err := executor.Execute(cmd.Context(), jobs.ExecuteRequest{
				ID:        jobID(string(jobs.ModeCarrierMove), move.CarrierMoveID),
				Mode:      jobs.ModeCarrierMove,
				SourceID:  move.CarrierMoveID,
				OutputDir: dir,
				Tasks:     tasks,
				Printer:   printer,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "printed %d labels for carrier move %s across %d stops (job %s)\n",
				len(cp.Tasks), move.CarrierMoveID, len(move.Groups), cp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&carrierMoveID, "carrier-move-id", "", "Carrier move identifier (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Write label files only; do not transmit")
	cmd.Flags().StringVar(&printerID, "printer", "", "Force a printer id, bypassing routing rules")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for rendered label files")
	_ = cmd.MarkFlagRequired("carrier-move-id")
	return cmd
}

// moveSelectionContext builds routing facts from the first prepared
// shipment; a whole move prints on one printer.
func moveSelectionContext(move *jobs.PreparedCarrierMoveJob) map[string]string {
	ctx := map[string]string{"carrierMoveId": move.CarrierMoveID}
	for _, g := range move.Groups {
		for _, job := range g.Jobs {
			ctx["carrierCode"] = job.Shipment.CarrierCode
			ctx["stagingLocation"] = job.StagingLocation
			return ctx
		}
	}
	return ctx
}
