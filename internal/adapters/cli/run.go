package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tbg-logistics/wms-labeler/internal/application/jobs"
	"github.com/tbg-logistics/wms-labeler/internal/domain/printing"
)

// NewRunCommand prints all pallet labels for one shipment.
func NewRunCommand() *cobra.Command {
	var (
		shipmentID string
		dryRun     bool
		printerID  string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Print pallet labels for a shipment",
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
			job, err := preparer.PrepareShipmentJob(cmd.Context(), shipmentID)
			if err != nil {
				return err
			}
			tasks, err := jobs.BuildShipmentTasks(job, a.logger)
			if err != nil {
				return err
			}

			var printer *printing.PrinterConfig
			if !dryRun {
				registry, err := a.loadRegistry()
				if err != nil {
					return err
				}
				printer, err = a.selectPrinter(registry, printerID, map[string]string{
					"shipmentId":      job.ShipmentID,
					"carrierCode":     job.Shipment.CarrierCode,
					"stagingLocation": job.StagingLocation,
				})
				if err != nil {
					return err
				}
			}

			dir := outputDir
			if dir == "" {
				dir = filepath.Join(a.cfg.Output.Dir, job.ShipmentID)
			}

			executor := a.newExecutor()
			cp, err := executor.Execute(cmd.Context(), jobs.ExecuteRequest{
				ID:        jobID(string(jobs.ModeShipment), job.ShipmentID),
				Mode:      jobs.ModeShipment,
				SourceID:  job.ShipmentID,
				OutputDir: dir,
				Tasks:     tasks,
				Printer:   printer,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "printed %d labels for shipment %s (job %s)\n",
				len(cp.Tasks), job.ShipmentID, cp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shipmentID, "shipment-id", "", "Shipment identifier (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Write label files only; do not transmit")
	cmd.Flags().StringVar(&printerID, "printer", "", "Force a printer id, bypassing routing rules")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for rendered label files")
	_ = cmd.MarkFlagRequired("shipment-id")
	return cmd
}

// jobID builds a readable checkpoint id with a short unique suffix.
func jobID(mode, source string) string {
	return fmt.Sprintf("%s-%s-%s", mode, source, strings.Split(uuid.NewString(), "-")[0])
}
