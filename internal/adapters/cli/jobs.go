package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tbg-logistics/wms-labeler/internal/application/jobs"
)

// NewJobsCommand groups checkpoint inspection and resume.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and resume interrupted print jobs",
	}
	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsResumeCommand())
	return cmd
}

func newJobsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List incomplete jobs, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			store := jobs.NewCheckpointStore(a.cfg.Output.CheckpointDir, a.logger)
			incomplete := store.ListIncomplete()
			if len(incomplete) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no incomplete jobs")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tMODE\tSOURCE\tPROGRESS\tUPDATED\tLAST ERROR")
			for _, cp := range incomplete {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
					cp.ID, cp.Mode, cp.SourceID,
					cp.NextTaskIndex, len(cp.Tasks),
					cp.UpdatedAt.Format("2006-01-02 15:04:05"),
					cp.LastError)
			}
			return w.Flush()
		},
	}
}

func newJobsResumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <job-id>",
		Short: "Resume an interrupted job from its last checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			executor := a.newExecutor()
			cp, err := executor.Resume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s completed (%d tasks)\n", cp.ID, len(cp.Tasks))
			return nil
		},
	}
}
