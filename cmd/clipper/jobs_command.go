package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs [job-id]",
		Short: "List jobs or show one job in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				job, err := ctx.client().job(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "ID:      %s\n", job.ID)
				fmt.Fprintf(out, "Status:  %s\n", job.Status)
				fmt.Fprintf(out, "Source:  %s\n", job.Source)
				if job.UploadID != "" {
					fmt.Fprintf(out, "Upload:  %s\n", job.UploadID)
				}
				if job.Error != "" {
					fmt.Fprintf(out, "Error:   %s\n", job.Error)
				}
				for _, clip := range job.Clips {
					fmt.Fprintf(out, "Clip:    %s (%s, score %d, %s-%s)\n",
						clip.Path, clip.Title, clip.Score, clip.StartTime, clip.EndTime)
				}
				return nil
			}

			list, err := ctx.client().jobs(cmd.Context())
			if err != nil {
				return err
			}
			if len(list.Jobs) == 0 {
				fmt.Fprintln(out, "No jobs tracked")
				return nil
			}

			rows := make([][]string, 0, len(list.Jobs))
			for _, job := range list.Jobs {
				rows = append(rows, []string{
					job.ID,
					job.Status,
					truncate(job.Source, 48),
					job.UpdatedAt,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "STATUS", "SOURCE", "UPDATED"}, rows))
			return nil
		},
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
