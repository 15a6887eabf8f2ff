package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipper/internal/stage"
)

func newUploadsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "uploads",
		Short: "List registered source videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := ctx.client().uploads(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list.Uploads) == 0 {
				fmt.Fprintln(out, "No uploads registered")
				return nil
			}

			rows := make([][]string, 0, len(list.Uploads))
			for _, upload := range list.Uploads {
				transcript := "no"
				if upload.HasTranscript {
					transcript = "yes"
				}
				rows = append(rows, []string{
					upload.ID,
					truncate(upload.Title, 40),
					stage.FormatTimecode(upload.DurationSeconds),
					strconv.Itoa(upload.ClipCount),
					transcript,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "TITLE", "DURATION", "CLIPS", "TRANSCRIPT"},
				rows, 2, 3))
			return nil
		},
	}
}
