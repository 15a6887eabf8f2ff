package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipper/internal/api"
)

const pollInterval = 2 * time.Second

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var geminiKey string
	var openaiKey string
	var wait bool

	cmd := &cobra.Command{
		Use:   "process <path-or-url>",
		Short: "Start highlight processing for a file or video URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			resp, err := client.process(cmd.Context(), api.ProcessRequest{
				Path:         args[0],
				GeminiAPIKey: geminiKey,
				OpenAIAPIKey: openaiKey,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job started: %s\n", resp.JobID)
			if !wait {
				return nil
			}

			lastStatus := ""
			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(pollInterval):
				}

				job, err := client.job(cmd.Context(), resp.JobID)
				if err != nil {
					return err
				}
				if job.Status != lastStatus {
					fmt.Fprintln(out, job.Status)
					lastStatus = job.Status
				}
				switch job.Status {
				case "done":
					for _, clip := range job.Clips {
						fmt.Fprintf(out, "Clip: %s (%s, score %d)\n", clip.Path, clip.Title, clip.Score)
					}
					return nil
				case "failed":
					return fmt.Errorf("job failed: %s", job.Error)
				}
			}
		},
	}

	cmd.Flags().StringVar(&geminiKey, "gemini-key", "", "Gemini API key override")
	cmd.Flags().StringVar(&openaiKey, "openai-key", "", "OpenAI API key override")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the job finishes")
	return cmd
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a local video to the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stored as: %s\n", resp.Filename)
			fmt.Fprintf(out, "Path:      %s\n", resp.Path)
			fmt.Fprintln(out, "Run \"clipper process\" with the stored path to cut highlights.")
			return nil
		},
	}
}
