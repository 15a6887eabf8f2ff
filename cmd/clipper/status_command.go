package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			running := "stopped"
			runningColor := ansiRed
			if status.Running {
				running = "running"
				runningColor = ansiGreen
			}

			fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
			fmt.Fprintln(out, renderStatusLine("State", running, runningColor, colorize))
			fmt.Fprintln(out, renderStatusLine("PID", strconv.Itoa(status.PID), "", colorize))
			fmt.Fprintln(out, renderStatusLine("Workers", strconv.Itoa(status.Workers), "", colorize))
			fmt.Fprintln(out, renderStatusLine("Queue depth", strconv.Itoa(status.QueueDepth), "", colorize))

			fmt.Fprintln(out, renderSectionHeader("Jobs", colorize))
			fmt.Fprintln(out, renderStatusLine("Total", strconv.Itoa(status.Jobs.Total), "", colorize))
			fmt.Fprintln(out, renderStatusLine("Queued", strconv.Itoa(status.Jobs.Queued), "", colorize))
			fmt.Fprintln(out, renderStatusLine("Processing", strconv.Itoa(status.Jobs.Processing), "", colorize))
			fmt.Fprintln(out, renderStatusLine("Done", strconv.Itoa(status.Jobs.Done), "", colorize))
			failedColor := ""
			if status.Jobs.Failed > 0 {
				failedColor = ansiYellow
			}
			fmt.Fprintln(out, renderStatusLine("Failed", strconv.Itoa(status.Jobs.Failed), failedColor, colorize))

			fmt.Fprintln(out, renderSectionHeader("Library", colorize))
			fmt.Fprintln(out, renderStatusLine("Uploads", strconv.Itoa(status.Library.Uploads), "", colorize))
			fmt.Fprintln(out, renderStatusLine("Clips", strconv.Itoa(status.Library.Clips), "", colorize))
			fmt.Fprintln(out, renderStatusLine("Transcribed", strconv.Itoa(status.Library.Transcribed), "", colorize))

			if len(status.StageHealth) > 0 {
				fmt.Fprintln(out, renderSectionHeader("Stages", colorize))
				for _, health := range status.StageHealth {
					value := "ready"
					if !health.Ready {
						value = "not ready"
						if health.Detail != "" {
							value = fmt.Sprintf("not ready (%s)", health.Detail)
						}
					}
					fmt.Fprintln(out, renderStatusLine(health.Name, value, readinessColor(health.Ready), colorize))
				}
			}
			return nil
		},
	}
}
