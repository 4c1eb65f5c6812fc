package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"switchboard/internal/config"
	"switchboard/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline and queue health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				printSection(out, "Configuration", colorize)
				fmt.Fprintf(out, "%sData directory:      %s\n", statusIndent, cfg.Paths.DataDir)
				fmt.Fprintf(out, "%sLog directory:       %s\n", statusIndent, cfg.Paths.LogDir)
				notifyKind := statusWarn
				notifyMsg := "disabled"
				if cfg.Notifications.NtfyTopic != "" {
					notifyKind = statusOK
					notifyMsg = "enabled"
				}
				fmt.Fprintln(out, renderStatusLine("Notifications", notifyKind, notifyMsg, colorize))

				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				printSection(out, "Queue", colorize)
				fmt.Fprintf(out, "%sTotal:               %d\n", statusIndent, health.Total)
				fmt.Fprintf(out, "%sPending:             %d\n", statusIndent, health.Pending)
				fmt.Fprintf(out, "%sProcessing:          %d\n", statusIndent, health.Processing)
				failedKind := statusOK
				if health.Failed > 0 {
					failedKind = statusError
				}
				fmt.Fprintln(out, renderStatusLine("Failed", failedKind, strconv.Itoa(health.Failed), colorize))
				fmt.Fprintf(out, "%sCompleted:           %d\n", statusIndent, health.Completed)

				manager, err := buildPipelineManager(cfg, store)
				if err != nil {
					return err
				}
				printSection(out, "Stages", colorize)
				for _, check := range manager.HealthChecks(cmd.Context()) {
					kind := statusOK
					message := "ready"
					if !check.Ready {
						kind = statusError
						message = check.Detail
					}
					fmt.Fprintln(out, renderStatusLine(titleLabel(check.Name), kind, message, colorize))
				}
				return nil
			})
		},
	}
}
