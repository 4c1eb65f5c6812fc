package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"switchboard/internal/calls"
	"switchboard/internal/config"
	"switchboard/internal/notifications"
	"switchboard/internal/queue"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var announce bool

	cmd := &cobra.Command{
		Use:   "ingest [eventFile]",
		Short: "Enqueue a call-ended event from a JSON file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readEventPayload(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			event, err := calls.DecodeEndedEvent(payload)
			if err != nil {
				return fmt.Errorf("decode call event: %w", err)
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, created, err := store.IngestEvent(cmd.Context(), event)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !created {
					fmt.Fprintf(out, "Call %s already enqueued (item %d, status %s)\n", item.CallID, item.ID, item.Status)
					return nil
				}
				fmt.Fprintf(out, "Enqueued call %s as item %d\n", item.CallID, item.ID)

				if announce {
					notifier := notifications.NewService(cfg)
					if err := notifier.NotifyCallReceived(cmd.Context(), item.CallID, item.BusinessID); err != nil {
						fmt.Fprintf(out, "Notification failed: %v\n", err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&announce, "notify", false, "Send a call-received notification after enqueueing")
	return cmd
}

func readEventPayload(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		payload, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}
		return payload, nil
	}

	payload, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	return payload, nil
}
