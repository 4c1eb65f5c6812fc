package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"switchboard/internal/config"
	"switchboard/internal/queue"
)

func newCallsCommand(ctx *commandContext) *cobra.Command {
	callsCmd := &cobra.Command{
		Use:   "calls",
		Short: "Inspect persisted call records",
	}
	callsCmd.AddCommand(newShowCommand(ctx))
	return callsCmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "show <callID>",
		Short: "Show everything the pipeline recorded for one call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callID := args[0]
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				reqCtx := cmd.Context()

				item, err := store.GetByCallID(reqCtx, callID)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("call %s not found", callID)
				}
				printQueueSection(out, item, colorize)

				call, err := store.GetCall(reqCtx, callID)
				if err != nil {
					return err
				}
				printCallSection(out, call, full, colorize)

				analysisRow, err := store.GetAnalysis(reqCtx, callID)
				if err != nil {
					return err
				}
				printAnalysisSection(out, analysisRow, colorize)

				cost, err := store.GetCost(reqCtx, callID)
				if err != nil {
					return err
				}
				printCostSection(out, cost, colorize)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print the full stored transcript")
	return cmd
}

func printSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}

func printQueueSection(out io.Writer, item *queue.Item, colorize bool) {
	printSection(out, "Queue", colorize)
	kind := statusOK
	switch {
	case item.Status == queue.StatusFailed:
		kind = statusError
	case item.Status != queue.StatusCompleted:
		kind = statusInfo
	}
	fmt.Fprintln(out, renderStatusLine("Status", kind, string(item.Status), colorize))
	fmt.Fprintf(out, "%sItem ID:             %d\n", statusIndent, item.ID)
	fmt.Fprintf(out, "%sBusiness:            %s\n", statusIndent, item.BusinessID)
	fmt.Fprintf(out, "%sAttempts:            %d\n", statusIndent, item.Attempts)
	fmt.Fprintf(out, "%sNext retry:          %s\n", statusIndent, formatOptionalTime(item.NextRetryAt))
	if item.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, item.ErrorMessage, colorize))
	}
}

func printCallSection(out io.Writer, call *queue.CallRecord, full, colorize bool) {
	printSection(out, "Call", colorize)
	if call == nil {
		fmt.Fprintln(out, renderStatusLine("Record", statusWarn, "not yet persisted", colorize))
		return
	}
	fmt.Fprintf(out, "%sCaller:              %s\n", statusIndent, call.CallerPhone)
	fmt.Fprintf(out, "%sDuration:            %ds\n", statusIndent, call.DurationSeconds)
	fmt.Fprintf(out, "%sSummary:             %s\n", statusIndent, truncate(call.Summary, 80))
	transcript := call.Transcript
	if !full {
		transcript = truncate(transcript, 120)
	}
	fmt.Fprintf(out, "%sTranscript:          %s\n", statusIndent, transcript)
}

func printAnalysisSection(out io.Writer, analysisRow *queue.AnalysisRecord, colorize bool) {
	printSection(out, "Analysis", colorize)
	if analysisRow == nil {
		fmt.Fprintln(out, renderStatusLine("Record", statusWarn, "not yet persisted", colorize))
		return
	}
	fmt.Fprintf(out, "%sStatus:              %s\n", statusIndent, analysisRow.Status)
	fmt.Fprintf(out, "%sScore:               %s\n", statusIndent, strconv.FormatFloat(analysisRow.Score, 'f', -1, 64))
	fmt.Fprintf(out, "%sSummary:             %s\n", statusIndent, truncate(analysisRow.Summary, 80))
}

func printCostSection(out io.Writer, cost *queue.CostRecord, colorize bool) {
	printSection(out, "Cost", colorize)
	if cost == nil {
		fmt.Fprintln(out, renderStatusLine("Record", statusWarn, "not yet persisted", colorize))
		return
	}
	rows := [][]string{
		{"Telephony", formatMoney(cost.VapiCost)},
		{"LLM", formatMoney(cost.LLMCost)},
		{"TTS", formatMoney(cost.TTSCost)},
		{"STT", formatMoney(cost.STTCost)},
		{"SMS", formatMoney(cost.SMSCost)},
		{"Total", formatMoney(cost.TotalCost)},
	}
	fmt.Fprintln(out, renderTable([]string{"Service", "Cost"}, rows, []columnAlignment{alignLeft, alignRight}))
}
