package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"switchboard/internal/callcost"
)

func newCostCommand() *cobra.Command {
	var durationSeconds int
	var telephonyCost float64
	var inputTokens int64
	var outputTokens int64
	var smsCount int
	var detailed bool

	cmd := &cobra.Command{
		Use:         "cost [seconds]",
		Short:       "Estimate per-service cost for a call",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid duration %q", args[0])
				}
				durationSeconds = parsed
			}
			if durationSeconds < 0 {
				return fmt.Errorf("duration must not be negative")
			}

			out := cmd.OutOrStdout()
			if !detailed {
				cost := callcost.EstimateCallCost(durationSeconds)
				rows := [][]string{
					{"Telephony", formatMoney(cost.VapiCost)},
					{"LLM", formatMoney(cost.LLMCost)},
					{"TTS", formatMoney(cost.TTSCost)},
					{"STT", formatMoney(cost.STTCost)},
					{"Total", formatMoney(cost.TotalCost)},
				}
				fmt.Fprintln(out, renderTable([]string{"Service", "Cost"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			}

			cost := callcost.EstimateDetailedCost(callcost.DetailedInput{
				TelephonyCost:   telephonyCost,
				LLMInputTokens:  inputTokens,
				LLMOutputTokens: outputTokens,
				DurationSeconds: durationSeconds,
				SMSCount:        smsCount,
			})
			rows := [][]string{
				{"Telephony", formatMoney(cost.VapiCost), ""},
				{"LLM", formatMoney(cost.LLMCost), fmt.Sprintf("%d in / %d out tokens", cost.LLMInputUsed, cost.LLMOutputUsed)},
				{"TTS", formatMoney(cost.TTSCost), fmt.Sprintf("%d characters", cost.TTSCharacters)},
				{"STT", formatMoney(cost.STTCost), fmt.Sprintf("%d seconds", cost.STTSeconds)},
				{"SMS", formatMoney(cost.SMSCost), fmt.Sprintf("%d messages", cost.SMSCount)},
				{"Total", formatMoney(cost.TotalCost), ""},
			}
			fmt.Fprintln(out, renderTable([]string{"Service", "Cost", "Usage"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&durationSeconds, "duration", "d", 0, "Call duration in seconds")
	cmd.Flags().Float64Var(&telephonyCost, "telephony", 0, "Telephony cost reported by the voice runtime (detailed mode)")
	cmd.Flags().Int64Var(&inputTokens, "input-tokens", 0, "LLM input token count (detailed mode)")
	cmd.Flags().Int64Var(&outputTokens, "output-tokens", 0, "LLM output token count (detailed mode)")
	cmd.Flags().IntVar(&smsCount, "sms", 0, "SMS messages sent (detailed mode)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Use the usage-based estimate instead of the rate card")
	return cmd
}
