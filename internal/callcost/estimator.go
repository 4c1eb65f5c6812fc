// Package callcost produces deterministic monetary accounting for one call,
// either from duration alone (coarse rate-card estimate) or from per-service
// usage counters (detailed estimate).
//
// Every sub-cost is rounded to 4 decimal places before summation, and the
// total is the exact sum of the rounded parts. This matters at the cent level
// for long calls, so the rounding discipline must not change.
package callcost

import "math"

// Per-minute rates for the coarse estimate, in USD.
const (
	telephonyRatePerMinute = 0.05
	llmRatePerMinute       = 0.03
	ttsRatePerMinute       = 0.02
	sttRatePerMinute       = 0.01
)

// Constants for the detailed estimate.
const (
	// Synthesized-speech volume model: the assistant speaks roughly half of
	// the call at a typical speaking rate.
	wordsPerMinute           = 150.0
	charactersPerWord        = 5.0
	assistantSpeakingShare   = 0.5
	llmInputRatePerToken     = 0.0000025 // 2.50 USD per 1M tokens
	llmOutputRatePerToken    = 0.00001   // 10.00 USD per 1M tokens
	ttsRatePerCharacter      = 0.000015
	sttRatePerMinuteDetailed = 0.0043
	smsRatePerMessage        = 0.0079
)

// Cost is the coarse per-service breakdown for one call. TotalCost is always
// exactly the sum of the four rounded parts.
type Cost struct {
	VapiCost  float64
	LLMCost   float64
	TTSCost   float64
	STTCost   float64
	TotalCost float64
}

// DetailedInput carries the known usage counters for the detailed estimate.
type DetailedInput struct {
	TelephonyCost   float64
	LLMInputTokens  int64
	LLMOutputTokens int64
	DurationSeconds int
	SMSCount        int
}

// DetailedCost extends the coarse breakdown with usage counters and SMS.
// The summation invariant extends to SMSCost.
type DetailedCost struct {
	Cost
	SMSCost       float64
	LLMInputUsed  int64
	LLMOutputUsed int64
	TTSCharacters int64
	STTSeconds    int
	SMSCount      int
}

// round4 rounds to the nearest 4 decimal places.
func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}

// EstimateCallCost produces the coarse rate-card breakdown from call
// duration. A zero-duration call yields an all-zero cost.
func EstimateCallCost(durationSeconds int) Cost {
	minutes := float64(durationSeconds) / 60

	cost := Cost{
		VapiCost: round4(minutes * telephonyRatePerMinute),
		LLMCost:  round4(minutes * llmRatePerMinute),
		TTSCost:  round4(minutes * ttsRatePerMinute),
		STTCost:  round4(minutes * sttRatePerMinute),
	}
	cost.TotalCost = round4(cost.VapiCost + cost.LLMCost + cost.TTSCost + cost.STTCost)
	return cost
}

// EstimateDetailedCost produces the fine-grained breakdown from known usage.
// Synthesized-speech characters are estimated from duration; speech
// recognition covers the whole call.
func EstimateDetailedCost(input DetailedInput) DetailedCost {
	minutes := float64(input.DurationSeconds) / 60

	ttsCharacters := int64(minutes * wordsPerMinute * charactersPerWord * assistantSpeakingShare)
	llmCost := round4(float64(input.LLMInputTokens)*llmInputRatePerToken +
		float64(input.LLMOutputTokens)*llmOutputRatePerToken)
	ttsCost := round4(float64(ttsCharacters) * ttsRatePerCharacter)
	sttCost := round4(minutes * sttRatePerMinuteDetailed)
	smsCost := round4(float64(input.SMSCount) * smsRatePerMessage)
	vapiCost := round4(input.TelephonyCost)

	detailed := DetailedCost{
		Cost: Cost{
			VapiCost: vapiCost,
			LLMCost:  llmCost,
			TTSCost:  ttsCost,
			STTCost:  sttCost,
		},
		SMSCost:       smsCost,
		LLMInputUsed:  input.LLMInputTokens,
		LLMOutputUsed: input.LLMOutputTokens,
		TTSCharacters: ttsCharacters,
		STTSeconds:    input.DurationSeconds,
		SMSCount:      input.SMSCount,
	}
	detailed.TotalCost = round4(vapiCost + llmCost + ttsCost + sttCost + smsCost)
	return detailed
}
