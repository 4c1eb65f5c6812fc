package callcost_test

import (
	"math"
	"testing"

	"switchboard/internal/callcost"
)

func TestEstimateCallCostPinnedVectors(t *testing.T) {
	cases := []struct {
		seconds int
		want    callcost.Cost
	}{
		{0, callcost.Cost{}},
		{60, callcost.Cost{VapiCost: 0.05, LLMCost: 0.03, TTSCost: 0.02, STTCost: 0.01, TotalCost: 0.11}},
		{90, callcost.Cost{VapiCost: 0.075, LLMCost: 0.045, TTSCost: 0.03, STTCost: 0.015, TotalCost: 0.165}},
		{300, callcost.Cost{VapiCost: 0.25, LLMCost: 0.15, TTSCost: 0.1, STTCost: 0.05, TotalCost: 0.55}},
	}

	for _, tc := range cases {
		got := callcost.EstimateCallCost(tc.seconds)
		if got != tc.want {
			t.Fatalf("EstimateCallCost(%d) = %+v, want %+v", tc.seconds, got, tc.want)
		}
	}
}

func TestEstimateCallCostTotalEqualsSumOfRoundedParts(t *testing.T) {
	for _, seconds := range []int{1, 7, 61, 143, 599, 3601, 7265} {
		cost := callcost.EstimateCallCost(seconds)
		sum := cost.VapiCost + cost.LLMCost + cost.TTSCost + cost.STTCost
		// The parts are already rounded, so their sum differs from the total
		// only by the final rounding step.
		if diff := cost.TotalCost - sum; diff > 0.00005 || diff < -0.00005 {
			t.Fatalf("duration %d: total %v does not match part sum %v", seconds, cost.TotalCost, sum)
		}
		if cost.VapiCost < 0 || cost.LLMCost < 0 || cost.TTSCost < 0 || cost.STTCost < 0 || cost.TotalCost < 0 {
			t.Fatalf("duration %d: negative cost in %+v", seconds, cost)
		}
	}
}

func TestEstimateDetailedCostZeroUsage(t *testing.T) {
	detailed := callcost.EstimateDetailedCost(callcost.DetailedInput{})
	if detailed.TotalCost != 0 {
		t.Fatalf("expected zero total for zero input, got %+v", detailed)
	}
	if detailed.TTSCharacters != 0 || detailed.STTSeconds != 0 {
		t.Fatalf("expected zero usage counters, got %+v", detailed)
	}
}

func TestEstimateDetailedCostSpeechModel(t *testing.T) {
	detailed := callcost.EstimateDetailedCost(callcost.DetailedInput{
		TelephonyCost:   0.42,
		DurationSeconds: 120,
	})

	// 2 minutes * 150 wpm * 5 chars * 50% assistant share = 750 characters.
	if detailed.TTSCharacters != 750 {
		t.Fatalf("expected 750 TTS characters, got %d", detailed.TTSCharacters)
	}
	if detailed.STTSeconds != 120 {
		t.Fatalf("expected STT to cover the whole call, got %d", detailed.STTSeconds)
	}
	if detailed.TTSCost != 0.0113 { // round4(750 * 0.000015)
		t.Fatalf("unexpected TTS cost %v", detailed.TTSCost)
	}
	if detailed.STTCost != 0.0086 { // round4(2 * 0.0043)
		t.Fatalf("unexpected STT cost %v", detailed.STTCost)
	}
	if detailed.VapiCost != 0.42 {
		t.Fatalf("telephony cost should pass through, got %v", detailed.VapiCost)
	}
	if detailed.LLMCost != 0 || detailed.SMSCost != 0 {
		t.Fatalf("expected zero LLM and SMS cost, got %+v", detailed)
	}
	wantTotal := 0.42 + 0.0113 + 0.0086
	if diff := detailed.TotalCost - wantTotal; diff > 0.00005 || diff < -0.00005 {
		t.Fatalf("total %v, want %v", detailed.TotalCost, wantTotal)
	}
}

func TestEstimateDetailedCostTokenAndSMSRates(t *testing.T) {
	detailed := callcost.EstimateDetailedCost(callcost.DetailedInput{
		LLMInputTokens:  100000,
		LLMOutputTokens: 50000,
		SMSCount:        3,
	})

	if detailed.LLMCost != 0.75 { // 100000*0.0000025 + 50000*0.00001
		t.Fatalf("unexpected LLM cost %v", detailed.LLMCost)
	}
	if detailed.SMSCost != 0.0237 { // 3 * 0.0079
		t.Fatalf("unexpected SMS cost %v", detailed.SMSCost)
	}
	if detailed.TotalCost != round4Sum(detailed.LLMCost, detailed.SMSCost) {
		t.Fatalf("total %v does not equal sum of parts", detailed.TotalCost)
	}
}

func round4Sum(values ...float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	// Mirror the estimator's final rounding step.
	return math.Round(sum*10000) / 10000
}
