// Package pricesignals scans caller utterances for price-sensitivity
// language. Only user-authored messages are considered so the agent's own
// scripted pricing lines never produce false positives.
package pricesignals

import (
	"fmt"
	"strings"

	"switchboard/internal/calls"
)

// Strength is a signal confidence tier.
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

// Signal is one price-sensitivity observation tied to the utterance that
// produced it. Signals are derived values; persistence belongs to callers.
type Signal struct {
	Signal          string
	Strength        Strength
	SourceUtterance string
}

// Fixed phrase tiers. The lists are part of the observable contract: one
// signal per matched phrase per utterance, no deduplication, no early exit.
var (
	strongPhrases = []string{
		"sounds good",
		"let's do it",
		"book it",
		"sign me up",
		"that works for me",
		"too expensive",
		"can't afford",
		"out of budget",
	}

	moderatePhrases = []string{
		"how much",
		"pricing",
		"discount",
		"financing",
		"insurance cover",
		"payment plan",
		"what does it cost",
	}

	weakPhrases = []string{
		"budget",
		"worth it",
		"compared to",
		"shop around",
		"think about it",
	}
)

var tiers = []struct {
	strength Strength
	phrases  []string
}{
	{StrengthStrong, strongPhrases},
	{StrengthModerate, moderatePhrases},
	{StrengthWeak, weakPhrases},
}

// Extract emits zero or more signals per caller utterance in the transcript.
// Assistant and system messages are never scanned.
func Extract(transcript []calls.TranscriptMessage) []Signal {
	var signals []Signal
	for _, message := range transcript {
		if !message.IsUser() {
			continue
		}
		lowered := strings.ToLower(message.Content)
		for _, tier := range tiers {
			for _, phrase := range tier.phrases {
				if strings.Contains(lowered, phrase) {
					signals = append(signals, Signal{
						Signal:          fmt.Sprintf("Caller mentioned: %s", phrase),
						Strength:        tier.strength,
						SourceUtterance: message.Content,
					})
				}
			}
		}
	}
	return signals
}
