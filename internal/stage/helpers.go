package stage

import (
	"switchboard/internal/calls"
	"switchboard/internal/services"
)

// ParseTranscript parses a raw transcript JSON payload. On failure it returns
// a services.ErrValidation suitable for stage Execute methods.
func ParseTranscript(raw string) ([]calls.TranscriptMessage, error) {
	messages, err := calls.ParseTranscript(raw)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse transcript",
			"Transcript payload missing or invalid", err)
	}
	return messages, nil
}
