package calls

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EndedEvent is the payload delivered once per completed call by the
// telephony webhook layer. CallID is the idempotency key for every persisted
// effect downstream.
type EndedEvent struct {
	BusinessID      string  `json:"businessId"`
	CallID          string  `json:"callId"`
	CallerPhone     string  `json:"callerPhone"`
	DurationSeconds int     `json:"duration"`
	Transcript      string  `json:"transcript"`
	Summary         string  `json:"summary"`
	TelephonyCost   float64 `json:"vapiCallCost"`
}

// Validate checks the fields the pipeline cannot proceed without.
func (e EndedEvent) Validate() error {
	if strings.TrimSpace(e.CallID) == "" {
		return errors.New("call id is required")
	}
	if strings.TrimSpace(e.BusinessID) == "" {
		return errors.New("business id is required")
	}
	if e.DurationSeconds < 0 {
		return fmt.Errorf("duration must not be negative, got %d", e.DurationSeconds)
	}
	if e.TelephonyCost < 0 {
		return fmt.Errorf("telephony cost must not be negative, got %v", e.TelephonyCost)
	}
	return nil
}

// DecodeEndedEvent parses and validates a JSON event payload.
func DecodeEndedEvent(data []byte) (EndedEvent, error) {
	var event EndedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return EndedEvent{}, fmt.Errorf("decode call-ended event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return EndedEvent{}, err
	}
	return event, nil
}
