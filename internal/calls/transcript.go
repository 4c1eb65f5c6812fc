package calls

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
)

// ParseRole converts a string into a known Role.
func ParseRole(value string) (Role, bool) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case RoleAssistant, RoleUser, RoleSystem:
		return normalized, true
	default:
		return "", false
	}
}

// TranscriptMessage is a single turn in a call transcript. The sequence is
// append-only during a live call and immutable once the call ends.
type TranscriptMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// IsUser reports whether the message was authored by the caller.
func (m TranscriptMessage) IsUser() bool {
	return m.Role == RoleUser
}

// ParseTranscript decodes a JSON-encoded message array produced by the voice
// runtime. An empty input yields an empty transcript.
func ParseTranscript(raw string) ([]TranscriptMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	var messages []TranscriptMessage
	if err := json.Unmarshal([]byte(trimmed), &messages); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return messages, nil
}
