package scrub

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"switchboard/internal/calls"
	"switchboard/internal/config"
	"switchboard/internal/logging"
	"switchboard/internal/queue"
	"switchboard/internal/redact"
	"switchboard/internal/stage"
)

// Scrubber redacts PHI from transcripts of calls to sensitive industries.
type Scrubber struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs the scrub stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Scrubber {
	return &Scrubber{
		store:  store,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "scrub"),
	}
}

// SetLogger swaps the stage logger.
func (s *Scrubber) SetLogger(logger *slog.Logger) {
	s.logger = logging.WithComponent(logger, "scrub")
}

func (s *Scrubber) Prepare(ctx context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	return nil
}

// Execute never fails the pipeline: any error is logged and the call moves on
// with whatever transcript it has.
func (s *Scrubber) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	industry, found, err := s.store.BusinessIndustry(ctx, item.BusinessID)
	if err != nil {
		logger.Warn("industry lookup failed, skipping scrub", logging.Error(err))
		return nil
	}
	if !found {
		logger.Debug("business unknown, skipping scrub",
			logging.String(logging.FieldBusinessID, item.BusinessID))
		return nil
	}
	if !s.cfg.IsPHIIndustry(industry) {
		logger.Debug("industry not PHI-sensitive, skipping scrub",
			logging.String("industry", industry))
		return nil
	}

	messages, err := stage.ParseTranscript(item.Transcript)
	if err != nil {
		logger.Warn("transcript unreadable, skipping scrub", logging.Error(err))
		return nil
	}

	messages, redacted := ScrubTranscript(messages)
	summaryResult := redact.Scrub(item.Summary)
	redacted += summaryResult.RedactedCount

	scrubbedJSON := item.Transcript
	if len(messages) > 0 {
		encoded, err := json.Marshal(messages)
		if err != nil {
			logger.Warn("failed to encode scrubbed transcript, keeping raw", logging.Error(err))
			return nil
		}
		scrubbedJSON = string(encoded)
	}

	item.ScrubbedTranscript = scrubbedJSON
	item.RedactedCount = redacted
	item.Summary = summaryResult.Text

	// Replace the stored transcript so raw PHI does not outlive this stage.
	record := queue.CallRecord{
		CallID:          item.CallID,
		BusinessID:      item.BusinessID,
		CallerPhone:     item.CallerPhone,
		DurationSeconds: item.DurationSeconds,
		Transcript:      scrubbedJSON,
		Summary:         strings.TrimSpace(summaryResult.Text),
		Status:          queue.CallStatusCompleted,
	}
	if err := s.store.UpsertCall(ctx, record); err != nil {
		logger.Warn("failed to persist scrubbed transcript", logging.Error(err))
		return nil
	}

	logger.Info(
		"transcript scrubbed",
		logging.String(logging.FieldEventType, "transcript_scrubbed"),
		logging.String("industry", industry),
		logging.Int("redacted_count", redacted),
	)
	return nil
}

func (s *Scrubber) HealthCheck(ctx context.Context) stage.Health {
	if s.store == nil {
		return stage.Unhealthy("scrub", "queue store unavailable")
	}
	if s.cfg == nil || len(s.cfg.Redaction.PHIIndustries) == 0 {
		return stage.Unhealthy("scrub", "no PHI industries configured")
	}
	return stage.Healthy("scrub")
}

// ScrubTranscript redacts every message in a parsed transcript and reports
// the total number of redactions. Shared with the CLI redact command.
func ScrubTranscript(messages []calls.TranscriptMessage) ([]calls.TranscriptMessage, int) {
	scrubbed := make([]calls.TranscriptMessage, len(messages))
	total := 0
	for i, message := range messages {
		result := redact.Scrub(message.Content)
		message.Content = result.Text
		scrubbed[i] = message
		total += result.RedactedCount
	}
	return scrubbed, total
}
