package callrecord

import (
	"context"
	"log/slog"
	"strings"

	"switchboard/internal/config"
	"switchboard/internal/logging"
	"switchboard/internal/queue"
	"switchboard/internal/services"
	"switchboard/internal/stage"
)

// Recorder persists the call row from the queued event payload.
type Recorder struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs the call recording stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "callrecord"),
	}
}

// SetLogger swaps the stage logger; the workflow manager injects a
// request-scoped logger before each execution.
func (r *Recorder) SetLogger(logger *slog.Logger) {
	r.logger = logging.WithComponent(logger, "callrecord")
}

func (r *Recorder) Prepare(ctx context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	logging.WithContext(ctx, r.logger).Info(
		"starting call recording",
		logging.String(logging.FieldBusinessID, item.BusinessID),
		logging.Int("duration_seconds", item.DurationSeconds),
	)
	return nil
}

func (r *Recorder) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	// Reject transcripts the rest of the pipeline cannot read. Persisting a
	// call row with an unreadable transcript would just defer the failure.
	messages, err := stage.ParseTranscript(item.Transcript)
	if err != nil {
		return err
	}

	record := queue.CallRecord{
		CallID:          item.CallID,
		BusinessID:      item.BusinessID,
		CallerPhone:     item.CallerPhone,
		DurationSeconds: item.DurationSeconds,
		Transcript:      item.Transcript,
		Summary:         strings.TrimSpace(item.Summary),
		Status:          queue.CallStatusCompleted,
	}
	if err := r.store.UpsertCall(ctx, record); err != nil {
		return services.Wrap(services.ErrTransient, "callrecord", "persist call", "Failed to store call row", err)
	}

	logger.Info(
		"call recorded",
		logging.String(logging.FieldEventType, "call_recorded"),
		logging.Int("message_count", len(messages)),
	)
	return nil
}

func (r *Recorder) HealthCheck(ctx context.Context) stage.Health {
	if r.store == nil {
		return stage.Unhealthy("callrecord", "queue store unavailable")
	}
	if _, err := r.store.Health(ctx); err != nil {
		return stage.Unhealthy("callrecord", err.Error())
	}
	return stage.Healthy("callrecord")
}
