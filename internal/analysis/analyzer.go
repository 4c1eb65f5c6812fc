package analysis

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"switchboard/internal/config"
	"switchboard/internal/logging"
	"switchboard/internal/pricesignals"
	"switchboard/internal/queue"
	"switchboard/internal/services"
	"switchboard/internal/stage"
)

// maxSummaryLength bounds the stored analysis summary.
const maxSummaryLength = 500

// Analyzer persists the analysis row for a scrubbed call.
type Analyzer struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs the analysis stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		store:  store,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "analysis"),
	}
}

// SetLogger swaps the stage logger.
func (a *Analyzer) SetLogger(logger *slog.Logger) {
	a.logger = logging.WithComponent(logger, "analysis")
}

func (a *Analyzer) Prepare(ctx context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	logging.WithContext(ctx, a.logger).Info("starting call analysis")
	return nil
}

func (a *Analyzer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)

	messages, err := stage.ParseTranscript(item.EffectiveTranscript())
	if err != nil {
		return err
	}

	signals := pricesignals.Extract(messages)
	for _, signal := range signals {
		logger.Info(
			"price signal detected",
			logging.String(logging.FieldEventType, "price_signal"),
			logging.String("strength", string(signal.Strength)),
			logging.String("signal", signal.Signal),
		)
	}

	summary := Summarize(item.EffectiveTranscript())
	record := queue.AnalysisRecord{
		CallID:  item.CallID,
		Summary: summary,
		Status:  queue.AnalysisStatusPending,
	}
	if err := a.store.UpsertAnalysis(ctx, record); err != nil {
		return services.Wrap(services.ErrTransient, "analysis", "persist analysis", "Failed to store analysis row", err)
	}

	logger.Info(
		"call queued for scoring",
		logging.String(logging.FieldEventType, "analysis_queued"),
		logging.Int("signal_count", len(signals)),
		logging.Int("summary_length", utf8.RuneCountInString(summary)),
	)
	return nil
}

func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	if a.store == nil {
		return stage.Unhealthy("analysis", "queue store unavailable")
	}
	if _, err := a.store.Health(ctx); err != nil {
		return stage.Unhealthy("analysis", err.Error())
	}
	return stage.Healthy("analysis")
}

// Summarize copies the scrubbed transcript into the bounded summary column;
// real summarization happens when scoring runs on this row later.
func Summarize(transcript string) string {
	return truncate(strings.TrimSpace(transcript), maxSummaryLength)
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
