package costtrack

import (
	"context"
	"log/slog"

	"switchboard/internal/callcost"
	"switchboard/internal/config"
	"switchboard/internal/logging"
	"switchboard/internal/queue"
	"switchboard/internal/stage"
)

// Tracker computes and stores the per-call cost estimate.
type Tracker struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs the cost tracking stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "costtrack"),
	}
}

// SetLogger swaps the stage logger.
func (t *Tracker) SetLogger(logger *slog.Logger) {
	t.logger = logging.WithComponent(logger, "costtrack")
}

func (t *Tracker) Prepare(ctx context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	return nil
}

// Execute never fails the pipeline: a call without a cost row is still a
// processed call, and the estimate can be recomputed from the stored event.
func (t *Tracker) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	estimate := callcost.EstimateDetailedCost(callcost.DetailedInput{
		TelephonyCost:   item.TelephonyCost,
		DurationSeconds: item.DurationSeconds,
	})

	record := queue.CostRecord{
		CallID:          item.CallID,
		VapiCost:        estimate.VapiCost,
		LLMCost:         estimate.LLMCost,
		TTSCost:         estimate.TTSCost,
		STTCost:         estimate.STTCost,
		SMSCost:         estimate.SMSCost,
		TotalCost:       estimate.TotalCost,
		LLMInputTokens:  estimate.LLMInputUsed,
		LLMOutputTokens: estimate.LLMOutputUsed,
		TTSCharacters:   estimate.TTSCharacters,
		STTSeconds:      estimate.STTSeconds,
		SMSCount:        estimate.SMSCount,
	}
	if err := t.store.UpsertCost(ctx, record); err != nil {
		logger.Warn("failed to persist cost estimate", logging.Error(err))
		return nil
	}

	logger.Info(
		"call cost recorded",
		logging.String(logging.FieldEventType, "cost_recorded"),
		logging.Float64("total_cost", estimate.TotalCost),
		logging.Int("duration_seconds", item.DurationSeconds),
	)
	return nil
}

func (t *Tracker) HealthCheck(ctx context.Context) stage.Health {
	if t.store == nil {
		return stage.Unhealthy("costtrack", "queue store unavailable")
	}
	return stage.Healthy("costtrack")
}
