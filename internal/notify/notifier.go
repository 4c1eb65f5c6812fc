package notify

import (
	"context"
	"log/slog"

	"switchboard/internal/config"
	"switchboard/internal/logging"
	"switchboard/internal/notifications"
	"switchboard/internal/queue"
	"switchboard/internal/stage"
)

// Notifier announces processed calls through the notification service.
type Notifier struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// New constructs the notify stage handler using default dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Notifier {
	return NewWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewWithNotifier allows injecting the notification service (used in tests).
func NewWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Notifier {
	return &Notifier{
		store:    store,
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "notify"),
		notifier: notifier,
	}
}

// SetLogger swaps the stage logger.
func (n *Notifier) SetLogger(logger *slog.Logger) {
	n.logger = logging.WithComponent(logger, "notify")
}

func (n *Notifier) Prepare(ctx context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	return nil
}

// Execute never fails the pipeline: the call is fully processed by the time
// this stage runs, and notification delivery is best effort.
func (n *Notifier) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, n.logger)
	if n.notifier == nil {
		return nil
	}

	total := 0.0
	if cost, err := n.store.GetCost(ctx, item.CallID); err != nil {
		logger.Warn("cost lookup failed, notifying without total", logging.Error(err))
	} else if cost != nil {
		total = cost.TotalCost
	}

	if err := n.notifier.NotifyCallProcessed(ctx, item.CallID, item.DurationSeconds, total); err != nil {
		logger.Warn("call processed notification failed", logging.Error(err))
		return nil
	}

	logger.Info(
		"call completion announced",
		logging.String(logging.FieldEventType, "call_notified"),
		logging.Float64("total_cost", total),
	)
	return nil
}

func (n *Notifier) HealthCheck(ctx context.Context) stage.Health {
	if n.notifier == nil {
		return stage.Unhealthy("notify", "notification service unavailable")
	}
	return stage.Healthy("notify")
}
