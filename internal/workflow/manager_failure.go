package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"switchboard/internal/logging"
	"switchboard/internal/queue"
	"switchboard/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stg pipelineStage, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.runLogger())
	message := failureMessage(stg.name, stageErr)

	maxAttempts := m.cfg.Workflow.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	attempts := item.Attempts + 1
	permanent := services.IsPermanent(stageErr)
	exhausted := attempts >= maxAttempts

	if permanent || exhausted {
		item.SetFailed(message)
		item.Attempts = attempts
		logger.Error("stage failed permanently",
			logging.Error(stageErr),
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String(logging.FieldStage, stg.name),
			logging.Int("attempts", attempts),
			logging.Bool("permanent", permanent),
			logging.String("error_message", message),
		)
		m.persistFailure(ctx, item, logger)
		if m.notifier != nil {
			if err := m.notifier.NotifyCallFailed(ctx, item.CallID, message); err != nil {
				logger.Warn("failure notification failed", logging.Error(err))
			}
		}
		return
	}

	// Requeue at the start of the failing stage: finished stages stay done,
	// and the backoff doubles with every attempt.
	backoff := retryBackoff(m.cfg.Workflow.RetryBackoffSeconds, attempts)
	retryAt := time.Now().UTC().Add(backoff)
	item.Status = stg.startStatus
	item.Attempts = attempts
	item.ErrorMessage = message
	item.NextRetryAt = &retryAt
	item.LastHeartbeat = nil

	logger.Warn("stage failed, retry scheduled",
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_retry"),
		logging.String(logging.FieldStage, stg.name),
		logging.Int("attempts", attempts),
		logging.Int("max_attempts", maxAttempts),
		logging.Duration("backoff", backoff),
	)
	m.persistFailure(ctx, item, logger)
}

func (m *Manager) persistFailure(ctx context.Context, item *queue.Item, logger *slog.Logger) {
	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
}

// retryBackoff doubles the base delay per prior attempt: base, 2x, 4x, ...
func retryBackoff(baseSeconds, attempts int) time.Duration {
	if baseSeconds <= 0 {
		baseSeconds = 1
	}
	backoff := time.Duration(baseSeconds) * time.Second
	for i := 1; i < attempts; i++ {
		backoff *= 2
		if backoff >= time.Hour {
			return time.Hour
		}
	}
	return backoff
}

func failureMessage(stageName string, stageErr error) string {
	if stageErr == nil {
		return stageName + " failed without error detail"
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		return stageName + " failed"
	}
	return message
}
