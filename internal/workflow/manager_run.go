package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"switchboard/internal/logging"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.statusOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	// Roll anything left mid-step by a previous process back to its step
	// start before picking up new work.
	if reset, err := m.store.ResetStuckProcessing(runCtx); err != nil {
		m.runLogger().Warn("startup reset of in-flight items failed", logging.Error(err))
	} else if reset > 0 {
		m.runLogger().Info("recovered in-flight items from previous run", logging.Int64("count", reset))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runLogger() *slog.Logger {
	if m.logger == nil {
		return logging.NewNop()
	}
	return logging.WithComponent(m.logger, "workflow")
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	logger := m.runLogger()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleItems(ctx, logger); err != nil {
			logger.Warn("reclaim stale processing failed; stuck items may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
		}

		item, err := m.store.NextReady(ctx, m.statusOrder...)
		if err != nil {
			m.handleNextItemError(ctx, logger, err)
			continue
		}
		if item == nil {
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, logger, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) handleNextItemError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to fetch next queue item",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.pollInterval):
	}
}

// ProcessNext runs a single ready item through its current stage. Used by
// tests and the CLI to advance the pipeline without the polling loop.
func (m *Manager) ProcessNext(ctx context.Context) (bool, error) {
	item, err := m.store.NextReady(ctx, m.statusOrder...)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}
	if err := m.processItem(ctx, m.runLogger(), item); err != nil {
		return true, err
	}
	return true, nil
}

// ProcessUntilSettled drains the queue until no item is ready, bounding the
// number of stage executions to avoid spinning on persistent failures.
func (m *Manager) ProcessUntilSettled(ctx context.Context, maxSteps int) error {
	for i := 0; i < maxSteps; i++ {
		advanced, err := m.ProcessNext(ctx)
		if err != nil && !isStageFailure(err) {
			return err
		}
		if !advanced {
			return nil
		}
	}
	return nil
}

// isStageFailure distinguishes a handled stage error (already persisted on
// the item) from an infrastructure error the caller must see.
func isStageFailure(err error) bool {
	var marker *stageFailureError
	return errors.As(err, &marker)
}

type stageFailureError struct {
	stage string
	cause error
}

func (e *stageFailureError) Error() string {
	return "stage " + e.stage + " failed: " + e.cause.Error()
}

func (e *stageFailureError) Unwrap() error { return e.cause }
