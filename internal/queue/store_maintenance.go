package queue

import (
	"context"
	"fmt"
	"time"
)

// Stats returns a count of queued events grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM call_events GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates queue state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusFailed:
			health.Failed += count
		case StatusCompleted:
			health.Completed += count
		default:
			if _, ok := processingStatuses[status]; ok {
				health.Processing += count
			} else {
				health.Pending += count
			}
		}
	}
	return health, nil
}

// UpdateHeartbeat refreshes the liveness timestamp for an in-flight event.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE call_events SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

func rollbackCaseArgs(now string, extra ...any) []any {
	args := make([]any, 0, len(processingRollbacks)*3+1+len(extra))
	for _, transition := range processingRollbacks {
		args = append(args, transition.from, transition.to)
	}
	args = append(args, now)
	for _, transition := range processingRollbacks {
		args = append(args, transition.from)
	}
	args = append(args, extra...)
	return args
}

const rollbackCaseSQL = `UPDATE call_events
    SET status = CASE status
        WHEN ? THEN ?
        WHEN ? THEN ?
        WHEN ? THEN ?
        WHEN ? THEN ?
        WHEN ? THEN ?
        ELSE status
    END,
        last_heartbeat = NULL, updated_at = ?
    WHERE status IN (?, ?, ?, ?, ?)`

// ResetStuckProcessing returns every in-flight event to the start of the
// step it was executing. Used at daemon startup and from the CLI after a
// crash; finished steps keep their done statuses and are never re-run.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx, rollbackCaseSQL, rollbackCaseArgs(now)...)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// ReclaimStaleProcessing rolls back in-flight events whose heartbeat expired
// before the cutoff, returning each to the start of its current step.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := rollbackCaseSQL + ` AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`
	args := rollbackCaseArgs(now, cutoff.UTC().Format(time.RFC3339Nano))
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale items: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed events back to pending for reprocessing, clearing
// attempt counters and error state. With no ids every failed event retries.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE call_events
            SET status = ?, error_message = NULL, attempts = 0, next_retry_at = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			now,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, now)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusFailed)
	query := `UPDATE call_events
        SET status = ?, error_message = NULL, attempts = 0, next_retry_at = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = ?`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}
