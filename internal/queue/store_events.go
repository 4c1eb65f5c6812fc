package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"switchboard/internal/calls"
)

const itemColumns = "id, call_id, business_id, caller_phone, duration_seconds, transcript, scrubbed_transcript, redacted_count, summary, telephony_cost, status, error_message, attempts, next_retry_at, last_heartbeat, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		callID          string
		businessID      string
		callerPhone     sql.NullString
		durationSeconds sql.NullInt64
		transcript      sql.NullString
		scrubbed        sql.NullString
		redactedCount   sql.NullInt64
		summary         sql.NullString
		telephonyCost   sql.NullFloat64
		statusStr       string
		errorMessage    sql.NullString
		attempts        sql.NullInt64
		nextRetryRaw    sql.NullString
		heartbeatRaw    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&callID,
		&businessID,
		&callerPhone,
		&durationSeconds,
		&transcript,
		&scrubbed,
		&redactedCount,
		&summary,
		&telephonyCost,
		&statusStr,
		&errorMessage,
		&attempts,
		&nextRetryRaw,
		&heartbeatRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:                 id,
		CallID:             callID,
		BusinessID:         businessID,
		CallerPhone:        callerPhone.String,
		DurationSeconds:    int(durationSeconds.Int64),
		Transcript:         transcript.String,
		ScrubbedTranscript: scrubbed.String,
		RedactedCount:      int(redactedCount.Int64),
		Summary:            summary.String,
		TelephonyCost:      telephonyCost.Float64,
		Status:             Status(statusStr),
		ErrorMessage:       errorMessage.String,
		Attempts:           int(attempts.Int64),
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if nextRetryRaw.Valid {
		if retryAt, err := parseTimeString(nextRetryRaw.String); err == nil {
			item.NextRetryAt = &retryAt
		}
	}
	if heartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(heartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

// IngestEvent enqueues a call-ended event. Delivery of the same call id more
// than once is expected; the call_id uniqueness constraint makes the insert a
// no-op on redelivery and the already-queued item is returned with created
// set to false.
func (s *Store) IngestEvent(ctx context.Context, event calls.EndedEvent) (*Item, bool, error) {
	if err := event.Validate(); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO call_events (
            call_id, business_id, caller_phone, duration_seconds, transcript,
            summary, telephony_cost, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(call_id) DO NOTHING`,
		event.CallID,
		event.BusinessID,
		nullableString(event.CallerPhone),
		event.DurationSeconds,
		nullableString(event.Transcript),
		nullableString(event.Summary),
		event.TelephonyCost,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert call event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	item, err := s.GetByCallID(ctx, event.CallID)
	if err != nil {
		return nil, false, err
	}
	if item == nil {
		return nil, false, fmt.Errorf("call event %s missing after insert", event.CallID)
	}
	return item, affected > 0, nil
}

// GetByID fetches a queued event by row identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM call_events WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetByCallID fetches a queued event by call identifier.
func (s *Store) GetByCallID(ctx context.Context, callID string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM call_events WHERE call_id = ?`, callID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item by call id: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing queued event.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE call_events
         SET business_id = ?, caller_phone = ?, duration_seconds = ?, transcript = ?,
             scrubbed_transcript = ?, redacted_count = ?, summary = ?, telephony_cost = ?,
             status = ?, error_message = ?, attempts = ?, next_retry_at = ?,
             last_heartbeat = ?, updated_at = ?
         WHERE id = ?`,
		item.BusinessID,
		nullableString(item.CallerPhone),
		item.DurationSeconds,
		nullableString(item.Transcript),
		nullableString(item.ScrubbedTranscript),
		item.RedactedCount,
		nullableString(item.Summary),
		item.TelephonyCost,
		item.Status,
		nullableString(item.ErrorMessage),
		item.Attempts,
		nullableTime(item.NextRetryAt),
		nullableTime(item.LastHeartbeat),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// List returns queued events filtered by status set (or all events when no
// status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM call_events`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list call events: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextReady returns the oldest event sitting at any of the provided statuses
// whose retry backoff, if any, has elapsed.
func (s *Store) NextReady(ctx context.Context, statuses ...Status) (*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	for _, status := range statuses {
		args = append(args, status)
	}
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))

	query := `SELECT ` + itemColumns + ` FROM call_events
        WHERE status IN (` + placeholders + `)
          AND (next_retry_at IS NULL OR next_retry_at <= ?)
        ORDER BY created_at, id LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Remove deletes a queued event by row identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM call_events WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only completed events from the queue.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM call_events WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed events from the queue.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM call_events WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all events from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM call_events`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}
