package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UpsertBusiness inserts or replaces a business row keyed by id.
func (s *Store) UpsertBusiness(ctx context.Context, business Business) error {
	if strings.TrimSpace(business.ID) == "" {
		return errors.New("business id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO businesses (id, name, industry, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             industry = excluded.industry,
             updated_at = excluded.updated_at`,
		business.ID,
		business.Name,
		strings.ToLower(strings.TrimSpace(business.Industry)),
		now,
		now,
	); err != nil {
		return fmt.Errorf("upsert business: %w", err)
	}
	return nil
}

// GetBusiness fetches a business row, returning nil when unknown.
func (s *Store) GetBusiness(ctx context.Context, id string) (*Business, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, name, industry, created_at, updated_at FROM businesses WHERE id = ?`,
		id,
	)
	business, err := scanBusiness(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	return business, nil
}

// ListBusinesses returns all business rows ordered by id.
func (s *Store) ListBusinesses(ctx context.Context) ([]*Business, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, industry, created_at, updated_at FROM businesses ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var businesses []*Business
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, business)
	}
	return businesses, rows.Err()
}

// BusinessIndustry resolves the industry for a business id. The second return
// reports whether the business row exists.
func (s *Store) BusinessIndustry(ctx context.Context, id string) (string, bool, error) {
	var industry string
	err := s.db.QueryRowContext(ctx, `SELECT industry FROM businesses WHERE id = ?`, id).Scan(&industry)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("business industry: %w", err)
	}
	return industry, true, nil
}

func scanBusiness(scanner interface{ Scan(dest ...any) error }) (*Business, error) {
	var (
		business   Business
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&business.ID, &business.Name, &business.Industry, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		business.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		business.UpdatedAt = updated
	}
	return &business, nil
}

// UpsertCall inserts or replaces the persisted call row for a call id, so
// replaying a pipeline step never produces a duplicate call.
func (s *Store) UpsertCall(ctx context.Context, record CallRecord) error {
	if strings.TrimSpace(record.CallID) == "" {
		return errors.New("call id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO calls (call_id, business_id, caller_phone, duration_seconds, transcript, summary, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(call_id) DO UPDATE SET
             business_id = excluded.business_id,
             caller_phone = excluded.caller_phone,
             duration_seconds = excluded.duration_seconds,
             transcript = excluded.transcript,
             summary = excluded.summary,
             status = excluded.status,
             updated_at = excluded.updated_at`,
		record.CallID,
		record.BusinessID,
		nullableString(record.CallerPhone),
		record.DurationSeconds,
		nullableString(record.Transcript),
		nullableString(record.Summary),
		record.Status,
		now,
		now,
	); err != nil {
		return fmt.Errorf("upsert call: %w", err)
	}
	return nil
}

// GetCall fetches the persisted call row, returning nil when absent.
func (s *Store) GetCall(ctx context.Context, callID string) (*CallRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT call_id, business_id, caller_phone, duration_seconds, transcript, summary, status, created_at, updated_at
         FROM calls WHERE call_id = ?`,
		callID,
	)

	var (
		record      CallRecord
		callerPhone sql.NullString
		transcript  sql.NullString
		summary     sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	err := row.Scan(
		&record.CallID,
		&record.BusinessID,
		&callerPhone,
		&record.DurationSeconds,
		&transcript,
		&summary,
		&record.Status,
		&createdRaw,
		&updatedRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get call: %w", err)
	}
	record.CallerPhone = callerPhone.String
	record.Transcript = transcript.String
	record.Summary = summary.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return &record, nil
}

// UpsertAnalysis inserts or replaces the analysis row for a call id.
func (s *Store) UpsertAnalysis(ctx context.Context, record AnalysisRecord) error {
	if strings.TrimSpace(record.CallID) == "" {
		return errors.New("call id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO analyses (call_id, score, summary, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(call_id) DO UPDATE SET
             score = excluded.score,
             summary = excluded.summary,
             status = excluded.status,
             updated_at = excluded.updated_at`,
		record.CallID,
		record.Score,
		nullableString(record.Summary),
		record.Status,
		now,
		now,
	); err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// GetAnalysis fetches the analysis row, returning nil when absent.
func (s *Store) GetAnalysis(ctx context.Context, callID string) (*AnalysisRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT call_id, score, summary, status, created_at, updated_at FROM analyses WHERE call_id = ?`,
		callID,
	)

	var (
		record     AnalysisRecord
		summary    sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	err := row.Scan(&record.CallID, &record.Score, &summary, &record.Status, &createdRaw, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	record.Summary = summary.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return &record, nil
}

// UpsertCost inserts or replaces the cost row for a call id.
func (s *Store) UpsertCost(ctx context.Context, record CostRecord) error {
	if strings.TrimSpace(record.CallID) == "" {
		return errors.New("call id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO call_costs (
            call_id, vapi_cost, llm_cost, tts_cost, stt_cost, sms_cost, total_cost,
            llm_input_tokens, llm_output_tokens, tts_characters, stt_seconds, sms_count,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(call_id) DO UPDATE SET
            vapi_cost = excluded.vapi_cost,
            llm_cost = excluded.llm_cost,
            tts_cost = excluded.tts_cost,
            stt_cost = excluded.stt_cost,
            sms_cost = excluded.sms_cost,
            total_cost = excluded.total_cost,
            llm_input_tokens = excluded.llm_input_tokens,
            llm_output_tokens = excluded.llm_output_tokens,
            tts_characters = excluded.tts_characters,
            stt_seconds = excluded.stt_seconds,
            sms_count = excluded.sms_count,
            updated_at = excluded.updated_at`,
		record.CallID,
		record.VapiCost,
		record.LLMCost,
		record.TTSCost,
		record.STTCost,
		record.SMSCost,
		record.TotalCost,
		record.LLMInputTokens,
		record.LLMOutputTokens,
		record.TTSCharacters,
		record.STTSeconds,
		record.SMSCount,
		now,
		now,
	); err != nil {
		return fmt.Errorf("upsert cost: %w", err)
	}
	return nil
}

// GetCost fetches the cost row, returning nil when absent.
func (s *Store) GetCost(ctx context.Context, callID string) (*CostRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT call_id, vapi_cost, llm_cost, tts_cost, stt_cost, sms_cost, total_cost,
                llm_input_tokens, llm_output_tokens, tts_characters, stt_seconds, sms_count,
                created_at, updated_at
         FROM call_costs WHERE call_id = ?`,
		callID,
	)

	var (
		record     CostRecord
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	err := row.Scan(
		&record.CallID,
		&record.VapiCost,
		&record.LLMCost,
		&record.TTSCost,
		&record.STTCost,
		&record.SMSCost,
		&record.TotalCost,
		&record.LLMInputTokens,
		&record.LLMOutputTokens,
		&record.TTSCharacters,
		&record.STTSeconds,
		&record.SMSCount,
		&createdRaw,
		&updatedRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cost: %w", err)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return &record, nil
}
