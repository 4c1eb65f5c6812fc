package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"switchboard/internal/calls"
	"switchboard/internal/queue"
	"switchboard/internal/testsupport"
)

func sampleEvent(callID string) calls.EndedEvent {
	return calls.EndedEvent{
		BusinessID:      "biz-1",
		CallID:          callID,
		CallerPhone:     "+15551234567",
		DurationSeconds: 120,
		Transcript:      `[{"role":"user","content":"hello"}]`,
		Summary:         "Caller asked about hours.",
		TelephonyCost:   0.11,
	}
}

func TestIngestEventCreatesPendingItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, created, err := store.IngestEvent(ctx, sampleEvent("call-1"))
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}
	if !created {
		t.Fatal("expected first ingest to create the item")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}

	fetched, err := store.GetByCallID(ctx, "call-1")
	if err != nil {
		t.Fatalf("GetByCallID failed: %v", err)
	}
	if fetched == nil || fetched.BusinessID != "biz-1" || fetched.DurationSeconds != 120 {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestIngestEventIsIdempotentPerCallID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, created, err := store.IngestEvent(ctx, sampleEvent("call-dup"))
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	if !created {
		t.Fatal("expected first ingest to create")
	}

	// Simulate progress before redelivery.
	first.Status = queue.StatusAnalyzed
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	second, created, err := store.IngestEvent(ctx, sampleEvent("call-dup"))
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	if created {
		t.Fatal("expected redelivery to be a no-op")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got %d and %d", first.ID, second.ID)
	}
	if second.Status != queue.StatusAnalyzed {
		t.Fatalf("redelivery must not reset status, got %s", second.Status)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one queued item, got %d", len(items))
	}
}

func TestIngestEventRejectsInvalidPayload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	event := sampleEvent("call-bad")
	event.BusinessID = ""
	if _, _, err := store.IngestEvent(context.Background(), event); err == nil {
		t.Fatal("expected error for missing business id")
	}
}

func TestNextReadyHonorsRetryBackoff(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, _, err := store.IngestEvent(ctx, sampleEvent("call-backoff"))
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}

	future := time.Now().UTC().Add(time.Hour)
	item.NextRetryAt = &future
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	next, err := store.NextReady(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextReady failed: %v", err)
	}
	if next != nil {
		t.Fatalf("expected no ready item while backoff pending, got %#v", next)
	}

	past := time.Now().UTC().Add(-time.Minute)
	item.NextRetryAt = &past
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	next, err = store.NextReady(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextReady failed: %v", err)
	}
	if next == nil || next.ID != item.ID {
		t.Fatalf("expected item ready after backoff elapsed, got %#v", next)
	}
}

func TestNextReadyReturnsOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, _, err := store.IngestEvent(ctx, sampleEvent(fmt.Sprintf("call-order-%d", i))); err != nil {
			t.Fatalf("IngestEvent failed: %v", err)
		}
	}

	next, err := store.NextReady(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextReady failed: %v", err)
	}
	if next == nil || next.CallID != "call-order-0" {
		t.Fatalf("expected oldest item first, got %#v", next)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"recording", queue.StatusRecording, queue.StatusPending},
		{"scrubbing", queue.StatusScrubbing, queue.StatusRecorded},
		{"analyzing", queue.StatusAnalyzing, queue.StatusScrubbed},
		{"costing", queue.StatusCosting, queue.StatusAnalyzed},
		{"notifying", queue.StatusNotifying, queue.StatusCosted},
	}
	var ids []int64
	for i, tc := range cases {
		item, _, err := store.IngestEvent(ctx, sampleEvent(fmt.Sprintf("call-reset-%d", i)))
		if err != nil {
			t.Fatalf("IngestEvent failed: %v", err)
		}
		item.Status = tc.initialStatus
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d items reset, got %d", len(cases), count)
	}

	for i, tc := range cases {
		item, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if item.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, item.Status)
		}
		if item.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.name)
		}
	}
}

func TestReclaimStaleProcessingOnlyTouchesExpiredHeartbeats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stale, _, err := store.IngestEvent(ctx, sampleEvent("call-stale"))
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}
	old := time.Now().UTC().Add(-time.Hour)
	stale.Status = queue.StatusAnalyzing
	stale.LastHeartbeat = &old
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh, _, err := store.IngestEvent(ctx, sampleEvent("call-fresh"))
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}
	now := time.Now().UTC()
	fresh.Status = queue.StatusAnalyzing
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one reclaimed item, got %d", count)
	}

	reclaimed, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reclaimed.Status != queue.StatusScrubbed {
		t.Fatalf("expected rollback to scrubbed, got %s", reclaimed.Status)
	}

	untouched, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != queue.StatusAnalyzing {
		t.Fatalf("expected fresh item untouched, got %s", untouched.Status)
	}
}

func TestRetryFailedResetsAttempts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, _, err := store.IngestEvent(ctx, sampleEvent("call-failed"))
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}
	item.SetFailed("analysis exploded")
	item.Attempts = 5
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.RetryFailed(ctx, item.ID)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one item retried, got %d", count)
	}

	retried, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retried.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", retried.Status)
	}
	if retried.Attempts != 0 || retried.ErrorMessage != "" || retried.NextRetryAt != nil {
		t.Fatalf("expected retry state cleared, got %#v", retried)
	}
}

func TestUpsertCallIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := queue.CallRecord{
		CallID:          "call-42",
		BusinessID:      "biz-1",
		CallerPhone:     "+15551234567",
		DurationSeconds: 90,
		Transcript:      "transcript v1",
		Status:          queue.CallStatusCompleted,
	}
	if err := store.UpsertCall(ctx, record); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	record.Transcript = "transcript v2"
	if err := store.UpsertCall(ctx, record); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	fetched, err := store.GetCall(ctx, "call-42")
	if err != nil {
		t.Fatalf("GetCall failed: %v", err)
	}
	if fetched == nil || fetched.Transcript != "transcript v2" {
		t.Fatalf("expected replaced transcript, got %#v", fetched)
	}
}

func TestUpsertAnalysisAndCost(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	analysis := queue.AnalysisRecord{
		CallID:  "call-43",
		Summary: "Caller asked about pricing.",
		Status:  queue.AnalysisStatusPending,
	}
	if err := store.UpsertAnalysis(ctx, analysis); err != nil {
		t.Fatalf("UpsertAnalysis failed: %v", err)
	}
	if err := store.UpsertAnalysis(ctx, analysis); err != nil {
		t.Fatalf("repeat UpsertAnalysis failed: %v", err)
	}

	got, err := store.GetAnalysis(ctx, "call-43")
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if got == nil || got.Status != queue.AnalysisStatusPending {
		t.Fatalf("unexpected analysis: %#v", got)
	}

	cost := queue.CostRecord{
		CallID:    "call-43",
		VapiCost:  0.11,
		LLMCost:   0.033,
		TTSCost:   0.022,
		STTCost:   0.011,
		TotalCost: 0.176,
	}
	if err := store.UpsertCost(ctx, cost); err != nil {
		t.Fatalf("UpsertCost failed: %v", err)
	}
	cost.TotalCost = 0.2
	if err := store.UpsertCost(ctx, cost); err != nil {
		t.Fatalf("repeat UpsertCost failed: %v", err)
	}

	gotCost, err := store.GetCost(ctx, "call-43")
	if err != nil {
		t.Fatalf("GetCost failed: %v", err)
	}
	if gotCost == nil || gotCost.TotalCost != 0.2 {
		t.Fatalf("unexpected cost: %#v", gotCost)
	}
}

func TestBusinessIndustryLookup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	business := queue.Business{ID: "biz-med", Name: "Lakeside Dental", Industry: "Dental"}
	if err := store.UpsertBusiness(ctx, business); err != nil {
		t.Fatalf("UpsertBusiness failed: %v", err)
	}

	industry, ok, err := store.BusinessIndustry(ctx, "biz-med")
	if err != nil {
		t.Fatalf("BusinessIndustry failed: %v", err)
	}
	if !ok || industry != "dental" {
		t.Fatalf("expected lowercased dental industry, got %q ok=%v", industry, ok)
	}

	_, ok, err = store.BusinessIndustry(ctx, "biz-unknown")
	if err != nil {
		t.Fatalf("BusinessIndustry failed: %v", err)
	}
	if ok {
		t.Fatal("expected unknown business to report not found")
	}
}

func TestHealthAggregatesStatuses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	statuses := []queue.Status{
		queue.StatusPending,
		queue.StatusAnalyzing,
		queue.StatusFailed,
		queue.StatusCompleted,
	}
	for i, status := range statuses {
		item, _, err := store.IngestEvent(ctx, sampleEvent(fmt.Sprintf("call-health-%d", i)))
		if err != nil {
			t.Fatalf("IngestEvent failed: %v", err)
		}
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 4 || health.Pending != 1 || health.Processing != 1 || health.Failed != 1 || health.Completed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}
