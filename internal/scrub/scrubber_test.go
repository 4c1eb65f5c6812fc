package scrub_test

import (
	"context"
	"strings"
	"testing"

	"switchboard/internal/calls"
	"switchboard/internal/logging"
	"switchboard/internal/queue"
	"switchboard/internal/scrub"
	"switchboard/internal/testsupport"
)

func seedItem(t *testing.T, store *queue.Store, callID, businessID, transcript, summary string) *queue.Item {
	t.Helper()
	item, _, err := store.IngestEvent(context.Background(), calls.EndedEvent{
		BusinessID:      businessID,
		CallID:          callID,
		DurationSeconds: 60,
		Transcript:      transcript,
		Summary:         summary,
	})
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}
	return item
}

func TestExecuteScrubsPHIIndustryTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	scrubber := scrub.New(cfg, store, logging.NewNop())

	ctx := context.Background()
	if err := store.UpsertBusiness(ctx, queue.Business{ID: "biz-dental", Name: "Lakeside Dental", Industry: "dental"}); err != nil {
		t.Fatalf("UpsertBusiness failed: %v", err)
	}

	transcript := `[{"role":"user","content":"my SSN is 123-45-6789"},{"role":"assistant","content":"thanks, noted"}]`
	item := seedItem(t, store, "call-phi", "biz-dental", transcript, "Caller shared 123-45-6789.")

	if err := scrubber.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if item.ScrubbedTranscript == "" {
		t.Fatal("expected scrubbed transcript to be set")
	}
	if strings.Contains(item.ScrubbedTranscript, "123-45-6789") {
		t.Fatalf("SSN survived scrubbing: %s", item.ScrubbedTranscript)
	}
	if !strings.Contains(item.ScrubbedTranscript, "[SSN REDACTED]") {
		t.Fatalf("expected SSN placeholder in %s", item.ScrubbedTranscript)
	}
	if item.RedactedCount < 2 {
		t.Fatalf("expected transcript and summary redactions counted, got %d", item.RedactedCount)
	}
	if strings.Contains(item.Summary, "123-45-6789") {
		t.Fatalf("SSN survived in summary: %s", item.Summary)
	}

	record, err := store.GetCall(ctx, "call-phi")
	if err != nil {
		t.Fatalf("GetCall failed: %v", err)
	}
	if record == nil || strings.Contains(record.Transcript, "123-45-6789") {
		t.Fatalf("stored call row still carries PHI: %#v", record)
	}
}

func TestExecuteSkipsNonPHIIndustry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	scrubber := scrub.New(cfg, store, logging.NewNop())

	ctx := context.Background()
	if err := store.UpsertBusiness(ctx, queue.Business{ID: "biz-salon", Name: "Shear Style", Industry: "salon"}); err != nil {
		t.Fatalf("UpsertBusiness failed: %v", err)
	}

	transcript := `[{"role":"user","content":"my SSN is 123-45-6789"}]`
	item := seedItem(t, store, "call-salon", "biz-salon", transcript, "")

	if err := scrubber.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if item.ScrubbedTranscript != "" {
		t.Fatalf("expected no scrubbing for non-PHI industry, got %s", item.ScrubbedTranscript)
	}
	if item.RedactedCount != 0 {
		t.Fatalf("expected zero redactions, got %d", item.RedactedCount)
	}
}

func TestExecuteToleratesUnknownBusiness(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	scrubber := scrub.New(cfg, store, logging.NewNop())

	item := seedItem(t, store, "call-unknown", "biz-missing", `[{"role":"user","content":"hi"}]`, "")
	if err := scrubber.Execute(context.Background(), item); err != nil {
		t.Fatalf("expected unknown business to be non-fatal, got %v", err)
	}
}

func TestExecuteToleratesMalformedTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	scrubber := scrub.New(cfg, store, logging.NewNop())

	ctx := context.Background()
	if err := store.UpsertBusiness(ctx, queue.Business{ID: "biz-med", Name: "Main Medical", Industry: "medical"}); err != nil {
		t.Fatalf("UpsertBusiness failed: %v", err)
	}

	item := seedItem(t, store, "call-garbage", "biz-med", "{broken", "")
	if err := scrubber.Execute(ctx, item); err != nil {
		t.Fatalf("expected malformed transcript to be non-fatal, got %v", err)
	}
	if item.ScrubbedTranscript != "" {
		t.Fatal("expected no scrubbed transcript for unreadable payload")
	}
}

func TestScrubTranscriptCountsAcrossMessages(t *testing.T) {
	messages := []calls.TranscriptMessage{
		{Role: calls.RoleUser, Content: "my email is jane@example.com"},
		{Role: calls.RoleUser, Content: "and my SSN is 123-45-6789"},
		{Role: calls.RoleAssistant, Content: "understood"},
	}

	scrubbed, count := scrub.ScrubTranscript(messages)
	if count != 2 {
		t.Fatalf("expected two redactions, got %d", count)
	}
	if strings.Contains(scrubbed[0].Content, "jane@example.com") {
		t.Fatalf("email survived: %s", scrubbed[0].Content)
	}
	if scrubbed[2].Content != "understood" {
		t.Fatalf("clean message altered: %s", scrubbed[2].Content)
	}
	if messages[0].Content != "my email is jane@example.com" {
		t.Fatal("input slice mutated")
	}
}
