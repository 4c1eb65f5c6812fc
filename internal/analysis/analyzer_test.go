package analysis_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"switchboard/internal/analysis"
	"switchboard/internal/calls"
	"switchboard/internal/logging"
	"switchboard/internal/queue"
	"switchboard/internal/testsupport"
)

func TestExecutePersistsPendingAnalysis(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := analysis.New(cfg, store, logging.NewNop())

	ctx := context.Background()
	item, _, err := store.IngestEvent(ctx, calls.EndedEvent{
		BusinessID: "biz-1",
		CallID:     "call-a1",
		Transcript: `[{"role":"user","content":"how much is a cleaning"},{"role":"assistant","content":"our cleanings start at eighty dollars"}]`,
		Summary:    "Caller asked about cleaning prices.",
	})
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}

	if err := analyzer.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	record, err := store.GetAnalysis(ctx, "call-a1")
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected analysis row")
	}
	if record.Status != queue.AnalysisStatusPending {
		t.Fatalf("expected pending status, got %q", record.Status)
	}
	if record.Score != 0 {
		t.Fatalf("expected zero score before scoring, got %v", record.Score)
	}
	if record.Summary != item.Transcript {
		t.Fatalf("expected summary to copy the transcript, got %q", record.Summary)
	}
}

func TestExecutePrefersScrubbedTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := analysis.New(cfg, store, logging.NewNop())

	ctx := context.Background()
	item, _, err := store.IngestEvent(ctx, calls.EndedEvent{
		BusinessID: "biz-1",
		CallID:     "call-a2",
		Transcript: "{broken raw payload",
	})
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}
	item.ScrubbedTranscript = `[{"role":"user","content":"what does it cost"}]`

	if err := analyzer.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed with scrubbed transcript available: %v", err)
	}
}

func TestExecuteFailsOnUnreadableTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := analysis.New(cfg, store, logging.NewNop())

	ctx := context.Background()
	item, _, err := store.IngestEvent(ctx, calls.EndedEvent{
		BusinessID: "biz-1",
		CallID:     "call-a3",
		Transcript: "{broken",
	})
	if err != nil {
		t.Fatalf("IngestEvent failed: %v", err)
	}

	if err := analyzer.Execute(ctx, item); err == nil {
		t.Fatal("expected error for unreadable transcript")
	}
}

func TestSummarizePreservesShortTranscripts(t *testing.T) {
	transcript := `[{"role":"user","content":"do you do same day crowns"}]`
	if summary := analysis.Summarize(transcript); summary != transcript {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestSummarizeTruncatesAtBound(t *testing.T) {
	long := strings.Repeat("pricing question ", 60)
	summary := analysis.Summarize(long)
	if got := utf8.RuneCountInString(summary); got != 500 {
		t.Fatalf("expected 500 rune summary, got %d", got)
	}
}

func TestSummarizeHandlesEmptyTranscript(t *testing.T) {
	if summary := analysis.Summarize("   "); summary != "" {
		t.Fatalf("expected empty summary, got %q", summary)
	}
}
