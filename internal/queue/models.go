package queue

import (
	"strings"
	"time"
)

// Status represents the pipeline position of a call event. Each step has a
// start, processing, and done status; the done status of one step is the
// start status of the next. An item sitting at a done status has completed
// every step before it, which is what makes a retried run skip finished work.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRecording Status = "recording"
	StatusRecorded  Status = "recorded"
	StatusScrubbing Status = "scrubbing"
	StatusScrubbed  Status = "scrubbed"
	StatusAnalyzing Status = "analyzing"
	StatusAnalyzed  Status = "analyzed"
	StatusCosting   Status = "costing"
	StatusCosted    Status = "costed"
	StatusNotifying Status = "notifying"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusRecording,
	StatusRecorded,
	StatusScrubbing,
	StatusScrubbed,
	StatusAnalyzing,
	StatusAnalyzed,
	StatusCosting,
	StatusCosted,
	StatusNotifying,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusRecording: {},
	StatusScrubbing: {},
	StatusAnalyzing: {},
	StatusCosting:   {},
	StatusNotifying: {},
}

type statusTransition struct {
	from Status
	to   Status
}

// processingRollbacks return a crashed in-flight item to the start status of
// the step it was executing, so already-finished steps never re-run.
var processingRollbacks = []statusTransition{
	{from: StatusRecording, to: StatusPending},
	{from: StatusScrubbing, to: StatusRecorded},
	{from: StatusAnalyzing, to: StatusScrubbed},
	{from: StatusCosting, to: StatusAnalyzed},
	{from: StatusNotifying, to: StatusCosted},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessingStatus reports whether a status reflects an in-flight step.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// Item is one call-ended event persisted in SQLite, carrying both the event
// payload and the pipeline bookkeeping columns.
type Item struct {
	ID                 int64
	CallID             string
	BusinessID         string
	CallerPhone        string
	DurationSeconds    int
	Transcript         string
	ScrubbedTranscript string
	RedactedCount      int
	Summary            string
	TelephonyCost      float64
	Status             Status
	ErrorMessage       string
	Attempts           int
	NextRetryAt        *time.Time
	LastHeartbeat      *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsProcessing returns true when the item is mid-step.
func (i Item) IsProcessing() bool {
	return IsProcessingStatus(i.Status)
}

// EffectiveTranscript returns the scrubbed transcript when the scrub step
// produced one, otherwise the raw transcript.
func (i Item) EffectiveTranscript() string {
	if i.ScrubbedTranscript != "" {
		return i.ScrubbedTranscript
	}
	return i.Transcript
}

// SetFailed marks the item failed with the given error message and clears
// the heartbeat.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.LastHeartbeat = nil
	i.NextRetryAt = nil
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Business is a row of the businesses table the scrub step consults.
type Business struct {
	ID        string
	Name      string
	Industry  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CallRecord is the persisted call row produced by the record step.
type CallRecord struct {
	CallID          string
	BusinessID      string
	CallerPhone     string
	DurationSeconds int
	Transcript      string
	Summary         string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CallStatusCompleted marks a call whose recording finished normally.
const CallStatusCompleted = "completed"

// AnalysisRecord is the placeholder analysis row produced by the analysis
// step; real scoring happens in a later stage outside this pipeline.
type AnalysisRecord struct {
	CallID    string
	Score     float64
	Summary   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnalysisStatusPending marks an analysis row awaiting real scoring.
const AnalysisStatusPending = "pending"

// CostRecord is the persisted cost breakdown produced by the cost step.
type CostRecord struct {
	CallID          string
	VapiCost        float64
	LLMCost         float64
	TTSCost         float64
	STTCost         float64
	SMSCost         float64
	TotalCost       float64
	LLMInputTokens  int64
	LLMOutputTokens int64
	TTSCharacters   int64
	STTSeconds      int
	SMSCount        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
