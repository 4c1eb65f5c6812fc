// Package workflow advances queued call events through the processing
// stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// events into the registered stage handlers (callrecord, scrub, analysis,
// costtrack, notify). Progress is tracked entirely through the queue status
// column: each stage's done status is the next stage's start status, so a
// retried or redelivered event resumes exactly where it left off and never
// repeats a finished step.
//
// Stage failures follow two paths. Permanent errors (validation,
// configuration, not-found) fail the event immediately. Everything else is
// requeued at the start of the failing stage with exponential backoff until
// the configured attempt cap is reached.
package workflow
