// Package services defines shared utilities consumed by the workflow stage
// handlers.
//
// Key responsibilities:
//   - Context helpers that stamp queue item IDs, call IDs, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the workflow
//     manager distinguish permanent failures from retryable ones.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
