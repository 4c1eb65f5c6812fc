// Package calls holds the shared call-domain models: transcript messages
// exchanged during a live call and the call-ended event payload that feeds
// the analysis pipeline.
package calls
