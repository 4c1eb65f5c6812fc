// Package logging builds the slog loggers used across switchboard and
// defines the shared attribute vocabulary for pipeline events.
package logging
