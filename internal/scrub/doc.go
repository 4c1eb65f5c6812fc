// Package scrub removes protected health information from transcripts of
// calls handled for PHI-sensitive industries. The stage is advisory: a scrub
// failure is logged and the pipeline continues with the raw transcript rather
// than blocking the call from analysis.
package scrub
