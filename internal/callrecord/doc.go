// Package callrecord persists the durable call row for an ingested
// call-ended event. It is the first pipeline stage and the only one that
// writes the raw transcript; later stages refine what it stored.
package callrecord
