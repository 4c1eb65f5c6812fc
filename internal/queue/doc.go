// Package queue persists the call-analysis pipeline state in SQLite.
//
// It owns two kinds of rows: call_events, the work queue whose status column
// memoizes pipeline progress per call, and the result tables (calls,
// analyses, call_costs) plus the businesses table the scrub step consults.
// Every write to a result table is an upsert keyed by call id, so redelivery
// or replay of an event never duplicates stored effects.
package queue
