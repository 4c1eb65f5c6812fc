// Command switchboard is the CLI for the post-call processing pipeline: it
// runs the daemon, ingests call-ended events, and inspects the queue and the
// per-call records the pipeline produces.
package main
