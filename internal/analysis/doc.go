// Package analysis queues a call for scoring and captures the buying
// signals present in the transcript. The stored analysis row carries a
// bounded summary and stays in the pending state until the scoring service
// picks it up.
package analysis
