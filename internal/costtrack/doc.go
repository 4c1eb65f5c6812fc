// Package costtrack records the estimated cost breakdown for an analyzed
// call. Token and SMS counts are not yet reported by the voice runtime, so
// the detailed estimate runs with those inputs zeroed; the breakdown columns
// are in place for when usage data starts flowing.
package costtrack
