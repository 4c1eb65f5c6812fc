// Package redact removes sensitive content from transcripts before they are
// stored or analyzed.
//
// The rules are deterministic regexes applied in a fixed order: the later
// patterns are written broadly, so the earlier, more specific redactions must
// run first to avoid re-processing already-redacted placeholder text. The
// rule list is part of the observable contract; do not tune it casually.
package redact

import "regexp"

// Result carries the redacted text and the total number of substrings
// replaced across all rules.
type Result struct {
	Text          string
	RedactedCount int
}

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules in application order: SSN, DOB, email, medical condition,
// medication, card, street address.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`),
		replacement: "[SSN REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(?:date of birth|birth date|born on|birthday|dob)\b(?:\s+is)?[:\s]+[a-z0-9]+(?:[ ,/-]+[a-z0-9]+){0,3}`),
		replacement: "[DOB REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		replacement: "[EMAIL REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(?:diagnosed with|diagnosis of|suffering from|suffers from|being treated for|treated for|treatment for)\s+[a-z][a-z'-]*(?:\s+[a-z'-]+){0,3}`),
		replacement: "[MEDICAL CONDITION REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(?:taking|prescribed|medications?\s+(?:is|are|includes?))\s+[a-z][a-z'-]*(?:\s+\d+\s?(?:mg|mcg|ml|units))?`),
		replacement: "[MEDICATION REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`\b(?:\d[ -]?){15}\d\b`),
		replacement: "[CARD REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b\d{1,5}\s+(?:[a-z]+\s+){0,3}[a-z]+\s+(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|place|pl|way)\b`),
		replacement: "[ADDRESS REDACTED]",
	},
}

// Scrub applies every rule in order against the current (possibly already
// modified) text. Text without matches is returned unchanged with a zero
// count.
func Scrub(text string) Result {
	count := 0
	for _, r := range rules {
		matches := r.pattern.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		count += len(matches)
		text = r.pattern.ReplaceAllLiteralString(text, r.replacement)
	}
	return Result{Text: text, RedactedCount: count}
}
