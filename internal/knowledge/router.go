// Package knowledge decides which backend should answer a caller question:
// the structured pricing tables or the free-text knowledge base.
package knowledge

import "strings"

// Source names a knowledge backend.
type Source string

const (
	SourceStructured Source = "structured"
	SourceRAG        Source = "rag"
)

// RouteResult is the routing decision for one query.
type RouteResult struct {
	Source     Source
	Confidence float64
}

// pricingKeywords are the phrases that mark a query as pricing-flavored.
// The list and the tier confidences below are a fixed, auditable heuristic;
// they are part of the observable contract and must not be tuned casually.
var pricingKeywords = []string{
	"price",
	"cost",
	"how much",
	"fee",
	"rate",
	"insurance",
	"financing",
	"discount",
	"estimate",
	"quote",
	"payment plan",
	"afford",
	"expensive",
	"charge",
}

// Route classifies a caller question in O(keywords). Matching is substring
// based and case-insensitive; each distinct keyword counts once no matter how
// often it occurs.
func Route(query string) RouteResult {
	lowered := strings.ToLower(query)

	matches := 0
	for _, keyword := range pricingKeywords {
		if strings.Contains(lowered, keyword) {
			matches++
		}
	}

	switch {
	case matches >= 2:
		return RouteResult{Source: SourceStructured, Confidence: 0.9}
	case matches == 1:
		return RouteResult{Source: SourceStructured, Confidence: 0.7}
	default:
		return RouteResult{Source: SourceRAG, Confidence: 0.8}
	}
}
