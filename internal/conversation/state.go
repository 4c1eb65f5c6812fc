package conversation

import "strings"

// State is a call phase tag.
type State string

const (
	StateGreeting      State = "GREETING"
	StateConsentCheck  State = "CONSENT_CHECK"
	StateDiscovery     State = "DISCOVERY"
	StateQualification State = "QUALIFICATION"
	StatePricing       State = "PRICING"
	StateBooking       State = "BOOKING"
	StateWrapUp        State = "WRAP_UP"
	StateEscalation    State = "ESCALATION"
)

var allStates = []State{
	StateGreeting,
	StateConsentCheck,
	StateDiscovery,
	StateQualification,
	StatePricing,
	StateBooking,
	StateWrapUp,
	StateEscalation,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// AllStates returns the ordered list of known states.
func AllStates() []State {
	cp := make([]State, len(allStates))
	copy(cp, allStates)
	return cp
}

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// Transition is one edge of the phase graph with the business condition that
// permits it.
type Transition struct {
	From      State
	To        State
	Condition string
}

// transitions is the full phase graph. WRAP_UP is a terminal sink reachable
// from every substantive phase; ESCALATION models "hand off to a human" and
// is reachable from every phase past consent. The graph never cycles back
// toward GREETING.
var transitions = []Transition{
	{From: StateGreeting, To: StateConsentCheck, Condition: "greeting delivered"},
	{From: StateConsentCheck, To: StateDiscovery, Condition: "consent granted"},
	{From: StateConsentCheck, To: StateWrapUp, Condition: "consent declined"},
	{From: StateDiscovery, To: StateQualification, Condition: "need identified"},
	{From: StateDiscovery, To: StateEscalation, Condition: "caller requests human"},
	{From: StateQualification, To: StatePricing, Condition: "caller qualified"},
	{From: StateQualification, To: StateEscalation, Condition: "caller requests human"},
	{From: StatePricing, To: StateBooking, Condition: "price accepted"},
	{From: StatePricing, To: StateWrapUp, Condition: "price declined"},
	{From: StatePricing, To: StateEscalation, Condition: "caller requests human"},
	{From: StateBooking, To: StateWrapUp, Condition: "booking confirmed"},
	{From: StateBooking, To: StateEscalation, Condition: "booking failed"},
	{From: StateEscalation, To: StateWrapUp, Condition: "handoff complete"},
}

// Transitions returns a copy of the full transition table.
func Transitions() []Transition {
	cp := make([]Transition, len(transitions))
	copy(cp, transitions)
	return cp
}
