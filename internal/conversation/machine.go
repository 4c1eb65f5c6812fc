package conversation

// Machine tracks the current phase of one live call and the path taken to
// reach it. It assumes a single mutator and never blocks.
type Machine struct {
	current State
	history []State
}

// New constructs a machine seeded with the provided state, defaulting to
// GREETING when the state is empty or unknown. Tests use the seed to start
// mid-call.
func New(initial State) *Machine {
	if _, ok := stateSet[initial]; !ok {
		initial = StateGreeting
	}
	return &Machine{
		current: initial,
		history: []State{initial},
	}
}

// Current returns the current phase tag.
func (m *Machine) Current() State {
	return m.current
}

// History returns every state entered, oldest first, including the initial
// state. Failed transition attempts leave the history untouched.
func (m *Machine) History() []State {
	cp := make([]State, len(m.history))
	copy(cp, m.history)
	return cp
}

// CanTransition reports whether moving to target is legal from the current
// state.
func (m *Machine) CanTransition(target State) bool {
	for _, t := range transitions {
		if t.From == m.current && t.To == target {
			return true
		}
	}
	return false
}

// Transition advances to target when the move is legal. An illegal request
// is a no-op returning false, not an error: the live voice runtime must keep
// the call running regardless.
func (m *Machine) Transition(target State) bool {
	if !m.CanTransition(target) {
		return false
	}
	m.current = target
	m.history = append(m.history, target)
	return true
}

// AvailableTransitions returns the table rows leaving the current state.
func (m *Machine) AvailableTransitions() []Transition {
	var out []Transition
	for _, t := range transitions {
		if t.From == m.current {
			out = append(out, t)
		}
	}
	return out
}
