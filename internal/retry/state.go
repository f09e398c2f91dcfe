// Package retry drives repeated generate/evaluate cycles until an
// attempt clears the quality gate or the retries are exhausted. The
// loop is an explicit state machine; quality failures are ordinary
// data, only external operation errors surface as errors.
package retry

import "fmt"

// State of a retry loop. Attempting and Evaluating are transient,
// the rest are terminal.
type State string

const (
	StateAttempting State = "ATTEMPTING"
	StateEvaluating State = "EVALUATING"
	StateSucceeded  State = "SUCCEEDED"
	StateExhausted  State = "EXHAUSTED"
	StateFailed     State = "FAILED"
)

// IsTerminal reports whether the state ends the loop.
func IsTerminal(s State) bool {
	switch s {
	case StateSucceeded, StateExhausted, StateFailed:
		return true
	default:
		return false
	}
}

// Transition validates a state change and returns the new state.
// The loop calls this on every step so an impossible move is caught
// immediately instead of corrupting the run.
func Transition(from, to State) (State, error) {
	if !isAllowedTransition(from, to) {
		return from, fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	return to, nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateAttempting:
		// Attempting -> Attempting covers an operation error that
		// consumes a retry slot without producing anything to evaluate.
		return to == StateEvaluating || to == StateAttempting || to == StateFailed
	case StateEvaluating:
		return to == StateSucceeded || to == StateExhausted || to == StateAttempting || to == StateFailed
	default:
		return false
	}
}
