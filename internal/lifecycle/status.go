package lifecycle

import (
	"errors"
	"fmt"
)

// Status is the state of a persisted shopping list. A user has at most one
// list in StatusCurrent at any time; completed and cancelled are terminal.
type Status string

const (
	StatusCurrent   Status = "current"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrTerminalState     = errors.New("list is in a terminal state")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusCurrent, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether a list may move from one state to another.
// The only permitted transitions are current → completed and
// current → cancelled. Entering current happens exclusively through list
// creation, never as a transition from an existing state.
func CanTransition(from, to Status) bool {
	return from == StatusCurrent && (to == StatusCompleted || to == StatusCancelled)
}

// Transition validates a state change and returns the resulting state.
func Transition(from, to Status) (Status, error) {
	if !from.Valid() {
		return from, fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, from)
	}
	if !to.Valid() {
		return from, fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, to)
	}
	if from.Terminal() {
		return from, fmt.Errorf("%w: %s", ErrTerminalState, from)
	}
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}
