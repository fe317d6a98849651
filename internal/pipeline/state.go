package pipeline

import (
	"fmt"
	"strings"
)

// State is a step of a digest run. Runs only move forward:
//
//	START → SEARCHING → (ABORT_EMPTY | AGGREGATING)
//	AGGREGATING → (ABORT_NO_PRICE | WRITING) → NOTIFYING → DONE
type State string

const (
	StateStart        State = "START"
	StateSearching    State = "SEARCHING"
	StateAggregating  State = "AGGREGATING"
	StateAbortEmpty   State = "ABORT_EMPTY"
	StateWriting      State = "WRITING"
	StateAbortNoPrice State = "ABORT_NO_PRICE"
	StateNotifying    State = "NOTIFYING"
	StateDone         State = "DONE"
)

// Aborted reports whether s is a "nothing to report" outcome.
func (s State) Aborted() bool {
	return s == StateAbortEmpty || s == StateAbortNoPrice
}

// Terminal reports whether no further state follows s.
func (s State) Terminal() bool {
	return s == StateDone || s.Aborted()
}

// StageError is a hard failure of the stage running in State.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", strings.ToLower(string(e.State)), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
