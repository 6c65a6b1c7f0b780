package session

import "fmt"

// State represents the lifecycle state of a streaming session.
//
// Transitions:
//
//	OPEN → CLOSING → CLOSED
//
// Rules:
//   - OPEN: frames are accepted; Finalize transitions to CLOSING.
//   - CLOSING: the closing final has been emitted; no more frames.
//   - CLOSED: terminal. Decoder state is released; nothing leaves CLOSED.
type State int

const (
	// StateOpen - session is accepting frames.
	StateOpen State = iota
	// StateClosing - finalize ran, the last final has been produced.
	StateClosing
	// StateClosed - decoder released, registry entry gone. Terminal.
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is CLOSED.
func (s State) IsTerminal() bool {
	return s == StateClosed
}
