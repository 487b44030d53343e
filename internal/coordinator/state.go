// Package coordinator drives a single download from URL to verified file:
// probing the remote object, sizing the connection plan, partitioning the
// byte range, guarding free space, and fanning workers out across the
// chosen writer strategy.
package coordinator

import "fmt"

// State is a stage in a download's lifecycle. Transitions only ever move
// forward, except into Aborted, which is reachable from any state.
type State int

const (
	// Init is the state before anything has happened.
	Init State = iota
	// Probed means the remote file's identity and size are known.
	Probed
	// Planned means the connection count and chunk ranges are computed.
	Planned
	// Allocated means the destination file has been created (and
	// pre-allocated, if requested).
	Allocated
	// Fetching means workers are actively writing ranges.
	Fetching
	// Completed means every range was written and any hash check passed.
	Completed
	// Aborted means the download stopped short of Completed.
	Aborted
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Probed:
		return "probed"
	case Planned:
		return "planned"
	case Allocated:
		return "allocated"
	case Fetching:
		return "fetching"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// forward maps each state to the one state it may advance to.
var forward = map[State]State{
	Init:      Probed,
	Probed:    Planned,
	Planned:   Allocated,
	Allocated: Fetching,
	Fetching:  Completed,
}

// machine tracks the current state of one download and rejects transitions
// that skip a stage or move backward.
type machine struct {
	current State
}

func newMachine() *machine {
	return &machine{current: Init}
}

// advance moves the machine to next, or to Aborted unconditionally.
func (m *machine) advance(next State) error {
	if next == Aborted {
		m.current = Aborted
		return nil
	}

	if want, ok := forward[m.current]; !ok || want != next {
		return fmt.Errorf("invalid state transition: %s -> %s", m.current, next)
	}

	m.current = next
	return nil
}

func (m *machine) state() State {
	return m.current
}
