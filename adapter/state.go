package adapter

// State is the flow state of an Adapter.
type State int32

const (
	// StatePaused waits for the next RequestMore. Initial state.
	StatePaused State = iota
	// StateProducing is actively pulling and pushing.
	StateProducing
	// StateEnded means the producer was exhausted and End was signaled.
	StateEnded
	// StateFailed means the producer faulted and Fail was signaled.
	StateFailed
	// StateClosed means the stream was closed before exhaustion.
	StateClosed
)

// Terminal reports whether no further fill cycles can run.
func (s State) Terminal() bool {
	return s >= StateEnded
}

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateProducing:
		return "producing"
	case StateEnded:
		return "ended"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
