// Package supervisor composes the startup sequence: launch the service,
// probe its readiness, run the one-shot setup task, then block on the
// service until it exits.
package supervisor

// State represents the current phase of the supervised lifecycle.
type State int

const (
	// StateStarting is the initial phase while the service is being spawned.
	StateStarting State = iota

	// StateProbing indicates the readiness loop is polling the service.
	StateProbing

	// StateSetup indicates the one-shot setup task is running.
	StateSetup

	// StateRunning indicates setup succeeded and the service is being
	// supervised until it exits.
	StateRunning

	// StateTerminated indicates the service exited; its code is propagated.
	StateTerminated

	// StateFatal indicates the run was aborted before supervision completed
	// (launch failure or setup failure).
	StateFatal
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateProbing:
		return "probing"
	case StateSetup:
		return "setup"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for the two end states.
func (s State) IsTerminal() bool {
	return s == StateTerminated || s == StateFatal
}

// PhaseNames lists every phase, for the phase gauge.
func PhaseNames() []string {
	return []string{"starting", "probing", "setup", "running", "terminated", "fatal"}
}
