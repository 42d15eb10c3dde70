package fsm

// Status is the executor's lifecycle state. Values are the wire tokens
// used in serialized results.
type Status string

const (
	// StatusIdle is the initial state; Stop always returns here.
	StatusIdle Status = "IDLE"

	// StatusRunning means a run is in progress and Step may be called.
	StatusRunning Status = "RUNNING"

	// StatusPaused means a run is suspended by the caller.
	StatusPaused Status = "PAUSED"

	// StatusStepping means the caller is single-stepping; Step is valid.
	StatusStepping Status = "STEPPING"

	// StatusError means the run halted on an error condition.
	StatusError Status = "ERROR"
)
