package fsm

import (
	"errors"
	"fmt"
)

// Sentinel errors for the executor state machine.
var (
	// ErrNoStartNode indicates the graph has no Input-kind node and no
	// node labeled "START".
	ErrNoStartNode = errors.New("no start node found (add an Input node or label one START)")

	// ErrNotRunning indicates Step or TriggerEvent was called while the
	// status was neither Running nor Stepping.
	ErrNotRunning = errors.New("simulation is not running")

	// ErrNoCurrentState indicates Step was called with no current node set.
	ErrNoCurrentState = errors.New("no current state")
)

// Sentinel errors for graph lookups where presence was assumed.
var (
	// ErrNodeNotFound indicates a node lookup missed.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound indicates an edge lookup missed.
	ErrEdgeNotFound = errors.New("edge not found")
)

// StepError wraps an error with the node the executor was positioned on
// when the failure occurred.
type StepError struct {
	// NodeID is the current node at the time of failure.
	NodeID NodeID
	// Op is the operation that failed ("lookup", "transition").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step at node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StepError) Unwrap() error {
	return e.Err
}
