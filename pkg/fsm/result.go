package fsm

// StepOutcome tags a StepResult.
type StepOutcome string

const (
	// OutcomeTransitioned means an edge was traversed; From and To are set.
	OutcomeTransitioned StepOutcome = "transitioned"

	// OutcomeCompleted means the current node is an Output node with no
	// outgoing edges. The executor's status is not changed; callers must
	// Stop explicitly.
	OutcomeCompleted StepOutcome = "completed"

	// OutcomeDeadlock means the current node is non-terminal and has no
	// outgoing edges. Status is likewise unchanged.
	OutcomeDeadlock StepOutcome = "deadlock"

	// OutcomeBreakpoint is reserved for breakpoint-aware stepping. No
	// engine path emits it today.
	OutcomeBreakpoint StepOutcome = "breakpoint"
)

// StepResult is the tagged result of a single Step call. From and To are
// set on Transitioned; Node identifies where the run completed, stuck,
// or hit a breakpoint.
type StepResult struct {
	Outcome StepOutcome `json:"outcome"`
	From    NodeID      `json:"from,omitempty"`
	To      NodeID      `json:"to,omitempty"`
	Node    NodeID      `json:"node,omitempty"`
}

// SimulationStepResult is the serializable summary of the executor's
// state, exposed at the command/UI boundary.
type SimulationStepResult struct {
	Status      Status     `json:"status"`
	CurrentNode *NodeID    `json:"current_node,omitempty"`
	StepCount   uint64     `json:"step_count"`
	Logs        []LogEntry `json:"logs"`
}
