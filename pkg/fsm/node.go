package fsm

import (
	"strings"

	"github.com/google/uuid"
)

// NodeID uniquely identifies a node. IDs are freshly generated UUIDs,
// compared by equality only.
type NodeID string

// NewNodeID generates a random node identifier.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// NodeKind classifies a node. Most kinds are domain flavor only; the
// engine distinguishes just three:
//
//   - KindInput nodes are start-node candidates
//   - KindOutput nodes terminate a run cleanly
//   - KindError nodes are terminal and never counted as deadlocks
type NodeKind string

// The closed set of node kinds. Values are the wire tokens used in
// serialized projects.
const (
	KindInput      NodeKind = "input"
	KindProcess    NodeKind = "process"
	KindOutput     NodeKind = "output"
	KindDecision   NodeKind = "decision"
	KindError      NodeKind = "error"
	KindHardware   NodeKind = "hardware"
	KindUart       NodeKind = "uart"
	KindInterrupt  NodeKind = "interrupt"
	KindTimer      NodeKind = "timer"
	KindPeripheral NodeKind = "peripheral"
	KindListener   NodeKind = "listener"
	KindQueue      NodeKind = "queue"
	KindMutex      NodeKind = "mutex"
	KindCritical   NodeKind = "critical"
	KindSensor     NodeKind = "sensor"
	KindDisplay    NodeKind = "display"
	KindStorage    NodeKind = "storage"
	KindNetwork    NodeKind = "network"
	KindWireless   NodeKind = "wireless"
	KindMath       NodeKind = "math"
	KindLogger     NodeKind = "logger"
	KindGroup      NodeKind = "group"
)

var nodeKinds = map[NodeKind]struct{}{
	KindInput: {}, KindProcess: {}, KindOutput: {}, KindDecision: {},
	KindError: {}, KindHardware: {}, KindUart: {}, KindInterrupt: {},
	KindTimer: {}, KindPeripheral: {}, KindListener: {}, KindQueue: {},
	KindMutex: {}, KindCritical: {}, KindSensor: {}, KindDisplay: {},
	KindStorage: {}, KindNetwork: {}, KindWireless: {}, KindMath: {},
	KindLogger: {}, KindGroup: {},
}

// Valid reports whether k is a member of the closed kind set.
func (k NodeKind) Valid() bool {
	_, ok := nodeKinds[k]
	return ok
}

// Node is a state in the FSM graph.
//
// IsActive, IsBreakpoint, and HasError are runtime flags set by the
// executor or a UI; they are not structural invariants.
type Node struct {
	ID          NodeID   `json:"id" yaml:"id"`
	Label       string   `json:"label" yaml:"label"`
	Kind        NodeKind `json:"kind" yaml:"kind"`
	X           float64  `json:"x" yaml:"x"`
	Y           float64  `json:"y" yaml:"y"`
	EntryAction string   `json:"entry_action,omitempty" yaml:"entry_action,omitempty"`
	ExitAction  string   `json:"exit_action,omitempty" yaml:"exit_action,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	IsActive     bool `json:"is_active,omitempty" yaml:"is_active,omitempty"`
	IsBreakpoint bool `json:"is_breakpoint,omitempty" yaml:"is_breakpoint,omitempty"`
	HasError     bool `json:"has_error,omitempty" yaml:"has_error,omitempty"`
}

// NewNode creates a node with a fresh ID at the given canvas position.
func NewNode(label string, kind NodeKind, x, y float64) Node {
	return Node{
		ID:    NewNodeID(),
		Label: label,
		Kind:  kind,
		X:     x,
		Y:     y,
	}
}

// WithEntryAction returns a copy of the node with the entry action set.
func (n Node) WithEntryAction(action string) Node {
	n.EntryAction = action
	return n
}

// WithExitAction returns a copy of the node with the exit action set.
func (n Node) WithExitAction(action string) Node {
	n.ExitAction = action
	return n
}

// WithDescription returns a copy of the node with the description set.
func (n Node) WithDescription(desc string) Node {
	n.Description = desc
	return n
}

// WithTags returns a copy of the node with the given tags.
func (n Node) WithTags(tags ...string) Node {
	n.Tags = tags
	return n
}

// isStart reports whether the node qualifies as a simulation start node:
// kind Input, or label equal to "START" ignoring case.
func (n Node) isStart() bool {
	return n.Kind == KindInput || strings.EqualFold(n.Label, "START")
}

// clone returns a copy that shares no mutable state with the original.
func (n Node) clone() Node {
	if n.Tags != nil {
		tags := make([]string, len(n.Tags))
		copy(tags, n.Tags)
		n.Tags = tags
	}
	return n
}
