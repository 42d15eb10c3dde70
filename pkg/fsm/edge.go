package fsm

import "github.com/google/uuid"

// EdgeID uniquely identifies an edge. IDs are freshly generated UUIDs,
// compared by equality only.
type EdgeID string

// NewEdgeID generates a random edge identifier.
func NewEdgeID() EdgeID {
	return EdgeID(uuid.NewString())
}

// Edge is a directed transition between two nodes.
//
// Guard is an unevaluated condition expression. The engine records it but
// never interprets it; see GuardEvaluator for the interpreter contract.
// IsTraversing is a runtime flag set by a UI while animating a traversal.
type Edge struct {
	ID           EdgeID `json:"id" yaml:"id"`
	Source       NodeID `json:"source" yaml:"source"`
	Target       NodeID `json:"target" yaml:"target"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	Guard        string `json:"guard,omitempty" yaml:"guard,omitempty"`
	IsTraversing bool   `json:"is_traversing,omitempty" yaml:"is_traversing,omitempty"`
}

// NewEdge creates an edge with a fresh ID from source to target.
func NewEdge(source, target NodeID) Edge {
	return Edge{
		ID:     EdgeID(uuid.NewString()),
		Source: source,
		Target: target,
	}
}

// WithLabel returns a copy of the edge with the label set.
func (e Edge) WithLabel(label string) Edge {
	e.Label = label
	return e
}

// WithGuard returns a copy of the edge with the guard expression set.
func (e Edge) WithGuard(guard string) Edge {
	e.Guard = guard
	return e
}
