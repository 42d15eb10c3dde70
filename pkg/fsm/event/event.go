// Package event provides an in-process pub/sub bus for simulation
// events: run lifecycle, transitions, and log lines fan out to
// subscribers such as UIs or recorders without coupling them to the
// engine.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of a simulation event.
type Type string

// The event types published by the executor.
const (
	TypeStarted    Type = "simulation.started"
	TypeStopped    Type = "simulation.stopped"
	TypeTransition Type = "simulation.transition"
	TypeCompleted  Type = "simulation.completed"
	TypeDeadlock   Type = "simulation.deadlock"
	TypeLog        Type = "simulation.log"
)

// Event is one simulation event. Events are immutable once created.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// New creates an event with a fresh ID and the current time.
func New(t Type, runID string, data map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Data:      data,
	}
}
