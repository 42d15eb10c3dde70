package fsm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/history"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/observability"
)

// SnapshotVersion is the current snapshot format version. Increment on
// breaking changes to the Snapshot structure.
const SnapshotVersion = 1

// Snapshot is a point-in-time capture of an executor's run state,
// sufficient to restore the run on a fresh executor over the same graph.
type Snapshot struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	Status      Status         `json:"status"`
	CurrentNode *NodeID        `json:"current_node,omitempty"`
	StepCount   uint64         `json:"step_count"`
	Context     map[string]any `json:"context,omitempty"`
	Logs        []LogEntry     `json:"logs,omitempty"`
}

// Snapshot captures the executor's current run state.
func (x *Executor) Snapshot() Snapshot {
	var current *NodeID
	if x.current != nil {
		id := *x.current
		current = &id
	}
	return Snapshot{
		Version:     SnapshotVersion,
		RunID:       x.runID,
		Sequence:    x.sequence,
		Timestamp:   x.now(),
		Status:      x.status,
		CurrentNode: current,
		StepCount:   x.stepCount,
		Context:     x.Context(),
		Logs:        x.Logs(),
	}
}

// Restore replaces the executor's run state with a previously captured
// snapshot. The graph is not validated against the snapshot; restoring
// onto a graph whose current node was removed surfaces as a StepError on
// the next Step.
func (x *Executor) Restore(s Snapshot) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d not supported (want %d)", s.Version, SnapshotVersion)
	}
	x.runID = s.RunID
	x.sequence = s.Sequence
	x.status = s.Status
	x.stepCount = s.StepCount
	if s.CurrentNode != nil {
		id := *s.CurrentNode
		x.current = &id
	} else {
		x.current = nil
	}
	x.simCtx = make(map[string]any, len(s.Context))
	for k, v := range s.Context {
		x.simCtx[k] = v
	}
	x.logs = append([]LogEntry(nil), s.Logs...)
	return nil
}

// RestoreLatest loads the most recent snapshot for runID from the store
// and restores it.
func (x *Executor) RestoreLatest(store history.Store, runID string) error {
	data, err := store.Latest(runID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return x.Restore(s)
}

// saveSnapshot persists the current run state when a history store is
// configured. Failures are logged and never abort the step. The sequence
// counter advances only on a successful save, so stored sequence numbers
// stay contiguous across failures.
func (x *Executor) saveSnapshot(ctx context.Context) {
	if x.store == nil {
		return
	}
	next := x.sequence + 1
	s := x.Snapshot()
	s.Sequence = next
	data, err := json.Marshal(s)
	if err != nil {
		observability.LogSnapshotError(x.logger, x.runID, err)
		return
	}
	if err := x.store.Save(x.runID, next, data); err != nil {
		observability.LogSnapshotError(x.logger, x.runID, err)
		return
	}
	x.sequence = next
	x.metrics.RecordSnapshot(ctx, int64(len(data)))
}
