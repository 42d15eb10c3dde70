// Package history provides persistent storage for simulation run
// snapshots, so an interrupted run can be inspected or resumed.
package history

import (
	"errors"
	"time"
)

// Store persists run snapshots keyed by run ID and sequence number.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a snapshot for a run at a sequence number.
	// Overwrites if a snapshot for (runID, sequence) already exists.
	Save(runID string, sequence int, data []byte) error

	// Load retrieves a specific snapshot.
	// Returns ErrNotFound if it doesn't exist.
	Load(runID string, sequence int) ([]byte, error)

	// Latest retrieves the snapshot with the highest sequence number.
	// Returns ErrNotFound if the run has no snapshots.
	Latest(runID string) ([]byte, error)

	// List returns metadata for all snapshots of a run, ordered by
	// sequence. Returns an empty slice (not an error) for unknown runs.
	List(runID string) ([]Info, error)

	// DeleteRun removes all snapshots for a run.
	// Returns nil if the run has no snapshots.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides snapshot metadata without loading the payload.
type Info struct {
	RunID     string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound indicates a snapshot doesn't exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")
)
