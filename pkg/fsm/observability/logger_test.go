package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newBufferLogger returns a debug-level logger writing to buf.
func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestLogHelpers_NilLoggerSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRunStart(nil, "run-1", "START")
		LogRunStop(nil, "run-1", 3)
		LogRunComplete(nil, "run-1", "END", 3)
		LogTransition(nil, "run-1", "A", "B", 1)
		LogDeadlock(nil, "run-1", "STUCK")
		LogSnapshotError(nil, "run-1", errors.New("disk full"))
	})
}

func TestLogRunStart(t *testing.T) {
	var buf bytes.Buffer
	LogRunStart(newBufferLogger(&buf), "run-1", "START")

	out := buf.String()
	assert.Contains(t, out, "simulation starting")
	assert.Contains(t, out, "run_id=run-1")
	assert.Contains(t, out, "start_node=START")
}

func TestLogTransition(t *testing.T) {
	var buf bytes.Buffer
	LogTransition(newBufferLogger(&buf), "run-1", "A", "B", 7)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "from=A")
	assert.Contains(t, out, "to=B")
	assert.Contains(t, out, "steps=7")
}

func TestLogDeadlock(t *testing.T) {
	var buf bytes.Buffer
	LogDeadlock(newBufferLogger(&buf), "run-1", "STUCK")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "node=STUCK")
}

func TestLogSnapshotError(t *testing.T) {
	var buf bytes.Buffer
	LogSnapshotError(newBufferLogger(&buf), "run-1", errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "snapshot save failed")
	assert.Contains(t, out, "disk full")
}
