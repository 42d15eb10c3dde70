// Package observability provides structured logging, metrics, and
// distributed tracing helpers for the fsm engine.
//
// Logging uses slog from the standard library; metrics and tracing use
// OpenTelemetry. Both have no-op implementations for when they are
// disabled.
package observability

import "log/slog"

// LogRunStart logs the start of a simulation run.
func LogRunStart(logger *slog.Logger, runID, startLabel string) {
	if logger == nil {
		return
	}
	logger.Info("simulation starting",
		slog.String("run_id", runID),
		slog.String("start_node", startLabel),
	)
}

// LogRunStop logs the end of a simulation run.
func LogRunStop(logger *slog.Logger, runID string, steps uint64) {
	if logger == nil {
		return
	}
	logger.Info("simulation stopped",
		slog.String("run_id", runID),
		slog.Uint64("steps", steps),
	)
}

// LogRunComplete logs a run reaching a terminal Output node.
func LogRunComplete(logger *slog.Logger, runID, nodeLabel string, steps uint64) {
	if logger == nil {
		return
	}
	logger.Info("simulation completed",
		slog.String("run_id", runID),
		slog.String("node", nodeLabel),
		slog.Uint64("steps", steps),
	)
}

// LogTransition logs a single edge traversal.
func LogTransition(logger *slog.Logger, runID, from, to string, steps uint64) {
	if logger == nil {
		return
	}
	logger.Debug("transition",
		slog.String("run_id", runID),
		slog.String("from", from),
		slog.String("to", to),
		slog.Uint64("steps", steps),
	)
}

// LogDeadlock logs a run hitting a non-terminal node with no outgoing edges.
func LogDeadlock(logger *slog.Logger, runID, nodeLabel string) {
	if logger == nil {
		return
	}
	logger.Warn("deadlock",
		slog.String("run_id", runID),
		slog.String("node", nodeLabel),
	)
}

// LogSnapshotError logs a snapshot persistence failure (non-fatal).
func LogSnapshotError(logger *slog.Logger, runID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("snapshot save failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
	)
}
