package fsm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/event"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/history"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/observability"
)

// logSource is the Source recorded on engine-emitted log entries.
const logSource = "simulation"

// Executor drives a single simulation run over a shared Graph, one edge
// traversal per Step call.
//
// The executor's own fields (status, current node, context, logs, step
// count) are owned by one logical controller and are not synchronized;
// callers driving one executor from several goroutines must serialize
// access. The shared Graph may be edited concurrently: every Step copies
// the fields it needs out of the graph under the graph's lock, releases
// it, and only then logs and updates executor state.
type Executor struct {
	graph *Graph

	status    Status
	current   *NodeID
	stepCount uint64
	simCtx    map[string]any
	logs      []LogEntry

	runID   string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	tracing bool
	store   history.Store
	bus     *event.Bus
	now     func() time.Time

	sequence int
	runCtx   context.Context
	runSpan  trace.Span
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the structured logger mirrored by the audit log.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Executor) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithRunID sets the run identifier used for logging, tracing, and
// history snapshots. A UUID is generated when not set.
func WithRunID(id string) Option {
	return func(x *Executor) {
		if id != "" {
			x.runID = id
		}
	}
}

// WithMetrics enables OpenTelemetry metrics. The recorder uses the
// global meter provider; configure it before starting a run.
func WithMetrics(enabled bool) Option {
	return func(x *Executor) {
		if enabled {
			x.metrics = observability.NewMetricsRecorder()
		} else {
			x.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans: one run span per Start/Stop
// pair with a child span per transition.
func WithTracing(enabled bool) Option {
	return func(x *Executor) {
		x.tracing = enabled
		if enabled {
			x.spans = observability.NewSpanManager()
		} else {
			x.spans = observability.NoopSpanManager{}
		}
	}
}

// WithHistory sets the snapshot store. When configured, the executor
// saves a snapshot after every successful transition. Save failures are
// logged, never fatal.
func WithHistory(store history.Store) Option {
	return func(x *Executor) {
		x.store = store
	}
}

// WithEventBus sets the bus simulation events are published to.
func WithEventBus(bus *event.Bus) Option {
	return func(x *Executor) {
		x.bus = bus
	}
}

// WithClock overrides the time source used for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(x *Executor) {
		if now != nil {
			x.now = now
		}
	}
}

// NewExecutor creates an idle executor over the given graph.
func NewExecutor(g *Graph, opts ...Option) *Executor {
	x := &Executor{
		graph:   g,
		status:  StatusIdle,
		simCtx:  make(map[string]any),
		runID:   uuid.NewString(),
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Start begins a run at the graph's start node. It fails with
// ErrNoStartNode, leaving the executor untouched, when the graph has no
// Input-kind node and no node labeled "START". On success the status
// becomes Running, the step counter and simulation context are reset,
// and the start is logged. The start node's entry action is logged, not
// executed; there is no code interpreter in this engine.
func (x *Executor) Start(ctx context.Context) error {
	start, ok := x.graph.FindStartNode()
	if !ok {
		return ErrNoStartNode
	}

	id := start.ID
	x.current = &id
	x.status = StatusRunning
	x.stepCount = 0
	x.sequence = 0
	x.simCtx = make(map[string]any)

	if x.tracing {
		x.runCtx, x.runSpan = x.spans.StartRunSpan(ctx, x.runID)
	} else {
		x.runCtx = ctx
	}

	x.appendLog(ctx, LevelInfo, fmt.Sprintf("Simulation started at %q", start.Label))
	if start.EntryAction != "" {
		x.appendLog(ctx, LevelDebug, "Entry: "+start.EntryAction)
	}

	observability.LogRunStart(x.logger, x.runID, start.Label)
	x.metrics.RecordRunStart(ctx)
	x.publish(ctx, event.TypeStarted, map[string]any{"node": string(id), "label": start.Label})
	return nil
}

// Stop returns the executor to Idle and clears the current node. Valid
// from any status. Log entries persist until ClearLogs.
func (x *Executor) Stop(ctx context.Context) {
	x.status = StatusIdle
	x.current = nil

	x.appendLog(ctx, LevelInfo, "Simulation stopped")
	observability.LogRunStop(x.logger, x.runID, x.stepCount)
	if x.tracing && x.runSpan != nil {
		x.spans.EndSpanWithError(x.runSpan, nil)
		x.runSpan = nil
	}
	x.publish(ctx, event.TypeStopped, map[string]any{"steps": x.stepCount})
}

// Pause suspends a running simulation. Step fails with ErrNotRunning
// until Resume.
func (x *Executor) Pause(ctx context.Context) error {
	if x.status != StatusRunning && x.status != StatusStepping {
		return ErrNotRunning
	}
	x.status = StatusPaused
	x.appendLog(ctx, LevelInfo, "Simulation paused")
	return nil
}

// Resume continues a paused simulation.
func (x *Executor) Resume(ctx context.Context) error {
	if x.status != StatusPaused {
		return ErrNotRunning
	}
	x.status = StatusRunning
	x.appendLog(ctx, LevelInfo, "Simulation resumed")
	return nil
}

// Step performs one transition. It fails with ErrNotRunning unless the
// status is Running or Stepping, and with ErrNoCurrentState when no
// current node is set.
//
// With no outgoing edge the result is Completed for an Output node and
// Deadlock for anything else; neither changes the status. Otherwise the
// first outgoing edge in adjacency-insertion order is traversed
// unconditionally (guards are recorded, never evaluated), the exit,
// transition, and entry lines are logged in that order, the current node
// advances, and the step counter increments by one.
func (x *Executor) Step(ctx context.Context) (StepResult, error) {
	if x.status != StatusRunning && x.status != StatusStepping {
		return StepResult{}, ErrNotRunning
	}
	if x.current == nil {
		return StepResult{}, ErrNoCurrentState
	}
	cur := *x.current

	// Copy everything the rest of the step needs out of the graph, then
	// release the lock before any logging or state update.
	g := x.graph
	g.mu.RLock()
	node, ok := g.nodes[cur]
	if !ok {
		g.mu.RUnlock()
		return StepResult{}, &StepError{NodeID: cur, Op: "lookup", Err: ErrNodeNotFound}
	}
	node = node.clone()
	var next Edge
	hasEdge := false
	for _, eid := range g.outgoing[cur] {
		if e, found := g.edges[eid]; found {
			next = e
			hasEdge = true
			break
		}
	}
	var target Node
	targetOK := false
	if hasEdge {
		if t, found := g.nodes[next.Target]; found {
			target = t.clone()
			targetOK = true
		}
	}
	g.mu.RUnlock()

	if !hasEdge {
		if node.Kind == KindOutput {
			x.appendLog(ctx, LevelSuccess, fmt.Sprintf("Simulation complete at %q", node.Label))
			observability.LogRunComplete(x.logger, x.runID, node.Label, x.stepCount)
			x.metrics.RecordStep(ctx, string(OutcomeCompleted), 0)
			x.publish(ctx, event.TypeCompleted, map[string]any{"node": string(cur), "label": node.Label})
			return StepResult{Outcome: OutcomeCompleted, Node: cur}, nil
		}
		x.appendLog(ctx, LevelWarning, fmt.Sprintf("Deadlock: %q has no outgoing transitions", node.Label))
		observability.LogDeadlock(x.logger, x.runID, node.Label)
		x.metrics.RecordStep(ctx, string(OutcomeDeadlock), 0)
		x.publish(ctx, event.TypeDeadlock, map[string]any{"node": string(cur), "label": node.Label})
		return StepResult{Outcome: OutcomeDeadlock, Node: cur}, nil
	}

	if !targetOK {
		return StepResult{}, &StepError{NodeID: cur, Op: "transition", Err: ErrNodeNotFound}
	}

	stepStart := time.Now()
	var stepSpan trace.Span
	if x.tracing {
		parent := x.runCtx
		if parent == nil {
			parent = ctx
		}
		_, stepSpan = x.spans.StartStepSpan(parent, node.Label, target.Label)
	}

	if node.ExitAction != "" {
		x.appendLog(ctx, LevelDebug, "Exit: "+node.ExitAction)
	}
	arrow := next.Label
	if arrow == "" {
		arrow = "->"
	}
	x.appendLog(ctx, LevelInfo, fmt.Sprintf("TRANSITION: %s --[%s]--> %s", node.Label, arrow, target.Label))
	if target.EntryAction != "" {
		x.appendLog(ctx, LevelDebug, "Entry: "+target.EntryAction)
	}

	to := target.ID
	x.current = &to
	x.stepCount++

	duration := time.Since(stepStart)
	observability.LogTransition(x.logger, x.runID, node.Label, target.Label, x.stepCount)
	x.metrics.RecordStep(ctx, string(OutcomeTransitioned), duration)
	if x.tracing {
		x.spans.EndSpanWithError(stepSpan, nil)
	}
	x.publish(ctx, event.TypeTransition, map[string]any{
		"from": string(cur), "to": string(to), "edge": string(next.ID), "steps": x.stepCount,
	})
	x.saveSnapshot(ctx)

	return StepResult{Outcome: OutcomeTransitioned, From: cur, To: to}, nil
}

// TriggerEvent performs one transition in response to a named event. The
// name does not select among outgoing edges; until guard evaluation is
// wired in this is Step with the result discarded.
func (x *Executor) TriggerEvent(ctx context.Context, name string) error {
	_ = name
	_, err := x.Step(ctx)
	return err
}

// Status returns the executor's lifecycle state.
func (x *Executor) Status() Status {
	return x.status
}

// CurrentNode returns the current node's ID, if a run is positioned on one.
func (x *Executor) CurrentNode() (NodeID, bool) {
	if x.current == nil {
		return "", false
	}
	return *x.current, true
}

// StepCount returns the number of transitions taken since Start.
func (x *Executor) StepCount() uint64 {
	return x.stepCount
}

// RunID returns the identifier of the current run.
func (x *Executor) RunID() string {
	return x.runID
}

// Context returns a copy of the simulation context.
func (x *Executor) Context() map[string]any {
	out := make(map[string]any, len(x.simCtx))
	for k, v := range x.simCtx {
		out[k] = v
	}
	return out
}

// SetContext sets one simulation context variable.
func (x *Executor) SetContext(key string, value any) {
	x.simCtx[key] = value
}

// Logs returns a copy of the audit log.
func (x *Executor) Logs() []LogEntry {
	out := make([]LogEntry, len(x.logs))
	copy(out, x.logs)
	return out
}

// ClearLogs discards all accumulated log entries.
func (x *Executor) ClearLogs() {
	x.logs = nil
}

// Result returns the serializable summary of the executor's state.
func (x *Executor) Result() SimulationStepResult {
	var current *NodeID
	if x.current != nil {
		id := *x.current
		current = &id
	}
	return SimulationStepResult{
		Status:      x.status,
		CurrentNode: current,
		StepCount:   x.stepCount,
		Logs:        x.Logs(),
	}
}

// appendLog records an entry in the audit log, mirrors it to the
// structured logger, and publishes it on the event bus.
func (x *Executor) appendLog(ctx context.Context, level LogLevel, message string) {
	entry := LogEntry{
		Timestamp: x.now(),
		Level:     level,
		Source:    logSource,
		Message:   message,
	}
	x.logs = append(x.logs, entry)

	switch level {
	case LevelDebug:
		x.logger.Debug(message, slog.String("run_id", x.runID))
	case LevelWarning:
		x.logger.Warn(message, slog.String("run_id", x.runID))
	case LevelError:
		x.logger.Error(message, slog.String("run_id", x.runID))
	default:
		x.logger.Info(message, slog.String("run_id", x.runID))
	}

	x.publish(ctx, event.TypeLog, map[string]any{
		"level": string(level), "source": entry.Source, "message": message,
	})
}

// publish emits an event when a bus is configured. Delivery failures are
// the bus's concern, not the engine's.
func (x *Executor) publish(ctx context.Context, t event.Type, data map[string]any) {
	if x.bus == nil {
		return
	}
	_ = x.bus.Publish(ctx, event.New(t, x.runID, data))
}
