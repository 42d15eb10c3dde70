package fsm

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/event"
)

// TestExecutor_Start_NoStartNode verifies Start fails on an empty graph
// and on a graph without a start candidate, leaving the executor idle.
func TestExecutor_Start_NoStartNode(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		x := newTestExecutor(NewGraph())
		err := x.Start(testCtx())
		assert.ErrorIs(t, err, ErrNoStartNode)
		assert.Equal(t, StatusIdle, x.Status())
	})

	t.Run("no start candidate", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(NewNode("middle", KindProcess, 0, 0))
		x := newTestExecutor(g)
		err := x.Start(testCtx())
		assert.ErrorIs(t, err, ErrNoStartNode)
		_, ok := x.CurrentNode()
		assert.False(t, ok)
	})
}

// TestExecutor_ScenarioA walks START --[GO]--> END to completion.
func TestExecutor_ScenarioA(t *testing.T) {
	g, start, end := linearGraph()
	x := newTestExecutor(g)

	require.NoError(t, x.Start(testCtx()))
	assert.Equal(t, StatusRunning, x.Status())
	cur, ok := x.CurrentNode()
	require.True(t, ok)
	assert.Equal(t, start.ID, cur)

	result, err := x.Step(testCtx())
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransitioned, result.Outcome)
	assert.Equal(t, start.ID, result.From)
	assert.Equal(t, end.ID, result.To)
	assert.Equal(t, uint64(1), x.StepCount())
	cur, _ = x.CurrentNode()
	assert.Equal(t, end.ID, cur)

	result, err = x.Step(testCtx())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, uint64(1), x.StepCount(), "Completed must not advance the counter")
	assert.Equal(t, StatusRunning, x.Status(), "Completed must not change status")
}

// TestExecutor_ScenarioB verifies a non-terminal node with no outgoing
// edges deadlocks without changing state.
func TestExecutor_ScenarioB(t *testing.T) {
	g := NewGraph()
	stuck := NewNode("STUCK", KindProcess, 0, 0)
	g.AddNode(NewNode("START", KindInput, 0, 0))
	g.AddNode(stuck)
	g.AddEdge(NewEdge(mustStart(t, g).ID, stuck.ID))

	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))

	result, err := x.Step(testCtx())
	require.NoError(t, err)
	require.Equal(t, OutcomeTransitioned, result.Outcome)

	result, err = x.Step(testCtx())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeadlock, result.Outcome)
	assert.Equal(t, uint64(1), x.StepCount(), "Deadlock must not advance the counter")
	assert.Equal(t, StatusRunning, x.Status())
}

// TestExecutor_ScenarioC walks a three-node chain.
func TestExecutor_ScenarioC(t *testing.T) {
	g, _, _, end := chainGraph()
	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))

	for i := 0; i < 2; i++ {
		result, err := x.Step(testCtx())
		require.NoError(t, err)
		require.Equal(t, OutcomeTransitioned, result.Outcome)
	}
	cur, _ := x.CurrentNode()
	assert.Equal(t, end.ID, cur)
	assert.Equal(t, uint64(2), x.StepCount())

	result, err := x.Step(testCtx())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, result.Outcome)
}

// TestExecutor_ScenarioD verifies stepping while idle fails.
func TestExecutor_ScenarioD(t *testing.T) {
	g, _, _ := linearGraph()
	x := newTestExecutor(g)

	_, err := x.Step(testCtx())
	assert.ErrorIs(t, err, ErrNotRunning)

	err = x.TriggerEvent(testCtx(), "tick")
	assert.ErrorIs(t, err, ErrNotRunning)
}

// TestExecutor_Step_NoCurrentState covers the defensive branch where a
// run is marked Running without a position.
func TestExecutor_Step_NoCurrentState(t *testing.T) {
	g, _, _ := linearGraph()
	x := newTestExecutor(g)
	x.status = StatusRunning
	x.current = nil

	_, err := x.Step(testCtx())
	assert.ErrorIs(t, err, ErrNoCurrentState)
}

// TestExecutor_Step_CurrentNodeRemoved verifies a concurrent edit that
// removes the current node surfaces as a typed lookup error.
func TestExecutor_Step_CurrentNodeRemoved(t *testing.T) {
	g, start, _ := linearGraph()
	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))

	g.RemoveNode(start.ID)

	_, err := x.Step(testCtx())
	assert.ErrorIs(t, err, ErrNodeNotFound)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, start.ID, stepErr.NodeID)
	assert.Equal(t, "lookup", stepErr.Op)
}

// TestExecutor_Step_DanglingEdgeTarget verifies a transition into a
// removed target fails without advancing.
func TestExecutor_Step_DanglingEdgeTarget(t *testing.T) {
	g, start, end := linearGraph()
	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))

	// Remove the target but keep a dangling edge to it.
	g.RemoveNode(end.ID)
	g.AddEdge(NewEdge(start.ID, end.ID))

	_, err := x.Step(testCtx())
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Equal(t, uint64(0), x.StepCount())
	cur, _ := x.CurrentNode()
	assert.Equal(t, start.ID, cur)
}

// TestExecutor_FirstEdgeWins verifies transition selection ignores
// guards and labels and takes the first edge in adjacency order.
func TestExecutor_FirstEdgeWins(t *testing.T) {
	g := NewGraph()
	start := NewNode("START", KindInput, 0, 0)
	left := NewNode("LEFT", KindOutput, 0, 0)
	right := NewNode("RIGHT", KindOutput, 0, 0)
	g.AddNode(start)
	g.AddNode(left)
	g.AddNode(right)
	g.AddEdge(NewEdge(start.ID, left.ID).WithGuard("count > 3"))
	g.AddEdge(NewEdge(start.ID, right.ID))

	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))
	result, err := x.Step(testCtx())
	require.NoError(t, err)
	assert.Equal(t, left.ID, result.To)
}

// TestExecutor_LogOrder verifies exit, transition, and entry lines are
// appended in that order with the documented formats.
func TestExecutor_LogOrder(t *testing.T) {
	g := NewGraph()
	a := NewNode("A", KindInput, 0, 0).WithEntryAction("power_on()").WithExitAction("power_off()")
	b := NewNode("B", KindOutput, 0, 0).WithEntryAction("greet()")
	g.AddNode(a)
	g.AddNode(b)
	g.AddEdge(NewEdge(a.ID, b.ID).WithLabel("GO"))

	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))
	x.ClearLogs()

	_, err := x.Step(testCtx())
	require.NoError(t, err)

	logs := x.Logs()
	require.Len(t, logs, 3)
	assert.Equal(t, LevelDebug, logs[0].Level)
	assert.Equal(t, "Exit: power_off()", logs[0].Message)
	assert.Equal(t, LevelInfo, logs[1].Level)
	assert.Equal(t, "TRANSITION: A --[GO]--> B", logs[1].Message)
	assert.Equal(t, LevelDebug, logs[2].Level)
	assert.Equal(t, "Entry: greet()", logs[2].Message)
	for _, entry := range logs {
		assert.Equal(t, "simulation", entry.Source)
		assert.False(t, entry.Timestamp.IsZero())
	}
}

// TestExecutor_UnlabeledEdgeArrow verifies the transition line falls
// back to an arrow when the edge has no label.
func TestExecutor_UnlabeledEdgeArrow(t *testing.T) {
	g, _, _, _ := chainGraph()
	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))
	x.ClearLogs()

	_, err := x.Step(testCtx())
	require.NoError(t, err)

	logs := x.Logs()
	require.NotEmpty(t, logs)
	assert.Equal(t, "TRANSITION: START --[->]--> PROCESS", logs[0].Message)
}

// TestExecutor_StartLogsEntryAction verifies Start narrates the start
// node's entry action without executing anything.
func TestExecutor_StartLogsEntryAction(t *testing.T) {
	g := NewGraph()
	g.AddNode(NewNode("START", KindInput, 0, 0).WithEntryAction("boot()"))

	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))

	logs := x.Logs()
	require.Len(t, logs, 2)
	assert.Contains(t, logs[0].Message, "Simulation started")
	assert.Equal(t, LevelInfo, logs[0].Level)
	assert.Equal(t, "Entry: boot()", logs[1].Message)
	assert.Equal(t, LevelDebug, logs[1].Level)
}

// TestExecutor_StopFromAnyStatus verifies Stop always returns to Idle
// and clears the position, and that logs survive stop/start cycles.
func TestExecutor_StopFromAnyStatus(t *testing.T) {
	g, _, _ := linearGraph()
	x := newTestExecutor(g)

	x.Stop(testCtx()) // already idle
	assert.Equal(t, StatusIdle, x.Status())

	require.NoError(t, x.Start(testCtx()))
	x.Stop(testCtx())
	assert.Equal(t, StatusIdle, x.Status())
	_, ok := x.CurrentNode()
	assert.False(t, ok)

	logsBefore := len(x.Logs())
	require.NoError(t, x.Start(testCtx()))
	assert.Greater(t, len(x.Logs()), logsBefore, "logs persist across stop/start")
}

// TestExecutor_StartResetsRunState verifies step count and context are
// cleared by Start.
func TestExecutor_StartResetsRunState(t *testing.T) {
	g, _, _ := linearGraph()
	x := newTestExecutor(g)

	require.NoError(t, x.Start(testCtx()))
	_, err := x.Step(testCtx())
	require.NoError(t, err)
	x.SetContext("voltage", 3.3)
	require.Equal(t, uint64(1), x.StepCount())

	require.NoError(t, x.Start(testCtx()))
	assert.Equal(t, uint64(0), x.StepCount())
	assert.Empty(t, x.Context())
}

// TestExecutor_Context verifies SetContext mutates and Context returns a
// detached copy.
func TestExecutor_Context(t *testing.T) {
	g, _, _ := linearGraph()
	x := newTestExecutor(g)

	x.SetContext("mode", "test")
	x.SetContext("retries", 3)

	view := x.Context()
	assert.Equal(t, "test", view["mode"])
	assert.Equal(t, 3, view["retries"])

	view["mode"] = "tampered"
	assert.Equal(t, "test", x.Context()["mode"])
}

// TestExecutor_PauseResume verifies the Paused status gates stepping.
func TestExecutor_PauseResume(t *testing.T) {
	g, _, _ := linearGraph()
	x := newTestExecutor(g)

	assert.ErrorIs(t, x.Pause(testCtx()), ErrNotRunning)

	require.NoError(t, x.Start(testCtx()))
	require.NoError(t, x.Pause(testCtx()))
	assert.Equal(t, StatusPaused, x.Status())

	_, err := x.Step(testCtx())
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, x.Resume(testCtx()))
	assert.Equal(t, StatusRunning, x.Status())
	_, err = x.Step(testCtx())
	assert.NoError(t, err)

	assert.ErrorIs(t, x.Resume(testCtx()), ErrNotRunning)
}

// TestExecutor_TriggerEvent verifies the event name does not select the
// edge: the first edge is taken regardless.
func TestExecutor_TriggerEvent(t *testing.T) {
	g, _, end := linearGraph()
	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))

	require.NoError(t, x.TriggerEvent(testCtx(), "button_pressed"))
	cur, _ := x.CurrentNode()
	assert.Equal(t, end.ID, cur)
	assert.Equal(t, uint64(1), x.StepCount())
}

// TestExecutor_ClearLogs verifies the audit log can be discarded by the caller.
func TestExecutor_ClearLogs(t *testing.T) {
	g, _, _ := linearGraph()
	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))
	require.NotEmpty(t, x.Logs())

	x.ClearLogs()
	assert.Empty(t, x.Logs())
}

// TestExecutor_Logs_Copy verifies Logs returns a detached slice.
func TestExecutor_Logs_Copy(t *testing.T) {
	g, _, _ := linearGraph()
	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))

	logs := x.Logs()
	require.NotEmpty(t, logs)
	logs[0].Message = "tampered"
	assert.NotEqual(t, "tampered", x.Logs()[0].Message)
}

// TestExecutor_Result verifies the serializable summary tracks the run.
func TestExecutor_Result(t *testing.T) {
	g, start, _ := linearGraph()
	x := newTestExecutor(g)

	result := x.Result()
	assert.Equal(t, StatusIdle, result.Status)
	assert.Nil(t, result.CurrentNode)

	require.NoError(t, x.Start(testCtx()))
	result = x.Result()
	assert.Equal(t, StatusRunning, result.Status)
	require.NotNil(t, result.CurrentNode)
	assert.Equal(t, start.ID, *result.CurrentNode)
	assert.Equal(t, uint64(0), result.StepCount)
	assert.NotEmpty(t, result.Logs)
}

// TestExecutor_PublishesEvents verifies lifecycle and transition events
// reach a subscribed bus.
func TestExecutor_PublishesEvents(t *testing.T) {
	bus := event.NewBus(16)
	defer bus.Close()

	var mu sync.Mutex
	var seen []event.Type
	bus.Subscribe([]event.Type{
		event.TypeStarted, event.TypeTransition, event.TypeCompleted, event.TypeStopped,
	}, func(evt event.Event) {
		mu.Lock()
		seen = append(seen, evt.Type)
		mu.Unlock()
	})

	g, _, _ := linearGraph()
	x := newTestExecutor(g, WithEventBus(bus))
	require.NoError(t, x.Start(testCtx()))
	_, err := x.Step(testCtx())
	require.NoError(t, err)
	_, err = x.Step(testCtx())
	require.NoError(t, err)
	x.Stop(testCtx())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 4
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []event.Type{
		event.TypeStarted, event.TypeTransition, event.TypeCompleted, event.TypeStopped,
	}, seen)
}

// TestExecutor_ConcurrentGraphEdits steps while another goroutine edits
// unrelated parts of the shared graph. Run with -race.
func TestExecutor_ConcurrentGraphEdits(t *testing.T) {
	g, _, _, _ := chainGraph()
	x := newTestExecutor(g)
	require.NoError(t, x.Start(testCtx()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			n := NewNode("scratch", KindProcess, 0, 0)
			g.AddNode(n)
			g.RemoveNode(n.ID)
		}
	}()

	for {
		result, err := x.Step(testCtx())
		require.NoError(t, err)
		if result.Outcome != OutcomeTransitioned {
			break
		}
	}
	<-done
	assert.Equal(t, uint64(2), x.StepCount())
}

// mustStart fetches the graph's start node or fails the test.
func mustStart(t *testing.T, g *Graph) Node {
	t.Helper()
	start, ok := g.FindStartNode()
	require.True(t, ok)
	return start
}

func TestStepError_Unwrap(t *testing.T) {
	err := &StepError{NodeID: NewNodeID(), Op: "lookup", Err: ErrNodeNotFound}
	assert.True(t, errors.Is(err, ErrNodeNotFound))
	assert.Contains(t, err.Error(), "lookup")
}

// BenchmarkStep measures one transition on a two-node cycle.
func BenchmarkStep(b *testing.B) {
	g := NewGraph()
	a := NewNode("START", KindInput, 0, 0)
	c := NewNode("B", KindProcess, 0, 0)
	g.AddNode(a)
	g.AddNode(c)
	g.AddEdge(NewEdge(a.ID, c.ID))
	g.AddEdge(NewEdge(c.ID, a.ID))

	x := newTestExecutor(g)
	if err := x.Start(testCtx()); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := x.Step(testCtx()); err != nil {
			b.Fatal(err)
		}
	}
}
