package fsm

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Shared helpers for engine tests.

// quietLogger discards structured output so tests stay silent.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a deterministic time source for log timestamps.
func fixedClock() func() time.Time {
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

// newTestExecutor builds an executor with quiet logging and a fixed clock.
func newTestExecutor(g *Graph, opts ...Option) *Executor {
	base := []Option{WithLogger(quietLogger()), WithClock(fixedClock())}
	return NewExecutor(g, append(base, opts...)...)
}

// linearGraph builds START --[GO]--> END with the given terminal kind.
func linearGraph() (*Graph, Node, Node) {
	g := NewGraph()
	start := NewNode("START", KindInput, 0, 0)
	end := NewNode("END", KindOutput, 200, 0)
	g.AddNode(start)
	g.AddNode(end)
	g.AddEdge(NewEdge(start.ID, end.ID).WithLabel("GO"))
	return g, start, end
}

// chainGraph builds START -> PROCESS -> END.
func chainGraph() (*Graph, Node, Node, Node) {
	g := NewGraph()
	start := NewNode("START", KindInput, 0, 0)
	mid := NewNode("PROCESS", KindProcess, 100, 0)
	end := NewNode("END", KindOutput, 200, 0)
	g.AddNode(start)
	g.AddNode(mid)
	g.AddNode(end)
	g.AddEdge(NewEdge(start.ID, mid.ID))
	g.AddEdge(NewEdge(mid.ID, end.ID))
	return g, start, mid, end
}

func testCtx() context.Context {
	return context.Background()
}
