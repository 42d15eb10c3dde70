/*
Package fsm provides a mutable finite-state-machine graph store and a
deterministic stepwise simulation engine over it.

# Overview

The package has three layers:

  - Entity model: Node and Edge values with enumerated kinds. Pure data
    with constructors that generate fresh identifiers.
  - Graph: authoritative storage of nodes and edges with O(1) id lookup,
    insertion-ordered adjacency lists, and structural analysis
    (start-node discovery, reachability, deadlock detection).
  - Executor: drives exactly one "current node" pointer through the
    graph, one edge traversal per Step call, accumulating an auditable
    log and a step counter.

# Basic Usage

Build a graph, construct an executor over it, and single-step:

	g := fsm.NewGraph()
	start := fsm.NewNode("START", fsm.KindInput, 0, 0)
	end := fsm.NewNode("END", fsm.KindOutput, 200, 0)
	g.AddNode(start)
	g.AddNode(end)
	g.AddEdge(fsm.NewEdge(start.ID, end.ID).WithLabel("GO"))

	exec := fsm.NewExecutor(g)
	if err := exec.Start(ctx); err != nil {
	    log.Fatal(err)
	}
	for {
	    result, err := exec.Step(ctx)
	    if err != nil || result.Outcome != fsm.OutcomeTransitioned {
	        break
	    }
	}
	exec.Stop(ctx)

# Transition Selection

Edges carry an optional guard expression string. The engine stores guards
but never evaluates them: Step always traverses the first outgoing edge in
adjacency-insertion order. GuardEvaluator defines the contract an external
interpreter must satisfy; until one is supplied and wired by a caller, the
first-edge policy is the only policy.

# Determinism

All iteration over the graph (Nodes, Edges, analysis queries, start-node
discovery) follows insertion order, never map order. Two runs over the same
build sequence observe identical results.

# Thread Safety

  - Graph IS safe for concurrent use; every operation takes its internal
    lock, and readers receive copies.
  - Executor is NOT safe for concurrent use from multiple goroutines;
    callers driving one executor from several goroutines must serialize
    access themselves. The executor copies everything it needs out of the
    graph before logging or mutating its own state, so a concurrent editor
    of the shared Graph never deadlocks against a mid-step executor.

# Subpackages

  - project: persisted project records and JSON/YAML file I/O
  - history: run-snapshot storage (memory, SQLite)
  - event: in-process pub/sub bus for simulation events
  - observability: logging, metrics, and tracing helpers
  - config: typed configuration with YAML/JSON loading
*/
package fsm
