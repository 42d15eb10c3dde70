package fsm

// GuardEvaluator is the contract an external guard-expression
// interpreter must satisfy. The engine itself never evaluates guards:
// Step unconditionally traverses the first outgoing edge. A caller that
// supplies an evaluator is expected to pre-filter or reorder edges
// before handing the graph to the executor.
//
// ctx is a read-only view of the simulation context at evaluation time.
type GuardEvaluator interface {
	Evaluate(guard string, ctx map[string]any) (bool, error)
}
