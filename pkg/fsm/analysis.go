package fsm

// FindStartNode returns the first node, in insertion order, whose kind
// is Input or whose label equals "START" ignoring case. Insertion order
// makes the choice deterministic even when several nodes qualify.
func (g *Graph) FindStartNode() (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range g.nodeOrder {
		n, ok := g.nodes[id]
		if ok && n.isStart() {
			return n.clone(), true
		}
	}
	return Node{}, false
}

// FindUnreachable returns the IDs of every node that forward traversal
// from the start node cannot reach, in insertion order. When no start
// node exists every node is unreachable.
func (g *Graph) FindUnreachable() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var start NodeID
	found := false
	for _, id := range g.nodeOrder {
		if n, ok := g.nodes[id]; ok && n.isStart() {
			start = id
			found = true
			break
		}
	}
	if !found {
		out := make([]NodeID, len(g.nodeOrder))
		copy(out, g.nodeOrder)
		return out
	}

	visited := map[NodeID]struct{}{start: {}}
	queue := []NodeID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, eid := range g.outgoing[cur] {
			e, ok := g.edges[eid]
			if !ok {
				continue
			}
			if _, seen := visited[e.Target]; seen {
				continue
			}
			visited[e.Target] = struct{}{}
			queue = append(queue, e.Target)
		}
	}

	var out []NodeID
	for _, id := range g.nodeOrder {
		if _, seen := visited[id]; !seen {
			out = append(out, id)
		}
	}
	return out
}

// FindDeadlocks returns the IDs of every non-terminal node with no
// outgoing edges, in insertion order. Output and Error nodes are
// terminal and never reported.
func (g *Graph) FindDeadlocks() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []NodeID
	for _, id := range g.nodeOrder {
		n, ok := g.nodes[id]
		if !ok || n.Kind == KindOutput || n.Kind == KindError {
			continue
		}
		if len(g.outgoingLocked(id)) == 0 {
			out = append(out, id)
		}
	}
	return out
}
