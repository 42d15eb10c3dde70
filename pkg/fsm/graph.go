package fsm

import "sync"

// Graph is the authoritative store of nodes and edges. It keeps
// id-indexed maps for O(1) lookup plus per-node adjacency lists for
// O(degree) traversal, and records insertion order so that iteration is
// deterministic.
//
// All operations are total over the structure: "not found" is reported
// through an ok boolean, never an error. Graph is safe for concurrent
// use; readers receive copies.
type Graph struct {
	mu        sync.RWMutex
	nodes     map[NodeID]Node
	edges     map[EdgeID]Edge
	nodeOrder []NodeID
	edgeOrder []EdgeID
	outgoing  map[NodeID][]EdgeID
	incoming  map[NodeID][]EdgeID
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[NodeID]Node),
		edges:    make(map[EdgeID]Edge),
		outgoing: make(map[NodeID][]EdgeID),
		incoming: make(map[NodeID][]EdgeID),
	}
}

// AddNode inserts a node and initializes its adjacency entries.
// Inserting a node whose ID is already present overwrites it in place;
// constructors always generate fresh IDs, so collisions only happen when
// a caller deliberately re-adds the same node.
func (g *Graph) AddNode(n Node) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[n.ID]; !exists {
		g.nodeOrder = append(g.nodeOrder, n.ID)
	}
	g.nodes[n.ID] = n.clone()
	if g.outgoing[n.ID] == nil {
		g.outgoing[n.ID] = []EdgeID{}
	}
	if g.incoming[n.ID] == nil {
		g.incoming[n.ID] = []EdgeID{}
	}
	return n.ID
}

// RemoveNode removes a node together with every edge that touches it.
// Returns the removed node, or ok=false if no such node exists.
func (g *Graph) RemoveNode(id NodeID) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}

	var touching []EdgeID
	for _, eid := range g.edgeOrder {
		e, ok := g.edges[eid]
		if ok && (e.Source == id || e.Target == id) {
			touching = append(touching, eid)
		}
	}
	for _, eid := range touching {
		g.removeEdgeLocked(eid)
	}

	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
	for i, nid := range g.nodeOrder {
		if nid == id {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}
	return n, true
}

// AddEdge stores an edge and appends its ID to the source's outgoing and
// the target's incoming adjacency lists. Endpoints that are not (yet)
// known get empty adjacency entries created for them, so edges may be
// added before their nodes.
func (g *Graph) AddEdge(e Edge) EdgeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.edges[e.ID]; !exists {
		g.edgeOrder = append(g.edgeOrder, e.ID)
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e.ID)
		g.incoming[e.Target] = append(g.incoming[e.Target], e.ID)
	}
	g.edges[e.ID] = e
	return e.ID
}

// RemoveEdge removes an edge from the store and from both adjacency
// lists. Returns the removed edge, or ok=false if no such edge exists.
func (g *Graph) RemoveEdge(id EdgeID) (Edge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeEdgeLocked(id)
}

func (g *Graph) removeEdgeLocked(id EdgeID) (Edge, bool) {
	e, ok := g.edges[id]
	if !ok {
		return Edge{}, false
	}
	delete(g.edges, id)
	g.outgoing[e.Source] = removeID(g.outgoing[e.Source], id)
	g.incoming[e.Target] = removeID(g.incoming[e.Target], id)
	for i, eid := range g.edgeOrder {
		if eid == id {
			g.edgeOrder = append(g.edgeOrder[:i], g.edgeOrder[i+1:]...)
			break
		}
	}
	return e, true
}

func removeID(ids []EdgeID, id EdgeID) []EdgeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	return e, ok
}

// UpdateNode replaces a stored node in place. Unlike AddNode it refuses
// to create a node, so a stale ID surfaces as ok=false.
func (g *Graph) UpdateNode(n Node) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[n.ID]; !ok {
		return false
	}
	g.nodes[n.ID] = n.clone()
	return true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		if n, ok := g.nodes[id]; ok {
			out = append(out, n.clone())
		}
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		if e, ok := g.edges[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of stored nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of stored edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Outgoing returns the edges leaving a node, in adjacency-insertion
// order. IDs with no backing edge record are filtered out; an unknown
// node yields an empty slice, same as a node with no edges.
func (g *Graph) Outgoing(id NodeID) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.outgoingLocked(id)
}

func (g *Graph) outgoingLocked(id NodeID) []Edge {
	ids := g.outgoing[id]
	out := make([]Edge, 0, len(ids))
	for _, eid := range ids {
		if e, ok := g.edges[eid]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges entering a node, in adjacency-insertion
// order, with the same filtering as Outgoing.
func (g *Graph) Incoming(id NodeID) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := g.incoming[id]
	out := make([]Edge, 0, len(ids))
	for _, eid := range ids {
		if e, ok := g.edges[eid]; ok {
			out = append(out, e)
		}
	}
	return out
}
