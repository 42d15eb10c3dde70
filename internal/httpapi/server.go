// Package httpapi exposes the graph store and executor as a JSON API
// over HTTP. It is the command/UI boundary of the engine: every handler
// returns the serializable records the core defines, and all graph
// edits go through the same add/remove primitives a local caller would
// use.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/project"
)

// Server serves one graph and one executor. A single mutex serializes
// executor access; the graph has its own internal lock.
type Server struct {
	mu   sync.Mutex
	name string
	g    *fsm.Graph
	exec *fsm.Executor
}

// New creates a server over the given graph and executor.
func New(name string, g *fsm.Graph, exec *fsm.Executor) *Server {
	return &Server{name: name, g: g, exec: exec}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/project", s.getProject)
		r.Put("/project", s.putProject)

		r.Post("/nodes", s.postNode)
		r.Put("/nodes/{id}", s.putNode)
		r.Delete("/nodes/{id}", s.deleteNode)
		r.Post("/edges", s.postEdge)
		r.Delete("/edges/{id}", s.deleteEdge)

		r.Get("/analysis", s.getAnalysis)

		r.Route("/simulation", func(r chi.Router) {
			r.Get("/", s.getSimulation)
			r.Post("/start", s.postStart)
			r.Post("/step", s.postStep)
			r.Post("/stop", s.postStop)
			r.Post("/event", s.postEvent)
			r.Delete("/logs", s.deleteLogs)
		})
	})

	return r
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, project.FromGraph(s.g, s.name))
}

// putProject replaces the whole node/edge set, the contract offered to
// the agent boundary. The replacement is applied through the ordinary
// graph primitives; no semantic validation happens here.
func (s *Server) putProject(w http.ResponseWriter, r *http.Request) {
	var p project.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project body")
		return
	}

	for _, n := range s.g.Nodes() {
		s.g.RemoveNode(n.ID)
	}
	// Dangling edges have no endpoint node to cascade from.
	for _, e := range s.g.Edges() {
		s.g.RemoveEdge(e.ID)
	}
	for _, n := range p.Nodes {
		s.g.AddNode(n)
	}
	for _, e := range p.Edges {
		s.g.AddEdge(e)
	}
	if p.Name != "" {
		s.name = p.Name
	}
	writeJSON(w, http.StatusOK, project.FromGraph(s.g, s.name))
}

type nodeRequest struct {
	Label        string       `json:"label"`
	Kind         fsm.NodeKind `json:"kind"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	EntryAction  string       `json:"entry_action,omitempty"`
	ExitAction   string       `json:"exit_action,omitempty"`
	Description  string       `json:"description,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	IsBreakpoint bool         `json:"is_breakpoint,omitempty"`
}

// apply copies the request fields onto a node record.
func (req nodeRequest) apply(n *fsm.Node) {
	n.Label = req.Label
	n.Kind = req.Kind
	n.X = req.X
	n.Y = req.Y
	n.EntryAction = req.EntryAction
	n.ExitAction = req.ExitAction
	n.Description = req.Description
	n.Tags = req.Tags
	n.IsBreakpoint = req.IsBreakpoint
}

func (s *Server) postNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid node body")
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown node kind: "+string(req.Kind))
		return
	}

	n := fsm.NewNode(req.Label, req.Kind, req.X, req.Y)
	req.apply(&n)
	s.g.AddNode(n)
	writeJSON(w, http.StatusCreated, n)
}

// putNode replaces a stored node's fields, keeping its ID and edges.
func (s *Server) putNode(w http.ResponseWriter, r *http.Request) {
	id := fsm.NodeID(chi.URLParam(r, "id"))
	n, ok := s.g.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}

	var req nodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid node body")
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown node kind: "+string(req.Kind))
		return
	}

	req.apply(&n)
	s.g.UpdateNode(n)
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	id := fsm.NodeID(chi.URLParam(r, "id"))
	if _, ok := s.g.RemoveNode(id); !ok {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type edgeRequest struct {
	Source fsm.NodeID `json:"source"`
	Target fsm.NodeID `json:"target"`
	Label  string     `json:"label,omitempty"`
	Guard  string     `json:"guard,omitempty"`
}

func (s *Server) postEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid edge body")
		return
	}
	if req.Source == "" || req.Target == "" {
		writeError(w, http.StatusBadRequest, "edge requires source and target")
		return
	}

	e := fsm.NewEdge(req.Source, req.Target).WithLabel(req.Label).WithGuard(req.Guard)
	s.g.AddEdge(e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	id := fsm.EdgeID(chi.URLParam(r, "id"))
	if _, ok := s.g.RemoveEdge(id); !ok {
		writeError(w, http.StatusNotFound, "edge not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type analysisResponse struct {
	StartNode   *fsm.NodeID  `json:"start_node,omitempty"`
	Unreachable []fsm.NodeID `json:"unreachable"`
	Deadlocks   []fsm.NodeID `json:"deadlocks"`
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	resp := analysisResponse{
		Unreachable: s.g.FindUnreachable(),
		Deadlocks:   s.g.FindDeadlocks(),
	}
	if start, ok := s.g.FindStartNode(); ok {
		id := start.ID
		resp.StartNode = &id
	}
	if resp.Unreachable == nil {
		resp.Unreachable = []fsm.NodeID{}
	}
	if resp.Deadlocks == nil {
		resp.Deadlocks = []fsm.NodeID{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getSimulation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result := s.exec.Result()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) postStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.exec.Start(r.Context())
	result := s.exec.Result()
	s.mu.Unlock()

	if err != nil {
		writeSimError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type stepResponse struct {
	Result     fsm.StepResult           `json:"result"`
	Simulation fsm.SimulationStepResult `json:"simulation"`
}

func (s *Server) postStep(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result, err := s.exec.Step(r.Context())
	sim := s.exec.Result()
	s.mu.Unlock()

	if err != nil {
		writeSimError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stepResponse{Result: result, Simulation: sim})
}

func (s *Server) postStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.exec.Stop(r.Context())
	result := s.exec.Result()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, result)
}

type eventRequest struct {
	Name string `json:"name"`
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event body")
		return
	}

	s.mu.Lock()
	err := s.exec.TriggerEvent(r.Context(), req.Name)
	sim := s.exec.Result()
	s.mu.Unlock()

	if err != nil {
		writeSimError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) deleteLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.exec.ClearLogs()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// writeSimError maps engine errors onto HTTP status codes: lifecycle
// violations are conflicts, lookup misses are not-found, anything else
// is a server error.
func writeSimError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fsm.ErrNoStartNode),
		errors.Is(err, fsm.ErrNotRunning),
		errors.Is(err, fsm.ErrNoCurrentState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, fsm.ErrNodeNotFound),
		errors.Is(err, fsm.ErrEdgeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
