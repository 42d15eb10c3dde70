// Package project defines the persisted project record and its file
// I/O. A project is the serialized form of one FSM graph plus metadata;
// the graph store consumes it node-by-node, edge-by-edge.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm"
)

// Project is the persistence record for one FSM graph.
type Project struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Target      string     `json:"target,omitempty" yaml:"target,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at" yaml:"modified_at"`
	Nodes       []fsm.Node `json:"nodes" yaml:"nodes"`
	Edges       []fsm.Edge `json:"edges" yaml:"edges"`
}

// New creates an empty project stamped with the current time.
func New(name string) *Project {
	now := time.Now().UTC()
	return &Project{
		Name:       name,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// Graph builds a graph store from the project by adding every node and
// edge in record order.
func (p *Project) Graph() *fsm.Graph {
	g := fsm.NewGraph()
	for _, n := range p.Nodes {
		g.AddNode(n)
	}
	for _, e := range p.Edges {
		g.AddEdge(e)
	}
	return g
}

// FromGraph captures a graph store as a project record. Nodes and edges
// appear in the graph's insertion order.
func FromGraph(g *fsm.Graph, name string) *Project {
	p := New(name)
	p.Nodes = g.Nodes()
	p.Edges = g.Edges()
	return p
}

// Load reads a project from a file, detecting the format by extension.
// Supported extensions: .json, .yaml, .yml.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}

	var p Project
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse project json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse project yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported project file extension: %s", filepath.Ext(path))
	}
	return &p, nil
}

// Save writes the project to a file in the format matching the
// extension, updating ModifiedAt.
func (p *Project) Save(path string) error {
	p.ModifiedAt = time.Now().UTC()

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(p, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(p)
	default:
		return fmt.Errorf("unsupported project file extension: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}
