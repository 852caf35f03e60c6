// Package graph provides the dependency graph used to order entity types
// during content migration.
package graph

import "sort"

// Graph is a directed dependency graph over entity type names. An edge
// from A to B means B depends on A (A should be migrated first).
type Graph struct {
	nodes    map[string]bool
	children map[string][]string // node -> dependents (outgoing edges)
	parents  map[string][]string // node -> prerequisites (incoming edges)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]bool),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode adds an entity type to the graph.
func (g *Graph) AddNode(name string) {
	g.nodes[name] = true
}

// AddEdge records that dependent references prerequisite. Both endpoints
// are added as nodes, and duplicate edges are collapsed.
func (g *Graph) AddEdge(prerequisite, dependent string) {
	g.AddNode(prerequisite)
	g.AddNode(dependent)
	for _, c := range g.children[prerequisite] {
		if c == dependent {
			return
		}
	}
	g.children[prerequisite] = append(g.children[prerequisite], dependent)
	g.parents[dependent] = append(g.parents[dependent], prerequisite)
}

// HasNode returns true if the graph contains the named node.
func (g *Graph) HasNode(name string) bool {
	return g.nodes[name]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Children returns the dependents of a node.
func (g *Graph) Children(name string) []string {
	return g.children[name]
}

// Parents returns the prerequisites of a node.
func (g *Graph) Parents(name string) []string {
	return g.parents[name]
}

// AllNodes returns every node name in lexical order.
func (g *Graph) AllNodes() []string {
	nodes := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		nodes = append(nodes, name)
	}
	sort.Strings(nodes)
	return nodes
}

// inDegrees computes the number of incoming edges for each node. This is
// the first step of Kahn's algorithm.
func (g *Graph) inDegrees() map[string]int {
	inDegree := make(map[string]int)
	for name := range g.nodes {
		inDegree[name] = 0
	}
	for _, children := range g.children {
		for _, child := range children {
			inDegree[child]++
		}
	}
	return inDegree
}
