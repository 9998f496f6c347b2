// Package graph holds the declared dependency edges between container keys.
// It serves registration-time checks and eager startup; lifecycle order
// itself comes from the construction ledger.
package graph

import (
	"slices"
	"sync"
)

type Graph struct {
	mu    sync.RWMutex
	edges map[string][]string

	cycleValid bool
	hasCycle   bool
}

func New() *Graph {
	return &Graph{
		edges: make(map[string][]string),
	}
}

func (g *Graph) AddNode(id string, dependencies []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[id] = slices.Clone(dependencies)
	g.cycleValid = false
}

func (g *Graph) RemoveNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.edges, id)
	g.cycleValid = false
}

func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.edges[id]
	return exists
}

func (g *Graph) Dependencies(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.edges[id])
}

func (g *Graph) Dependents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []string
	for node, deps := range g.edges {
		if slices.Contains(deps, id) {
			dependents = append(dependents, node)
		}
	}
	slices.Sort(dependents)
	return dependents
}

func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.sortedNodes()
}

func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edges)
}

func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := New()
	for id, deps := range g.edges {
		clone.edges[id] = slices.Clone(deps)
	}
	return clone
}

// Missing returns declared dependencies that have no node, sorted.
func (g *Graph) Missing() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool)
	var missing []string
	for _, deps := range g.edges {
		for _, dep := range deps {
			if _, exists := g.edges[dep]; !exists && !seen[dep] {
				seen[dep] = true
				missing = append(missing, dep)
			}
		}
	}
	slices.Sort(missing)
	return missing
}

func (g *Graph) sortedNodes() []string {
	nodes := make([]string, 0, len(g.edges))
	for id := range g.edges {
		nodes = append(nodes, id)
	}
	slices.Sort(nodes)
	return nodes
}
