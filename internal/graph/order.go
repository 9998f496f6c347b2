package graph

import (
	"errors"
	"slices"
)

var ErrCycleDetected = errors.New("cycle detected in graph")

// StartupOrder is a topological order, dependencies first. Ties are broken by
// key so the order is stable across runs.
func (g *Graph) StartupOrder() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	dependents := make(map[string][]string, len(g.edges))
	inDegree := make(map[string]int, len(g.edges))

	for id, deps := range g.edges {
		if _, ok := inDegree[id]; !ok {
			inDegree[id] = 0
		}
		for _, dep := range deps {
			if _, exists := g.edges[dep]; !exists {
				continue
			}
			dependents[dep] = append(dependents[dep], id)
			inDegree[id]++
		}
	}

	var ready []string
	for id, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	sorted := make([]string, 0, len(g.edges))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		sorted = append(sorted, node)

		var unlocked []string
		for _, dependent := range dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				unlocked = append(unlocked, dependent)
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			slices.Sort(ready)
		}
	}

	if len(sorted) != len(g.edges) {
		return nil, ErrCycleDetected
	}
	return sorted, nil
}

func (g *Graph) ShutdownOrder() ([]string, error) {
	order, err := g.StartupOrder()
	if err != nil {
		return nil, err
	}
	slices.Reverse(order)
	return order, nil
}
