package graph

func (g *Graph) HasCycle() bool {
	g.mu.RLock()
	if g.cycleValid {
		result := g.hasCycle
		g.mu.RUnlock()
		return result
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.cycleValid {
		g.hasCycle = len(g.cycles()) > 0
		g.cycleValid = true
	}
	return g.hasCycle
}

// FindCyclePath returns a path that starts and ends at the same node, reached
// from start, or nil.
func (g *Graph) FindCyclePath(start string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.findCyclePath(start)
}

// Cycles returns one path per strongly connected component that forms a cycle.
func (g *Graph) Cycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var paths [][]string
	for _, scc := range g.cycles() {
		if path := g.findCyclePath(scc[0]); path != nil {
			paths = append(paths, path)
		}
	}
	return paths
}

func (g *Graph) findCyclePath(start string) []string {
	visited := make(map[string]bool)
	inPath := make(map[string]bool)
	var path []string

	var dfs func(id string) []string
	dfs = func(id string) []string {
		if inPath[id] {
			for i, p := range path {
				if p == id {
					cycle := append([]string(nil), path[i:]...)
					return append(cycle, id)
				}
			}
		}
		if visited[id] {
			return nil
		}

		visited[id] = true
		inPath[id] = true
		path = append(path, id)

		for _, dep := range g.edges[id] {
			if _, exists := g.edges[dep]; !exists {
				continue
			}
			if cycle := dfs(dep); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		inPath[id] = false
		return nil
	}

	return dfs(start)
}

// cycles runs Tarjan's algorithm and keeps the components that loop:
// more than one node, or a single node depending on itself.
func (g *Graph) cycles() [][]string {
	var (
		index   int
		stack   []string
		onStack = make(map[string]bool)
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		result  [][]string
	)

	var connect func(id string)
	connect = func(id string) {
		indices[id] = index
		lowlink[id] = index
		index++
		stack = append(stack, id)
		onStack[id] = true

		selfLoop := false
		for _, dep := range g.edges[id] {
			if _, exists := g.edges[dep]; !exists {
				continue
			}
			if dep == id {
				selfLoop = true
			}
			if _, seen := indices[dep]; !seen {
				connect(dep)
				lowlink[id] = min(lowlink[id], lowlink[dep])
			} else if onStack[dep] {
				lowlink[id] = min(lowlink[id], indices[dep])
			}
		}

		if lowlink[id] != indices[id] {
			return
		}

		var scc []string
		for {
			n := len(stack) - 1
			w := stack[n]
			stack = stack[:n]
			onStack[w] = false
			scc = append(scc, w)
			if w == id {
				break
			}
		}
		if len(scc) > 1 || selfLoop {
			result = append(result, scc)
		}
	}

	for _, id := range g.sortedNodes() {
		if _, seen := indices[id]; !seen {
			connect(id)
		}
	}
	return result
}
