package graph

import "sort"

// Order returns the nodes in migration priority order: independent types
// before dependent types, via Kahn's algorithm with lexical tie-breaking.
//
// Cycles are tolerated rather than fatal: reference cycles are common in
// content models, and every relationship write is deferred to the
// resolution pass anyway, so ordering only reduces forward references. Any
// nodes left unprocessed by Kahn's algorithm (cycle participants and nodes
// blocked by them) are appended in lexical order.
func (g *Graph) Order() []string {
	inDegree := g.inDegrees()

	// Seed the queue with all zero in-degree nodes, lexically sorted so the
	// order is stable across runs.
	var queue []string
	for _, name := range g.AllNodes() {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var order []string
	processed := make(map[string]bool)

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		order = append(order, node)
		processed[node] = true

		var ready []string
		for _, child := range g.children[node] {
			inDegree[child]--
			if inDegree[child] == 0 {
				ready = append(ready, child)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(order) == len(g.nodes) {
		return order
	}

	var remaining []string
	for name := range g.nodes {
		if !processed[name] {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)

	return append(order, remaining...)
}

// HasCycle reports whether the graph contains at least one cycle.
func (g *Graph) HasCycle() bool {
	inDegree := g.inDegrees()

	var queue []string
	for name := range g.nodes {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	processed := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		processed++

		for _, child := range g.children[node] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	return processed != len(g.nodes)
}
