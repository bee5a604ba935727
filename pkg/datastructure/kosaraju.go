package datastructure

import (
	"github.com/lintang-b-s/roadflow/pkg/util"
)

// RunKosaraju. runs kosaraju's algorithm to find strongly connected components (SCCs) of the road graph.
// components come out of the second pass in topological order of the condensation, so every
// condensation arc goes from a smaller scc id to a larger one.
func (g *RoadGraph) RunKosaraju() {
	n := Index(g.NumberOfRoads())
	components := make([][]Index, 0, 10)

	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for v := Index(0); v < n; v++ {
		if !visited[v] {
			g.dfs(v, &order, visited, false)
		}
	}

	order = util.ReverseG[Index](order)

	// reset visited
	visited = make([]bool, n)

	for _, v := range order {
		if !visited[v] {
			component := make([]Index, 0, 10)
			g.dfs(v, &component, visited, true)
			components = append(components, component)
		}
	}

	sccs := make([]Index, n)
	for i, component := range components {
		for _, v := range component {
			sccs[v] = Index(i)
		}
	}
	g.setSCCs(sccs)

	seen := make(map[[2]Index]struct{})
	condAdj := make([][]Index, len(components))
	for u := Index(0); u < n; u++ {
		g.ForOutEdgesOf(u, func(e *OutEdge) {
			su, sv := sccs[u], sccs[e.head]
			if su == sv {
				return
			}
			if _, ok := seen[[2]Index{su, sv}]; ok {
				return
			}
			seen[[2]Index{su, sv}] = struct{}{}
			condAdj[su] = append(condAdj[su], sv)
		})
	}

	g.setSCCCondensationAdj(condAdj)
}

func (g *RoadGraph) dfs(v Index, output *[]Index, visited []bool, reversed bool) {
	visited[v] = true

	if !reversed {
		g.ForOutEdgesOf(v, func(e *OutEdge) {
			if !visited[e.head] {
				g.dfs(e.head, output, visited, reversed)
			}
		})
	} else {
		// transpose graph: walk the inedges
		g.ForInEdgesOf(v, func(e *InEdge) {
			if !visited[e.tail] {
				g.dfs(e.tail, output, visited, reversed)
			}
		})
	}

	*output = append(*output, v)
}
