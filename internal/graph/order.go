package graph

import (
	"container/heap"
	"sort"
	"strings"

	"antimony/internal/diag"
)

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// adjacency returns, per module index in definition order, the sorted
// indices of the modules it instantiates.
func (g *Graph) adjacency() [][]int {
	index := make(map[string]int, len(g.order))
	for i, n := range g.order {
		index[n] = i
	}
	out := make([][]int, len(g.order))
	seen := make(map[[2]int]bool)
	for _, e := range g.Edges {
		from, ok1 := index[e.From]
		to, ok2 := index[e.To]
		if !ok1 || !ok2 || seen[[2]int{from, to}] {
			continue
		}
		seen[[2]int{from, to}] = true
		out[from] = append(out[from], to)
	}
	for i := range out {
		sort.Ints(out[i])
	}
	return out
}

// TopoOrder lists modules so that every module follows the modules it
// instantiates. Ties are broken by definition order.
func (g *Graph) TopoOrder() ([]string, error) {
	adj := g.adjacency()
	// Edges point from container to submodule; dependencies come first, so
	// walk the reversed graph.
	indeg := make([]int, len(adj))
	for from := range adj {
		indeg[from] = len(adj[from])
	}
	users := make([][]int, len(adj))
	for from, outs := range adj {
		for _, to := range outs {
			users[to] = append(users[to], from)
		}
	}

	ready := &intMinHeap{}
	heap.Init(ready)
	for i := range indeg {
		if indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}
	out := make([]string, 0, len(adj))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, g.order[n])
		for _, u := range users[n] {
			indeg[u]--
			if indeg[u] == 0 {
				heap.Push(ready, u)
			}
		}
	}
	if len(out) != len(adj) {
		return nil, cycleError(g.findCycle(adj))
	}
	return out, nil
}

func (g *Graph) validateAcyclic() error {
	_, err := g.TopoOrder()
	return err
}

// findCycle runs a deterministic DFS and returns one cycle as module names.
func (g *Graph) findCycle(adj [][]int) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(adj))
	parent := make([]int, len(adj))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range adj[u] {
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
				continue
			}
			if color[v] == gray {
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}
	for i := range adj {
		if color[i] == white && dfs(i) {
			break
		}
	}

	out := make([]string, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, g.order[cycle[i]])
	}
	return out
}

func cycleError(path []string) error {
	msg := "submodule cycle detected"
	if len(path) > 0 {
		msg += ": " + strings.Join(path, " -> ")
	}
	return diag.Loadf("%s", msg)
}

// Closure returns root and every module it reaches, dependencies first and
// root last.
func (g *Graph) Closure(root string) ([]string, error) {
	m, err := g.Lookup(root)
	if err != nil {
		return nil, err
	}
	reach := map[string]bool{m.Name: true}
	stack := []string{m.Name}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range g.GetDependencies(n) {
			if !reach[dep.Name] {
				reach[dep.Name] = true
				stack = append(stack, dep.Name)
			}
		}
	}
	order, err := g.TopoOrder()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(reach))
	for _, n := range order {
		if reach[n] {
			out = append(out, n)
		}
	}
	return out, nil
}
