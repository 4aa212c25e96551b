// Package graph builds and validates the target dependency DAG.
//
// Building is a pure function of the declared targets: dependencies are the
// union of explicit declarations and static references found in the command
// definition. Validation (unknown names, cycles) happens here, before any
// target executes.
package graph

import (
	"container/heap"
	"regexp"
	"sort"

	"github.com/aretw0/cairn/pkg/domain"
)

// refRe matches static target references in command definitions, e.g.
// "${target:train_set}". This is a deliberately conservative scan: indirect
// or dynamically constructed references are not tracked.
var refRe = regexp.MustCompile(`\$\{target:([a-zA-Z0-9][a-zA-Z0-9_.-]*)\}`)

// ScanReferences returns the target names statically referenced in a
// command definition, in order of first appearance, deduplicated.
func ScanReferences(definition string) []string {
	matches := refRe.FindAllStringSubmatch(definition, -1)
	seen := make(map[string]bool)
	var refs []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			refs = append(refs, m[1])
		}
	}
	return refs
}

// Graph is the validated, immutable dependency DAG of a pipeline.
type Graph struct {
	targets map[string]domain.Target
	order   []string            // registration order
	index   map[string]int      // name -> registration index
	deps    map[string][]string // upstream names, deterministic order
	deps2   map[string][]string // downstream names, deterministic order
	topo    []string
}

// Build constructs and validates the DAG for the given targets.
//
// Fails with domain.DuplicateTargetError, domain.UnknownDependencyError or
// domain.CyclicDependencyError. Side effect free.
func Build(targets []domain.Target) (*Graph, error) {
	g := &Graph{
		targets: make(map[string]domain.Target, len(targets)),
		index:   make(map[string]int, len(targets)),
		deps:    make(map[string][]string, len(targets)),
		deps2:   make(map[string][]string, len(targets)),
	}

	for _, t := range targets {
		if _, exists := g.targets[t.Name]; exists {
			return nil, &domain.DuplicateTargetError{Name: t.Name}
		}
		g.targets[t.Name] = t
		g.index[t.Name] = len(g.order)
		g.order = append(g.order, t.Name)
	}

	// Resolve dependencies: declared first, then scanned references.
	for _, name := range g.order {
		t := g.targets[name]
		seen := make(map[string]bool)
		var deps []string
		for _, dep := range t.DependsOn {
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
		for _, dep := range ScanReferences(t.Definition) {
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}

		for _, dep := range deps {
			if _, ok := g.targets[dep]; !ok {
				return nil, &domain.UnknownDependencyError{Target: name, Dependency: dep}
			}
			g.deps2[dep] = append(g.deps2[dep], name)
		}
		g.deps[name] = deps
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &domain.CyclicDependencyError{Cycle: cycle}
	}

	g.topo = g.topoOrder()
	return g, nil
}

// Target returns the target with the given name.
func (g *Graph) Target(name string) (domain.Target, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// Len returns the number of targets in the graph.
func (g *Graph) Len() int { return len(g.order) }

// Nodes returns all target names in registration order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the upstream names of a target.
func (g *Graph) Dependencies(name string) []string {
	out := make([]string, len(g.deps[name]))
	copy(out, g.deps[name])
	return out
}

// Dependents returns the downstream names of a target.
func (g *Graph) Dependents(name string) []string {
	out := make([]string, len(g.deps2[name]))
	copy(out, g.deps2[name])
	return out
}

// Edges returns all dependency edges sorted by (From, To).
func (g *Graph) Edges() []domain.Edge {
	var edges []domain.Edge
	for _, name := range g.order {
		for _, dep := range g.deps[name] {
			edges = append(edges, domain.Edge{From: dep, To: name})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// TopoOrder returns a deterministic topological linearization: ties are
// broken by registration order.
func (g *Graph) TopoOrder() []string {
	out := make([]string, len(g.topo))
	copy(out, g.topo)
	return out
}

type intMinHeap []int

func (h intMinHeap) Len() int            { return len(h) }
func (h intMinHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)         { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder runs Kahn's algorithm with a min-heap of registration indices.
// Only called on an acyclic graph.
func (g *Graph) topoOrder() []string {
	indeg := make([]int, len(g.order))
	for _, name := range g.order {
		indeg[g.index[name]] = len(g.deps[name])
	}

	ready := &intMinHeap{}
	heap.Init(ready)
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]string, 0, len(g.order))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		name := g.order[i]
		out = append(out, name)
		for _, dependent := range g.deps2[name] {
			j := g.index[dependent]
			indeg[j]--
			if indeg[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}
	return out
}
