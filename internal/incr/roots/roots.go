// Package roots finds traversal starting points in a dependency graph that may contain cycles.
package roots

import (
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

type marker uint8

const (
	unvisited marker = iota
	inProgress
	done
	doneRoot
	doneInRootCycle
)

const noCycle = -1

type node[T comparable] struct {
	item     T
	deps     []int
	marker   marker
	cycle    int
	incoming int
}

type frame struct {
	node int
	open []int
}

// finder holds the state of one Find call. Cycles are integer ids; cycles[id]
// lists the members of a live cycle and is nil once merged into another.
type finder[T comparable] struct {
	nodes      []node[T]
	cycles     [][]int
	roots      orderedSet
	rootCycles orderedSet
}

// Find returns the items from which a forward traversal along
// dependenciesOf reaches every item, preferring few and upstream items.
//
// An item no other item depends on is a root. A cycle no outside item
// depends on contributes the members with the most dependents inside the
// cycle; ties keep all of them. Dependencies outside items are ignored,
// as are duplicate items and edges. The result follows discovery order.
//
// dependenciesOf must not mutate items. It returns domain.ErrBrokenInvariant
// if a non-empty input yields no roots, which indicates a bug in Find.
func Find[T comparable](items []T, dependenciesOf func(T) []T) ([]T, error) {
	f := newFinder(items, dependenciesOf)
	if len(f.nodes) <= 1 {
		out := make([]T, len(f.nodes))
		for i, n := range f.nodes {
			out[i] = n.item
		}
		return out, nil
	}

	for i := range f.nodes {
		if f.nodes[i].marker == unvisited {
			f.walk(i)
		}
	}
	f.electCycleRoots()

	if f.roots.len() == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrBrokenInvariant, "no roots found"), "items", len(f.nodes))
	}

	out := make([]T, 0, f.roots.len())
	for _, i := range f.roots.values() {
		out = append(out, f.nodes[i].item)
	}
	return out, nil
}

func newFinder[T comparable](items []T, dependenciesOf func(T) []T) *finder[T] {
	index := make(map[T]int, len(items))
	f := &finder[T]{nodes: make([]node[T], 0, len(items))}
	for _, item := range items {
		if _, ok := index[item]; ok {
			continue
		}
		index[item] = len(f.nodes)
		f.nodes = append(f.nodes, node[T]{item: item, cycle: noCycle})
	}
	if len(f.nodes) <= 1 {
		return f
	}

	for i := range f.nodes {
		seen := make(map[int]struct{})
		for _, dep := range dependenciesOf(f.nodes[i].item) {
			j, ok := index[dep]
			if !ok {
				continue
			}
			if _, dup := seen[j]; dup {
				continue
			}
			seen[j] = struct{}{}
			f.nodes[i].deps = append(f.nodes[i].deps, j)
		}
	}
	return f
}

// walk runs an iterative depth-first search from start.
func (f *finder[T]) walk(start int) {
	f.nodes[start].marker = inProgress
	stack := []frame{{node: start, open: f.openEdges(start)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.open) == 0 {
			stack = stack[:len(stack)-1]
			f.nodes[top.node].marker = done
			continue
		}

		dep := top.open[len(top.open)-1]
		top.open = top.open[:len(top.open)-1]

		switch f.nodes[dep].marker {
		case unvisited:
			f.nodes[dep].marker = inProgress
			stack = append(stack, frame{node: dep, open: f.openEdges(dep)})
		case inProgress:
			f.closeCycle(stack, dep)
		case doneRoot:
			f.nodes[dep].marker = done
			f.roots.remove(dep)
		case doneInRootCycle:
			f.nodes[dep].marker = done
			f.rootCycles.remove(f.nodes[dep].cycle)
		case done:
		}
	}

	if c := f.nodes[start].cycle; c != noCycle {
		for _, member := range f.cycles[c] {
			f.nodes[member].marker = doneInRootCycle
		}
		f.rootCycles.add(c)
		return
	}
	f.nodes[start].marker = doneRoot
	f.roots.add(start)
}

func (f *finder[T]) openEdges(i int) []int {
	deps := f.nodes[i].deps
	open := make([]int, len(deps))
	copy(open, deps)
	return open
}

// closeCycle puts target and every stack entry above it into one cycle,
// absorbing cycles those nodes already belong to.
func (f *finder[T]) closeCycle(stack []frame, target int) {
	c := f.nodes[target].cycle
	if c == noCycle {
		c = len(f.cycles)
		f.cycles = append(f.cycles, []int{target})
		f.nodes[target].cycle = c
	}

	for i := len(stack) - 1; stack[i].node != target; i-- {
		n := stack[i].node
		switch other := f.nodes[n].cycle; other {
		case c:
		case noCycle:
			f.nodes[n].cycle = c
			f.cycles[c] = append(f.cycles[c], n)
		default:
			for _, member := range f.cycles[other] {
				f.nodes[member].cycle = c
			}
			f.cycles[c] = append(f.cycles[c], f.cycles[other]...)
			f.cycles[other] = nil
		}
	}
}

// electCycleRoots adds the members of each surviving root cycle that have
// the most dependents inside the cycle.
func (f *finder[T]) electCycleRoots() {
	for _, c := range f.rootCycles.values() {
		members := f.cycles[c]
		best := 0
		var elected []int
		for _, m := range members {
			for _, dep := range f.nodes[m].deps {
				if f.nodes[dep].cycle != c {
					continue
				}
				f.nodes[dep].incoming++
				switch n := f.nodes[dep].incoming; {
				case n > best:
					best = n
					elected = append(elected[:0], dep)
				case n == best:
					elected = append(elected, dep)
				}
			}
		}
		for _, e := range elected {
			f.roots.add(e)
		}
	}
}

// orderedSet is a set of ints that remembers insertion order.
type orderedSet struct {
	order []int
	pos   map[int]int
}

func (s *orderedSet) add(v int) {
	if s.pos == nil {
		s.pos = make(map[int]int)
	}
	if _, ok := s.pos[v]; ok {
		return
	}
	s.pos[v] = len(s.order)
	s.order = append(s.order, v)
}

func (s *orderedSet) remove(v int) {
	i, ok := s.pos[v]
	if !ok {
		return
	}
	delete(s.pos, v)
	s.order[i] = -1
}

func (s *orderedSet) len() int {
	return len(s.pos)
}

func (s *orderedSet) values() []int {
	out := make([]int, 0, len(s.pos))
	for _, v := range s.order {
		if v >= 0 {
			out = append(out, v)
		}
	}
	return out
}
