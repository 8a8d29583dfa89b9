// Package arena provides a typed arena with generational handles.
//
// Every object placed in an Arena gets a Handle made of its slot index and
// the slot's generation. Releasing a handle drops the object and bumps the
// generation, so every handle issued before goes stale. A Handle is a
// tuple.Referent: caches keyed by it forget their entries as soon as the
// handle is released, without waiting for the garbage collector.
//
// An Arena is not safe for concurrent use.
package arena

import "go.trai.ch/weft/internal/incr/tuple"

// Arena holds Ts in reusable slots.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

type slot[T any] struct {
	value T
	gen   uint32
	used  bool
}

// Handle identifies one object in an Arena for as long as it is not released.
// The zero Handle is never valid.
type Handle[T any] struct {
	arena *Arena[T]
	index uint32
	gen   uint32
}

// identity is the comparable part of a Handle used as a weak trie key.
type identity struct {
	arena any
	index uint32
	gen   uint32
}

// New returns an empty Arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Put stores t and returns its handle. Released slots are reused.
func (a *Arena[T]) Put(t T) Handle[T] {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots)) //nolint:gosec // arena sizes stay far below 2^32
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[index]
	s.value = t
	s.used = true
	a.live++
	return Handle[T]{arena: a, index: index, gen: s.gen}
}

// Get returns a pointer to the object behind h, or nil if h is stale.
// The pointer is valid until the next Put or Release.
func (a *Arena[T]) Get(h Handle[T]) *T {
	if !a.Alive(h) {
		return nil
	}
	return &a.slots[h.index].value
}

// Alive reports whether h still refers to an object in a.
func (a *Arena[T]) Alive(h Handle[T]) bool {
	if h.arena != a || int(h.index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.index]
	return s.used && s.gen == h.gen
}

// Release drops the object behind h. It reports false if h was already stale.
func (a *Arena[T]) Release(h Handle[T]) bool {
	if !a.Alive(h) {
		return false
	}
	s := &a.slots[h.index]
	var zero T
	s.value = zero
	s.used = false
	s.gen++
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// Len returns the number of live objects.
func (a *Arena[T]) Len() int {
	return a.live
}

// Alive reports whether h still refers to a live object.
func (h Handle[T]) Alive() bool {
	return h.arena != nil && h.arena.Alive(h)
}

// Value returns the object behind h and whether h is still alive.
func (h Handle[T]) Value() (T, bool) {
	if !h.Alive() {
		var zero T
		return zero, false
	}
	return h.arena.slots[h.index].value, true
}

// Index returns the slot index of h.
func (h Handle[T]) Index() int {
	return int(h.index)
}

// Generation returns the slot generation h was issued for.
func (h Handle[T]) Generation() uint32 {
	return h.gen
}

// WeakKey implements tuple.Referent.
func (h Handle[T]) WeakKey() tuple.Key {
	return tuple.WeakIdentity(identity{arena: h.arena, index: h.index, gen: h.gen}, h.Alive)
}
