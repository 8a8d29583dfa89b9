// Package overlay implements a layered copy-on-write map with cheap child scopes.
package overlay

import "iter"

// slot is a layer entry. A tombstone shadows the same key in older layers.
type slot[V any] struct {
	value     V
	tombstone bool
}

type layer[K comparable, V any] map[K]slot[V]

// ancestors is an immutable linked list of older layers, nearest first.
type ancestors[K comparable, V any] struct {
	layer layer[K, V]
	next  *ancestors[K, V]
	depth int
}

// Map is a map layered over the maps it was derived from.
//
// Writes go to the map's own top layer. Reads fall through to ancestor
// layers, nearest first, and copy what they find into the top layer.
// Ancestor layers are shared, not copied: writes a parent makes to its top
// layer after CreateChild stay visible to the child until the child reads
// or overrides the key. Stop writing to a parent once it has children if
// that matters.
//
// A Map is not safe for concurrent use.
type Map[K comparable, V any] struct {
	top    layer[K, V]
	parent *ancestors[K, V]
}

// New creates an empty single-layer Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{top: make(layer[K, V])}
}

// CreateChild returns a Map layered over m. It copies nothing.
func (m *Map[K, V]) CreateChild() *Map[K, V] {
	depth := 1
	if m.parent != nil {
		depth = m.parent.depth + 1
	}
	return &Map[K, V]{
		top:    make(layer[K, V]),
		parent: &ancestors[K, V]{layer: m.top, next: m.parent, depth: depth},
	}
}

// Set maps k to v.
func (m *Map[K, V]) Set(k K, v V) {
	m.top[k] = slot[V]{value: v}
}

// Add maps k to the zero value, for maps used as sets.
func (m *Map[K, V]) Add(k K) {
	var zero V
	m.Set(k, zero)
}

// Get returns the value for k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	s, ok := m.lookup(k)
	if !ok || s.tombstone {
		var zero V
		return zero, false
	}
	return s.value, true
}

// Has reports whether k is mapped.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Delete unmaps k. Ancestor layers are never modified; when m has any,
// a tombstone hides their entry instead.
func (m *Map[K, V]) Delete(k K) {
	if m.parent == nil {
		delete(m.top, k)
		return
	}
	m.top[k] = slot[V]{tombstone: true}
}

// Depth returns the number of layers, the top layer included.
func (m *Map[K, V]) Depth() int {
	if m.parent == nil {
		return 1
	}
	return m.parent.depth + 1
}

// Len returns the number of mapped keys. It compacts m.
func (m *Map[K, V]) Len() int {
	m.compact()
	return len(m.top)
}

// Keys returns the mapped keys in no particular order. It compacts m.
func (m *Map[K, V]) Keys() []K {
	m.compact()
	keys := make([]K, 0, len(m.top))
	for k := range m.top {
		keys = append(keys, k)
	}
	return keys
}

// KeySet returns the mapped keys as a set. It compacts m.
func (m *Map[K, V]) KeySet() map[K]struct{} {
	m.compact()
	set := make(map[K]struct{}, len(m.top))
	for k := range m.top {
		set[k] = struct{}{}
	}
	return set
}

// Map returns a copy of the mapping. It compacts m.
func (m *Map[K, V]) Map() map[K]V {
	m.compact()
	out := make(map[K]V, len(m.top))
	for k, s := range m.top {
		out[k] = s.value
	}
	return out
}

// Pairs returns an iterator over the mapping. It compacts m before iterating.
func (m *Map[K, V]) Pairs() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.compact()
		for k, s := range m.top {
			if !yield(k, s.value) {
				return
			}
		}
	}
}

func (m *Map[K, V]) lookup(k K) (slot[V], bool) {
	if s, ok := m.top[k]; ok {
		return s, true
	}
	for a := m.parent; a != nil; a = a.next {
		if s, ok := a.layer[k]; ok {
			m.top[k] = s
			return s, true
		}
	}
	return slot[V]{}, false
}

// compact replaces the layer chain with one flat layer, applying layers
// oldest to newest. Tombstones become deletions. A single-layer map holds no
// tombstones, so compacting it again costs nothing.
func (m *Map[K, V]) compact() {
	if m.parent == nil {
		return
	}
	chain := make([]layer[K, V], 0, m.parent.depth+1)
	for a := m.parent; a != nil; a = a.next {
		chain = append(chain, a.layer)
	}

	flat := make(layer[K, V], len(m.top))
	for i := len(chain) - 1; i >= 0; i-- {
		apply(flat, chain[i])
	}
	apply(flat, m.top)

	m.top = flat
	m.parent = nil
}

func apply[K comparable, V any](dst, src layer[K, V]) {
	for k, s := range src {
		if s.tombstone {
			delete(dst, k)
			continue
		}
		dst[k] = s
	}
}
