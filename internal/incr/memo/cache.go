// Package memo implements a compute-once cache keyed by tuples of strong and weak keys.
package memo

import (
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/incr/tuple"
	"go.trai.ch/zerr"
)

// Cache memoizes values of type V under key paths of any positive length.
//
// Entries keyed (partly) by weak keys disappear once a weak key dies; such
// entries read exactly like entries that were never stored.
//
// A Cache is not safe for concurrent use, and lookups may mutate it.
// Provide is not guarded against re-entrancy: if compute calls Provide for
// the same keys, the inner call computes too and the outer result is the
// one left stored.
type Cache[V any] struct {
	root *tuple.Node[V]
}

// New creates an empty Cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{root: &tuple.Node[V]{}}
}

// Set stores value under keys.
// It returns domain.ErrInvalidArity if keys is empty.
func (c *Cache[V]) Set(value V, keys ...tuple.Key) error {
	if len(keys) == 0 {
		return errNoKeys()
	}
	c.bucket(keys).PutChild(keys[len(keys)-1], value)
	return nil
}

// Get returns the value stored under keys.
func (c *Cache[V]) Get(keys ...tuple.Key) (V, bool) {
	if len(keys) == 0 {
		var zero V
		return zero, false
	}
	node := c.root.Walk(keys)
	if node == nil {
		var zero V
		return zero, false
	}
	return node.Value()
}

// Has reports whether a value is stored under keys.
func (c *Cache[V]) Has(keys ...tuple.Key) bool {
	_, ok := c.Get(keys...)
	return ok
}

// Provide returns the value stored under keys, calling compute to produce
// and store it on a miss. A stored zero value is a hit. Errors from compute
// are returned as is and nothing is stored.
func (c *Cache[V]) Provide(keys []tuple.Key, compute func(keys []tuple.Key) (V, error)) (V, error) {
	if len(keys) == 0 {
		var zero V
		return zero, errNoKeys()
	}
	if v, ok := c.Get(keys...); ok {
		return v, nil
	}
	v, err := compute(keys)
	if err != nil {
		return v, err
	}
	// compute may have touched the trie, so walk again from the root.
	c.bucket(keys).PutChild(keys[len(keys)-1], v)
	return v, nil
}

// Delete forgets the value stored under keys. Intermediate trie nodes are kept.
func (c *Cache[V]) Delete(keys ...tuple.Key) {
	if len(keys) == 0 {
		return
	}
	if bucket := c.root.Walk(keys[:len(keys)-1]); bucket != nil {
		bucket.ClearChild(keys[len(keys)-1])
	}
}

// Clear forgets every value.
func (c *Cache[V]) Clear() {
	c.root = &tuple.Node[V]{}
}

// Len returns the number of stored values, including values under dead weak keys not yet swept.
func (c *Cache[V]) Len() int {
	return c.root.Len()
}

// Sweep discards entries whose weak keys died and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	return c.root.Sweep()
}

func (c *Cache[V]) bucket(keys []tuple.Key) *tuple.Node[V] {
	node := c.root
	for _, k := range keys[:len(keys)-1] {
		node, _ = node.ChildOrCreate(k)
	}
	return node
}

func errNoKeys() error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidArity, "cache key path is empty"),
		"arity", 0), "min", 1)
}
