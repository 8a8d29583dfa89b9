package tuple

// minSweep is the weak child count below which dead entries are never swept.
// It is also the number of removed slots a branch tolerates before compacting.
const minSweep = 16

// Node is a key trie node. Its value slot and its children are independent:
// a node may hold a value, children, both, or neither.
// Child maps are created on first insert.
//
// Value slots are written through the parent (PutChild, ClearChild) so that
// the parent's Filled count stays exact. Empty children are detached with
// RemoveChild.
type Node[V any] struct {
	present bool
	value   V

	// filled counts direct children whose value slot is present.
	filled int

	strong *children[V]
	weak   *children[V]
}

// children keeps entries in insertion order. A removed entry leaves a hole
// (nil node) that is compacted away once holes make up half the slice.
type children[V any] struct {
	index   map[any]int
	entries []entry[V]
	holes   int
	sweepAt int
}

type entry[V any] struct {
	key  Key
	node *Node[V]
}

// Value returns the node's value and whether the slot is present.
func (n *Node[V]) Value() (V, bool) {
	return n.value, n.present
}

// Present reports whether the value slot is marked present.
func (n *Node[V]) Present() bool {
	return n.present
}

// Filled returns the number of direct children whose value slot is present.
// Children whose weak key died count until they are swept.
func (n *Node[V]) Filled() int {
	return n.filled
}

// Child returns the live child for k, or nil.
func (n *Node[V]) Child(k Key) *Node[V] {
	c := n.branch(k)
	if c == nil {
		return nil
	}
	i, ok := c.index[k.id]
	if !ok {
		return nil
	}
	e := c.entries[i]
	if !e.key.Alive() {
		return nil
	}
	return e.node
}

// Walk follows keys from n and returns the node reached, or nil.
func (n *Node[V]) Walk(keys []Key) *Node[V] {
	node := n
	for _, k := range keys {
		if node = node.Child(k); node == nil {
			return nil
		}
	}
	return node
}

// ChildOrCreate returns the child for k, creating it if needed.
//
// Creating a child may discard dead weak entries: one registered under the
// same identity is replaced, and inserting into a grown weak branch sweeps
// every dead entry in it. Discarded direct children are reflected in
// Filled; dropped counts the present value slots discarded below them.
func (n *Node[V]) ChildOrCreate(k Key) (child *Node[V], dropped int) {
	c := n.branch(k)
	if c == nil {
		c = &children[V]{index: make(map[any]int), sweepAt: minSweep}
		if k.weak {
			n.weak = c
		} else {
			n.strong = c
		}
	}

	if i, ok := c.index[k.id]; ok {
		e := c.entries[i]
		if e.key.Alive() {
			return e.node, 0
		}
		dropped = n.release(e.node)
		child = &Node[V]{}
		c.entries[i] = entry[V]{key: k, node: child}
		return child, dropped
	}

	if k.weak && len(c.entries) >= c.sweepAt {
		dropped = n.sweepBranch(c)
	}

	child = &Node[V]{}
	c.index[k.id] = len(c.entries)
	c.entries = append(c.entries, entry[V]{key: k, node: child})
	return child, dropped
}

// PutChild stores v in the value slot of the child for k, creating the child if needed.
// dropped has the same meaning as for ChildOrCreate.
func (n *Node[V]) PutChild(k Key, v V) (child *Node[V], dropped int) {
	child, dropped = n.ChildOrCreate(k)
	if !child.present {
		child.present = true
		n.filled++
	}
	child.value = v
	return child, dropped
}

// ClearChild empties the value slot of the child for k and reports whether it was present.
// The child node itself stays in place; see RemoveChild.
func (n *Node[V]) ClearChild(k Key) bool {
	child := n.Child(k)
	if child == nil || !child.present {
		return false
	}
	var zero V
	child.value = zero
	child.present = false
	n.filled--
	return true
}

// RemoveChild detaches the child for k if it holds no value and has no
// children, and reports whether it did. A branch left without entries is
// dropped.
func (n *Node[V]) RemoveChild(k Key) bool {
	c := n.branch(k)
	if c == nil {
		return false
	}
	i, ok := c.index[k.id]
	if !ok {
		return false
	}
	if child := c.entries[i].node; child.present || !child.empty() {
		return false
	}

	delete(c.index, k.id)
	c.entries[i] = entry[V]{}
	c.holes++
	switch {
	case len(c.index) == 0:
		if k.weak {
			n.weak = nil
		} else {
			n.strong = nil
		}
	case c.holes >= minSweep && 2*c.holes >= len(c.entries):
		c.compact()
	}
	return true
}

// empty reports whether n has no children, dead weak ones included.
func (n *Node[V]) empty() bool {
	return (n.strong == nil || len(n.strong.index) == 0) &&
		(n.weak == nil || len(n.weak.index) == 0)
}

// Sweep removes every dead weak entry in the subtree rooted at n and
// returns the number of present value slots removed with them.
func (n *Node[V]) Sweep() int {
	before := n.Len()
	n.sweep()
	return before - n.Len()
}

func (n *Node[V]) sweep() {
	if n.weak != nil {
		n.sweepBranch(n.weak)
	}
	for _, c := range []*children[V]{n.strong, n.weak} {
		if c == nil {
			continue
		}
		for _, e := range c.entries {
			if e.node != nil {
				e.node.sweep()
			}
		}
	}
}

// Len returns the number of present value slots in the subtree rooted at n, n included.
// Entries under dead weak keys are counted until swept.
func (n *Node[V]) Len() int {
	total := 0
	if n.present {
		total++
	}
	for _, c := range []*children[V]{n.strong, n.weak} {
		if c == nil {
			continue
		}
		for _, e := range c.entries {
			if e.node != nil {
				total += e.node.Len()
			}
		}
	}
	return total
}

// Keys returns a snapshot of the child keys, strong branch first, each in insertion order.
func (n *Node[V]) Keys() []Key {
	size := 0
	if n.strong != nil {
		size += len(n.strong.index)
	}
	if n.weak != nil {
		size += len(n.weak.index)
	}
	keys := make([]Key, 0, size)
	for _, c := range []*children[V]{n.strong, n.weak} {
		if c == nil {
			continue
		}
		for _, e := range c.entries {
			if e.node != nil {
				keys = append(keys, e.key)
			}
		}
	}
	return keys
}

func (n *Node[V]) branch(k Key) *children[V] {
	if k.weak {
		return n.weak
	}
	return n.strong
}

// release detaches a direct child and returns the present slots below it.
func (n *Node[V]) release(child *Node[V]) int {
	below := child.Len()
	if child.present {
		n.filled--
		below--
	}
	return below
}

func (n *Node[V]) sweepBranch(c *children[V]) int {
	dropped := 0
	for i, e := range c.entries {
		if e.node == nil || e.key.Alive() {
			continue
		}
		dropped += n.release(e.node)
		delete(c.index, e.key.id)
		c.entries[i] = entry[V]{}
		c.holes++
	}
	c.compact()
	c.sweepAt = max(minSweep, 2*len(c.entries))
	return dropped
}

// compact closes the holes left by removed entries and rebuilds the index.
func (c *children[V]) compact() {
	if c.holes == 0 {
		return
	}
	kept := make([]entry[V], 0, len(c.index))
	for _, e := range c.entries {
		if e.node != nil {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	c.index = make(map[any]int, len(kept))
	for i, e := range kept {
		c.index[e.key.id] = i
	}
	c.holes = 0
}
