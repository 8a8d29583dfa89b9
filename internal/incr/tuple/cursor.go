package tuple

// Cursor walks the present value slots of a trie in pre-order, strong
// branches before weak ones. Each node's child keys are snapshotted when the
// cursor first descends into it, so the walk tolerates mutation: cleared or
// vanished entries are skipped, but children added to a node after its
// snapshot are only seen by a fresh cursor.
type Cursor[V any] struct {
	stack    []frame[V]
	path     []Key
	minDepth int
}

type frame[V any] struct {
	node *Node[V]
	keys []Key
	next int
}

// NewCursor returns a cursor over the subtree rooted at root that yields
// only slots at least minDepth keys deep.
func NewCursor[V any](root *Node[V], minDepth int) *Cursor[V] {
	return &Cursor[V]{
		stack:    []frame[V]{{node: root, keys: root.Keys()}},
		minDepth: minDepth,
	}
}

// Next advances to the next present slot and returns its key path and node.
// The returned path is a fresh copy. ok is false once the cursor is exhausted.
func (c *Cursor[V]) Next() (path Tuple, node *Node[V], ok bool) {
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		if top.next >= len(top.keys) {
			c.stack = c.stack[:len(c.stack)-1]
			if len(c.path) > 0 {
				c.path = c.path[:len(c.path)-1]
			}
			continue
		}

		k := top.keys[top.next]
		top.next++
		child := top.node.Child(k)
		if child == nil {
			continue
		}

		c.path = append(c.path, k)
		c.stack = append(c.stack, frame[V]{node: child, keys: child.Keys()})
		if child.present && len(c.path) >= c.minDepth {
			path = make(Tuple, len(c.path))
			copy(path, c.path)
			return path, child, true
		}
	}
	return nil, nil, false
}
