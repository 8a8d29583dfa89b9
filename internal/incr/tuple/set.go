package tuple

import "iter"

// Set is a deduplicated collection of tuples.
//
// Tuples with weak keys leave the set once a weak key dies. They stop being
// reported by Has and All immediately, and stop being counted by Len once
// swept; sweeping happens as weak branches grow, or on demand through Sweep.
type Set struct {
	root *Node[struct{}]
	size int
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{root: &Node[struct{}]{}}
}

// Add inserts t. Adding a tuple already present is a no-op.
// It returns domain.ErrInvalidArity if t has fewer than MinArity keys.
func (s *Set) Add(t Tuple) error {
	if err := checkArity(len(t)); err != nil {
		return err
	}
	bucket := s.bucket(t)
	before := bucket.filled
	_, dropped := bucket.PutChild(t[len(t)-1], struct{}{})
	s.size += bucket.filled - before - dropped
	return nil
}

// Has reports whether t is in the set. Tuples shorter than MinArity are never members.
func (s *Set) Has(t Tuple) bool {
	if len(t) < MinArity {
		return false
	}
	node := s.root.Walk(t)
	return node != nil && node.present
}

// Delete removes t. Deleting a missing tuple is a no-op.
// It returns domain.ErrInvalidArity if t has fewer than MinArity keys.
func (s *Set) Delete(t Tuple) error {
	if err := checkArity(len(t)); err != nil {
		return err
	}
	s.remove(t)
	return nil
}

// remove clears t and detaches the nodes left empty on its path.
func (s *Set) remove(t Tuple) {
	path := make([]*Node[struct{}], 0, len(t))
	node := s.root
	for _, k := range t[:len(t)-1] {
		path = append(path, node)
		if node = node.Child(k); node == nil {
			return
		}
	}
	path = append(path, node)

	if node.ClearChild(t[len(t)-1]) {
		s.size--
	}
	for i := len(t) - 1; i >= 0; i-- {
		if !path[i].RemoveChild(t[i]) {
			return
		}
	}
}

// Len returns the number of tuples in the set.
func (s *Set) Len() int {
	return s.size
}

// Sweep discards tuples whose weak keys died and returns how many were removed.
func (s *Set) Sweep() int {
	removed := s.root.Sweep()
	s.size -= removed
	return removed
}

// All returns an iterator over the tuples in the set.
// The order is stable only while the set is not mutated.
func (s *Set) All() iter.Seq[Tuple] {
	return func(yield func(Tuple) bool) {
		c := NewCursor(s.root, MinArity)
		for {
			t, _, ok := c.Next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

// bucket returns the node holding the last key of t as a direct child,
// creating missing nodes on the way. Entries discarded by sweeps along the
// path are subtracted from the size.
func (s *Set) bucket(t Tuple) *Node[struct{}] {
	node := s.root
	for _, k := range t[:len(t)-1] {
		before := node.filled
		child, dropped := node.ChildOrCreate(k)
		s.size += node.filled - before - dropped
		node = child
	}
	return node
}
