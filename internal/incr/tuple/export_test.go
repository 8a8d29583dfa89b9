package tuple

// NodeCount returns the number of trie nodes held by s, the root included.
func NodeCount(s *Set) int {
	return s.root.nodes()
}

// QueueNodeCount is NodeCount for the set behind q.
func QueueNodeCount(q *Queue) int {
	return q.set.root.nodes()
}

// SlotCount returns the number of child slots allocated in s, holes included.
func SlotCount(s *Set) int {
	return s.root.slots()
}

func (n *Node[V]) nodes() int {
	total := 1
	for _, c := range []*children[V]{n.strong, n.weak} {
		if c == nil {
			continue
		}
		for _, e := range c.entries {
			if e.node != nil {
				total += e.node.nodes()
			}
		}
	}
	return total
}

func (n *Node[V]) slots() int {
	total := 0
	for _, c := range []*children[V]{n.strong, n.weak} {
		if c == nil {
			continue
		}
		total += len(c.entries)
		for _, e := range c.entries {
			if e.node != nil {
				total += e.node.slots()
			}
		}
	}
	return total
}
