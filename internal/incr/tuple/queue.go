package tuple

// Queue is a work queue of distinct tuples.
//
// Dequeue order is unspecified: elements come out in trie order, and
// elements enqueued while a drain is in progress may be returned before or
// after older ones. Every element is returned exactly once per enqueue.
type Queue struct {
	set    *Set
	cursor *Cursor[struct{}]
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{set: NewSet()}
}

// Enqueue adds t unless it is already queued.
// It returns domain.ErrInvalidArity if t has fewer than MinArity keys.
func (q *Queue) Enqueue(t Tuple) error {
	return q.set.Add(t)
}

// Dequeue removes and returns one tuple. ok is false when the queue is empty.
func (q *Queue) Dequeue() (t Tuple, ok bool) {
	for range 2 {
		if q.cursor == nil {
			q.cursor = NewCursor(q.set.root, MinArity)
		}
		if t, _, ok = q.cursor.Next(); ok {
			q.set.remove(t)
			return t, true
		}
		// The cursor only knows the children it snapshotted; start over to
		// see what was enqueued since.
		q.cursor = nil
	}
	return nil, false
}

// Has reports whether t is queued.
func (q *Queue) Has(t Tuple) bool {
	return q.set.Has(t)
}

// Delete removes t from the queue without returning it.
func (q *Queue) Delete(t Tuple) error {
	return q.set.Delete(t)
}

// Len returns the number of queued tuples.
func (q *Queue) Len() int {
	return q.set.Len()
}
