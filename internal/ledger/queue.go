package ledger

// expectationQueue is a FIFO of pending expectations.
//
// It is not safe for concurrent use on its own; Ledger serializes access
// with its mutex.
type expectationQueue struct {
	items []*Expectation
}

func newExpectationQueue() *expectationQueue {
	return &expectationQueue{
		items: make([]*Expectation, 0, 16),
	}
}

// Push adds an expectation to the back of the queue.
func (q *expectationQueue) Push(e *Expectation) {
	q.items = append(q.items, e)
}

// Pop removes and returns the front expectation.
// Returns (nil, false) if the queue is empty.
func (q *expectationQueue) Pop() (*Expectation, bool) {
	if len(q.items) == 0 {
		return nil, false
	}

	e := q.items[0]

	// Nil out the slot so the backing array does not pin consumed
	// expectations (and the callbacks they close over).
	q.items[0] = nil

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}

	return e, true
}

// Drain removes and returns every pending expectation in order.
func (q *expectationQueue) Drain() []*Expectation {
	if len(q.items) == 0 {
		return nil
	}
	out := make([]*Expectation, len(q.items))
	copy(out, q.items)
	clear(q.items)
	q.items = q.items[:0]
	return out
}

// Len returns the number of pending expectations.
func (q *expectationQueue) Len() int {
	return len(q.items)
}
