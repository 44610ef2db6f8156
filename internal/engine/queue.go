package engine

import (
	"container/heap"
	"sync"
)

// eventQueue is the single shared, thread-safe queue joining the Producer,
// the courier timer callbacks, and the Engine.
//
// It runs in one of two orderings, fixed at construction:
//   - FIFO (wall-clock mode): strict insertion order, keys ignored.
//   - keyed (logical-priority mode): min-heap on Event.Key, ties broken by
//     insertion sequence so equal-key events from one actor keep their
//     submission order.
//
// The queue is unbounded: the Producer may outrun the Engine and the queue
// absorbs it (backpressure is deliberately not enforced).
//
// Thread-safety covers concurrent insertion by the Producer and timer
// callbacks while the Engine (single consumer) removes. A buffered signal
// channel lets the Engine wait for availability without spinning.
type eventQueue struct {
	mu     sync.Mutex
	byKey  bool
	fifo   []Event
	heaped eventHeap
	seq    uint64
	closed bool
	signal chan struct{} // buffered, size 1; send coalesces
}

func newEventQueue(byKey bool) *eventQueue {
	return &eventQueue{
		byKey:  byKey,
		fifo:   make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event. Safe from any goroutine.
// Returns false if the queue has been closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.seq++
	e.seq = q.seq
	if q.byKey {
		heap.Push(&q.heaped, e)
	} else {
		q.fifo = append(q.fifo, e)
	}

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front event (lowest key in keyed mode) without
// blocking. Returns false if the queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.byKey {
		if q.heaped.Len() == 0 {
			return Event{}, false
		}
		return heap.Pop(&q.heaped).(Event), true
	}

	if len(q.fifo) == 0 {
		return Event{}, false
	}
	e := q.fifo[0]
	// Nil out the slot so the backing array does not retain the event's
	// pointers until reallocation.
	q.fifo[0] = Event{}
	if len(q.fifo) == 1 {
		q.fifo = q.fifo[:0]
	} else {
		q.fifo = q.fifo[1:]
	}
	return e, true
}

// Wait returns a channel that signals when events may be available.
// Pair with TryDequeue in a loop; wakeups can be spurious after coalescing.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.byKey {
		return q.heaped.Len()
	}
	return len(q.fifo)
}

// Closed reports whether the queue no longer accepts events.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue as accepting no further events and wakes waiters.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// eventHeap orders events by Key, then by insertion sequence.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Key != h[j].Key {
		return h[i].Key < h[j].Key
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(Event)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = Event{}
	*h = old[:n-1]
	return e
}
