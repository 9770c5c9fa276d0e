package controller

import (
	"sync"

	"github.com/roach88/restosync/internal/facet"
	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/view"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventLoad starts a full load: facets and candidate list.
	EventLoad EventType = iota + 1
	// EventSelect changes the facet selection and refills the candidate list.
	EventSelect
	// EventFacet carries one unfiltered record for facet derivation.
	EventFacet
	// EventRecord carries one record that passed the active filter.
	EventRecord
	// EventFetchDone ends a generation's record stream.
	EventFetchDone
	// EventFetchFailed ends a generation's record stream with an error.
	EventFetchFailed
	// EventScroll carries one scroll observation.
	EventScroll
)

func (t EventType) String() string {
	switch t {
	case EventLoad:
		return "load"
	case EventSelect:
		return "select"
	case EventFacet:
		return "facet"
	case EventRecord:
		return "record"
	case EventFetchDone:
		return "fetch_done"
	case EventFetchFailed:
		return "fetch_failed"
	case EventScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Event is one unit of work for the Run loop.
type Event struct {
	Type       EventType
	Generation string
	Selection  facet.Selection
	Record     restaurant.Restaurant
	Scroll     view.Scroll
	Cached     bool // records were replayed from the store
	Count      int  // records emitted, on FetchDone
	Err        error
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so fetch goroutines never block on a busy loop.
// The signal channel enables context-aware waiting in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking: the size-1 buffer coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	q.events[0] = Event{} // release references held by the backing array

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued and wakes waiters.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
