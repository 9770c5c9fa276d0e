package state

import (
	"sync"

	"github.com/roach88/restosync/internal/view"
)

// Markers is the marker list. Each marker is bound to one record of the
// candidate list.
type Markers struct {
	mu   sync.Mutex
	list []view.Marker
}

// Add tracks a marker.
func (m *Markers) Add(mk view.Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, mk)
}

// Len returns the number of tracked markers.
func (m *Markers) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.list)
}

// IsEmpty reports whether no markers are tracked.
func (m *Markers) IsEmpty() bool {
	return m.Len() == 0
}

// Clear removes every tracked marker from its map and forgets it.
func (m *Markers) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mk := range m.list {
		mk.RemoveFromMap()
	}
	m.list = nil
}

// Thumbnails is the reveal queue in candidate-list order.
type Thumbnails struct {
	mu    sync.Mutex
	queue []*view.Thumbnail
}

// Push appends a thumbnail.
func (q *Thumbnails) Push(t *view.Thumbnail) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, t)
}

// All returns a copy of the queue.
func (q *Thumbnails) All() []*view.Thumbnail {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*view.Thumbnail, len(q.queue))
	copy(out, q.queue)
	return out
}

// Pending returns the unrevealed thumbnails in order.
func (q *Thumbnails) Pending() []*view.Thumbnail {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*view.Thumbnail
	for _, t := range q.queue {
		if !t.Revealed() {
			out = append(out, t)
		}
	}
	return out
}

// Revealed returns how many thumbnails have been revealed.
func (q *Thumbnails) Revealed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, t := range q.queue {
		if t.Revealed() {
			n++
		}
	}
	return n
}

// Len returns the queue length.
func (q *Thumbnails) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Reset empties the queue.
func (q *Thumbnails) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = nil
}
