package state

import "sync"

// Container owns the current State and applies one patch at a time.
type Container struct {
	mu  sync.Mutex
	cur State
}

// NewContainer wraps initial. Missing owned containers are created.
func NewContainer(initial State) *Container {
	if initial.Markers == nil {
		initial.Markers = &Markers{}
	}
	if initial.Thumbnails == nil {
		initial.Thumbnails = &Thumbnails{}
	}
	return &Container{cur: initial}
}

// Snapshot returns the current State.
func (c *Container) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Patch merges p into the current State and returns the result.
func (c *Container) Patch(p Patch) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = Apply(c.cur, p)
	return c.cur
}

// Update computes a patch from the current State and applies it without
// another patch interleaving.
func (c *Container) Update(fn func(State) Patch) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = Apply(c.cur, fn(c.cur))
	return c.cur
}

// Reset clears the candidate list, empties the thumbnail queue and removes
// every marker from the map. It completes before any later patch applies.
// Facet lists, handles and the store are untouched.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur.Markers.Clear()
	c.cur.Thumbnails.Reset()
	c.cur.Records = nil
}
