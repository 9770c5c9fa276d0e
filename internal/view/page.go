package view

import "sync"

// Slot is a stable logical name of a page region the materializer writes to.
type Slot string

const (
	SlotNeighborhoods Slot = "neighborhoods-select"
	SlotCuisines      Slot = "cuisines-select"
	SlotList          Slot = "restaurants-list"
	SlotMap           Slot = "map"
)

// Page is the DOM collaborator.
type Page interface {
	// Append inserts an HTML fragment at the end of slot.
	Append(slot Slot, html string)
	// Clear removes every fragment from slot.
	Clear(slot Slot)
}

// MemoryPage is a Page that records fragments per slot.
// Safe for concurrent use.
type MemoryPage struct {
	mu    sync.Mutex
	slots map[Slot][]string
}

// NewMemoryPage creates an empty page.
func NewMemoryPage() *MemoryPage {
	return &MemoryPage{slots: make(map[Slot][]string)}
}

// Append implements Page.
func (p *MemoryPage) Append(slot Slot, html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots[slot] = append(p.slots[slot], html)
}

// Clear implements Page.
func (p *MemoryPage) Clear(slot Slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.slots, slot)
}

// Fragments returns a copy of the fragments in slot.
func (p *MemoryPage) Fragments(slot Slot) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.slots[slot]))
	copy(out, p.slots[slot])
	return out
}
