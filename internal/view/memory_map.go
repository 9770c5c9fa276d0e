package view

import "sync"

// MemoryMap is a MapWidget that keeps markers in memory.
// Safe for concurrent use.
type MemoryMap struct {
	mu      sync.Mutex
	markers []*MemoryMarker
}

// NewMemoryMap creates an empty map.
func NewMemoryMap() *MemoryMap {
	return &MemoryMap{}
}

// CreateMarker implements MapWidget.
func (m *MemoryMap) CreateMarker(opts MarkerOptions) Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	mk := &MemoryMarker{opts: opts, onMap: true}
	m.markers = append(m.markers, mk)
	return mk
}

// Attached returns the markers still on the map, in creation order.
func (m *MemoryMap) Attached() []*MemoryMarker {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*MemoryMarker
	for _, mk := range m.markers {
		if mk.OnMap() {
			out = append(out, mk)
		}
	}
	return out
}

// Created returns the number of markers ever created.
func (m *MemoryMap) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.markers)
}

// MemoryMarker is a marker of a MemoryMap.
type MemoryMarker struct {
	mu       sync.Mutex
	opts     MarkerOptions
	onMap    bool
	handlers []func()
}

// Options returns the marker descriptor.
func (m *MemoryMarker) Options() MarkerOptions {
	return m.opts
}

// OnMap reports whether the marker is still attached.
func (m *MemoryMarker) OnMap() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onMap
}

// RemoveFromMap implements Marker.
func (m *MemoryMarker) RemoveFromMap() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMap = false
}

// OnClick implements Marker.
func (m *MemoryMarker) OnClick(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

// Click simulates a user click.
func (m *MemoryMarker) Click() {
	m.mu.Lock()
	handlers := append([]func(){}, m.handlers...)
	m.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}
