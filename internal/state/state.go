package state

import (
	"github.com/roach88/restosync/internal/facet"
	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/store"
	"github.com/roach88/restosync/internal/view"
)

// State is the application-state aggregate.
type State struct {
	// Records is the current candidate list in arrival order.
	Records []restaurant.Restaurant

	// Selection is the active facet pair.
	Selection facet.Selection

	// Generation tags the load or selection the candidate list belongs to.
	Generation string

	// Loading is true while a fetch is in flight.
	Loading bool

	// Facet lists in first-seen order.
	Neighborhoods []string
	Cuisines      []string

	// External resource handles.
	Map   view.MapWidget
	Store *store.Store

	// Owned containers. Mutated in place through their methods.
	Markers    *Markers
	Thumbnails *Thumbnails
}

// New returns a State with empty owned containers and an "all"/"all"
// selection.
func New(m view.MapWidget, s *store.Store) State {
	return State{
		Selection:  facet.Everything,
		Map:        m,
		Store:      s,
		Markers:    &Markers{},
		Thumbnails: &Thumbnails{},
	}
}

// Field is an optional patch value. The zero Field is absent.
type Field[T any] struct {
	v  T
	ok bool
}

// Some returns a present Field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{v: v, ok: true}
}

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) {
	return f.v, f.ok
}

func (f Field[T]) or(current T) T {
	if f.ok {
		return f.v
	}
	return current
}

// Patch is a partial State. Markers and Thumbnails are deliberately absent.
type Patch struct {
	Records       Field[[]restaurant.Restaurant]
	Selection     Field[facet.Selection]
	Generation    Field[string]
	Loading       Field[bool]
	Neighborhoods Field[[]string]
	Cuisines      Field[[]string]
	Map           Field[view.MapWidget]
	Store         Field[*store.Store]
}

// Apply merges p into current and returns the result. current is not
// modified.
func Apply(current State, p Patch) State {
	next := current
	next.Records = p.Records.or(current.Records)
	next.Selection = p.Selection.or(current.Selection)
	next.Generation = p.Generation.or(current.Generation)
	next.Loading = p.Loading.or(current.Loading)
	next.Neighborhoods = p.Neighborhoods.or(current.Neighborhoods)
	next.Cuisines = p.Cuisines.or(current.Cuisines)
	next.Map = p.Map.or(current.Map)
	next.Store = p.Store.or(current.Store)
	return next
}
