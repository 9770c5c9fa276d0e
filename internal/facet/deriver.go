package facet

import (
	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/stream"
)

// Deriver is the push-driven form of DeriveFacet, for callers that receive
// records one at a time from an event loop rather than ranging over a
// stream. A Deriver lives for one derivation; start a new one on reset.
//
// Not safe for concurrent use.
type Deriver struct {
	field Field
	seen  *stream.Set[string]
}

// NewDeriver creates a Deriver for field.
func NewDeriver(field Field) *Deriver {
	return &Deriver{field: field, seen: stream.NewSet[string]()}
}

// Observe returns the record's field value and whether it is new.
func (d *Deriver) Observe(r restaurant.Restaurant) (string, bool) {
	v := d.field.Value(r)
	return v, d.seen.Add(v)
}

// Field returns the derived field.
func (d *Deriver) Field() Field {
	return d.field
}

// Values returns the distinct values observed so far, in first-seen order.
func (d *Deriver) Values() []string {
	return d.seen.Values()
}
