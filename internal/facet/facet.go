// Package facet derives distinct neighborhood and cuisine lists from a
// record stream and filters records by a (cuisine, neighborhood) selection.
//
// Both operations are order preserving and propagate upstream errors
// unchanged. Neither retries.
package facet

import (
	"fmt"

	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/stream"
)

// All is the wildcard selection value. It disables the corresponding
// predicate regardless of the record's value.
const All = "all"

// Field names a facet field of a restaurant record.
type Field int

const (
	// Neighborhood selects Restaurant.Neighborhood.
	Neighborhood Field = iota + 1
	// Cuisine selects Restaurant.CuisineType.
	Cuisine
)

// Value projects r onto the field.
func (f Field) Value(r restaurant.Restaurant) string {
	switch f {
	case Neighborhood:
		return r.Neighborhood
	case Cuisine:
		return r.CuisineType
	default:
		panic(fmt.Sprintf("facet: unknown field %d", int(f)))
	}
}

// String returns the record field name.
func (f Field) String() string {
	switch f {
	case Neighborhood:
		return "neighborhood"
	case Cuisine:
		return "cuisine_type"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// DeriveFacet yields each distinct value of field the first time it is
// seen, in arrival order. The seen set is scoped to one consumption of the
// returned stream.
func DeriveFacet(records stream.Stream[restaurant.Restaurant], field Field) stream.Stream[string] {
	return stream.Distinct(stream.Map(records, field.Value))
}

// FilterByFacets yields the records matching the selection. Either value may
// be All.
func FilterByFacets(records stream.Stream[restaurant.Restaurant], cuisine, neighborhood string) stream.Stream[restaurant.Restaurant] {
	return stream.Filter(records, Selection{Cuisine: cuisine, Neighborhood: neighborhood}.Match)
}

// Selection is a (cuisine, neighborhood) filter pair.
type Selection struct {
	Cuisine      string
	Neighborhood string
}

// Everything is the selection that matches every record.
var Everything = Selection{Cuisine: All, Neighborhood: All}

// Match reports whether r satisfies both predicates.
func (s Selection) Match(r restaurant.Restaurant) bool {
	return (s.Cuisine == All || r.CuisineType == s.Cuisine) &&
		(s.Neighborhood == All || r.Neighborhood == s.Neighborhood)
}

// IsEverything reports whether both values are wildcards.
func (s Selection) IsEverything() bool {
	return s.Cuisine == All && s.Neighborhood == All
}
