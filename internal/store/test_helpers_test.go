package store

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/roach88/restosync/internal/restaurant"
)

// createTestStore creates a new store under a temp dir for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRestaurant creates a record with minimal required fields.
func createTestRestaurant(id int64, name, neighborhood, cuisine string) restaurant.Restaurant {
	return restaurant.Restaurant{
		ID:             id,
		Name:           name,
		Neighborhood:   neighborhood,
		CuisineType:    cuisine,
		Address:        "1 Test St",
		LatLng:         restaurant.LatLng{Lat: 40.7, Lng: -73.9},
		Photograph:     "1",
		OperatingHours: json.RawMessage(`{"Monday":"5:30 pm - 11:00 pm"}`),
		Reviews:        []json.RawMessage{json.RawMessage(`{"name":"Steve","rating":4}`)},
	}
}
