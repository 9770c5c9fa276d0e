package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/store"
)

// Restaurant builds a record with the given facets and filler fields.
func Restaurant(id int64, name, neighborhood, cuisine string) restaurant.Restaurant {
	return restaurant.Restaurant{
		ID:             id,
		Name:           name,
		Neighborhood:   neighborhood,
		CuisineType:    cuisine,
		Address:        fmt.Sprintf("%d Test St, New York, NY", id),
		LatLng:         restaurant.LatLng{Lat: 40.7 + float64(id)/1000, Lng: -73.9},
		Photograph:     fmt.Sprintf("%d.jpg", id),
		OperatingHours: json.RawMessage(`{"Monday":"5:30 pm - 11:00 pm"}`),
		Reviews:        []json.RawMessage{json.RawMessage(`{"name":"Steve","rating":4}`)},
	}
}

// Restaurants returns six records across three neighborhoods and three
// cuisines, with repeated facet values.
func Restaurants() []restaurant.Restaurant {
	return []restaurant.Restaurant{
		Restaurant(1, "Mission Chinese Food", "Manhattan", "Asian"),
		Restaurant(2, "Emily", "Brooklyn", "Pizza"),
		Restaurant(3, "Kang Ho Dong Baekjeong", "Manhattan", "Asian"),
		Restaurant(4, "Katz's Delicatessen", "Manhattan", "American"),
		Restaurant(5, "Roberta's Pizza", "Brooklyn", "Pizza"),
		Restaurant(6, "Casa Enrique", "Queens", "Mexican"),
	}
}

// OpenStore opens a store under t.TempDir and closes it on cleanup.
func OpenStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "restaurants.db"), opts...)
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Feed is a fake remote source serving a fixed record set.
type Feed struct {
	*httptest.Server
	records []restaurant.Restaurant
	down    atomic.Bool
	calls   atomic.Int32
}

// NewFeed starts a feed serving records and stops it on cleanup.
func NewFeed(t *testing.T, records []restaurant.Restaurant) *Feed {
	t.Helper()
	f := &Feed{records: records}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// SetDown makes every request fail with 503 while down is true.
func (f *Feed) SetDown(down bool) {
	f.down.Store(down)
}

// Calls returns the number of requests served.
func (f *Feed) Calls() int {
	return int(f.calls.Load())
}

func (f *Feed) serve(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if f.down.Load() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/restaurants/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if rest == "" {
		json.NewEncoder(w).Encode(f.records)
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	for _, rec := range f.records {
		if rec.ID == id {
			json.NewEncoder(w).Encode(rec)
			return
		}
	}
	http.NotFound(w, r)
}
