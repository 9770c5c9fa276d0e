package view

import "github.com/roach88/restosync/internal/restaurant"

// MarkerOptions describes a map marker.
type MarkerOptions struct {
	Position restaurant.LatLng
	Title    string
	URL      string
}

// Marker is a marker placed on a map widget.
type Marker interface {
	RemoveFromMap()
	OnClick(handler func())
}

// MapWidget is the map collaborator. It renders what it is given; the
// caller owns the returned markers.
type MapWidget interface {
	CreateMarker(opts MarkerOptions) Marker
}

// Navigator follows a URL, e.g. by setting window.location.
type Navigator func(url string)

// MarkerFor returns the marker descriptor for r.
func MarkerFor(r restaurant.Restaurant) MarkerOptions {
	return MarkerOptions{
		Position: r.LatLng,
		Title:    r.Name,
		URL:      restaurant.ReviewURL(r),
	}
}

// AddMarker places a marker for r on m. Clicking it navigates to the
// restaurant's review page.
func AddMarker(r restaurant.Restaurant, m MapWidget, nav Navigator) Marker {
	opts := MarkerFor(r)
	mk := m.CreateMarker(opts)
	mk.OnClick(func() {
		if nav != nil {
			nav(opts.URL)
		}
	})
	return mk
}
