// Package view turns restaurant records into renderable artifacts: list
// thumbnails with deferred images, facet options and map markers.
//
// The DOM and the map widget are collaborators behind the Page and
// MapWidget interfaces. This package only produces HTML fragments and
// marker descriptors; in-memory implementations of both collaborators are
// provided for headless use and tests.
package view
