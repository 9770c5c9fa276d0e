package restaurant

import (
	"encoding/json"
	"fmt"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Restaurant is a single record of the remote feed.
//
// OperatingHours and Reviews are carried opaquely: the sync layer never
// interprets them, it only stores and forwards them.
type Restaurant struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Neighborhood   string            `json:"neighborhood"`
	CuisineType    string            `json:"cuisine_type"`
	Address        string            `json:"address"`
	LatLng         LatLng            `json:"latlng"`
	Photograph     string            `json:"photograph,omitempty"`
	OperatingHours json.RawMessage   `json:"operating_hours,omitempty"`
	Reviews        []json.RawMessage `json:"reviews,omitempty"`
}

// ReviewURL returns the relative detail page URL for a restaurant.
func ReviewURL(r Restaurant) string {
	return fmt.Sprintf("./review/%d", r.ID)
}

// ImageURL returns the image URL for a restaurant's photograph.
// Records without a photograph fall back to their ID as the image key.
func ImageURL(r Restaurant) string {
	key := r.Photograph
	if key == "" {
		key = fmt.Sprintf("%d", r.ID)
	}
	return "/img/" + key
}
