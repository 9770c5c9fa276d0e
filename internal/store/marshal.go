package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/restosync/internal/restaurant"
)

// marshalBody serializes a record for the body column.
func marshalBody(r restaurant.Restaurant) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}
	return string(b), nil
}

// unmarshalBody restores a record from the body column. The id column is
// authoritative so auto-assigned keys survive the round trip.
func unmarshalBody(id int64, body string) (restaurant.Restaurant, error) {
	var r restaurant.Restaurant
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("unmarshal body for id %d: %w", id, err)
	}
	r.ID = id
	return r, nil
}
