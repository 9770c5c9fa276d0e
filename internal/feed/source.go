package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/roach88/restosync/internal/restaurant"
)

// Source provides the records a feed serves.
type Source interface {
	All(ctx context.Context) ([]restaurant.Restaurant, error)
	// Get returns a NotFoundError for unknown ids.
	Get(ctx context.Context, id int64) (restaurant.Restaurant, error)
}

// FileSource serves records loaded once from a JSON file.
type FileSource struct {
	records []restaurant.Restaurant
	byID    map[int64]int
}

// LoadFile reads a JSON file holding either an array of records or an
// object with a "restaurants" array.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}

	var records []restaurant.Restaurant
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Restaurants []restaurant.Restaurant `json:"restaurants"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("parse feed file %s: %w", path, err)
		}
		records = wrapped.Restaurants
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse feed file %s: %w", path, err)
	}

	return NewFileSource(records), nil
}

// NewFileSource serves records in the given order.
func NewFileSource(records []restaurant.Restaurant) *FileSource {
	s := &FileSource{records: records, byID: make(map[int64]int, len(records))}
	for i, r := range records {
		s.byID[r.ID] = i
	}
	return s
}

// All implements Source.
func (s *FileSource) All(context.Context) ([]restaurant.Restaurant, error) {
	return s.records, nil
}

// Get implements Source.
func (s *FileSource) Get(_ context.Context, id int64) (restaurant.Restaurant, error) {
	i, ok := s.byID[id]
	if !ok {
		return restaurant.Restaurant{}, restaurant.NewNotFoundError(id)
	}
	return s.records[i], nil
}
