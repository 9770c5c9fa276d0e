package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/stream"
)

// Index names a secondary index of the restaurants table.
type Index string

const (
	IndexName         Index = "name"
	IndexNeighborhood Index = "neighborhood"
	IndexCuisineType  Index = "cuisine_type"
)

// indexColumns whitelists the columns ByIndex may filter on.
var indexColumns = map[Index]string{
	IndexName:         "name",
	IndexNeighborhood: "neighborhood",
	IndexCuisineType:  "cuisine_type",
}

// Get returns the record with the given ID, or a NOT_FOUND error.
func (s *Store) Get(ctx context.Context, id int64) (restaurant.Restaurant, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM restaurants WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return restaurant.Restaurant{}, restaurant.NewNotFoundError(id)
	}
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	return unmarshalBody(id, body)
}

// Exists reports whether a record with the given ID is cached.
func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check restaurant %d: %w", id, err)
	}
	return count > 0, nil
}

// Count returns the number of cached records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	return count, nil
}

// IsEmpty reports whether the cache holds no records.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// All streams every cached record ordered by ID.
func (s *Store) All(ctx context.Context) stream.Stream[restaurant.Restaurant] {
	return s.query(ctx, `SELECT id, body FROM restaurants ORDER BY id ASC`)
}

// ByIndex streams the records whose indexed column equals value, ordered by ID.
func (s *Store) ByIndex(ctx context.Context, idx Index, value string) stream.Stream[restaurant.Restaurant] {
	col, ok := indexColumns[idx]
	if !ok {
		return stream.Fail[restaurant.Restaurant](fmt.Errorf("unknown index %q", idx))
	}
	return s.query(ctx, fmt.Sprintf(`SELECT id, body FROM restaurants WHERE %s = ? ORDER BY id ASC`, col), value)
}

// query runs a (id, body) query lazily when the stream is consumed.
// Rows are closed when the consumer stops early. The store has a single
// connection, so callers must not issue other store calls while iterating.
func (s *Store) query(ctx context.Context, q string, args ...any) stream.Stream[restaurant.Restaurant] {
	return func(yield func(restaurant.Restaurant, error) bool) {
		rows, err := s.db.QueryContext(ctx, q, args...)
		if err != nil {
			yield(restaurant.Restaurant{}, fmt.Errorf("query restaurants: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id   int64
				body string
			)
			if err := rows.Scan(&id, &body); err != nil {
				yield(restaurant.Restaurant{}, fmt.Errorf("scan restaurant: %w", err))
				return
			}
			r, err := unmarshalBody(id, body)
			if err != nil {
				yield(restaurant.Restaurant{}, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(restaurant.Restaurant{}, fmt.Errorf("iterate restaurants: %w", err))
		}
	}
}
