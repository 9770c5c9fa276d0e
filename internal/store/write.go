package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/roach88/restosync/internal/restaurant"
)

// Upsert inserts or replaces a record keyed by its ID and returns the key.
//
// A record with ID 0 gets an auto-incremented key. Any other ID replaces the
// existing row wholesale (last write wins). Failures are STORE_WRITE errors.
func (s *Store) Upsert(ctx context.Context, r restaurant.Restaurant) (int64, error) {
	body, err := marshalBody(r)
	if err != nil {
		return 0, restaurant.NewStoreWriteError(r.ID, err)
	}

	var id any
	if r.ID != 0 {
		id = r.ID
	}

	var result sql.Result
	if s.version >= 2 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO restaurants (id, name, neighborhood, cuisine_type, body, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				neighborhood = excluded.neighborhood,
				cuisine_type = excluded.cuisine_type,
				body = excluded.body,
				updated_at = excluded.updated_at
		`, id, r.Name, r.Neighborhood, r.CuisineType, body, time.Now().UnixMilli())
	} else {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO restaurants (id, name, neighborhood, cuisine_type, body)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				neighborhood = excluded.neighborhood,
				cuisine_type = excluded.cuisine_type,
				body = excluded.body
		`, id, r.Name, r.Neighborhood, r.CuisineType, body)
	}
	if err != nil {
		return 0, restaurant.NewStoreWriteError(r.ID, err)
	}

	if r.ID != 0 {
		return r.ID, nil
	}
	key, err := result.LastInsertId()
	if err != nil {
		return 0, restaurant.NewStoreWriteError(r.ID, err)
	}
	return key, nil
}
