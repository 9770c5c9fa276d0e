package feed

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/roach88/restosync/internal/restaurant"
)

//go:embed postgres.sql
var postgresSchema string

// PostgresSource serves records from a Postgres "restaurants" table.
type PostgresSource struct {
	db *sqlx.DB
}

// pgRow maps one row of the restaurants table.
type pgRow struct {
	ID             int64          `db:"id"`
	Name           string         `db:"name"`
	Neighborhood   string         `db:"neighborhood"`
	CuisineType    string         `db:"cuisine_type"`
	Address        string         `db:"address"`
	Lat            float64        `db:"lat"`
	Lng            float64        `db:"lng"`
	Photograph     string         `db:"photograph"`
	OperatingHours sql.NullString `db:"operating_hours"`
	Reviews        sql.NullString `db:"reviews"`
}

const selectColumns = `SELECT id, name, neighborhood, cuisine_type, address, lat, lng, photograph, operating_hours, reviews FROM restaurants`

// OpenPostgres connects to dsn and creates the table if absent.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSource, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply feed schema: %w", err)
	}
	return &PostgresSource{db: db}, nil
}

// Close closes the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// All implements Source. Records are ordered by id.
func (s *PostgresSource) All(ctx context.Context) ([]restaurant.Restaurant, error) {
	var rows []pgRow
	if err := s.db.SelectContext(ctx, &rows, selectColumns+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select restaurants: %w", err)
	}

	out := make([]restaurant.Restaurant, 0, len(rows))
	for _, row := range rows {
		r, err := row.restaurant()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Get implements Source.
func (s *PostgresSource) Get(ctx context.Context, id int64) (restaurant.Restaurant, error) {
	var row pgRow
	err := s.db.GetContext(ctx, &row, selectColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return restaurant.Restaurant{}, restaurant.NewNotFoundError(id)
	}
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("select restaurant %d: %w", id, err)
	}
	return row.restaurant()
}

// Put inserts or replaces r.
func (s *PostgresSource) Put(ctx context.Context, r restaurant.Restaurant) error {
	reviews, err := json.Marshal(r.Reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews for %d: %w", r.ID, err)
	}
	hours := sql.NullString{String: string(r.OperatingHours), Valid: len(r.OperatingHours) > 0}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO restaurants (id, name, neighborhood, cuisine_type, address, lat, lng, photograph, operating_hours, reviews)
		VALUES (:id, :name, :neighborhood, :cuisine_type, :address, :lat, :lng, :photograph, :operating_hours, :reviews)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			neighborhood = EXCLUDED.neighborhood,
			cuisine_type = EXCLUDED.cuisine_type,
			address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			photograph = EXCLUDED.photograph,
			operating_hours = EXCLUDED.operating_hours,
			reviews = EXCLUDED.reviews`,
		pgRow{
			ID:             r.ID,
			Name:           r.Name,
			Neighborhood:   r.Neighborhood,
			CuisineType:    r.CuisineType,
			Address:        r.Address,
			Lat:            r.LatLng.Lat,
			Lng:            r.LatLng.Lng,
			Photograph:     r.Photograph,
			OperatingHours: hours,
			Reviews:        sql.NullString{String: string(reviews), Valid: true},
		})
	if err != nil {
		return fmt.Errorf("upsert restaurant %d: %w", r.ID, err)
	}
	return nil
}

func (row pgRow) restaurant() (restaurant.Restaurant, error) {
	r := restaurant.Restaurant{
		ID:             row.ID,
		Name:           row.Name,
		Neighborhood:   row.Neighborhood,
		CuisineType:    row.CuisineType,
		Address:        row.Address,
		LatLng:         restaurant.LatLng{Lat: row.Lat, Lng: row.Lng},
		Photograph:     row.Photograph,
	}
	if row.OperatingHours.Valid {
		r.OperatingHours = json.RawMessage(row.OperatingHours.String)
	}
	if row.Reviews.Valid {
		if err := json.Unmarshal([]byte(row.Reviews.String), &r.Reviews); err != nil {
			return restaurant.Restaurant{}, fmt.Errorf("decode reviews for %d: %w", row.ID, err)
		}
	}
	return r, nil
}
