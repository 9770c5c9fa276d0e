package controller

import (
	"context"
	"log/slog"

	"github.com/roach88/restosync/internal/restaurant"
)

// Detail looks up one record. A network failure falls back to the cache;
// a miss there is a NotFoundError.
func (c *Controller) Detail(ctx context.Context, id int64) (restaurant.Restaurant, error) {
	r, err := c.source.FetchByID(ctx, id)
	if err == nil {
		return r, nil
	}
	if !restaurant.IsNetworkError(err) || c.store == nil {
		return restaurant.Restaurant{}, err
	}

	slog.Warn("remote lookup failed, trying cache", "restaurant_id", id, "error", err)
	cached, cerr := c.store.Get(ctx, id)
	if cerr != nil {
		if restaurant.IsNotFound(cerr) {
			return restaurant.Restaurant{}, cerr
		}
		slog.Error("cache lookup failed", "restaurant_id", id, "error", cerr)
		return restaurant.Restaurant{}, err
	}
	return cached, nil
}
