package controller

import (
	"context"
	"log/slog"

	"github.com/roach88/restosync/internal/facet"
	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/store"
	"github.com/roach88/restosync/internal/stream"
)

// fetch streams one generation's records into the event queue.
//
// When the remote source fails before emitting anything and offline
// fallback is on, the cached records are replayed through the same
// pipeline instead. Replayed records are not written back.
func (c *Controller) fetch(ctx context.Context, gen string, sel facet.Selection, deriveFacets bool) {
	defer c.fetches.Done()

	passed, emitted, err := c.pump(gen, sel, deriveFacets, true, c.source.FetchAll(ctx))
	if err != nil && emitted == 0 && c.offline && c.store != nil && ctx.Err() == nil {
		slog.Warn("remote fetch failed, replaying cache", "generation", gen, "error", err)

		cpassed, cemitted, cerr := c.pump(gen, sel, deriveFacets, false, c.cached(ctx, sel, deriveFacets))
		switch {
		case cerr != nil:
			slog.Error("cache replay failed", "generation", gen, "error", cerr)
		case cemitted == 0 && c.cacheEmpty(ctx):
			slog.Warn("cache replay found no records", "generation", gen)
		default:
			c.queue.Enqueue(Event{Type: EventFetchDone, Generation: gen, Count: cpassed, Cached: true})
			return
		}
		passed = cpassed
	}

	if err != nil {
		c.queue.Enqueue(Event{Type: EventFetchFailed, Generation: gen, Count: passed, Err: err})
		return
	}
	c.queue.Enqueue(Event{Type: EventFetchDone, Generation: gen, Count: passed})
}

// cached returns the records to replay. A load replays everything so the
// facet lists stay complete; a select pinning one facet reads that index
// and leaves the other facet to the pipeline filter.
func (c *Controller) cached(ctx context.Context, sel facet.Selection, deriveFacets bool) stream.Stream[restaurant.Restaurant] {
	switch {
	case deriveFacets:
	case sel.Cuisine != facet.All:
		return c.store.ByIndex(ctx, store.IndexCuisineType, sel.Cuisine)
	case sel.Neighborhood != facet.All:
		return c.store.ByIndex(ctx, store.IndexNeighborhood, sel.Neighborhood)
	}
	return c.store.All(ctx)
}

// cacheEmpty reports whether the cache holds nothing usable.
func (c *Controller) cacheEmpty(ctx context.Context) bool {
	empty, err := c.store.IsEmpty(ctx)
	return err != nil || empty
}

// pump runs records through the pipeline: every record is persisted (when
// persist is set) and offered for facet derivation, then filtered by sel.
// It returns how many records passed the filter and how many were emitted
// by the source.
func (c *Controller) pump(gen string, sel facet.Selection, deriveFacets, persist bool, records stream.Stream[restaurant.Restaurant]) (passed, emitted int, err error) {
	tapped := stream.Tap(records, func(r restaurant.Restaurant) {
		emitted++
		if persist {
			c.writer.enqueue(r)
		}
		if deriveFacets {
			c.queue.Enqueue(Event{Type: EventFacet, Generation: gen, Record: r})
		}
	})

	for r, err := range facet.FilterByFacets(tapped, sel.Cuisine, sel.Neighborhood) {
		if err != nil {
			return passed, emitted, err
		}
		passed++
		c.queue.Enqueue(Event{Type: EventRecord, Generation: gen, Record: r})
	}
	return passed, emitted, nil
}
