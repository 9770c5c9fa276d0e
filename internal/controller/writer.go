package controller

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/store"
)

// writer persists records behind the pipeline. Write failures are logged
// and counted; they never reach the record stream.
type writer struct {
	store *store.Store
	ch    chan restaurant.Restaurant
	done  chan struct{}

	persisted atomic.Int64
	failed    atomic.Int64
}

func newWriter(st *store.Store, buffer int) *writer {
	return &writer{
		store: st,
		ch:    make(chan restaurant.Restaurant, buffer),
		done:  make(chan struct{}),
	}
}

// start launches the writer goroutine. Pending writes survive ctx
// cancellation so close can flush them.
func (w *writer) start(ctx context.Context) {
	if w.store == nil {
		close(w.done)
		return
	}
	go w.run(context.WithoutCancel(ctx))
}

// enqueue hands r to the writer. Must not be called after close.
func (w *writer) enqueue(r restaurant.Restaurant) {
	if w.store == nil {
		return
	}
	w.ch <- r
}

// close stops accepting records and waits for pending writes.
func (w *writer) close() {
	if w.store != nil {
		close(w.ch)
	}
	<-w.done
}

func (w *writer) run(ctx context.Context) {
	defer close(w.done)
	for r := range w.ch {
		if _, err := w.store.Upsert(ctx, r); err != nil {
			w.failed.Add(1)
			slog.Warn("cache write failed", "restaurant_id", r.ID, "error", err)
			continue
		}
		w.persisted.Add(1)
	}
}
