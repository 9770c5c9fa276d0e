package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/restosync/internal/config"
	"github.com/roach88/restosync/internal/controller"
	"github.com/roach88/restosync/internal/remote"
	"github.com/roach88/restosync/internal/store"
	"github.com/roach88/restosync/internal/view"
)

// session is a headless controller run: an in-memory page and map stand in
// for the browser.
type session struct {
	store   *store.Store
	page    *view.MemoryPage
	ctrl    *controller.Controller
	settled chan controller.Outcome

	cancel context.CancelFunc
	done   chan error
}

// openStore opens the cache. A STORE_INIT failure is logged and yields a
// nil store: the session keeps working from the network.
func openStore(cfg config.Config) *store.Store {
	st, err := store.Open(cfg.DBPath, store.WithVersion(cfg.SchemaVersion))
	if err != nil {
		slog.Warn("cache disabled", "path", cfg.DBPath, "error", err)
		return nil
	}
	return st
}

func newClient(cfg config.Config) *remote.Client {
	return remote.New(cfg.Endpoint, remote.WithTimeout(cfg.HTTPTimeout))
}

// startSession opens the cache and starts a controller's Run loop.
func startSession(ctx context.Context, cfg config.Config, opts ...controller.Option) *session {
	s := &session{
		store:   openStore(cfg),
		page:    view.NewMemoryPage(),
		settled: make(chan controller.Outcome, 4),
		done:    make(chan error, 1),
	}

	opts = append([]controller.Option{
		controller.WithViewport(cfg.Viewport),
		controller.WithTile(cfg.Tile),
		controller.WithBottomTolerance(cfg.BottomTolerance),
		controller.WithOfflineFallback(cfg.OfflineFallback),
		controller.WithSettledHook(func(o controller.Outcome) { s.settled <- o }),
	}, opts...)
	s.ctrl = controller.New(newClient(cfg), s.store, s.page, view.NewMemoryMap(), opts...)

	ctx, s.cancel = context.WithCancel(ctx)
	go func() { s.done <- s.ctrl.Run(ctx) }()
	return s
}

// await blocks until the current generation settles.
func (s *session) await(ctx context.Context) (controller.Outcome, error) {
	select {
	case o := <-s.settled:
		return o, nil
	case <-ctx.Done():
		return controller.Outcome{}, ctx.Err()
	}
}

// close drains queued events, flushes pending cache writes and closes the
// cache.
func (s *session) close() {
	s.ctrl.Stop()
	<-s.done
	s.cancel()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}
}
