package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/restosync/internal/facet"
	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/state"
	"github.com/roach88/restosync/internal/store"
	"github.com/roach88/restosync/internal/stream"
	"github.com/roach88/restosync/internal/view"
)

// Source is the remote record source. Implemented by *remote.Client.
type Source interface {
	FetchAll(ctx context.Context) stream.Stream[restaurant.Restaurant]
	FetchByID(ctx context.Context, id int64) (restaurant.Restaurant, error)
}

// DefaultBottomTolerance is the scroll-bottom tolerance in pixels.
const DefaultBottomTolerance = 1.0

// DefaultWriteBuffer is the write-behind queue capacity.
const DefaultWriteBuffer = 256

var (
	DefaultViewport = view.Geometry{Width: 720, Height: 800}
	DefaultTile     = view.Geometry{Width: 180, Height: 200}
)

// Outcome reports how a generation's record stream ended.
type Outcome struct {
	Generation string
	Records    int  // records that passed the filter
	Cached     bool // records came from the store after a remote failure
	Err        error
}

// Stats counts write-behind results.
type Stats struct {
	Persisted   int64
	WriteErrors int64
}

// Controller is the single-writer event loop of the sync layer.
//
// Thread-safety model:
//   - Load, Select, Scroll, Stop, State, Stats, Detail: safe from any goroutine
//   - Run: must be called from exactly one goroutine, once
type Controller struct {
	source Source
	store  *store.Store
	page   view.Page
	state  *state.Container
	queue  *eventQueue
	gens   GenerationGenerator
	writer *writer

	viewport  view.Geometry
	tile      view.Geometry
	tolerance float64
	offline   bool
	nav       view.Navigator
	onSettled func(Outcome)

	// Owned by the Run goroutine.
	current       string // generation of the candidate list
	facetGen      string // generation of the last load
	revealed      int
	neighborhoods *facet.Deriver
	cuisines      *facet.Deriver

	fetchCtx    context.Context
	stopFetches context.CancelFunc
	fetches     sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithViewport sets the initial list viewport. Scroll events carrying a
// non-zero viewport replace it.
func WithViewport(g view.Geometry) Option {
	return func(c *Controller) { c.viewport = g }
}

// WithTile sets the thumbnail tile size.
func WithTile(g view.Geometry) Option {
	return func(c *Controller) { c.tile = g }
}

// WithBottomTolerance sets how many pixels from the document bottom still
// count as at-bottom. Zero demands exact equality.
func WithBottomTolerance(px float64) Option {
	return func(c *Controller) { c.tolerance = px }
}

// WithOfflineFallback enables or disables replaying cached records when the
// remote source fails before emitting anything. Enabled by default.
func WithOfflineFallback(enabled bool) Option {
	return func(c *Controller) { c.offline = enabled }
}

// WithNavigator sets the handler for marker clicks.
func WithNavigator(nav view.Navigator) Option {
	return func(c *Controller) { c.nav = nav }
}

// WithGenerationGenerator replaces the UUIDv7 generation tokens.
func WithGenerationGenerator(g GenerationGenerator) Option {
	return func(c *Controller) { c.gens = g }
}

// WithSettledHook registers fn to run on the loop goroutine whenever the
// current generation's record stream ends.
func WithSettledHook(fn func(Outcome)) Option {
	return func(c *Controller) { c.onSettled = fn }
}

// New creates a Controller. st and m may be nil: without a store nothing is
// cached, without a map no markers are created. A nil page is replaced by an
// in-memory one.
func New(src Source, st *store.Store, page view.Page, m view.MapWidget, opts ...Option) *Controller {
	if page == nil {
		page = view.NewMemoryPage()
	}
	c := &Controller{
		source:    src,
		store:     st,
		page:      page,
		state:     state.NewContainer(state.New(m, st)),
		queue:     newEventQueue(),
		gens:      UUIDv7Generator{},
		writer:    newWriter(st, DefaultWriteBuffer),
		viewport:  DefaultViewport,
		tile:      DefaultTile,
		tolerance: DefaultBottomTolerance,
		offline:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load enqueues a full load: facet lists are rebuilt and the candidate list
// is refilled for the active selection.
// Returns false if the controller has been stopped.
func (c *Controller) Load() bool {
	return c.queue.Enqueue(Event{Type: EventLoad})
}

// Select enqueues a facet selection change. Either value may be facet.All.
// Returns false if the controller has been stopped.
func (c *Controller) Select(cuisine, neighborhood string) bool {
	return c.queue.Enqueue(Event{
		Type:      EventSelect,
		Selection: facet.Selection{Cuisine: cuisine, Neighborhood: neighborhood},
	})
}

// Scroll enqueues a scroll observation.
// Returns false if the controller has been stopped.
func (c *Controller) Scroll(s view.Scroll) bool {
	return c.queue.Enqueue(Event{Type: EventScroll, Scroll: s})
}

// State returns a snapshot of the application state.
func (c *Controller) State() state.State {
	return c.state.Snapshot()
}

// Page returns the page the controller writes to.
func (c *Controller) Page() view.Page {
	return c.page
}

// Stats returns write-behind counters.
func (c *Controller) Stats() Stats {
	return Stats{
		Persisted:   c.writer.persisted.Load(),
		WriteErrors: c.writer.failed.Load(),
	}
}

// Stop closes the event queue. Run drains what is already queued, then
// returns.
func (c *Controller) Stop() {
	c.queue.Close()
}

// Run starts the event loop. It blocks until ctx is cancelled or Stop is
// called. On return in-flight fetches are cancelled and pending cache
// writes are flushed.
//
// Event processing errors are logged with the event's context and the loop
// continues.
func (c *Controller) Run(ctx context.Context) error {
	slog.Info("controller starting")
	c.logCacheState(ctx)
	c.fetchCtx, c.stopFetches = context.WithCancel(ctx)
	c.writer.start(ctx)
	defer c.shutdown()

	for {
		event, ok := c.queue.TryDequeue()
		if ok {
			if err := c.processEvent(ctx, event); err != nil {
				logEventError(event, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("controller stopping: context cancelled")
			c.queue.Close()
			return ctx.Err()

		case <-c.queue.Wait():
			if c.queue.Closed() && c.queue.Len() == 0 {
				slog.Info("controller stopping: queue closed")
				return nil
			}
		}
	}
}

func (c *Controller) shutdown() {
	c.stopFetches()
	c.fetches.Wait()
	c.writer.close()
	slog.Debug("controller stopped",
		"persisted", c.writer.persisted.Load(),
		"write_errors", c.writer.failed.Load(),
	)
}

func (c *Controller) logCacheState(ctx context.Context) {
	if c.store == nil {
		slog.Info("no cache configured")
		return
	}
	empty, err := c.store.IsEmpty(ctx)
	if err != nil {
		slog.Warn("cache unavailable", "error", err)
		return
	}
	if empty {
		slog.Info("cold start: cache is empty", "path", c.store.Path())
		return
	}
	n, err := c.store.Count(ctx)
	if err != nil {
		slog.Warn("cache unavailable", "error", err)
		return
	}
	slog.Info("warm start", "path", c.store.Path(), "cached", n)
}

// processEvent routes an event to its handler.
// Called only from the Run goroutine.
func (c *Controller) processEvent(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventLoad:
		c.processLoad()
		return nil
	case EventSelect:
		c.begin(ev.Selection, false)
		return nil
	case EventFacet:
		c.processFacet(ev)
		return nil
	case EventRecord:
		c.processRecord(ev)
		return nil
	case EventFetchDone:
		c.settle(ev)
		return nil
	case EventFetchFailed:
		if ev.Generation != c.current {
			return nil
		}
		c.settle(ev)
		return fmt.Errorf("fetch failed: %w", ev.Err)
	case EventScroll:
		c.processScroll(ev.Scroll)
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", ev.Type)
	}
}

func (c *Controller) processLoad() {
	c.neighborhoods = facet.NewDeriver(facet.Neighborhood)
	c.cuisines = facet.NewDeriver(facet.Cuisine)
	c.page.Clear(view.SlotNeighborhoods)
	c.page.Clear(view.SlotCuisines)
	c.begin(c.state.Snapshot().Selection, true)
}

// begin resets the candidate list and starts a new generation's fetch.
// A superseded fetch is not cancelled: it runs to completion and its
// events are discarded on arrival, except facet events of the latest load.
func (c *Controller) begin(sel facet.Selection, deriveFacets bool) {
	gen := c.gens.Generate()
	c.current = gen
	c.revealed = 0
	if deriveFacets {
		c.facetGen = gen
	}

	c.state.Reset()
	c.page.Clear(view.SlotList)

	p := state.Patch{
		Generation: state.Some(gen),
		Selection:  state.Some(sel),
		Loading:    state.Some(true),
	}
	if deriveFacets {
		p.Neighborhoods = state.Some([]string(nil))
		p.Cuisines = state.Some([]string(nil))
	}
	c.state.Patch(p)

	slog.Info("generation started",
		"generation", gen,
		"cuisine", sel.Cuisine,
		"neighborhood", sel.Neighborhood,
		"derive_facets", deriveFacets,
	)

	c.fetches.Add(1)
	go c.fetch(c.fetchCtx, gen, sel, deriveFacets)
}

func (c *Controller) processFacet(ev Event) {
	if ev.Generation != c.facetGen || c.neighborhoods == nil {
		return
	}

	changed := false
	for _, d := range []*facet.Deriver{c.neighborhoods, c.cuisines} {
		v, ok := d.Observe(ev.Record)
		if !ok {
			continue
		}
		changed = true
		c.page.Append(facetSlot(d.Field()), view.Option(v))
	}
	if changed {
		c.state.Patch(state.Patch{
			Neighborhoods: state.Some(c.neighborhoods.Values()),
			Cuisines:      state.Some(c.cuisines.Values()),
		})
	}
}

func facetSlot(f facet.Field) view.Slot {
	if f == facet.Neighborhood {
		return view.SlotNeighborhoods
	}
	return view.SlotCuisines
}

func (c *Controller) processRecord(ev Event) {
	if ev.Generation != c.current {
		slog.Debug("discarding stale record",
			"restaurant_id", ev.Record.ID,
			"generation", ev.Generation,
			"current", c.current,
		)
		return
	}

	r := ev.Record
	s := c.state.Update(func(s state.State) state.Patch {
		return state.Patch{Records: state.Some(append(s.Records, r))}
	})

	th := view.NewThumbnail(r)
	s.Thumbnails.Push(th)
	if s.Map != nil {
		s.Markers.Add(view.AddMarker(r, s.Map, c.nav))
	}

	// Fill the first viewport without waiting for a scroll.
	if c.revealed < view.RevealCount(c.viewport, c.tile) {
		c.reveal(th)
	}
}

func (c *Controller) processScroll(s view.Scroll) {
	if s.Viewport.Width > 0 && s.Viewport.Height > 0 {
		c.viewport = s.Viewport
	}
	if !view.AtBottom(s, c.tolerance) {
		return
	}

	batch := view.ComputeRevealBatch(c.viewport, c.tile, c.state.Snapshot().Thumbnails.Pending())
	for _, th := range batch {
		c.reveal(th)
	}
	slog.Debug("reveal batch applied", "generation", c.current, "revealed", len(batch))
}

func (c *Controller) reveal(th *view.Thumbnail) {
	html, ok := th.Reveal()
	if !ok {
		return
	}
	c.page.Append(view.SlotList, html)
	c.revealed++
}

func (c *Controller) settle(ev Event) {
	if ev.Generation != c.current {
		return
	}
	c.state.Patch(state.Patch{Loading: state.Some(false)})

	if ev.Err == nil {
		slog.Info("generation settled",
			"generation", ev.Generation,
			"records", ev.Count,
			"cached", ev.Cached,
		)
	}
	if c.onSettled != nil {
		c.onSettled(Outcome{
			Generation: ev.Generation,
			Records:    ev.Count,
			Cached:     ev.Cached,
			Err:        ev.Err,
		})
	}
}

// logEventError logs an event processing failure with the event's context.
func logEventError(ev Event, err error) {
	attrs := []any{
		"error", err,
		"event", ev.Type.String(),
		"generation", ev.Generation,
	}
	if ev.Type == EventRecord || ev.Type == EventFacet {
		attrs = append(attrs, "restaurant_id", ev.Record.ID)
	}
	slog.Error("event processing failed", attrs...)
}
