package harness

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/roach88/restosync/internal/controller"
	"github.com/roach88/restosync/internal/facet"
	"github.com/roach88/restosync/internal/remote"
	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/store"
	"github.com/roach88/restosync/internal/testutil"
	"github.com/roach88/restosync/internal/view"
)

// SettleTimeout bounds how long a load or select step waits for its
// generation to settle.
const SettleTimeout = 5 * time.Second

var (
	fragmentID  = regexp.MustCompile(`id="(r\d+)"`)
	optionValue = regexp.MustCompile(`value="([^"]*)"`)
)

// tracingPage is a MemoryPage that also records every mutation.
type tracingPage struct {
	*view.MemoryPage
	rec *recorder
}

func (p *tracingPage) Append(slot view.Slot, html string) {
	p.MemoryPage.Append(slot, html)
	p.rec.add(OpAppend, string(slot), fragmentKey(html))
}

func (p *tracingPage) Clear(slot view.Slot) {
	p.MemoryPage.Clear(slot)
	p.rec.add(OpClear, string(slot), "")
}

// fragmentKey reduces a fragment to its element id or option value.
func fragmentKey(html string) string {
	if m := fragmentID.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	if m := optionValue.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

// Harness is the scenario execution engine.
type Harness struct {
	feed    *testutil.Feed
	store   *store.Store
	mapw    *view.MemoryMap
	ctrl    *controller.Controller
	rec     *recorder
	settled chan controller.Outcome

	navigated []string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against its own feed and cache, both released on test
// cleanup. An error is returned when the scenario cannot be executed; a
// failed expectation is reported in the result instead.
func Run(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()
	ctx := context.Background()

	h := &Harness{
		feed:    testutil.NewFeed(t, restaurants(scenario.Feed)),
		store:   testutil.OpenStore(t),
		mapw:    view.NewMemoryMap(),
		rec:     &recorder{},
		settled: make(chan controller.Outcome, 8),
	}
	for _, r := range restaurants(scenario.Cache) {
		if _, err := h.store.Upsert(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to seed cache: %w", err)
		}
	}

	opts := []controller.Option{
		controller.WithGenerationGenerator(testutil.NewSequenceGenerator("gen")),
		controller.WithSettledHook(h.onSettled),
		controller.WithNavigator(func(url string) { h.navigated = append(h.navigated, url) }),
	}
	if scenario.Viewport != nil {
		opts = append(opts, controller.WithViewport(*scenario.Viewport))
	}
	if scenario.Tile != nil {
		opts = append(opts, controller.WithTile(*scenario.Tile))
	}
	if scenario.OfflineFallback != nil {
		opts = append(opts, controller.WithOfflineFallback(*scenario.OfflineFallback))
	}

	page := &tracingPage{MemoryPage: view.NewMemoryPage(), rec: h.rec}
	h.ctrl = controller.New(remote.New(h.feed.URL), h.store, page, h.mapw, opts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.ctrl.Run(runCtx) }()

	result := NewResult()
	stepErr := h.executeSteps(scenario.Steps, result)

	// Drain queued scrolls and flush cache writes before inspecting state.
	h.ctrl.Stop()
	if err := <-done; err != nil {
		return nil, fmt.Errorf("controller stopped with error: %w", err)
	}
	if stepErr != nil {
		return nil, stepErr
	}

	h.collect(result)
	actx := &AssertionContext{Store: h.store, Ctx: ctx}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

func (h *Harness) onSettled(o controller.Outcome) {
	detail := fmt.Sprintf("%s records=%d", o.Generation, o.Records)
	if o.Cached {
		detail += " cached"
	}
	if o.Err != nil {
		detail = fmt.Sprintf("%s error=%s", o.Generation, errorCode(o.Err))
	}
	h.rec.add(OpSettled, "", detail)
	h.settled <- o
}

func errorCode(err error) string {
	var re *restaurant.Error
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return "ERROR"
}

// executeSteps runs the steps in order. Load and select wait for their
// generation to settle and validate the expect clause.
func (h *Harness) executeSteps(steps []Step, result *Result) error {
	for i, step := range steps {
		switch step.Action {
		case ActionLoad:
			h.ctrl.Load()
			if err := h.awaitStep(i, step, result); err != nil {
				return err
			}
		case ActionSelect:
			h.ctrl.Select(orAll(step.Cuisine), orAll(step.Neighborhood))
			if err := h.awaitStep(i, step, result); err != nil {
				return err
			}
		case ActionScroll:
			h.ctrl.Scroll(h.scroll(step))
		case ActionClick:
			if !h.click(step.Marker) {
				result.AddError(fmt.Sprintf("steps[%d]: no marker on the map for restaurant %d", i, step.Marker))
			}
		case ActionFeedDown:
			h.feed.SetDown(true)
		case ActionFeedUp:
			h.feed.SetDown(false)
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
	}
	return nil
}

func (h *Harness) awaitStep(i int, step Step, result *Result) error {
	select {
	case o := <-h.settled:
		if step.Expect != nil {
			for _, msg := range checkExpect(*step.Expect, o) {
				result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, step.Action, msg))
			}
		}
		return nil
	case <-time.After(SettleTimeout):
		return fmt.Errorf("steps[%d] (%s): generation did not settle within %s", i, step.Action, SettleTimeout)
	}
}

func checkExpect(e Expect, o controller.Outcome) []string {
	var errs []string
	if e.Error != "" {
		if o.Err == nil {
			errs = append(errs, fmt.Sprintf("expected error %s, got success", e.Error))
		} else if code := errorCode(o.Err); code != e.Error {
			errs = append(errs, fmt.Sprintf("expected error %s, got %s", e.Error, code))
		}
		return errs
	}
	if o.Err != nil {
		errs = append(errs, fmt.Sprintf("unexpected error: %v", o.Err))
		return errs
	}
	if e.Records != nil && *e.Records != o.Records {
		errs = append(errs, fmt.Sprintf("expected %d records, got %d", *e.Records, o.Records))
	}
	if e.Cached != o.Cached {
		errs = append(errs, fmt.Sprintf("expected cached=%t, got %t", e.Cached, o.Cached))
	}
	return errs
}

func orAll(v string) string {
	if v == "" {
		return facet.All
	}
	return v
}

func (h *Harness) scroll(step Step) view.Scroll {
	s := view.Scroll{Y: step.Y, ViewportHeight: step.ViewportHeight, DocumentHeight: step.DocumentHeight}
	if s.ViewportHeight == 0 && s.DocumentHeight == 0 {
		vh := controller.DefaultViewport.Height
		s = view.Scroll{Y: 0, ViewportHeight: vh, DocumentHeight: vh}
	}
	return s
}

// click clicks the attached marker of restaurant id.
func (h *Harness) click(id int64) bool {
	url := restaurant.ReviewURL(restaurant.Restaurant{ID: id})
	for _, mk := range h.mapw.Attached() {
		if mk.Options().URL == url {
			mk.Click()
			return true
		}
	}
	return false
}

// collect copies the end state into result.
func (h *Harness) collect(result *Result) {
	st := h.ctrl.State()
	for _, r := range st.Records {
		result.Records = append(result.Records, r.ID)
	}
	for _, th := range st.Thumbnails.All() {
		if th.Revealed() {
			result.Revealed = append(result.Revealed, th.ID)
		} else {
			result.Pending++
		}
	}
	result.Neighborhoods = st.Neighborhoods
	result.Cuisines = st.Cuisines
	for _, mk := range h.mapw.Attached() {
		result.Markers = append(result.Markers, mk.Options().URL)
	}
	result.Navigated = append(result.Navigated, h.navigated...)
	result.Trace = h.rec.trace()
}
