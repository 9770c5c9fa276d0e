package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/store"
)

// AssertionContext provides access to the cache for assertions that
// inspect persisted state.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertRecords:
		return assertIDs(a.Type, result.Records, a.IDs, result.Trace)
	case AssertRevealed:
		return assertIDs(a.Type, result.Revealed, a.IDs, result.Trace)
	case AssertPending:
		return assertCount(a.Type, result.Pending, a.Count, result.Trace)
	case AssertFacets:
		actual := result.Neighborhoods
		if a.Field == "cuisine" {
			actual = result.Cuisines
		}
		return assertStrings(a.Type+" "+a.Field, actual, a.Values, result.Trace)
	case AssertMarkers:
		want := make([]string, len(a.IDs))
		for i, id := range a.IDs {
			want[i] = restaurant.ReviewURL(restaurant.Restaurant{ID: id})
		}
		return assertStrings(a.Type, result.Markers, want, result.Trace)
	case AssertNavigated:
		return assertStrings(a.Type, result.Navigated, a.Values, result.Trace)
	case AssertCached:
		return assertCached(a, actx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertIDs(kind string, actual, expected []int64, trace []TraceEvent) error {
	if expected == nil {
		expected = []int64{}
	}
	if slices.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
		Trace:    trace,
	}
}

func assertStrings(kind string, actual, expected []string, trace []TraceEvent) error {
	if len(actual) == 0 && len(expected) == 0 {
		return nil
	}
	if slices.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%q", expected),
		Actual:   fmt.Sprintf("%q", actual),
		Trace:    trace,
	}
}

func assertCount(kind string, actual, expected int, trace []TraceEvent) error {
	if actual == expected {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", expected),
		Actual:   fmt.Sprintf("%d", actual),
		Trace:    trace,
	}
}

// assertCached checks the cache row count and that every listed ID is
// cached.
func assertCached(a Assertion, actx *AssertionContext) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("cached assertion requires a store")
	}
	ctx := actx.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	count, err := actx.Store.Count(ctx)
	if err != nil {
		return fmt.Errorf("cached: count failed: %w", err)
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertCached,
			Expected: fmt.Sprintf("%d cached records", a.Count),
			Actual:   fmt.Sprintf("%d cached records", count),
		}
	}

	var missing []int64
	for _, id := range a.IDs {
		ok, err := actx.Store.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("cached: lookup %d failed: %w", id, err)
		}
		if !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &AssertionError{
			Type:     AssertCached,
			Expected: fmt.Sprintf("ids %v cached", a.IDs),
			Actual:   fmt.Sprintf("missing %v", missing),
		}
	}
	return nil
}
