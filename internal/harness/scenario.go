package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/testutil"
	"github.com/roach88/restosync/internal/view"
)

// Scenario defines a scripted controller session and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Feed lists the records the remote feed serves, in order.
	Feed []Record `yaml:"feed"`

	// Cache lists records stored in the cache before the session starts.
	Cache []Record `yaml:"cache,omitempty"`

	// Viewport and Tile override the controller's reveal geometry.
	Viewport *view.Geometry `yaml:"viewport,omitempty"`
	Tile     *view.Geometry `yaml:"tile,omitempty"`

	// OfflineFallback overrides the controller default (enabled).
	OfflineFallback *bool `yaml:"offline_fallback,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Record is a compact restaurant description; the remaining fields are
// filled by testutil.Restaurant.
type Record struct {
	ID           int64  `yaml:"id"`
	Name         string `yaml:"name"`
	Neighborhood string `yaml:"neighborhood"`
	Cuisine      string `yaml:"cuisine"`
}

// Restaurant expands the record.
func (r Record) Restaurant() restaurant.Restaurant {
	return testutil.Restaurant(r.ID, r.Name, r.Neighborhood, r.Cuisine)
}

func restaurants(records []Record) []restaurant.Restaurant {
	out := make([]restaurant.Restaurant, len(records))
	for i, r := range records {
		out[i] = r.Restaurant()
	}
	return out
}

// Step is one user or environment action.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Cuisine and Neighborhood are the select facets; empty means "all".
	Cuisine      string `yaml:"cuisine,omitempty"`
	Neighborhood string `yaml:"neighborhood,omitempty"`

	// Y, ViewportHeight and DocumentHeight describe a scroll. When both
	// heights are zero the scroll lands exactly on the bottom edge.
	Y              float64 `yaml:"y,omitempty"`
	ViewportHeight float64 `yaml:"viewport_height,omitempty"`
	DocumentHeight float64 `yaml:"document_height,omitempty"`

	// Marker is the restaurant ID whose marker a click targets.
	Marker int64 `yaml:"marker,omitempty"`

	// Expect checks the settled outcome of a load or select.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes a settled generation.
type Expect struct {
	Records *int   `yaml:"records,omitempty"`
	Cached  bool   `yaml:"cached,omitempty"`
	Error   string `yaml:"error,omitempty"` // error code, e.g. NETWORK_ERROR
}

// Step actions.
const (
	ActionLoad     = "load"
	ActionSelect   = "select"
	ActionScroll   = "scroll"
	ActionClick    = "click"
	ActionFeedDown = "feed_down"
	ActionFeedUp   = "feed_up"
)

var actions = []string{ActionLoad, ActionSelect, ActionScroll, ActionClick, ActionFeedDown, ActionFeedUp}

// Assertion validates the end state of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// IDs are restaurant IDs (records, revealed, markers, cached).
	IDs []int64 `yaml:"ids,omitempty"`

	// Field is "neighborhood" or "cuisine" (facets).
	Field string `yaml:"field,omitempty"`

	// Values are facet values or URLs (facets, navigated).
	Values []string `yaml:"values,omitempty"`

	// Count is the expected number (pending, cached).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertRecords   = "records"
	AssertRevealed  = "revealed"
	AssertPending   = "pending"
	AssertFacets    = "facets"
	AssertMarkers   = "markers"
	AssertNavigated = "navigated"
	AssertCached    = "cached"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[int64]bool)
	for i, r := range s.Feed {
		if r.ID <= 0 {
			return fmt.Errorf("feed[%d]: id must be positive", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("feed[%d]: duplicate id %d", i, r.ID)
		}
		seen[r.ID] = true
	}
	for i, r := range s.Cache {
		if r.ID <= 0 {
			return fmt.Errorf("cache[%d]: id must be positive", i)
		}
	}

	for i, step := range s.Steps {
		if !slices.Contains(actions, step.Action) {
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if step.Action == ActionClick && step.Marker <= 0 {
			return fmt.Errorf("steps[%d]: marker is required for click", i)
		}
		if step.Expect != nil && step.Action != ActionLoad && step.Action != ActionSelect {
			return fmt.Errorf("steps[%d]: expect is only valid for load and select", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRecords, AssertRevealed, AssertMarkers, AssertNavigated:
	case AssertPending, AssertCached:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertFacets:
		if a.Field != "neighborhood" && a.Field != "cuisine" {
			return fmt.Errorf("assertions[%d]: field must be neighborhood or cuisine, got %q", index, a.Field)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
