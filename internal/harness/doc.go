// Package harness runs scripted scenarios against a live controller.
//
// A scenario describes the records a fake feed serves, the records already
// cached, a list of user steps and the expected end state. The harness
// drives a real controller against an httptest feed and a SQLite cache in
// a temporary directory, records every page mutation in order and then
// evaluates the assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	viewport: { width: 360, height: 200 }
//	tile: { width: 180, height: 200 }
//	feed:
//	  - { id: 1, name: Emily, neighborhood: Brooklyn, cuisine: Pizza }
//	cache:
//	  - { id: 2, name: Lucali, neighborhood: Brooklyn, cuisine: Pizza }
//	steps:
//	  - action: load
//	    expect: { records: 1 }
//	  - action: select
//	    cuisine: Pizza
//	  - action: scroll
//	  - action: click
//	    marker: 1
//	assertions:
//	  - type: revealed
//	    ids: [1]
//	  - type: facets
//	    field: neighborhood
//	    values: [Brooklyn]
//
// # Steps
//
//   - load: full load, rebuilds facet lists
//   - select: change the facet selection; omitted facets mean "all"
//   - scroll: a scroll observation; without heights it lands on the bottom edge
//   - click: click the map marker of a restaurant
//   - feed_down, feed_up: make the feed fail with 503 or recover
//
// load and select wait for their generation to settle and check the
// optional expect clause.
//
// # Assertion Types
//
//   - records: candidate record IDs in arrival order
//   - revealed: revealed thumbnail IDs in order
//   - pending: number of unrevealed thumbnails
//   - facets: neighborhood or cuisine values in first-seen order
//   - markers: restaurant IDs of markers still on the map
//   - navigated: URLs followed through marker clicks
//   - cached: number of cached records, and optionally IDs that must be cached
//
// # Deterministic Testing
//
// Generation tokens come from testutil.SequenceGenerator, so the trace of a
// scenario is identical across runs and can be compared with a golden file:
//
//	go test ./internal/harness -update
package harness
