// Package testutil provides deterministic generation tokens, fixture
// records and a fake remote feed for tests.
package testutil
