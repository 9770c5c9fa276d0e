package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/restosync/internal/facet"
	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/testutil"
	"github.com/roach88/restosync/internal/view"
)

func populated(t *testing.T) State {
	s := New(view.NewMemoryMap(), testutil.OpenStore(t))
	s.Records = testutil.Restaurants()[:2]
	s.Selection = facet.Selection{Cuisine: "Asian", Neighborhood: facet.All}
	s.Generation = "gen-1"
	s.Loading = true
	s.Neighborhoods = []string{"Manhattan", "Brooklyn"}
	s.Cuisines = []string{"Asian", "Pizza"}
	return s
}

// Patching one field must leave every other field identical.
func TestApply_PreservesUnpatchedFields(t *testing.T) {
	base := populated(t)
	otherMap := view.NewMemoryMap()
	otherStore := testutil.OpenStore(t)

	tests := []struct {
		name   string
		patch  Patch
		expect func(*State)
	}{
		{"records", Patch{Records: Some([]restaurant.Restaurant(nil))}, func(s *State) { s.Records = nil }},
		{"selection", Patch{Selection: Some(facet.Everything)}, func(s *State) { s.Selection = facet.Everything }},
		{"generation", Patch{Generation: Some("gen-2")}, func(s *State) { s.Generation = "gen-2" }},
		{"loading", Patch{Loading: Some(false)}, func(s *State) { s.Loading = false }},
		{"neighborhoods", Patch{Neighborhoods: Some([]string{"Queens"})}, func(s *State) { s.Neighborhoods = []string{"Queens"} }},
		{"cuisines", Patch{Cuisines: Some([]string{})}, func(s *State) { s.Cuisines = []string{} }},
		{"map", Patch{Map: Some[view.MapWidget](otherMap)}, func(s *State) { s.Map = otherMap }},
		{"store", Patch{Store: Some(otherStore)}, func(s *State) { s.Store = otherStore }},
		{"empty patch", Patch{}, func(*State) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := base
			tt.expect(&want)

			got := Apply(base, tt.patch)

			assert.Equal(t, want, got)
			assert.Same(t, base.Markers, got.Markers)
			assert.Same(t, base.Thumbnails, got.Thumbnails)
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	base := populated(t)
	before := base

	Apply(base, Patch{Generation: Some("gen-9"), Loading: Some(false)})

	assert.Equal(t, before, base)
}

func TestApply_CarriesSlicesByReference(t *testing.T) {
	base := populated(t)
	got := Apply(base, Patch{Loading: Some(false)})
	assert.Same(t, &base.Records[0], &got.Records[0])
}

func TestField_Get(t *testing.T) {
	v, ok := Field[int]{}.Get()
	assert.False(t, ok)
	assert.Zero(t, v)

	v, ok = Some(3).Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestContainer_Patch(t *testing.T) {
	c := NewContainer(State{})
	require.NotNil(t, c.Snapshot().Markers)
	require.NotNil(t, c.Snapshot().Thumbnails)

	next := c.Patch(Patch{Generation: Some("gen-1")})
	assert.Equal(t, "gen-1", next.Generation)
	assert.Equal(t, next, c.Snapshot())
}

func TestContainer_UpdateAppends(t *testing.T) {
	c := NewContainer(State{})
	for _, r := range testutil.Restaurants() {
		c.Update(func(s State) Patch {
			return Patch{Records: Some(append(s.Records, r))}
		})
	}
	assert.Len(t, c.Snapshot().Records, 6)
}

func TestContainer_ResetDetachesMarkersAndKeepsStore(t *testing.T) {
	ctx := context.Background()
	m := view.NewMemoryMap()
	st := testutil.OpenStore(t)
	c := NewContainer(New(m, st))

	for _, r := range testutil.Restaurants() {
		_, err := st.Upsert(ctx, r)
		require.NoError(t, err)
		s := c.Snapshot()
		s.Markers.Add(view.AddMarker(r, m, nil))
		s.Thumbnails.Push(view.NewThumbnail(r))
		c.Update(func(s State) Patch { return Patch{Records: Some(append(s.Records, r))} })
	}
	c.Patch(Patch{Neighborhoods: Some([]string{"Manhattan"})})
	require.Len(t, m.Attached(), 6)

	c.Reset()

	s := c.Snapshot()
	assert.True(t, s.Markers.IsEmpty())
	assert.Zero(t, s.Thumbnails.Len())
	assert.Empty(t, s.Records)
	assert.Empty(t, m.Attached())
	assert.Equal(t, []string{"Manhattan"}, s.Neighborhoods)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestContainer_ResetOnEmptyIsNoop(t *testing.T) {
	c := NewContainer(State{})
	assert.NotPanics(t, c.Reset)
	assert.True(t, c.Snapshot().Markers.IsEmpty())
}

func TestThumbnails_PendingAndRevealed(t *testing.T) {
	q := &Thumbnails{}
	for _, r := range testutil.Restaurants()[:3] {
		q.Push(view.NewThumbnail(r))
	}
	q.All()[1].Reveal()

	pending := q.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, int64(3), pending[1].ID)
	assert.Equal(t, 1, q.Revealed())
}
