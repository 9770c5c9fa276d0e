package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/restosync/internal/restaurant"
)

func TestRevealCount(t *testing.T) {
	tests := []struct {
		name     string
		viewport Geometry
		tile     Geometry
		want     int
	}{
		{"default geometry", Geometry{720, 800}, Geometry{180, 200}, 16},
		{"three by two", Geometry{900, 700}, Geometry{300, 300}, 6},
		{"partial tiles floor", Geometry{950, 899}, Geometry{300, 300}, 6},
		{"short viewport gets one row", Geometry{900, 100}, Geometry{300, 300}, 3},
		{"single column", Geometry{320, 1200}, Geometry{300, 400}, 3},
		{"zero tile width", Geometry{900, 700}, Geometry{0, 300}, 0},
		{"zero tile height", Geometry{900, 700}, Geometry{300, 0}, 0},
		{"narrower than a tile", Geometry{100, 700}, Geometry{300, 300}, 0},
		{"negative viewport width", Geometry{-900, 700}, Geometry{300, 300}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RevealCount(tt.viewport, tt.tile))
		})
	}
}

func thumbnails(n int) []*Thumbnail {
	out := make([]*Thumbnail, n)
	for i := range out {
		out[i] = NewThumbnail(restaurant.Restaurant{ID: int64(i + 1), Name: fmt.Sprintf("R%d", i+1)})
	}
	return out
}

func ids(ts []*Thumbnail) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestComputeRevealBatch_FirstUnrevealedInOrder(t *testing.T) {
	pending := thumbnails(10)
	pending[0].Reveal()
	pending[2].Reveal()

	batch := ComputeRevealBatch(Geometry{600, 300}, Geometry{300, 300}, pending)
	assert.Equal(t, []int64{2, 4}, ids(batch))
}

func TestComputeRevealBatch_FewerPendingThanCount(t *testing.T) {
	pending := thumbnails(3)
	batch := ComputeRevealBatch(Geometry{900, 900}, Geometry{300, 300}, pending)
	assert.Equal(t, []int64{1, 2, 3}, ids(batch))
}

func TestComputeRevealBatch_AllRevealed(t *testing.T) {
	pending := thumbnails(2)
	for _, th := range pending {
		th.Reveal()
	}
	assert.Empty(t, ComputeRevealBatch(Geometry{900, 900}, Geometry{300, 300}, pending))
}

func TestComputeRevealBatch_InvalidViewport(t *testing.T) {
	pending := thumbnails(3)
	assert.Empty(t, ComputeRevealBatch(Geometry{-900, 900}, Geometry{300, 300}, pending))
	assert.Empty(t, ComputeRevealBatch(Geometry{900, 900}, Geometry{-300, 300}, pending))
	assert.False(t, pending[0].Revealed())
}

func TestAtBottom(t *testing.T) {
	tests := []struct {
		name      string
		scroll    Scroll
		tolerance float64
		want      bool
	}{
		{"exact", Scroll{Y: 1300, ViewportHeight: 700, DocumentHeight: 2000}, 0, true},
		{"fractional document height rounds", Scroll{Y: 1300, ViewportHeight: 700, DocumentHeight: 2000.4}, 0, true},
		{"one pixel short, exact", Scroll{Y: 1299, ViewportHeight: 700, DocumentHeight: 2000}, 0, false},
		{"one pixel short, tolerant", Scroll{Y: 1299, ViewportHeight: 700, DocumentHeight: 2000}, 1, true},
		{"fractional offset within tolerance", Scroll{Y: 1299.5, ViewportHeight: 700, DocumentHeight: 2000}, 1, true},
		{"far from bottom", Scroll{Y: 0, ViewportHeight: 700, DocumentHeight: 2000}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AtBottom(tt.scroll, tt.tolerance))
		})
	}
}
