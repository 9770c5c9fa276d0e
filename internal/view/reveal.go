package view

import "math"

// Geometry is a width/height pair in CSS pixels.
type Geometry struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// RevealCount returns how many thumbnails one scroll-bottom event reveals:
// enough tiles to fill one more viewport's worth of rows, and at least one
// row when the viewport is shorter than a tile.
func RevealCount(viewport, tile Geometry) int {
	if tile.Width <= 0 || tile.Height <= 0 {
		return 0
	}
	cols := int(math.Floor(viewport.Width / tile.Width))
	if cols < 1 {
		return 0
	}
	rows := int(math.Floor(viewport.Height / tile.Height))
	if rows < 1 {
		rows = 1
	}
	return cols * rows
}

// ComputeRevealBatch returns the first RevealCount unrevealed thumbnails of
// pending, in order.
func ComputeRevealBatch(viewport, tile Geometry, pending []*Thumbnail) []*Thumbnail {
	n := RevealCount(viewport, tile)
	if n <= 0 {
		return nil
	}
	batch := make([]*Thumbnail, 0, min(n, len(pending)))
	for _, t := range pending {
		if len(batch) >= n {
			break
		}
		if !t.Revealed() {
			batch = append(batch, t)
		}
	}
	return batch
}

// Scroll is one scroll observation.
type Scroll struct {
	Y              float64  // scroll offset of the viewport's top edge
	ViewportHeight float64  // window inner height
	DocumentHeight float64  // document body height
	Viewport       Geometry // list container size; zero keeps the last known one
}

// AtBottom reports whether the viewport's bottom edge meets the document's
// bottom edge. The document height is rounded to whole pixels first; a zero
// tolerance demands exact equality.
func AtBottom(s Scroll, tolerance float64) bool {
	return math.Abs(math.Round(s.DocumentHeight)-(s.Y+s.ViewportHeight)) <= tolerance
}
