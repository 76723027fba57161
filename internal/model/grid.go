package model

import "fmt"

// TileIndex identifies one cell of the output grid. Col runs
// horizontally, Row vertically, both 0-indexed.
type TileIndex struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Label returns the human page label for the index: column as a letter,
// row as a 1-based number ("A1", "B3", ...).
func (t TileIndex) Label() string {
	return fmt.Sprintf("%c%d", rune('A'+t.Col), t.Row+1)
}

// TileGrid is the computed slicing plan: the size of one slicing
// rectangle in selection coordinates, the grid dimensions, and the
// uniform factor that scales a slice up to the printable sheet interior.
type TileGrid struct {
	TileW float64 `json:"tile_w"` // Slice width in selection units
	TileH float64 `json:"tile_h"` // Slice height in selection units
	NWide int     `json:"n_wide"`
	NHigh int     `json:"n_high"`
	Scale float64 `json:"scale"`
}

// PageCount returns the total number of output pages.
func (g TileGrid) PageCount() int { return g.NWide * g.NHigh }

// Pages enumerates every tile index in row-major order (row outer,
// column inner). This order defines page enumeration everywhere:
// slicing batches, mask correlation, and labeling all follow it.
func (g TileGrid) Pages() []TileIndex {
	pages := make([]TileIndex, 0, g.PageCount())
	for j := 0; j < g.NHigh; j++ {
		for i := 0; i < g.NWide; i++ {
			pages = append(pages, TileIndex{Col: i, Row: j})
		}
	}
	return pages
}

// Rect returns the slicing rectangle for the given tile, anchored at the
// selection bounding box minimum corner.
func (g TileGrid) Rect(idx TileIndex, origin BBox) Rect {
	return Rect{
		X:      origin.MinX + float64(idx.Col)*g.TileW,
		Y:      origin.MinY + float64(idx.Row)*g.TileH,
		Width:  g.TileW,
		Height: g.TileH,
	}
}

// Extent returns the bounding box covered by the full grid of slicing
// rectangles.
func (g TileGrid) Extent(origin BBox) BBox {
	return BBox{
		MinX: origin.MinX,
		MinY: origin.MinY,
		MaxX: origin.MinX + float64(g.NWide)*g.TileW,
		MaxY: origin.MinY + float64(g.NHigh)*g.TileH,
	}
}

// Covers reports whether the grid extent is a superset of the selection
// bounding box. The planner guarantees this for every valid input.
func (g TileGrid) Covers(origin BBox) bool {
	return g.Extent(origin).Contains(origin)
}
