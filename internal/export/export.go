// Package export produces assembly aids for a finished poster run: a
// PDF assembly map, QR-coded page labels, a DXF trim guide, and an XLSX
// page manifest. Everything here consumes the pipeline's outputs; none
// of it touches the document or the engine.
package export

import (
	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/poster"
	"github.com/piwi3910/PosterCut/internal/slicer"
)

// PageSummary describes one output page.
type PageSummary struct {
	Label     string  `json:"label"`
	Col       int     `json:"col"`
	Row       int     `json:"row"`
	X         float64 `json:"x_mm"` // Page origin in output coordinates
	Y         float64 `json:"y_mm"`
	Fragments int     `json:"fragments"`
}

// Summary is the export-facing view of a run outcome.
type Summary struct {
	Sheet   model.SheetSpec
	Grid    model.TileGrid
	Pages   []PageSummary
	Layers  int
	Dropped int
}

// BuildSummary flattens a run outcome for the exporters. Pages appear
// in row-major order, matching the labeling everywhere else.
func BuildSummary(outcome *poster.Outcome, opts model.Options) Summary {
	counts := make(map[model.TileIndex]int)
	for _, f := range outcome.Fragments {
		counts[f.Page]++
	}

	s := Summary{
		Sheet:   opts.Sheet,
		Grid:    outcome.Grid,
		Layers:  len(outcome.LayerGroups),
		Dropped: outcome.Dropped,
	}
	for _, page := range outcome.Pages {
		x, y := slicer.PageOrigin(page, opts.Sheet, outcome.AnchorX, outcome.AnchorY)
		s.Pages = append(s.Pages, PageSummary{
			Label:     page.Label(),
			Col:       page.Col,
			Row:       page.Row,
			X:         x,
			Y:         y,
			Fragments: counts[page],
		})
	}
	return s
}
