// Package poster orchestrates one complete run: validate options, plan
// the tile grid, slice the selection, place the fragments on output
// pages, add the helper overlays, and correct holes. All document
// mutation flows through a single engine session; configuration is
// fully validated before the first round-trip so configuration errors
// never leave a half-modified document behind.
package poster

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/piwi3910/PosterCut/internal/engine"
	"github.com/piwi3910/PosterCut/internal/holes"
	"github.com/piwi3910/PosterCut/internal/layout"
	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/slicer"
	"github.com/piwi3910/PosterCut/internal/svgdoc"
)

// Outcome describes what a run produced.
type Outcome struct {
	Grid        model.TileGrid
	Pages       []model.TileIndex
	LayerGroups []string // Group ids in selection order (bottom first)
	Fragments   []slicer.Fragment
	Dropped     int // (element, tile) pairs with no overlap
	HolesGroup  string
	AnchorX     float64
	AnchorY     float64
}

func shortID(role string) string {
	return fmt.Sprintf("%s-%s", role, uuid.New().String()[:8])
}

// Run executes the full pipeline on the session's document.
func Run(sess *engine.Session, selection []string, opts model.Options) (*Outcome, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(selection) == 0 {
		return nil, model.ErrEmptySelection
	}

	doc := sess.Doc()
	for _, id := range selection {
		if doc.ByID(id) == nil {
			return nil, &model.ConfigError{Field: "selection", Reason: fmt.Sprintf("no element with id %q", id)}
		}
	}
	bbox, ok := doc.SelectionBBox(selection)
	if !ok || bbox.Empty() {
		return nil, model.ErrEmptySelection
	}

	grid, err := layout.Plan(opts.Sheet, bbox, opts.SheetCount, opts.Fit)
	if err != nil {
		return nil, err
	}

	// The poster lands below the existing artwork, left-aligned.
	anchorX, anchorY := bbox.MinX, bbox.MaxY
	if docBox, ok := doc.Root.BBox(); ok {
		anchorX, anchorY = docBox.MinX, docBox.MaxY
	}

	// Output skeleton: a dedicated layer holding one group per selected
	// element. Groups stack in selection order; ranks count from the
	// top, and each group advertises its rank color even when the
	// fragments keep their own fills.
	layer := svgdoc.NewLayer(shortID("postercut"), "PosterCut")
	layerID := layer.ID()
	doc.Append(doc.Root, layer)

	groupIDs := make([]string, len(selection))
	for i := range selection {
		rank := len(selection) - i
		g := svgdoc.NewGroup(shortID("group"))
		g.SetLabel(fmt.Sprintf("%d-group", rank))
		g.SetStyle("fill:" + model.PaletteColor(rank))
		doc.Append(layer, g)
		groupIDs[i] = g.ID()
	}

	var holesGroupID string
	if opts.SeparateHoles {
		hg := svgdoc.NewGroup(shortID("holes"))
		hg.SetLabel("holes")
		doc.Append(layer, hg)
		holesGroupID = hg.ID()
	}

	// Slice: every (element x tile) intersection in one round-trip.
	batch, records, err := slicer.BuildBatch(doc, selection, grid, bbox)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Apply("slice", batch); err != nil {
		return nil, err
	}

	// The slice round-trip replaced the document handle; every node
	// created before it must be re-resolved by id before further use.
	doc = sess.Doc()
	frags := slicer.Resolve(doc, records)

	layer = doc.ByID(layerID)
	if layer == nil {
		return nil, &model.ConsistencyError{Phase: "place", Ref: layerID}
	}

	groups := make([]*svgdoc.Node, len(groupIDs))
	for i, id := range groupIDs {
		groups[i] = doc.ByID(id)
		if groups[i] == nil {
			return nil, &model.ConsistencyError{Phase: "place", Ref: id}
		}
	}

	if err := slicer.Place(doc, frags, grid, opts.Sheet.Margin, anchorX, anchorY, groups); err != nil {
		return nil, err
	}

	if opts.UsePalette {
		for i, g := range groups {
			color := model.PaletteColor(len(groups) - i)
			for _, frag := range g.Children {
				frag.SetFill(color)
			}
		}
	}

	addOverlays(doc, layer, grid, opts, anchorX, anchorY)

	if opts.SeparateHoles {
		corr := holes.New(sess, holesGroupID, opts.UsePalette)
		if err := corr.Run(frags); err != nil {
			return nil, err
		}
	}

	return &Outcome{
		Grid:        grid,
		Pages:       grid.Pages(),
		LayerGroups: groupIDs,
		Fragments:   frags,
		Dropped:     len(records) - len(frags),
		HolesGroup:  holesGroupID,
		AnchorX:     anchorX,
		AnchorY:     anchorY,
	}, nil
}

// addOverlays creates the helper frame and page-number groups. Frames
// mark the printable interior of every page; numbers carry the grid
// label near the bottom-right corner, clear of the margin.
func addOverlays(doc *svgdoc.Document, layer *svgdoc.Node, grid model.TileGrid, opts model.Options, anchorX, anchorY float64) {
	sheet := opts.Sheet

	if opts.PageFrames {
		frames := svgdoc.NewGroup(shortID("frames"))
		frames.SetLabel("frames")
		doc.Append(layer, frames)

		for _, page := range grid.Pages() {
			x, y := slicer.PageOrigin(page, sheet, anchorX, anchorY)
			rect := svgdoc.NewRect(fmt.Sprintf("%s-frame", page.Label()), model.Rect{
				X:      x + sheet.Margin,
				Y:      y + sheet.Margin,
				Width:  sheet.Width - 2*sheet.Margin,
				Height: sheet.Height - 2*sheet.Margin,
			})
			rect.SetStyle("stroke:#000000", "stroke-width:4px", "fill:none")
			doc.Append(frames, rect)
		}
	}

	if opts.PageNumbers {
		numbers := svgdoc.NewGroup(shortID("numbers"))
		numbers.SetLabel("numbers")
		doc.Append(layer, numbers)

		for _, page := range grid.Pages() {
			x, y := slicer.PageOrigin(page, sheet, anchorX, anchorY)
			text := svgdoc.NewText(fmt.Sprintf("%s-number", page.Label()),
				x+sheet.Width-30, y+sheet.Height-10, page.Label())
			text.SetStyle("stroke:none", "font-size:20px", "fill:black",
				"font-family:arial", "text-anchor:start")
			doc.Append(numbers, text)
		}
	}
}
