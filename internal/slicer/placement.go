package slicer

import (
	"fmt"

	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/svgdoc"
)

// Place scales and translates every surviving fragment onto its output
// page and moves it into its layer group. The per-tile translation is
//
//	(dx + m + 2m*col, dy + m + 2m*row)
//
// where m is the sheet margin and (dx, dy) aligns the scaled minimum
// corner of the fragment union with the poster anchor. The translation
// plus uniform scale is composed outside any transform already on the
// fragment, so reassembled tiles abut with one margin gap on each side
// of every seam.
//
// Each fragment id gets its page label as a prefix; this is cosmetic
// (the records already carry explicit page indices) but keeps the
// output tree navigable in the host editor.
func Place(doc *svgdoc.Document, frags []Fragment, grid model.TileGrid, margin float64, anchorX, anchorY float64, groups []*svgdoc.Node) error {
	if len(frags) == 0 {
		return nil
	}

	ids := make([]string, len(frags))
	for i, f := range frags {
		ids[i] = f.ID
	}
	union, ok := doc.SelectionBBox(ids)
	if !ok {
		return &model.ConsistencyError{Phase: "place", Ref: frags[0].ID}
	}

	dx := -union.MinX*grid.Scale + anchorX
	dy := -union.MinY*grid.Scale + anchorY

	for i := range frags {
		f := &frags[i]
		node := doc.ByID(f.ID)
		if node == nil {
			return &model.ConsistencyError{Phase: "place", Ref: f.ID}
		}
		if f.Layer < 0 || f.Layer >= len(groups) {
			return &model.ConsistencyError{Phase: "place", Ref: fmt.Sprintf("layer %d", f.Layer)}
		}

		tx := dx + margin + 2*margin*float64(f.Page.Col)
		ty := dy + margin + 2*margin*float64(f.Page.Row)
		node.SetAttr("transform", svgdoc.ComposeTransform(tx, ty, grid.Scale, node.Transform()))

		doc.SetID(node, fmt.Sprintf("%s-%s", f.Page.Label(), f.ID))
		f.ID = node.ID()
		doc.Append(groups[f.Layer], node)
	}
	return nil
}

// PageOrigin returns the top-left corner of a page in output
// coordinates, given the poster anchor and the full sheet size.
func PageOrigin(idx model.TileIndex, sheet model.SheetSpec, anchorX, anchorY float64) (float64, float64) {
	return anchorX + float64(idx.Col)*sheet.Width, anchorY + float64(idx.Row)*sheet.Height
}
