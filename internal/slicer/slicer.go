// Package slicer cuts the selection into per-tile fragments and places
// the survivors on their output pages. Slicing duplicates every
// selected element once per tile and intersects each duplicate against
// its tile rectangle in a single engine round-trip; pairs with no
// geometric overlap simply vanish, which is expected and silently
// dropped.
package slicer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/piwi3910/PosterCut/internal/engine"
	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/svgdoc"
)

// Record tracks one (element, tile) pair queued for intersection. After
// the round-trip the duplicate either resolves to a surviving fragment
// or is gone.
type Record struct {
	DupID string
	Page  model.TileIndex
	Layer int // Selection order, 0 = first selected = bottom of the stack
}

// Fragment is a surviving slice: the intersection of one selected
// element with one tile rectangle.
type Fragment struct {
	ID    string
	Page  model.TileIndex
	Layer int
}

// shortID returns a fresh short object id with the given role prefix.
func shortID(role string) string {
	return fmt.Sprintf("%s%s", role, uuid.New().String()[:8])
}

// BuildBatch creates the duplicates and tile rectangles for every
// (element x tile) combination and enqueues one intersection per pair.
// Tiles are visited in row-major page order with the selection order
// preserved inside each tile; that ordering is what later correlates
// pages and labels. The whole grid goes into one batch: one engine
// round-trip regardless of tile count.
func BuildBatch(doc *svgdoc.Document, selection []string, grid model.TileGrid, bbox model.BBox) (*engine.Batch, []Record, error) {
	var batch engine.Batch
	var records []Record

	for _, page := range grid.Pages() {
		rect := grid.Rect(page, bbox)
		for layer, id := range selection {
			elem := doc.ByID(id)
			if elem == nil {
				return nil, nil, &model.ConsistencyError{Phase: "slice", Ref: id}
			}

			dup := elem.Clone()
			dupID := shortID("slice")
			dup.SetAttr("id", dupID)
			reIDDescendants(dup)
			doc.Append(elem.Parent(), dup)

			rectNode := svgdoc.NewRect(shortID("tile"), rect)
			doc.Append(doc.Root, rectNode)

			batch.Add([]string{dupID, rectNode.ID()}, engine.OpIntersect)
			records = append(records, Record{DupID: dupID, Page: page, Layer: layer})
		}
	}
	return &batch, records, nil
}

// reIDDescendants gives every identified descendant of a detached clone
// a fresh id. Clones keep source ids, and attaching a group clone
// without re-iding its children would shadow the originals in the
// document index.
func reIDDescendants(n *svgdoc.Node) {
	for _, c := range n.Children {
		if c.Attr("id") != "" {
			c.SetAttr("id", shortID("slice"))
		}
		reIDDescendants(c)
	}
}

// Resolve turns records into fragments against the reloaded document.
// Unresolvable duplicates mean the pair had no overlap; they are
// dropped without error.
func Resolve(doc *svgdoc.Document, records []Record) []Fragment {
	var frags []Fragment
	for _, r := range records {
		if doc.ByID(r.DupID) == nil {
			continue
		}
		frags = append(frags, Fragment{ID: r.DupID, Page: r.Page, Layer: r.Layer})
	}
	return frags
}
