// Package holes implements hole correction for multi-layer posters.
//
// When stacked selections overlap and a lower layer's shape has a
// transparent hole, the sliced output would show the hole even where
// the upper layer's ink covers it. The corrector computes, per output
// page, the truly visible hole geometry and moves it into a dedicated
// holes group styled as background.
//
// The protocol runs in six phases, one engine round-trip each:
//
//  1. mask: union every page's fragments into a silhouette mask
//  2. split: normalize each fragment into disjoint simple contours
//  3. break-apart: fully decompose; contours that appear now and were
//     not known after the split are hole candidates
//  4. combine-candidates: merge each page's candidates into one shape
//  5. difference: candidate minus mask = the visible hole
//  6. reconstitution: recombine the nested fragments and drop the nests
//
// Identifiers are re-resolved from the document after every round-trip;
// any expected object that cannot be resolved aborts the run with a
// consistency error. The one exception is the difference result: a hole
// fully covered by other layers' ink vanishes there, which is the
// correct outcome, not corruption.
package holes

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/PosterCut/internal/engine"
	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/slicer"
	"github.com/piwi3910/PosterCut/internal/svgdoc"
)

// Corrector drives the six-phase protocol over one session.
type Corrector struct {
	sess         *engine.Session
	holesGroupID string
	usePalette   bool
}

// New creates a corrector that relocates corrected holes into the group
// with the given id.
func New(sess *engine.Session, holesGroupID string, usePalette bool) *Corrector {
	return &Corrector{sess: sess, holesGroupID: holesGroupID, usePalette: usePalette}
}

// nest is one per-fragment nesting container. Split and break-apart
// create their new objects as siblings of the operand, so wrapping each
// fragment in its own group makes the offspring locatable by parent.
type nest struct {
	id   string
	page model.TileIndex
}

// Run executes the protocol for the given placed fragments.
func (c *Corrector) Run(frags []slicer.Fragment) error {
	if len(frags) == 0 {
		return nil
	}
	if !c.sess.Supports(engine.OpSplit, engine.OpBreakApart, engine.OpQueryIDs) {
		return &model.ConfigError{
			Field:  "engine",
			Reason: fmt.Sprintf("hole correction needs path-split support, engine %s has none", c.sess.Version()),
		}
	}

	masks, err := c.maskPhase(frags)
	if err != nil {
		return err
	}
	nests, err := c.splitPhase(frags)
	if err != nil {
		return err
	}
	candidates, err := c.breakPhase(nests)
	if err != nil {
		return err
	}
	holeIDs, err := c.combinePhase(candidates)
	if err != nil {
		return err
	}
	if err := c.differencePhase(holeIDs, masks); err != nil {
		return err
	}
	return c.reconstitutePhase(nests)
}

// sortedPages returns the map's pages in row-major order, so every
// phase issues its commands deterministically.
func sortedPages[T any](m map[model.TileIndex]T) []model.TileIndex {
	pages := make([]model.TileIndex, 0, len(m))
	for p := range m {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Row != pages[j].Row {
			return pages[i].Row < pages[j].Row
		}
		return pages[i].Col < pages[j].Col
	})
	return pages
}

// pagesOf groups fragment ids by page, keeping first-seen page order.
func pagesOf(frags []slicer.Fragment) ([]model.TileIndex, map[model.TileIndex][]string) {
	var order []model.TileIndex
	byPage := make(map[model.TileIndex][]string)
	for _, f := range frags {
		if _, seen := byPage[f.Page]; !seen {
			order = append(order, f.Page)
		}
		byPage[f.Page] = append(byPage[f.Page], f.ID)
	}
	return order, byPage
}

// maskPhase duplicates and unions every page's fragments into one
// silhouette mask per page. The mask is what phase 5 subtracts from the
// hole candidate: whatever any layer's ink covers is not a visible hole.
func (c *Corrector) maskPhase(frags []slicer.Fragment) (map[model.TileIndex]string, error) {
	order, byPage := pagesOf(frags)

	var batch engine.Batch
	keys := make(map[model.TileIndex]string, len(order))
	for _, page := range order {
		// Duplicate, combine into one path, pop it out of the layer
		// group, and report its id.
		keys[page] = batch.Add(byPage[page],
			engine.OpDuplicate, engine.OpCombine, engine.OpUngroupPop, engine.OpQueryIDs)
	}

	res, err := c.sess.Apply("mask", &batch)
	if err != nil {
		return nil, err
	}

	doc := c.sess.Doc()
	masks := make(map[model.TileIndex]string, len(order))
	for _, page := range order {
		id, ok := res.ID(keys[page])
		if !ok {
			return nil, &model.ConsistencyError{Phase: "mask", Ref: keys[page]}
		}
		node := doc.ByID(id)
		if node == nil {
			return nil, &model.ConsistencyError{Phase: "mask", Ref: id}
		}
		// Page-tagged rename keeps masks recognizable while they live
		// in the tree between phases.
		maskID := fmt.Sprintf("%s-mask-%s", page.Label(), id)
		doc.SetID(node, maskID)
		masks[page] = maskID
	}
	return masks, nil
}

// splitPhase wraps every fragment in its own nesting group and runs the
// normalize/split on it. Splitting separates compound paths into simple
// contours but does not yet detach holes from their shapes.
func (c *Corrector) splitPhase(frags []slicer.Fragment) ([]nest, error) {
	doc := c.sess.Doc()

	var batch engine.Batch
	nests := make([]nest, 0, len(frags))
	for _, f := range frags {
		node := doc.ByID(f.ID)
		if node == nil {
			return nil, &model.ConsistencyError{Phase: "split", Ref: f.ID}
		}
		n := svgdoc.NewGroup(fmt.Sprintf("nest-%s", uuid.New().String()[:8]))
		doc.Append(node.Parent(), n)
		doc.Append(n, node)
		nests = append(nests, nest{id: n.ID(), page: f.Page})

		batch.Add([]string{f.ID}, engine.OpSplit)
	}

	if _, err := c.sess.Apply("split", &batch); err != nil {
		return nil, err
	}
	return nests, nil
}

// breakPhase records every post-split contour as "known", fully
// decomposes them, and collects the strangers: objects present in a
// nest afterwards that were not known before are hole geometry, since
// only the decomposition could have exposed them.
func (c *Corrector) breakPhase(nests []nest) (map[model.TileIndex][]string, error) {
	doc := c.sess.Doc()

	var batch engine.Batch
	known := make(map[string]bool)
	for _, n := range nests {
		node := doc.ByID(n.id)
		if node == nil {
			return nil, &model.ConsistencyError{Phase: "break-apart", Ref: n.id}
		}
		for _, child := range node.Children {
			known[child.ID()] = true
			batch.Add([]string{child.ID()}, engine.OpBreakApart)
		}
	}

	if _, err := c.sess.Apply("break-apart", &batch); err != nil {
		return nil, err
	}

	doc = c.sess.Doc()
	candidates := make(map[model.TileIndex][]string)
	for _, n := range nests {
		node := doc.ByID(n.id)
		if node == nil {
			return nil, &model.ConsistencyError{Phase: "break-apart", Ref: n.id}
		}
		for _, child := range node.Children {
			if known[child.ID()] {
				continue
			}
			candidates[n.page] = append(candidates[n.page], child.ID())
		}
	}
	return candidates, nil
}

// combinePhase merges each page's candidates into a single shape, then
// relocates it into the holes group styled as background. Pages with a
// single candidate skip the engine op; the combine keeps the identity
// of the topmost input, which is the last id in stacking order.
func (c *Corrector) combinePhase(candidates map[model.TileIndex][]string) (map[model.TileIndex]string, error) {
	var batch engine.Batch
	for _, page := range sortedPages(candidates) {
		if ids := candidates[page]; len(ids) > 1 {
			batch.Add(ids, engine.OpCombine)
		}
	}

	if _, err := c.sess.Apply("combine-candidates", &batch); err != nil {
		return nil, err
	}

	doc := c.sess.Doc()
	holesGroup := doc.ByID(c.holesGroupID)
	if holesGroup == nil {
		return nil, &model.ConsistencyError{Phase: "combine-candidates", Ref: c.holesGroupID}
	}

	holeIDs := make(map[model.TileIndex]string, len(candidates))
	for _, page := range sortedPages(candidates) {
		ids := candidates[page]
		top := ids[len(ids)-1]
		node := doc.ByID(top)
		if node == nil {
			return nil, &model.ConsistencyError{Phase: "combine-candidates", Ref: top}
		}
		holeID := fmt.Sprintf("%s-hole-%s", page.Label(), top)
		doc.SetID(node, holeID)
		node.SetFill(model.HoleFill(c.usePalette))
		doc.Append(holesGroup, node)
		holeIDs[page] = holeID
	}
	return holeIDs, nil
}

// differencePhase subtracts each page's mask from its hole candidate.
// What survives is hole area no layer's ink covers: the visible hole.
// A candidate that vanishes entirely was fully covered, so its absence
// afterwards is the expected outcome, not an inconsistency. Masks for
// pages without candidates are dropped locally; they were only ever
// scaffolding.
func (c *Corrector) differencePhase(holeIDs, masks map[model.TileIndex]string) error {
	doc := c.sess.Doc()

	var batch engine.Batch
	for _, page := range sortedPages(holeIDs) {
		holeID := holeIDs[page]
		maskID, ok := masks[page]
		if !ok {
			return &model.ConsistencyError{Phase: "difference", Ref: fmt.Sprintf("mask for page %s", page.Label())}
		}
		if doc.ByID(holeID) == nil {
			return &model.ConsistencyError{Phase: "difference", Ref: holeID}
		}
		if doc.ByID(maskID) == nil {
			return &model.ConsistencyError{Phase: "difference", Ref: maskID}
		}
		batch.Add([]string{holeID, maskID}, engine.OpDifference)
	}

	if _, err := c.sess.Apply("difference", &batch); err != nil {
		return err
	}

	doc = c.sess.Doc()
	for _, page := range sortedPages(masks) {
		if _, used := holeIDs[page]; used {
			continue
		}
		maskID := masks[page]
		if node := doc.ByID(maskID); node != nil {
			doc.Remove(node)
		}
	}
	return nil
}

// reconstitutePhase recombines each nest's contours back into a single
// fragment, pops the result out to the layer group, and discards the
// emptied nests, restoring the flat fragment-per-layer structure.
func (c *Corrector) reconstitutePhase(nests []nest) error {
	doc := c.sess.Doc()

	var batch engine.Batch
	for _, n := range nests {
		node := doc.ByID(n.id)
		if node == nil {
			return &model.ConsistencyError{Phase: "reconstitute", Ref: n.id}
		}
		if len(node.Children) < 2 {
			continue
		}
		ids := make([]string, len(node.Children))
		for i, child := range node.Children {
			ids[i] = child.ID()
		}
		batch.Add(ids, engine.OpCombine)
	}

	if _, err := c.sess.Apply("reconstitute", &batch); err != nil {
		return err
	}

	doc = c.sess.Doc()
	for _, n := range nests {
		node := doc.ByID(n.id)
		if node == nil {
			return &model.ConsistencyError{Phase: "reconstitute", Ref: n.id}
		}
		parent := node.Parent()
		for _, child := range append([]*svgdoc.Node(nil), node.Children...) {
			doc.Append(parent, child)
		}
		doc.Remove(node)
	}
	return nil
}
