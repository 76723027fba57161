package holes

import (
	"strings"
	"testing"

	"github.com/piwi3910/PosterCut/internal/engine"
	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/slicer"
	"github.com/piwi3910/PosterCut/internal/svgdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two layer groups and a holes group, with placed fragments on two
// pages. On page A1 the bottom layer's donut hole is fully covered by
// the top layer; on page B1 the bottom layer's hole is exposed.
const placedSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <g id="poster">
    <g id="g1">
      <path id="A1-fb" d="M 0,0 L 100,0 L 100,100 L 0,100 Z M 40,40 L 60,40 L 60,60 L 40,60 Z"/>
      <path id="B1-fb" d="M 100,0 L 200,0 L 200,100 L 100,100 Z M 140,40 L 160,40 L 160,60 L 140,60 Z"/>
    </g>
    <g id="g2">
      <path id="A1-ft" d="M 30,30 L 70,30 L 70,70 L 30,70 Z"/>
    </g>
    <g id="holes"/>
  </g>
</svg>`

var testFrags = []slicer.Fragment{
	{ID: "A1-fb", Page: model.TileIndex{Col: 0, Row: 0}, Layer: 0},
	{ID: "A1-ft", Page: model.TileIndex{Col: 0, Row: 0}, Layer: 1},
	{ID: "B1-fb", Page: model.TileIndex{Col: 1, Row: 0}, Layer: 0},
}

func placedDoc(t *testing.T) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Parse(strings.NewReader(placedSVG))
	require.NoError(t, err)
	return doc
}

// fullScript returns the six scripted engine responses for the document
// above. The scripted mutations imitate what the real engine does to
// the snapshot file at each phase.
func fullScript() []engine.Step {
	return []engine.Step{
		// mask: one combined silhouette per page, popped to top level.
		{
			Mutate: func(d *svgdoc.Document) error {
				d.Append(d.Root, svgdoc.NewPath("maskA", "M 0,0 L 100,0 L 100,100 L 0,100 Z"))
				d.Append(d.Root, svgdoc.NewPath("maskB", "M 100,0 L 200,0 L 200,100 L 100,100 Z"))
				return nil
			},
			Stdout: "maskA poster\nmaskB poster\n",
		},
		// split: A1-fb's compound path normalizes into two contours; a
		// second object appears next to it inside its nest.
		{
			Mutate: func(d *svgdoc.Document) error {
				nest := d.ByID("A1-fb").Parent()
				d.Append(nest, svgdoc.NewPath("A1-fb2", "M 40,40 L 60,40 L 60,60 L 40,60 Z"))
				return nil
			},
		},
		// break-apart: hole contours get their own objects. A1's hole
		// decomposes into two arcs, B1's into one.
		{
			Mutate: func(d *svgdoc.Document) error {
				d.Append(d.ByID("A1-fb").Parent(), svgdoc.NewPath("h1a", "M 40,40 L 60,40 L 60,60 Z"))
				d.Append(d.ByID("A1-fb").Parent(), svgdoc.NewPath("h1b", "M 40,40 L 60,60 L 40,60 Z"))
				d.Append(d.ByID("B1-fb").Parent(), svgdoc.NewPath("h2", "M 140,40 L 160,40 L 160,60 L 140,60 Z"))
				return nil
			},
		},
		// combine-candidates: A1's two arcs merge; the topmost (last)
		// input keeps its identity.
		{
			Mutate: func(d *svgdoc.Document) error {
				d.Remove(d.ByID("h1a"))
				return nil
			},
		},
		// difference: A1's hole is fully covered by the top layer, so
		// subtracting the mask consumes it entirely. B1's hole
		// survives. Both masks are consumed.
		{
			Mutate: func(d *svgdoc.Document) error {
				d.Remove(d.ByID("A1-hole-h1b"))
				d.Remove(d.ByID("A1-mask-maskA"))
				d.Remove(d.ByID("B1-mask-maskB"))
				return nil
			},
		},
		// reconstitute: A1-fb's nest still has two contours; combining
		// keeps the last one.
		{
			Mutate: func(d *svgdoc.Document) error {
				d.Remove(d.ByID("A1-fb"))
				return nil
			},
		},
	}
}

func TestCorrect_FullProtocol(t *testing.T) {
	doc := placedDoc(t)
	runner := &engine.ScriptedRunner{Steps: fullScript()}
	sess := engine.NewSession(doc, runner, engine.V12, nil)
	t.Cleanup(func() { sess.Close() })

	corr := New(sess, "holes", false)
	require.NoError(t, corr.Run(testFrags))

	final := sess.Doc()

	// Six phases, but combine-candidates and reconstitute only call the
	// engine when they have work; here every phase does.
	assert.Equal(t, 6, sess.RoundTrips())

	// The covered hole on A1 is gone; the exposed hole on B1 sits in
	// the holes group styled as background.
	holesGroup := final.ByID("holes")
	require.NotNil(t, holesGroup)
	require.Len(t, holesGroup.Children, 1)
	hole := holesGroup.Children[0]
	assert.Equal(t, "B1-hole-h2", hole.ID())
	assert.Equal(t, "white", hole.StyleProp("fill"))

	// Layer groups are flat again: no nesting containers left, the
	// recombined A1 fragment reparented back.
	g1 := final.ByID("g1")
	require.NotNil(t, g1)
	for _, child := range g1.Children {
		assert.NotEqual(t, "g", child.Tag(), "nesting containers must be discarded")
	}
	assert.NotNil(t, final.ByID("A1-fb2"))
	assert.Same(t, g1, final.ByID("A1-fb2").Parent())
	assert.Same(t, g1, final.ByID("B1-fb").Parent())

	// No mask scaffolding survives.
	assert.Nil(t, final.ByID("A1-mask-maskA"))
	assert.Nil(t, final.ByID("B1-mask-maskB"))
}

func TestCorrect_PaletteHoleFill(t *testing.T) {
	doc := placedDoc(t)
	runner := &engine.ScriptedRunner{Steps: fullScript()}
	sess := engine.NewSession(doc, runner, engine.V12, nil)
	t.Cleanup(func() { sess.Close() })

	corr := New(sess, "holes", true)
	require.NoError(t, corr.Run(testFrags))

	hole := sess.Doc().ByID("B1-hole-h2")
	require.NotNil(t, hole)
	assert.Equal(t, model.Palette[len(model.Palette)-1], hole.StyleProp("fill"))
}

func TestCorrect_MaskCountMismatch(t *testing.T) {
	doc := placedDoc(t)
	// Engine reports one mask id where two pages were requested.
	runner := &engine.ScriptedRunner{Steps: []engine.Step{{Stdout: "maskA\n"}}}
	sess := engine.NewSession(doc, runner, engine.V12, nil)
	t.Cleanup(func() { sess.Close() })

	err := New(sess, "holes", false).Run(testFrags)
	var ce *model.ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "mask", ce.Phase)
}

func TestCorrect_MissingHolesGroupIsFatal(t *testing.T) {
	doc := placedDoc(t)
	steps := fullScript()[:4]
	runner := &engine.ScriptedRunner{Steps: steps}
	sess := engine.NewSession(doc, runner, engine.V12, nil)
	t.Cleanup(func() { sess.Close() })

	err := New(sess, "nonexistent", false).Run(testFrags)
	var ce *model.ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "combine-candidates", ce.Phase)
	assert.Equal(t, "nonexistent", ce.Ref)
}

func TestCorrect_RequiresSplitCapableEngine(t *testing.T) {
	doc := placedDoc(t)
	sess := engine.NewSession(doc, &engine.ScriptedRunner{}, engine.V11, nil)
	t.Cleanup(func() { sess.Close() })

	err := New(sess, "holes", false).Run(testFrags)
	var ce *model.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "engine", ce.Field)
}

func TestCorrect_NoFragmentsIsNoop(t *testing.T) {
	doc := placedDoc(t)
	runner := &engine.ScriptedRunner{}
	sess := engine.NewSession(doc, runner, engine.V12, nil)
	t.Cleanup(func() { sess.Close() })

	require.NoError(t, New(sess, "holes", false).Run(nil))
	assert.Empty(t, runner.Calls)
}

func TestPagesOf_GroupsByPageInFirstSeenOrder(t *testing.T) {
	order, byPage := pagesOf(testFrags)
	require.Len(t, order, 2)
	assert.Equal(t, model.TileIndex{Col: 0, Row: 0}, order[0])
	assert.Equal(t, model.TileIndex{Col: 1, Row: 0}, order[1])
	assert.Equal(t, []string{"A1-fb", "A1-ft"}, byPage[order[0]])
	assert.Equal(t, []string{"B1-fb"}, byPage[order[1]])
}
