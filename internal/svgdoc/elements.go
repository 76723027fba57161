package svgdoc

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/PosterCut/internal/model"
)

func svgName(local string) xml.Name {
	return xml.Name{Space: NSSVG, Local: local}
}

// NewGroup creates a detached <g> element with the given id.
func NewGroup(id string) *Node {
	n := &Node{Name: svgName("g")}
	n.SetAttr("id", id)
	return n
}

// NewLayer creates a detached Inkscape layer group.
func NewLayer(id, label string) *Node {
	n := NewGroup(id)
	n.SetAttrNS(NSInkscape, "groupmode", "layer")
	n.SetLabel(label)
	return n
}

// NewRect creates a detached <rect> element.
func NewRect(id string, r model.Rect) *Node {
	n := &Node{Name: svgName("rect")}
	n.SetAttr("id", id)
	n.SetAttr("x", fmtFloat(r.X))
	n.SetAttr("y", fmtFloat(r.Y))
	n.SetAttr("width", fmtFloat(r.Width))
	n.SetAttr("height", fmtFloat(r.Height))
	return n
}

// NewPath creates a detached <path> element with the given path data.
func NewPath(id, d string) *Node {
	n := &Node{Name: svgName("path")}
	n.SetAttr("id", id)
	n.SetAttr("d", d)
	return n
}

// NewText creates a detached <text> element at the given position.
func NewText(id string, x, y float64, content string) *Node {
	n := &Node{Name: svgName("text"), Text: content}
	n.SetAttr("id", id)
	n.SetAttr("x", fmtFloat(x))
	n.SetAttr("y", fmtFloat(y))
	return n
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Style handling. Styles are kept as the raw "k:v;k:v" attribute string;
// SetStyleProps replaces listed properties and keeps the rest.

// StyleProp returns one property from the style attribute.
func (n *Node) StyleProp(key string) string {
	for _, part := range strings.Split(n.Attr("style"), ";") {
		k, v, ok := strings.Cut(part, ":")
		if ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// SetStyle replaces the whole style attribute from an ordered list of
// "key:value" entries.
func (n *Node) SetStyle(props ...string) {
	n.SetAttr("style", strings.Join(props, ";"))
}

// SetFill replaces the style with a bare fill, the way corrected holes
// and palette-colored layers are styled.
func (n *Node) SetFill(color string) {
	n.SetStyle("fill:" + color)
}

// Transform returns the element's transform attribute.
func (n *Node) Transform() string { return n.Attr("transform") }

// ComposeTransform prepends a translate+scale pair to an existing
// transform. The new pair is the outer transform; whatever was already
// on the element stays innermost, so pre-existing placement survives.
func ComposeTransform(dx, dy, scale float64, inner string) string {
	t := fmt.Sprintf("translate(%f,%f) scale(%f)", dx, dy, scale)
	if inner == "" {
		return t
	}
	return t + " " + inner
}

// BBox returns a coarse bounding box for the element: exact for rects,
// a vertex scan of absolute path data for paths, and the union of
// children for containers. Curve control points count as vertices, so
// path boxes may be slightly loose; the pipeline only needs min-corner
// anchoring, never exact extents (those are the engine's job).
func (n *Node) BBox() (model.BBox, bool) {
	switch n.Name.Local {
	case "rect":
		x := parseFloat(n.Attr("x"))
		y := parseFloat(n.Attr("y"))
		w := parseFloat(n.Attr("width"))
		h := parseFloat(n.Attr("height"))
		if w <= 0 || h <= 0 {
			return model.BBox{}, false
		}
		return model.BBox{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}, true
	case "path":
		return pathBBox(n.Attr("d"))
	default:
		var box model.BBox
		found := false
		for _, c := range n.Children {
			cb, ok := c.BBox()
			if !ok {
				continue
			}
			if !found {
				box = cb
				found = true
			} else {
				box = box.Union(cb)
			}
		}
		return box, found
	}
}

// pathBBox scans path data for coordinate pairs. Only absolute
// commands are handled faithfully; engine output uses absolute data.
func pathBBox(d string) (model.BBox, bool) {
	fields := splitPathData(d)
	var xs, ys []float64
	expectX := true
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			// Command letter: coordinates restart at an x value.
			expectX = true
			continue
		}
		if expectX {
			xs = append(xs, v)
		} else {
			ys = append(ys, v)
		}
		expectX = !expectX
	}
	if len(xs) == 0 || len(ys) == 0 {
		return model.BBox{}, false
	}
	box := model.BBox{MinX: xs[0], MinY: ys[0], MaxX: xs[0], MaxY: ys[0]}
	for _, x := range xs {
		box.MinX = min(box.MinX, x)
		box.MaxX = max(box.MaxX, x)
	}
	for _, y := range ys {
		box.MinY = min(box.MinY, y)
		box.MaxY = max(box.MaxY, y)
	}
	return box, true
}

func splitPathData(d string) []string {
	d = strings.NewReplacer(",", " ", "\n", " ", "\t", " ").Replace(d)
	var out []string
	for _, f := range strings.Fields(d) {
		// Separate glued command letters ("M10" or "10Z").
		start := 0
		for i, r := range f {
			if (r >= 'A' && r <= 'Z' && r != 'E') || (r >= 'a' && r <= 'z' && r != 'e') {
				if i > start {
					out = append(out, f[start:i])
				}
				out = append(out, string(r))
				start = i + 1
			}
		}
		if start < len(f) {
			out = append(out, f[start:])
		}
	}
	return out
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "mm"), 64)
	return v
}

// SelectionBBox returns the union bounding box of the given element ids.
func (d *Document) SelectionBBox(ids []string) (model.BBox, bool) {
	var box model.BBox
	found := false
	for _, id := range ids {
		n := d.ByID(id)
		if n == nil {
			continue
		}
		nb, ok := n.BBox()
		if !ok {
			continue
		}
		if !found {
			box = nb
			found = true
		} else {
			box = box.Union(nb)
		}
	}
	return box, found
}
