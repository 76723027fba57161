// Package svgdoc provides a minimal SVG document tree: enough DOM to
// address elements by id, reparent them, and edit the handful of
// attributes the poster pipeline touches. It deliberately understands
// nothing about rendering; path geometry belongs to the external engine.
package svgdoc

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Namespace URIs the tree knows conventional prefixes for.
const (
	NSSVG      = "http://www.w3.org/2000/svg"
	NSInkscape = "http://www.inkscape.org/namespaces/inkscape"
	NSSodipodi = "http://sodipodi.sourceforge.net/DTD/sodipodi-0.0.dtd"
	NSXLink    = "http://www.w3.org/1999/xlink"
)

// nsPrefixes maps namespace URIs back to the prefixes used on output.
// encoding/xml resolves prefixes to URIs during decoding; without this
// mapping a re-encoded document would carry URI-named prefixes.
var nsPrefixes = map[string]string{
	NSSVG:      "",
	NSInkscape: "inkscape",
	NSSodipodi: "sodipodi",
	NSXLink:    "xlink",
	"xmlns":    "xmlns",
}

// Node is one element of the document tree.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Node
	Text     string

	parent *Node
}

// Document is the parsed SVG tree plus an id index. It is the explicit
// document handle threaded through every pipeline phase; the index is
// rebuilt on every reload because the engine reassigns ids freely.
type Document struct {
	Root  *Node
	byID  map[string]*Node
	extra []string // namespace URIs seen during parse beyond the known set
}

// Parse reads an SVG document from r.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				n.parent = parent
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse svg: unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				if s := strings.TrimSpace(string(t)); s != "" {
					stack[len(stack)-1].Text += s
				}
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parse svg: no root element")
	}
	doc := &Document{Root: root}
	doc.RebuildIndex()
	return doc, nil
}

// Load parses the SVG file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Save writes the document to the file at path.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write serializes the document to w.
func (d *Document) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return d.writeNode(w, d.Root, true)
}

func (d *Document) writeNode(w io.Writer, n *Node, isRoot bool) error {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(d.qualify(n.Name))
	if isRoot {
		// Declare the conventional namespaces once on the root.
		b.WriteString(fmt.Sprintf(" xmlns=%q", NSSVG))
		b.WriteString(fmt.Sprintf(" xmlns:inkscape=%q", NSInkscape))
		b.WriteString(fmt.Sprintf(" xmlns:sodipodi=%q", NSSodipodi))
		b.WriteString(fmt.Sprintf(" xmlns:xlink=%q", NSXLink))
	}
	for _, a := range n.Attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(d.qualify(a.Name))
		b.WriteString(fmt.Sprintf("=%q", escapeAttr(a.Value)))
	}
	if len(n.Children) == 0 && n.Text == "" {
		b.WriteString(" />")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		return nil
	}
	b.WriteByte('>')
	if n.Text != "" {
		var esc strings.Builder
		xml.EscapeText(&esc, []byte(n.Text))
		b.WriteString(esc.String())
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := d.writeNode(w, c, false); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "</%s>", d.qualify(n.Name))
	return err
}

func (d *Document) qualify(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	prefix, ok := nsPrefixes[name.Space]
	if !ok || prefix == "" {
		return name.Local
	}
	return prefix + ":" + name.Local
}

func escapeAttr(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// RebuildIndex rescans the tree for id attributes. Must be called after
// every reload from the engine; stale indexes are how ids go wrong.
func (d *Document) RebuildIndex() {
	d.byID = make(map[string]*Node)
	d.indexNode(d.Root)
}

func (d *Document) indexNode(n *Node) {
	if id := n.Attr("id"); id != "" {
		d.byID[id] = n
	}
	for _, c := range n.Children {
		c.parent = n
		d.indexNode(c)
	}
}

// ByID returns the element with the given id, or nil.
func (d *Document) ByID(id string) *Node {
	return d.byID[id]
}

// Append adds child under parent and indexes it.
func (d *Document) Append(parent, child *Node) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = parent
	parent.Children = append(parent.Children, child)
	d.indexNode(child)
}

// Remove detaches n from its parent and drops it from the index.
func (d *Document) Remove(n *Node) {
	if n.parent != nil {
		n.parent.removeChild(n)
		n.parent = nil
	}
	d.unindexNode(n)
}

func (d *Document) unindexNode(n *Node) {
	if id := n.Attr("id"); id != "" {
		delete(d.byID, id)
	}
	for _, c := range n.Children {
		d.unindexNode(c)
	}
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return
		}
	}
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Clone returns a detached deep copy of n. The copy keeps every
// attribute, including ids; callers re-id it before attaching.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:  n.Name,
		Attrs: append([]xml.Attr(nil), n.Attrs...),
		Text:  n.Text,
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// Attr returns the value of the named un-namespaced attribute.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

// AttrNS returns the value of a namespaced attribute.
func (n *Node) AttrNS(space, name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name && a.Name.Space == space {
			return a.Value
		}
	}
	return ""
}

// SetAttr sets or replaces an un-namespaced attribute.
func (n *Node) SetAttr(name, value string) {
	n.setAttr(xml.Name{Local: name}, value)
}

// SetAttrNS sets or replaces a namespaced attribute.
func (n *Node) SetAttrNS(space, name, value string) {
	n.setAttr(xml.Name{Space: space, Local: name}, value)
}

func (n *Node) setAttr(name xml.Name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: name, Value: value})
}

// ID returns the element id.
func (n *Node) ID() string { return n.Attr("id") }

// SetID renames the element, keeping the document index current.
func (d *Document) SetID(n *Node, id string) {
	if old := n.Attr("id"); old != "" {
		delete(d.byID, old)
	}
	n.SetAttr("id", id)
	d.byID[id] = n
}

// Label returns the inkscape:label attribute.
func (n *Node) Label() string { return n.AttrNS(NSInkscape, "label") }

// SetLabel sets the inkscape:label attribute.
func (n *Node) SetLabel(label string) { n.SetAttrNS(NSInkscape, "label", label) }

// Tag returns the local element name.
func (n *Node) Tag() string { return n.Name.Local }
