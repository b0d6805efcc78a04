// Package render defines the rendering collaborator boundary: converting
// markdown into a sanitized element tree, tokenizing code snippets into
// highlighted markup, and measuring rendered elements.
//
// The overlay engine consumes these interfaces; it never renders or
// measures anything itself.
package render

import "github.com/dshills/hoverlay/internal/host"

// Element is one node of rendered, sanitized markup.
//
// A node with an empty Tag is a text leaf; Text is meaningful only on
// leaves. The tree is built exclusively from input text placed into leaves,
// so no raw markup from a provider ever becomes structure.
type Element struct {
	// Tag is the node kind ("p", "pre", "code", "span", "hr", "div").
	// Empty for text leaves.
	Tag string

	// Class is the node's style class.
	Class string

	// Text is the leaf text; empty on non-leaf nodes.
	Text string

	// Box, when non-nil, positions the node explicitly relative to its
	// parent. Used for emitted highlight boxes.
	Box *host.Rect

	// Children are the child nodes in document order.
	Children []*Element
}

// NewElement creates a node with the given tag, class, and children.
func NewElement(tag, class string, children ...*Element) *Element {
	return &Element{Tag: tag, Class: class, Children: children}
}

// NewText creates a text leaf.
func NewText(text string) *Element {
	return &Element{Text: text}
}

// IsText reports whether the node is a text leaf.
func (e *Element) IsText() bool {
	return e.Tag == ""
}

// AppendChild adds a child node.
func (e *Element) AppendChild(c *Element) {
	e.Children = append(e.Children, c)
}

// PlainText returns the concatenated text of every leaf under e in
// document order, ignoring markup boundaries.
func (e *Element) PlainText() string {
	var out []byte
	e.walkLeaves(func(leaf *Element) bool {
		out = append(out, leaf.Text...)
		return true
	})
	return string(out)
}

// TextLeaves returns every text leaf under e in document order.
func (e *Element) TextLeaves() []*Element {
	var leaves []*Element
	e.walkLeaves(func(leaf *Element) bool {
		leaves = append(leaves, leaf)
		return true
	})
	return leaves
}

func (e *Element) walkLeaves(fn func(*Element) bool) bool {
	if e.IsText() {
		return fn(e)
	}
	for _, c := range e.Children {
		if !c.walkLeaves(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in depth-first order satisfying pred, or nil.
func (e *Element) Find(pred func(*Element) bool) *Element {
	if pred(e) {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindCodeBlock returns the first "code" element under e, or nil.
func (e *Element) FindCodeBlock() *Element {
	return e.Find(func(n *Element) bool { return n.Tag == "code" })
}

// Clone returns a deep copy of the subtree rooted at e.
func (e *Element) Clone() *Element {
	cp := &Element{Tag: e.Tag, Class: e.Class, Text: e.Text}
	if e.Box != nil {
		box := *e.Box
		cp.Box = &box
	}
	if len(e.Children) > 0 {
		cp.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// TextPoint addresses a character offset within one text leaf.
type TextPoint struct {
	// Leaf is the text leaf.
	Leaf *Element

	// Offset is a character offset into the leaf's text.
	Offset int
}

// Geometry measures rendered elements. Implemented by the host adapter
// over real pixel geometry; measurement is only meaningful after the
// element reports itself visible.
type Geometry interface {
	// RangeRects returns the screen rectangles covering the text between
	// start and end. An empty slice means the range could not be measured.
	RangeRects(start, end TextPoint) []host.Rect

	// BoundingRect returns the outer pixel rectangle of el.
	BoundingRect(el *Element) host.Rect

	// LineHeight returns el's computed line height; ok is false when it
	// cannot be determined.
	LineHeight(el *Element) (lh float64, ok bool)

	// BorderInsets returns the left and top border widths of el, used to
	// position children relative to el's content box.
	BorderInsets(el *Element) (left, top float64)
}
