// Package host defines the facade through which the overlay engine talks to
// the owning editor.
//
// The engine holds no editor-specific types: buffer positions, pixel
// geometry, markers and decorations all flow through the interfaces in this
// package, which a host adapter implements. The hosttest subpackage provides
// an in-memory implementation for tests and the demo.
package host

// Position is a zero-based (row, column) buffer position.
type Position struct {
	Row    int
	Column int
}

// Less reports whether p orders strictly before o in document order.
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Column < o.Column
}

// LessEq reports whether p orders at or before o in document order.
func (p Position) LessEq(o Position) bool {
	return p == o || p.Less(o)
}

// Range is an immutable half-open span of buffer positions [Start, End).
type Range struct {
	Start Position
	End   Position
}

// PointRange returns a zero-width range at p.
func PointRange(p Position) Range {
	return Range{Start: p, End: p}
}

// IsEmpty reports whether the range spans no characters.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// SingleRow reports whether the range starts and ends on the same row.
func (r Range) SingleRow() bool {
	return r.Start.Row == r.End.Row
}

// Contains reports whether p falls inside the range. An empty range
// contains exactly its own point, so a zero-width overlay anchor still
// covers the position it was created at.
func (r Range) Contains(p Position) bool {
	if r.IsEmpty() {
		return p == r.Start
	}
	return r.Start.LessEq(p) && p.Less(r.End)
}

// Intersects reports whether the two ranges share any position. Empty
// ranges intersect anything that contains their point.
func (r Range) Intersects(o Range) bool {
	if r.IsEmpty() {
		return o.Contains(r.Start) || r == o
	}
	if o.IsEmpty() {
		return r.Contains(o.Start)
	}
	return r.Start.Less(o.End) && o.Start.Less(r.End)
}

// PixelPoint is a pixel coordinate in the host's view space.
type PixelPoint struct {
	X float64
	Y float64
}

// Rect is a pixel rectangle in the host's view space.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the right edge of the rectangle.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge of the rectangle.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// TextChange describes one contiguous buffer edit.
type TextChange struct {
	// OldRange is the replaced span in pre-edit coordinates.
	OldRange Range

	// NewRange is the inserted span in post-edit coordinates.
	NewRange Range

	// OldText is the text that was removed.
	OldText string

	// NewText is the text that was inserted.
	NewText string
}

// IsInsertion reports whether the change inserted text without removing any.
func (c TextChange) IsInsertion() bool {
	return c.NewText != "" && c.OldText == ""
}

// CursorMove describes a cursor position change.
type CursorMove struct {
	// Old is where the cursor was before the move.
	Old Position

	// New is where the cursor is now.
	New Position

	// TextChanged reports whether the move was caused by a buffer edit
	// rather than explicit navigation.
	TextChanged bool
}
