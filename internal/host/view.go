package host

// Invalidation controls when the host invalidates a marker in response to
// buffer edits.
type Invalidation string

const (
	// InvalidateNever keeps the marker valid through any edit.
	InvalidateNever Invalidation = "never"

	// InvalidateSurround invalidates when an edit fully surrounds the marker.
	InvalidateSurround Invalidation = "surround"

	// InvalidateOverlap invalidates when an edit overlaps the marker.
	InvalidateOverlap Invalidation = "overlap"

	// InvalidateInside invalidates when an edit touches the marker interior.
	InvalidateInside Invalidation = "inside"

	// InvalidateTouch invalidates when an edit touches the marker at all.
	InvalidateTouch Invalidation = "touch"
)

// DecorationKind selects how a marker is decorated.
type DecorationKind string

const (
	// DecorationHighlight paints the marker's buffer range.
	DecorationHighlight DecorationKind = "highlight"

	// DecorationOverlay floats an element anchored to the marker.
	DecorationOverlay DecorationKind = "overlay"
)

// Anchor selects which end of the marker an overlay attaches to.
type Anchor string

const (
	// AnchorHead attaches the overlay at the marker's head (its end).
	AnchorHead Anchor = "head"

	// AnchorTail attaches the overlay at the marker's tail (its start).
	AnchorTail Anchor = "tail"
)

// DecorationSpec describes one decoration to apply to a marker.
type DecorationSpec struct {
	// Kind is the decoration kind.
	Kind DecorationKind

	// Class is the style class the host applies to the decoration.
	Class string

	// Item is the rendered element to float for overlay decorations; nil
	// for highlights. Typed as any so the host facade stays independent of
	// the rendering collaborator.
	Item any

	// Anchor positions overlay decorations; ignored for highlights.
	Anchor Anchor

	// OnVisible, when non-nil, is invoked exactly once after the overlay
	// item has been attached to the view hierarchy and can be measured.
	// Ignored for highlights.
	OnVisible func()
}

// Marker is a live buffer-range marker owned by the host.
type Marker interface {
	// Range returns the marker's current buffer range.
	Range() Range

	// Destroy releases the marker and every decoration attached to it.
	// Destroying twice is a no-op.
	Destroy()
}

// Decoration is a live decoration owned by the host.
type Decoration interface {
	// Destroy releases the decoration. Destroying twice is a no-op.
	Destroy()
}

// View is the narrow mutation surface of one editor's presentation layer.
type View interface {
	// CreateRangeMarker creates a marker over r with the given invalidation
	// strategy.
	CreateRangeMarker(r Range, invalidate Invalidation) Marker

	// Decorate applies spec to the marker and returns the live decoration.
	Decorate(m Marker, spec DecorationSpec) Decoration
}
