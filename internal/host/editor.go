package host

// UnsubscribeFunc detaches a listener. Calling it more than once is a no-op.
type UnsubscribeFunc func()

// Editor is one text editor instance owned by the host.
//
// Geometry queries return already-computed pixel positions; the engine never
// simulates layout. All methods are called from the engine's goroutines and
// implementations must be safe for concurrent use.
type Editor interface {
	// ID identifies the editor for logging.
	ID() string

	// GrammarScope returns the current grammar/language scope identifier,
	// e.g. "source.go".
	GrammarScope() string

	// CursorPosition returns the current cursor buffer position.
	CursorPosition() Position

	// TextInRange returns the buffer text within r.
	TextInRange(r Range) string

	// LineText returns the full text of the given row, or "" when the row
	// does not exist.
	LineText(row int) string

	// DefaultCharWidth returns the pixel width of a default character cell.
	DefaultCharWidth() float64

	// BufferPositionForPixel resolves a view pixel coordinate to the nearest
	// buffer position. ok is false when the coordinate is outside the
	// rendered text area entirely.
	BufferPositionForPixel(p PixelPoint) (pos Position, ok bool)

	// PixelForBufferPosition returns the pixel position of the left edge of
	// the character cell at pos.
	PixelForBufferPosition(pos Position) PixelPoint

	// View returns the editor's decoration surface.
	View() View

	// OnCursorMoved registers a listener for cursor position changes.
	OnCursorMoved(fn func(CursorMove)) UnsubscribeFunc

	// OnTextChanged registers a listener for buffer edits. Each invocation
	// carries the full change list of one transaction.
	OnTextChanged(fn func([]TextChange)) UnsubscribeFunc

	// OnPointerMoved registers a listener for pointer motion over the
	// editor's text area.
	OnPointerMoved(fn func(PixelPoint)) UnsubscribeFunc

	// OnDestroyed registers a listener invoked once when the editor's
	// element is torn down.
	OnDestroyed(fn func()) UnsubscribeFunc
}

// Host is the owning application. The engine watches the active editor and
// re-attaches its per-editor listeners when it changes.
type Host interface {
	// ActiveEditor returns the focused text editor, or nil when focus is
	// outside any text editor.
	ActiveEditor() Editor

	// OnActiveEditorChanged registers a listener invoked with the newly
	// focused editor (nil on blur to a non-editor element).
	OnActiveEditorChanged(fn func(Editor)) UnsubscribeFunc
}
