// Package hosttest provides in-memory host facade implementations for tests
// and the demo.
//
// The fake editor keeps its buffer as plain lines and derives pixel geometry
// from fixed character cell metrics, so engine behavior that depends on
// pixel positions is deterministic.
package hosttest

import (
	"math"
	"strings"
	"sync"

	"github.com/dshills/hoverlay/internal/host"
)

// Editor is an in-memory host.Editor.
type Editor struct {
	mu sync.Mutex

	id     string
	scope  string
	lines  []string
	cursor host.Position

	// CharWidth and LineHeight are the fixed cell metrics used for pixel
	// geometry. Both default to 10 and 20 in NewEditor.
	CharWidth  float64
	LineHeight float64

	view *View

	nextSub    uint64
	cursorFns  map[uint64]func(host.CursorMove)
	textFns    map[uint64]func([]host.TextChange)
	pointerFns map[uint64]func(host.PixelPoint)
	destroyFns map[uint64]func()
}

// NewEditor creates a fake editor with the given id, grammar scope, and
// buffer content.
func NewEditor(id, scope, text string) *Editor {
	e := &Editor{
		id:         id,
		scope:      scope,
		lines:      strings.Split(text, "\n"),
		CharWidth:  10,
		LineHeight: 20,
		cursorFns:  make(map[uint64]func(host.CursorMove)),
		textFns:    make(map[uint64]func([]host.TextChange)),
		pointerFns: make(map[uint64]func(host.PixelPoint)),
		destroyFns: make(map[uint64]func()),
	}
	e.view = NewView()
	return e
}

// ID implements host.Editor.
func (e *Editor) ID() string { return e.id }

// GrammarScope implements host.Editor.
func (e *Editor) GrammarScope() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scope
}

// SetGrammarScope changes the reported grammar scope.
func (e *Editor) SetGrammarScope(scope string) {
	e.mu.Lock()
	e.scope = scope
	e.mu.Unlock()
}

// CursorPosition implements host.Editor.
func (e *Editor) CursorPosition() host.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// TextInRange implements host.Editor for single- and multi-row ranges.
func (e *Editor) TextInRange(r host.Range) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r.Start.Row == r.End.Row {
		return sliceLine(e.lineLocked(r.Start.Row), r.Start.Column, r.End.Column)
	}

	var sb strings.Builder
	sb.WriteString(sliceLine(e.lineLocked(r.Start.Row), r.Start.Column, -1))
	for row := r.Start.Row + 1; row < r.End.Row; row++ {
		sb.WriteByte('\n')
		sb.WriteString(e.lineLocked(row))
	}
	sb.WriteByte('\n')
	sb.WriteString(sliceLine(e.lineLocked(r.End.Row), 0, r.End.Column))
	return sb.String()
}

// LineText implements host.Editor.
func (e *Editor) LineText(row int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lineLocked(row)
}

func (e *Editor) lineLocked(row int) string {
	if row < 0 || row >= len(e.lines) {
		return ""
	}
	return e.lines[row]
}

func sliceLine(line string, start, end int) string {
	runes := []rune(line)
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	if end < 0 || end > len(runes) {
		end = len(runes)
	}
	if end < start {
		end = start
	}
	return string(runes[start:end])
}

// DefaultCharWidth implements host.Editor.
func (e *Editor) DefaultCharWidth() float64 { return e.CharWidth }

// BufferPositionForPixel implements host.Editor using fixed cell metrics.
func (e *Editor) BufferPositionForPixel(p host.PixelPoint) (host.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p.Y < 0 || p.X < 0 {
		return host.Position{}, false
	}
	row := int(p.Y / e.LineHeight)
	if row >= len(e.lines) {
		return host.Position{}, false
	}
	col := int(math.Round(p.X / e.CharWidth))
	if max := len([]rune(e.lines[row])); col > max {
		col = max
	}
	return host.Position{Row: row, Column: col}, true
}

// PixelForBufferPosition implements host.Editor.
func (e *Editor) PixelForBufferPosition(pos host.Position) host.PixelPoint {
	return host.PixelPoint{
		X: float64(pos.Column) * e.CharWidth,
		Y: float64(pos.Row) * e.LineHeight,
	}
}

// View implements host.Editor.
func (e *Editor) View() host.View { return e.view }

// TestView returns the fake view for assertions.
func (e *Editor) TestView() *View { return e.view }

// OnCursorMoved implements host.Editor.
func (e *Editor) OnCursorMoved(fn func(host.CursorMove)) host.UnsubscribeFunc {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.cursorFns[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.cursorFns, id)
		e.mu.Unlock()
	}
}

// OnTextChanged implements host.Editor.
func (e *Editor) OnTextChanged(fn func([]host.TextChange)) host.UnsubscribeFunc {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.textFns[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.textFns, id)
		e.mu.Unlock()
	}
}

// OnPointerMoved implements host.Editor.
func (e *Editor) OnPointerMoved(fn func(host.PixelPoint)) host.UnsubscribeFunc {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.pointerFns[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.pointerFns, id)
		e.mu.Unlock()
	}
}

// OnDestroyed implements host.Editor.
func (e *Editor) OnDestroyed(fn func()) host.UnsubscribeFunc {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.destroyFns[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.destroyFns, id)
		e.mu.Unlock()
	}
}

// MoveCursor sets the cursor and fires cursor listeners. textChanged marks
// the move as caused by a buffer edit.
func (e *Editor) MoveCursor(pos host.Position, textChanged bool) {
	e.mu.Lock()
	old := e.cursor
	e.cursor = pos
	fns := make([]func(host.CursorMove), 0, len(e.cursorFns))
	for _, fn := range e.cursorFns {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	mv := host.CursorMove{Old: old, New: pos, TextChanged: textChanged}
	for _, fn := range fns {
		fn(mv)
	}
}

// MovePointer fires pointer listeners with the given pixel point.
func (e *Editor) MovePointer(p host.PixelPoint) {
	e.mu.Lock()
	fns := make([]func(host.PixelPoint), 0, len(e.pointerFns))
	for _, fn := range e.pointerFns {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// PointerAt returns the pixel point at the center of the cell at pos,
// convenient for resting the pointer exactly on a character.
func (e *Editor) PointerAt(pos host.Position) host.PixelPoint {
	px := e.PixelForBufferPosition(pos)
	px.Y += e.LineHeight / 2
	return px
}

// ApplyChanges fires text-change listeners and, when moveCursor is true,
// moves the cursor to the end of the last change's new range and fires
// cursor listeners with TextChanged set.
func (e *Editor) ApplyChanges(changes []host.TextChange, moveCursor bool) {
	e.mu.Lock()
	fns := make([]func([]host.TextChange), 0, len(e.textFns))
	for _, fn := range e.textFns {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	if moveCursor && len(changes) > 0 {
		e.MoveCursor(changes[len(changes)-1].NewRange.End, true)
	}
	for _, fn := range fns {
		fn(changes)
	}
}

// Insert types text at the cursor: it updates the buffer, moves the cursor
// past the insertion, and fires text-change listeners with a single change.
// The text must not contain newlines.
func (e *Editor) Insert(text string) {
	e.mu.Lock()
	pos := e.cursor
	line := e.lineLocked(pos.Row)
	runes := []rune(line)
	col := pos.Column
	if col > len(runes) {
		col = len(runes)
	}
	if pos.Row >= 0 && pos.Row < len(e.lines) {
		e.lines[pos.Row] = string(runes[:col]) + text + string(runes[col:])
	}
	e.mu.Unlock()

	end := host.Position{Row: pos.Row, Column: col + len([]rune(text))}
	change := host.TextChange{
		OldRange: host.PointRange(pos),
		NewRange: host.Range{Start: pos, End: end},
		NewText:  text,
	}
	e.ApplyChanges([]host.TextChange{change}, true)
}

// Destroy fires destruction listeners.
func (e *Editor) Destroy() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.destroyFns))
	for _, fn := range e.destroyFns {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

var _ host.Editor = (*Editor)(nil)
