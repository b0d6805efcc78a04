package render

import (
	"strings"

	"github.com/dshills/hoverlay/internal/host"
)

// GridGeometry measures elements on a fixed monospace grid: every
// character occupies CharWidth x LineHeight, rows break at newlines in the
// element's plain text. It backs the demo and tests; real hosts implement
// Geometry over actual pixel measurement.
type GridGeometry struct {
	// CharWidth is the pixel width of one character cell.
	CharWidth float64

	// RowHeight is the pixel height of one row.
	RowHeight float64

	// Origin is the top-left pixel of the measured element's content.
	Origin host.PixelPoint

	// BorderLeft and BorderTop are reported as the element's border insets.
	BorderLeft float64
	BorderTop  float64

	// Root is the element the grid lays out. Offsets for RangeRects are
	// computed against its plain text.
	Root *Element
}

// RangeRects implements Geometry. It returns one rectangle per grid row
// the range touches.
func (g *GridGeometry) RangeRects(start, end TextPoint) []host.Rect {
	startOff, ok := g.globalOffset(start)
	if !ok {
		return nil
	}
	endOff, ok := g.globalOffset(end)
	if !ok || endOff <= startOff {
		return nil
	}

	text := []rune(g.Root.PlainText())
	if endOff > len(text) {
		endOff = len(text)
	}

	// Row/column of each offset, breaking rows at newlines.
	var rects []host.Rect
	row, col := 0, 0
	runStart := -1
	flush := func(endCol int) {
		if runStart < 0 {
			return
		}
		rects = append(rects, host.Rect{
			Left:   g.Origin.X + float64(runStart)*g.CharWidth,
			Top:    g.Origin.Y + float64(row)*g.RowHeight,
			Width:  float64(endCol-runStart) * g.CharWidth,
			Height: g.RowHeight,
		})
		runStart = -1
	}

	for i := 0; i < endOff; i++ {
		if i >= startOff && runStart < 0 {
			runStart = col
		}
		if i < len(text) && text[i] == '\n' {
			flush(col)
			row++
			col = 0
			continue
		}
		col++
	}
	flush(col)
	return rects
}

// BoundingRect implements Geometry.
func (g *GridGeometry) BoundingRect(el *Element) host.Rect {
	text := el.PlainText()
	rows := strings.Count(text, "\n") + 1
	maxCols := 0
	for _, line := range strings.Split(text, "\n") {
		if n := len([]rune(line)); n > maxCols {
			maxCols = n
		}
	}
	return host.Rect{
		Left:   g.Origin.X - g.BorderLeft,
		Top:    g.Origin.Y - g.BorderTop,
		Width:  float64(maxCols)*g.CharWidth + g.BorderLeft,
		Height: float64(rows)*g.RowHeight + g.BorderTop,
	}
}

// LineHeight implements Geometry.
func (g *GridGeometry) LineHeight(*Element) (float64, bool) {
	return g.RowHeight, true
}

// BorderInsets implements Geometry.
func (g *GridGeometry) BorderInsets(*Element) (float64, float64) {
	return g.BorderLeft, g.BorderTop
}

// globalOffset converts a TextPoint to a character offset into Root's
// plain text.
func (g *GridGeometry) globalOffset(p TextPoint) (int, bool) {
	if p.Leaf == nil || g.Root == nil {
		return 0, false
	}
	offset := 0
	found := false
	g.Root.walkLeaves(func(leaf *Element) bool {
		if leaf == p.Leaf {
			offset += p.Offset
			found = true
			return false
		}
		offset += len([]rune(leaf.Text))
		return true
	})
	if !found {
		return 0, false
	}
	return offset, true
}

var _ Geometry = (*GridGeometry)(nil)
