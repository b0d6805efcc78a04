package overlay

import (
	"sort"
	"unicode"

	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/render"
)

// applyParameterHighlight paints the active parameter inside a visible
// signature overlay by appending positioned highlight boxes to the label's
// code block. Runs once per overlay, from the overlay's visibility
// callback, because measurement needs the element attached to the view.
func (e *Engine) applyParameterHighlight(el *render.Element, start, end int) {
	code := el.FindCodeBlock()
	if code == nil {
		return
	}
	geom := e.geometry(el)
	if geom == nil {
		return
	}

	boxes := parameterBoxes(geom, code, start, end)
	for _, box := range boxes {
		code.AppendChild(box)
	}
}

// parameterBoxes measures the [start, end) character span of the code
// block's text and returns highlight box elements positioned relative to
// the code block's content box.
func parameterBoxes(geom render.Geometry, code *render.Element, start, end int) []*render.Element {
	text := []rune(code.PlainText())

	// Highlighted rendering may prepend whitespace (a leading newline is
	// common) that the label's offsets know nothing about.
	lead := 0
	for lead < len(text) && unicode.IsSpace(text[lead]) {
		lead++
	}
	start += lead
	end += lead

	sp, ok := locateOffset(code, start)
	if !ok {
		return nil
	}
	ep, ok := locateOffset(code, end)
	if !ok {
		return nil
	}

	rects := geom.RangeRects(sp, ep)
	if len(rects) == 0 {
		return nil
	}

	sort.Slice(rects, func(i, j int) bool {
		if rects[i].Top != rects[j].Top {
			return rects[i].Top < rects[j].Top
		}
		return rects[i].Left < rects[j].Left
	})

	// Adjacent fragments of the same visual row come back as separate
	// rects (one per text node); fold overlapping neighbors together.
	merged := rects[:0]
	for _, r := range rects {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if r.Top == last.Top && r.Left <= last.Right() {
				if right := r.Right(); right > last.Right() {
					last.Width = right - last.Left
				}
				continue
			}
		}
		merged = append(merged, r)
	}

	lineHeight, hasLineHeight := geom.LineHeight(code)
	box := geom.BoundingRect(code)
	borderLeft, borderTop := geom.BorderInsets(code)

	out := make([]*render.Element, 0, len(merged))
	for _, r := range merged {
		rel := host.Rect{
			Left:   r.Left - box.Left - borderLeft,
			Top:    r.Top - box.Top - borderTop,
			Width:  r.Width,
			Height: r.Height,
		}
		if rel.Height == 0 && hasLineHeight {
			rel.Height = lineHeight
		}
		b := render.NewElement("div", "active-parameter-highlight")
		b.Box = &rel
		out = append(out, b)
	}
	return out
}

// locateOffset resolves a character offset into the code block's text to a
// point within one of its text leaves.
func locateOffset(code *render.Element, offset int) (render.TextPoint, bool) {
	if offset < 0 {
		return render.TextPoint{}, false
	}
	consumed := 0
	for _, leaf := range code.TextLeaves() {
		n := len([]rune(leaf.Text))
		if offset <= consumed+n {
			return render.TextPoint{Leaf: leaf, Offset: offset - consumed}, true
		}
		consumed += n
	}
	return render.TextPoint{}, false
}
