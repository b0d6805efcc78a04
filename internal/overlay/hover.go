package overlay

import (
	"context"
	"strings"

	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/provider"
	"github.com/dshills/hoverlay/internal/render"
)

// resolveHover queries hover providers at pos and mounts the first
// non-empty answer. The query runs asynchronously; its continuation is
// dropped when the engine moved on before the answer arrived.
func (e *Engine) resolveHover(ed host.Editor, pos host.Position) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	epoch := e.beginQueryLocked()
	e.mu.Unlock()

	go func() {
		res := e.queryHoverProviders(ed, pos)
		if res == nil {
			// Nothing to show here. If a hover overlay is still up from a
			// previous position, it no longer describes where the user is.
			e.mu.Lock()
			var released *Handle
			if e.epoch == epoch && e.current != nil && e.current.kind == KindHover {
				released = e.takeCurrentLocked()
			}
			e.mu.Unlock()
			if released != nil {
				released.Release()
			}
			return
		}

		if res.Range != nil && !res.Range.Contains(pos) {
			// A result for somewhere the query never asked about is a
			// provider bug; drop it rather than mount it at the wrong spot.
			return
		}

		markdown := res.Value
		if res.Kind == provider.PlainText {
			markdown = render.EscapeText(res.Value)
		}
		el, err := e.renderer.Render(markdown)
		if err != nil {
			e.log.Warn("hover render failed: %v", err)
			return
		}
		if el == nil {
			return
		}

		resultRange := host.PointRange(pos)
		if res.Range != nil {
			resultRange = *res.Range
		}

		e.mountHover(epoch, ed, resultRange, el)
	}()
}

// queryHoverProviders asks the preferred providers in priority order, then
// falls back to the legacy datatip providers. The first provider with
// content wins.
func (e *Engine) queryHoverProviders(ed host.Editor, pos host.Position) *provider.HoverResult {
	ctx := context.Background()

	for _, p := range e.hovers.ResolveAll(ed) {
		res, err := p.Hover(ctx, ed, pos)
		if err != nil {
			e.log.Warn("hover provider %s failed: %v", p.Info().Name, err)
			continue
		}
		if res != nil && res.Value != "" {
			return res
		}
	}

	for _, p := range e.hovers.ResolveDatatips(ed) {
		tip, err := p.Datatip(ctx, ed, pos)
		if err != nil {
			e.log.Warn("datatip provider %s failed: %v", p.Info().Name, err)
			continue
		}
		if res := normalizeDatatip(tip, pos); res != nil {
			return res
		}
	}
	return nil
}

// normalizeDatatip converts a legacy datatip into the preferred hover
// shape. Component tips carry no renderable text and count as no result.
func normalizeDatatip(tip *provider.Datatip, pos host.Position) *provider.HoverResult {
	if tip == nil || tip.Component || len(tip.Marked) == 0 {
		return nil
	}

	parts := make([]string, 0, len(tip.Marked))
	for _, m := range tip.Marked {
		if m.Value == "" {
			continue
		}
		if m.Snippet {
			parts = append(parts, render.FencedBlock(m.Value, render.FenceLanguageForScope(m.Grammar)))
		} else {
			parts = append(parts, m.Value)
		}
	}
	if len(parts) == 0 {
		return nil
	}

	rng := tip.Range
	if rng == nil {
		r := host.PointRange(pos)
		rng = &r
	}
	return &provider.HoverResult{
		Range: rng,
		Kind:  provider.Markdown,
		Value: strings.Join(parts, "\n\n"),
	}
}

// mountHover swaps in a hover overlay over rng, unless the engine moved on
// or an equivalent hover is already showing.
func (e *Engine) mountHover(epoch uint64, ed host.Editor, rng host.Range, el *render.Element) {
	e.mu.Lock()
	if e.epoch != epoch || e.closed {
		e.mu.Unlock()
		return
	}

	// A showing hover that covers the same text is kept rather than
	// remounted; remounting would flicker for nothing.
	if e.current != nil && e.current.kind == KindHover && e.current.Range().Intersects(rng) {
		e.mu.Unlock()
		return
	}

	view := ed.View()
	marker := view.CreateRangeMarker(rng, host.InvalidateNever)
	decorations := make([]host.Decoration, 0, 2)
	if !rng.IsEmpty() {
		decorations = append(decorations, view.Decorate(marker, host.DecorationSpec{
			Kind:  host.DecorationHighlight,
			Class: "hover-range-highlight",
		}))
	}
	decorations = append(decorations, view.Decorate(marker, host.DecorationSpec{
		Kind:   host.DecorationOverlay,
		Class:  "hover-overlay",
		Item:   el,
		Anchor: host.AnchorTail,
	}))

	h := newHandle(KindHover, marker, decorations)
	released := e.mountLocked(h)
	e.mu.Unlock()

	if released != nil {
		released.Release()
	}
	e.log.Debug("mounted hover %s over %v", h.ID(), rng)
}
