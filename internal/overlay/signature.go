package overlay

import (
	"context"
	"strings"
	"unicode"

	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/provider"
	"github.com/dshills/hoverlay/internal/render"
)

// pairSkipChange recognizes a cursor move that skipped over a closing pair
// character instead of typing it: editors with bracket autocompletion
// consume the closing keystroke as a one-column cursor move, so no text
// change fires. The skipped character is reported as a synthetic insertion
// so retriggering treats both paths alike.
func (e *Engine) pairSkipChange(ed host.Editor, mv host.CursorMove) (host.TextChange, bool) {
	s := e.settings.Get().SignatureHelp
	if !s.RetriggerOnPairSkip {
		return host.TextChange{}, false
	}
	if mv.New.Row != mv.Old.Row || mv.New.Column != mv.Old.Column+1 {
		return host.TextChange{}, false
	}

	skipped := ed.TextInRange(host.Range{Start: mv.Old, End: mv.New})
	if skipped == "" || !strings.Contains(s.PairSkipCharacters, skipped) {
		return host.TextChange{}, false
	}
	return host.TextChange{
		OldRange: host.PointRange(mv.Old),
		NewRange: host.Range{Start: mv.Old, End: mv.New},
		NewText:  skipped,
	}, true
}

// signatureOnEdit decides whether an edit (re)triggers signature help.
//
// Only a lone single-row insertion at the selection qualifies; anything
// else (multi-cursor edits, deletions, pastes spanning rows, edits away
// from the cursor) dismisses an open overlay rather than showing help for
// text the user is not typing into. Qualifying insertions query only on
// registered trigger or retrigger characters; other keystrokes leave an
// open overlay up, stale, instead of querying the provider on every
// character.
func (e *Engine) signatureOnEdit(ed host.Editor, changes []host.TextChange, open bool) {
	change, ok := relevantChange(changes)
	if !ok {
		if open {
			e.dismissKind(KindSignature)
		}
		return
	}

	sel := ed.CursorPosition()
	if !change.NewRange.Contains(sel) && change.NewRange.End != sel {
		if open {
			e.dismissKind(KindSignature)
		}
		return
	}

	best := e.signatures.ResolveBest(ed)
	if best == nil {
		if open {
			e.dismissKind(KindSignature)
		}
		return
	}

	char := typedCharacterBefore(change, sel)
	trigger := char != "" && strings.Contains(best.TriggerCharacters(), char)
	retrigger := char != "" && strings.Contains(best.RetriggerCharacters(), char)

	if open {
		if !trigger && !retrigger {
			return
		}
		e.querySignature(ed, sel, provider.TriggerContext{
			Kind:        provider.TriggerCharacter,
			Character:   char,
			IsRetrigger: true,
		})
		return
	}

	if !trigger {
		return
	}
	e.querySignature(ed, sel, provider.TriggerContext{
		Kind:      provider.TriggerCharacter,
		Character: char,
	})
}

// relevantChange extracts the single meaningful insertion of a
// transaction. Deletions are not relevant: the caller unmounts instead.
func relevantChange(changes []host.TextChange) (host.TextChange, bool) {
	var found host.TextChange
	n := 0
	for _, c := range changes {
		if c.NewText == "" && c.OldText == "" {
			continue
		}
		found = c
		n++
	}
	if n != 1 || found.NewText == "" {
		return host.TextChange{}, false
	}
	if !found.NewRange.SingleRow() || strings.ContainsRune(found.NewText, '\n') {
		return host.TextChange{}, false
	}
	return found, true
}

// typedCharacterBefore returns the inserted character immediately before
// the selection, or "" when the selection does not sit right after
// inserted text (e.g. after a deletion).
func typedCharacterBefore(change host.TextChange, sel host.Position) string {
	if change.NewText == "" || sel.Row != change.NewRange.Start.Row {
		return ""
	}
	runes := []rune(change.NewText)
	idx := sel.Column - change.NewRange.Start.Column
	if idx < 1 || idx > len(runes) {
		return ""
	}
	return string(runes[idx-1])
}

// querySignature asks the best applicable provider for signature help at
// pos and mounts the answer. An empty answer dismisses an open signature
// overlay.
func (e *Engine) querySignature(ed host.Editor, pos host.Position, trig provider.TriggerContext) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	epoch := e.beginQueryLocked()
	e.mu.Unlock()

	best := e.signatures.ResolveBest(ed)
	if best == nil {
		return
	}

	go func() {
		res, err := best.Signatures(context.Background(), ed, pos, trig)
		if err != nil {
			// A failed provider counts as no result: stale content must not
			// stay on screen.
			e.log.Warn("signature provider %s failed: %v", best.Info().Name, err)
			res = nil
		}

		if res == nil || len(res.Signatures) == 0 {
			e.mu.Lock()
			var released *Handle
			if e.epoch == epoch && e.current != nil && e.current.kind == KindSignature {
				released = e.takeCurrentLocked()
			}
			e.mu.Unlock()
			if released != nil {
				released.Release()
			}
			return
		}

		e.mountSignature(epoch, ed, pos, res)
	}()
}

// mountSignature renders the active signature and swaps in the overlay at
// the cursor point.
func (e *Engine) mountSignature(epoch uint64, ed host.Editor, pos host.Position, res *provider.SignatureResult) {
	active := res.ActiveSignature
	if active < 0 || active >= len(res.Signatures) {
		active = 0
	}
	sig := res.Signatures[active]

	activeParam := res.ActiveParameter
	if activeParam < 0 || activeParam >= len(sig.Parameters) {
		activeParam = 0
	}

	markdown := e.composeSignatureMarkdown(ed, sig, activeParam)
	el, err := e.renderer.Render(markdown)
	if err != nil {
		e.log.Warn("signature render failed: %v", err)
		return
	}
	if el == nil {
		return
	}

	var onVisible func()
	if e.geometry != nil {
		if start, end, ok := parameterSpan(sig, activeParam); ok {
			onVisible = func() { e.applyParameterHighlight(el, start, end) }
		}
	}

	e.mu.Lock()
	if e.epoch != epoch || e.closed {
		e.mu.Unlock()
		return
	}

	view := ed.View()
	marker := view.CreateRangeMarker(host.PointRange(pos), host.InvalidateNever)
	decoration := view.Decorate(marker, host.DecorationSpec{
		Kind:      host.DecorationOverlay,
		Class:     "signature-overlay",
		Item:      el,
		Anchor:    host.AnchorTail,
		OnVisible: onVisible,
	})

	h := newHandle(KindSignature, marker, []host.Decoration{decoration})
	released := e.mountLocked(h)
	e.mu.Unlock()

	if released != nil {
		released.Release()
	}
	e.log.Debug("mounted signature %s at %v", h.ID(), pos)
}

// composeSignatureMarkdown builds the overlay content: the signature label
// as a code fence in the editor's language, the active parameter's
// documentation, and optionally the whole signature's documentation.
func (e *Engine) composeSignatureMarkdown(ed host.Editor, sig provider.SignatureInfo, activeParam int) string {
	lang := render.FenceLanguageForScope(ed.GrammarScope())
	parts := []string{render.FencedBlock(sig.Label, lang)}

	if activeParam < len(sig.Parameters) {
		if doc := sig.Parameters[activeParam].Documentation; doc != "" {
			parts = append(parts, doc)
		}
	}
	if e.settings.Get().SignatureHelp.IncludeSignatureDocumentation && sig.Documentation != "" {
		parts = append(parts, "---", sig.Documentation)
	}
	return strings.Join(parts, "\n\n")
}

// parameterSpan locates the active parameter inside the signature label as
// [start, end) character offsets. Offset labels are trimmed to their
// non-whitespace core so the highlight hugs the parameter text; string
// labels are located by substring search.
func parameterSpan(sig provider.SignatureInfo, activeParam int) (start, end int, ok bool) {
	if activeParam >= len(sig.Parameters) {
		return 0, 0, false
	}
	label := []rune(sig.Label)
	pl := sig.Parameters[activeParam].Label

	if pl.Offsets {
		start, end = pl.Start, pl.End
		if start < 0 || end > len(label) || start >= end {
			return 0, 0, false
		}
		for start < end && unicode.IsSpace(label[start]) {
			start++
		}
		for end > start && unicode.IsSpace(label[end-1]) {
			end--
		}
		return start, end, start < end
	}

	if pl.Text == "" {
		return 0, 0, false
	}
	idx := strings.Index(sig.Label, pl.Text)
	if idx < 0 {
		return 0, 0, false
	}
	// Byte index to rune offset.
	start = len([]rune(sig.Label[:idx]))
	return start, start + len([]rune(pl.Text)), true
}
