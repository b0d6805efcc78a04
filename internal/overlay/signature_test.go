package overlay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dshills/hoverlay/internal/config"
	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/provider"
	"github.com/dshills/hoverlay/internal/render"
)

// sigRecorder answers signature queries with a fixed result (or error)
// and records every trigger context it sees.
type sigRecorder struct {
	mu       sync.Mutex
	triggers []provider.TriggerContext
	result   *provider.SignatureResult
	err      error
}

func (s *sigRecorder) provider() provider.SignatureFunc {
	return provider.SignatureFunc{
		Meta:       provider.Info{Name: "sig-recorder", Priority: 1},
		Triggers:   "(,",
		Retriggers: ")",
		Fn: func(_ context.Context, _ host.Editor, _ host.Position, trig provider.TriggerContext) (*provider.SignatureResult, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.triggers = append(s.triggers, trig)
			if s.err != nil {
				return nil, s.err
			}
			return s.result, nil
		},
	}
}

func (s *sigRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

func (s *sigRecorder) last() provider.TriggerContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.triggers[len(s.triggers)-1]
}

func (s *sigRecorder) setResult(r *provider.SignatureResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r
}

func (s *sigRecorder) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func concatResult() *provider.SignatureResult {
	return &provider.SignatureResult{
		Signatures: []provider.SignatureInfo{{
			Label: "concat(str1 , str2)",
			Parameters: []provider.ParameterInfo{
				{Label: provider.OffsetLabel(7, 12), Documentation: "first string"},
				{Label: provider.OffsetLabel(14, 18), Documentation: "second string"},
			},
		}},
	}
}

func TestTriggerCharacterOpensSignature(t *testing.T) {
	f := newFixture(t, "concat")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 6}, false)
	f.ed.Insert("(")

	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "'(' never opened signature help")
	trig := rec.last()
	if trig.Kind != provider.TriggerCharacter {
		t.Errorf("trigger kind = %v, want trigger-character", trig.Kind)
	}
	if trig.Character != "(" {
		t.Errorf("trigger character = %q, want \"(\"", trig.Character)
	}
	if trig.IsRetrigger {
		t.Error("first query marked as retrigger")
	}
}

func TestNonTriggerCharacterDoesNotOpen(t *testing.T) {
	f := newFixture(t, "concat(")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 7}, false)
	f.ed.Insert("x")

	never(t, func() bool { return rec.count() > 0 }, "non-trigger character issued a query")
}

func TestNonTriggerTypingWhileOpenLeavesOverlay(t *testing.T) {
	f := newFixture(t, "concat(")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 7}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// Ordinary keystrokes neither re-query nor close: the overlay stays up,
	// stale, until the next trigger character.
	before := rec.count()
	f.ed.Insert("x")
	never(t, func() bool { return rec.count() > before }, "non-trigger character issued a provider query")
	if f.eng.Showing() != KindSignature {
		t.Error("non-trigger character closed signature help")
	}
}

func TestTriggerCharacterWhileOpenRetriggers(t *testing.T) {
	f := newFixture(t, "concat(str1")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	f.ed.Insert(",")
	eventually(t, func() bool { return rec.count() >= 2 }, "trigger character while open never re-queried")
	trig := rec.last()
	if trig.Kind != provider.TriggerCharacter || trig.Character != "," {
		t.Errorf("retrigger context = %+v, want trigger-character \",\"", trig)
	}
	if !trig.IsRetrigger {
		t.Error("query while open not marked as retrigger")
	}
}

func TestDeletionUnmountsSignatureWithoutQuery(t *testing.T) {
	f := newFixture(t, "concat(str1")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// Backspacing the last character: whether help still applies cannot be
	// inferred cheaply, so the overlay closes instead of re-querying.
	before := rec.count()
	f.ed.ApplyChanges([]host.TextChange{{
		OldRange: host.Range{Start: host.Position{Row: 0, Column: 10}, End: host.Position{Row: 0, Column: 11}},
		NewRange: host.PointRange(host.Position{Row: 0, Column: 10}),
		OldText:  "1",
	}}, true)

	eventually(t, func() bool { return f.eng.Showing() == "" }, "deletion never unmounted signature help")
	if rec.count() != before {
		t.Error("deletion issued a provider query")
	}
}

func TestProviderErrorUnmountsSignature(t *testing.T) {
	f := newFixture(t, "concat(str1")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// A failing provider counts as no result: the stale overlay closes.
	rec.setErr(errors.New("backend gone"))
	f.ed.Insert(",")
	eventually(t, func() bool { return f.eng.Showing() == "" }, "provider failure left stale signature help showing")
}

func TestRetriggerCharacterWithEmptyResultUnmounts(t *testing.T) {
	f := newFixture(t, "concat(str1")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// The ')' closes the argument list: the provider is re-queried with a
	// trigger-character retrigger and its empty answer closes the overlay.
	rec.setResult(&provider.SignatureResult{})
	f.ed.Insert(")")

	eventually(t, func() bool { return f.eng.Showing() == "" }, "empty retrigger result never unmounted")
	trig := rec.last()
	if trig.Kind != provider.TriggerCharacter || trig.Character != ")" {
		t.Errorf("retrigger context = %+v, want trigger-character \")\"", trig)
	}
	if !trig.IsRetrigger {
		t.Error("retrigger not marked")
	}
}

func TestMultiLineChangeUnmountsWithoutQuery(t *testing.T) {
	f := newFixture(t, "concat(str1")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	before := rec.count()
	start := host.Position{Row: 0, Column: 11}
	end := host.Position{Row: 1, Column: 3}
	f.ed.ApplyChanges([]host.TextChange{{
		OldRange: host.PointRange(start),
		NewRange: host.Range{Start: start, End: end},
		NewText:  ",\nxyz",
	}}, true)

	eventually(t, func() bool { return f.eng.Showing() == "" }, "multi-line change never unmounted signature help")
	if rec.count() != before {
		t.Error("multi-line change issued a query")
	}
}

func TestCursorMoveLeavesSignatureOpen(t *testing.T) {
	f := newFixture(t, "concat(str1")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// Plain navigation neither re-queries nor closes; with no hover
	// provider registered, the cursor rest that follows resolves nothing.
	before := rec.count()
	f.ed.MoveCursor(host.Position{Row: 0, Column: 2}, false)
	never(t, func() bool { return f.eng.Showing() != KindSignature }, "navigation closed signature help")
	if rec.count() != before {
		t.Error("navigation issued a signature query")
	}
}

func TestCursorMoveLeavesSignatureWithTypingGateOff(t *testing.T) {
	f := newFixture(t, "concat(str1")
	if err := f.store.Set(config.PathShowWhileTyping, false); err != nil {
		t.Fatal(err)
	}
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())
	hov := &wordHover{
		rng:   host.Range{Start: host.Position{Row: 0, Column: 0}, End: host.Position{Row: 0, Column: 6}},
		value: "docs",
	}
	f.eng.Hovers().Register(hov.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// With the typing gate off, an explicitly invoked overlay is left alone
	// even at cursor rest: no dismissal, no hover resolution over it.
	f.ed.MoveCursor(host.Position{Row: 0, Column: 2}, false)
	never(t, func() bool { return f.eng.Showing() != KindSignature }, "cursor move disturbed signature help with the typing gate off")
	if hov.queries() != 0 {
		t.Error("cursor rest resolved a hover over the kept signature overlay")
	}
}

func TestCursorRestWithSignatureOpenResolvesHover(t *testing.T) {
	f := newFixture(t, "concat(str1")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())
	hov := &wordHover{
		rng:   host.Range{Start: host.Position{Row: 0, Column: 0}, End: host.Position{Row: 0, Column: 6}},
		value: "docs",
	}
	f.eng.Hovers().Register(hov.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// An open signature overlay enables the cursor-rest path even with
	// showOnCursorMove off: resting outside its range resolves a hover,
	// which replaces it.
	f.ed.MoveCursor(host.Position{Row: 0, Column: 2}, false)
	eventually(t, func() bool { return f.eng.Showing() == KindHover }, "cursor rest never resolved a hover over the signature overlay")
}

func TestPairSkipRetriggers(t *testing.T) {
	f := newFixture(t, "concat(str1)")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// The editor's bracket completion consumes the ')' keystroke as a bare
	// cursor move over the existing closer.
	f.ed.MoveCursor(host.Position{Row: 0, Column: 12}, false)

	eventually(t, func() bool { return rec.count() >= 2 }, "pair skip never retriggered")
	trig := rec.last()
	if trig.Character != ")" || !trig.IsRetrigger {
		t.Errorf("pair-skip context = %+v, want retrigger with \")\"", trig)
	}
}

func TestPairSkipDisabledDoesNotQuery(t *testing.T) {
	f := newFixture(t, "concat(str1)")
	if err := f.store.Set(config.PathRetriggerOnPairSkip, false); err != nil {
		t.Fatal(err)
	}
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// With the heuristic off, the skip is plain navigation: no query, and
	// the overlay stays up.
	before := rec.count()
	f.ed.MoveCursor(host.Position{Row: 0, Column: 12}, false)
	never(t, func() bool { return rec.count() > before }, "disabled pair skip still issued a query")
	if f.eng.Showing() != KindSignature {
		t.Error("disabled pair skip closed signature help")
	}
}

func TestPairSkipHonorsTypingGate(t *testing.T) {
	f := newFixture(t, "concat(str1)")
	if err := f.store.Set(config.PathShowWhileTyping, false); err != nil {
		t.Fatal(err)
	}
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 11}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	// The skip stands in for typing ')': with the typing gate off it must
	// not query, just like a real keystroke.
	before := rec.count()
	f.ed.MoveCursor(host.Position{Row: 0, Column: 12}, false)
	never(t, func() bool { return rec.count() > before }, "pair skip queried with showOverlayWhileTyping off")
	if f.eng.Showing() != KindSignature {
		t.Error("pair skip closed signature help with the typing gate off")
	}
}

func TestShowWhileTypingDisabled(t *testing.T) {
	f := newFixture(t, "concat")
	if err := f.store.Set(config.PathShowWhileTyping, false); err != nil {
		t.Fatal(err)
	}
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 6}, false)
	f.ed.Insert("(")
	never(t, func() bool { return rec.count() > 0 }, "typing queried while showOverlayWhileTyping is off")
}

func TestSignatureContentAndParameterDoc(t *testing.T) {
	f := newFixture(t, "concat(")
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 7}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	overlays := f.view.LiveOverlays()
	if len(overlays) != 1 {
		t.Fatalf("live overlays = %d, want 1", len(overlays))
	}
	el := overlays[0].Spec.Item.(*render.Element)

	code := el.FindCodeBlock()
	if code == nil {
		t.Fatal("signature label did not render as a code block")
	}
	if got := code.PlainText(); got != "concat(str1 , str2)" {
		t.Errorf("label text = %q", got)
	}

	// First parameter's documentation, not the signature documentation.
	if el.Find(func(e *render.Element) bool { return e.Text == "first string" }) == nil {
		t.Errorf("active parameter documentation missing from %q", el.PlainText())
	}
}

func TestParameterHighlightTrimsOffsetLabel(t *testing.T) {
	f := newFixture(t, "concat(", WithGeometry(func(root *render.Element) render.Geometry {
		return &render.GridGeometry{CharWidth: 8, RowHeight: 16, Root: root}
	}))
	rec := &sigRecorder{result: concatResult()}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 7}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "toggle never opened signature help")

	f.view.FireVisible()

	el := f.view.LiveOverlays()[0].Spec.Item.(*render.Element)
	code := el.FindCodeBlock()
	var boxes []*render.Element
	for _, c := range code.Children {
		if c.Class == "active-parameter-highlight" {
			boxes = append(boxes, c)
		}
	}
	if len(boxes) != 1 {
		t.Fatalf("highlight boxes = %d, want 1", len(boxes))
	}

	// Offsets [7, 12) cover "str1 "; the trailing space is trimmed, so the
	// box hugs exactly "str1": 4 cells starting at column 7.
	box := boxes[0].Box
	if box == nil {
		t.Fatal("highlight box has no geometry")
	}
	if box.Left != 7*8 || box.Width != 4*8 {
		t.Errorf("box = %+v, want left %d width %d", *box, 7*8, 4*8)
	}
	if box.Height != 16 {
		t.Errorf("box height = %v, want the line height 16", box.Height)
	}
}

func TestActiveSignatureAndParameterClamping(t *testing.T) {
	f := newFixture(t, "concat(")
	rec := &sigRecorder{result: &provider.SignatureResult{
		Signatures: []provider.SignatureInfo{{
			Label: "concat(a, b)",
			Parameters: []provider.ParameterInfo{
				{Label: provider.StringLabel("a"), Documentation: "param a"},
			},
		}},
		ActiveSignature: 7,
		ActiveParameter: -3,
	}}
	f.eng.Signatures().Register(rec.provider())

	f.ed.MoveCursor(host.Position{Row: 0, Column: 7}, false)
	if err := f.eng.ToggleSignature(); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return f.eng.Showing() == KindSignature }, "out-of-range indices prevented mounting")

	el := f.view.LiveOverlays()[0].Spec.Item.(*render.Element)
	if el.Find(func(e *render.Element) bool { return e.Text == "param a" }) == nil {
		t.Error("clamped active parameter documentation missing")
	}
}

func TestParameterSpan(t *testing.T) {
	sig := provider.SignatureInfo{
		Label: "concat(str1 , str2)",
		Parameters: []provider.ParameterInfo{
			{Label: provider.OffsetLabel(7, 12)},
			{Label: provider.StringLabel("str2")},
		},
	}

	start, end, ok := parameterSpan(sig, 0)
	if !ok || start != 7 || end != 11 {
		t.Errorf("offset span = (%d, %d, %v), want (7, 11, true)", start, end, ok)
	}

	start, end, ok = parameterSpan(sig, 1)
	if !ok || string([]rune(sig.Label)[start:end]) != "str2" {
		t.Errorf("string span = (%d, %d, %v), want the \"str2\" span", start, end, ok)
	}

	if _, _, ok := parameterSpan(sig, 5); ok {
		t.Error("out-of-range parameter produced a span")
	}
}
