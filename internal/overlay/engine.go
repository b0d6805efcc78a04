package overlay

import (
	"errors"
	"math"
	"sync"

	"github.com/dshills/hoverlay/internal/config"
	"github.com/dshills/hoverlay/internal/debounce"
	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/logging"
	"github.com/dshills/hoverlay/internal/provider"
	"github.com/dshills/hoverlay/internal/render"
)

var (
	// ErrEngineClosed indicates an operation on a closed engine.
	ErrEngineClosed = errors.New("overlay engine closed")

	// ErrNoEditor indicates an operation that needs a focused text editor.
	ErrNoEditor = errors.New("no active text editor")
)

// GeometryFunc binds a measurement implementation to a rendered element
// tree. The engine calls it once per overlay, after the overlay reports
// itself visible.
type GeometryFunc func(root *render.Element) render.Geometry

// Engine coordinates hover and signature-help overlays over the host's
// active editor.
type Engine struct {
	mu sync.Mutex

	host       host.Host
	hovers     *provider.HoverRegistry
	signatures *provider.SignatureRegistry
	renderer   render.MarkupRenderer
	geometry   GeometryFunc
	settings   *config.Store
	log        *logging.Logger

	editor      host.Editor
	editorSubs  []host.UnsubscribeFunc
	hostSub     host.UnsubscribeFunc
	settingsSub *config.Subscription

	pointerRest *debounce.Scheduler[host.PixelPoint]
	cursorRest  *debounce.Scheduler[host.CursorMove]

	// epoch invalidates in-flight query continuations. It advances on
	// every state transition and on every newer query; a continuation
	// whose captured epoch no longer matches delivers nothing.
	epoch uint64

	current *Handle
	started bool
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithHoverRegistry sets the hover provider registry.
func WithHoverRegistry(r *provider.HoverRegistry) Option {
	return func(e *Engine) { e.hovers = r }
}

// WithSignatureRegistry sets the signature provider registry.
func WithSignatureRegistry(r *provider.SignatureRegistry) Option {
	return func(e *Engine) { e.signatures = r }
}

// WithRenderer sets the markup renderer.
func WithRenderer(r render.MarkupRenderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithGeometry sets the measurement binding used for sub-region parameter
// highlights. Without one, signature overlays mount without highlights.
func WithGeometry(fn GeometryFunc) Option {
	return func(e *Engine) { e.geometry = fn }
}

// WithSettings sets the settings store.
func WithSettings(s *config.Store) Option {
	return func(e *Engine) { e.settings = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine over h. Call Start to begin observing the
// active editor.
func NewEngine(h host.Host, opts ...Option) *Engine {
	e := &Engine{
		host:       h,
		hovers:     provider.NewHoverRegistry(),
		signatures: provider.NewSignatureRegistry(),
		renderer:   render.NewTreeRenderer(render.NewRegexHighlighter()),
		settings:   config.NewStore(config.Defaults()),
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("overlay")
	return e
}

// Hovers returns the hover provider registry.
func (e *Engine) Hovers() *provider.HoverRegistry { return e.hovers }

// Signatures returns the signature provider registry.
func (e *Engine) Signatures() *provider.SignatureRegistry { return e.signatures }

// Settings returns the settings store.
func (e *Engine) Settings() *config.Store { return e.settings }

// Start attaches the engine to the host's active editor and begins
// observing focus changes. Starting twice is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started || e.closed {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.rebuildSchedulersLocked()
	e.mu.Unlock()

	e.settingsSub = e.settings.SubscribePath(config.PathHoverTime, func(config.Change) {
		e.mu.Lock()
		e.rebuildSchedulersLocked()
		e.mu.Unlock()
	})
	e.hostSub = e.host.OnActiveEditorChanged(e.SetEditor)
	e.SetEditor(e.host.ActiveEditor())
}

// Close detaches every listener and unmounts any showing overlay. The
// engine cannot be restarted.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.detachEditorLocked()
	released := e.takeCurrentLocked()
	hostSub, settingsSub := e.hostSub, e.settingsSub
	e.hostSub, e.settingsSub = nil, nil
	if e.pointerRest != nil {
		e.pointerRest.Unschedule()
		e.cursorRest.Unschedule()
	}
	e.mu.Unlock()

	if hostSub != nil {
		hostSub()
	}
	settingsSub.Dispose()
	if released != nil {
		released.Release()
	}
}

// SetEditor switches the engine to a different editor. Any showing overlay
// is unmounted and pending rest timers are cancelled. Pass nil on blur.
func (e *Engine) SetEditor(ed host.Editor) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.detachEditorLocked()
	released := e.takeCurrentLocked()
	if e.pointerRest != nil {
		e.pointerRest.Unschedule()
		e.cursorRest.Unschedule()
	}

	e.editor = ed
	if ed != nil {
		e.editorSubs = []host.UnsubscribeFunc{
			ed.OnPointerMoved(e.handlePointerMoved),
			ed.OnCursorMoved(e.handleCursorMoved),
			ed.OnTextChanged(e.handleTextChanged),
			ed.OnDestroyed(func() { e.SetEditor(nil) }),
		}
	}
	e.mu.Unlock()

	if released != nil {
		released.Release()
	}
	if ed != nil {
		e.log.Debug("attached editor %s (%s)", ed.ID(), ed.GrammarScope())
	}
}

// Showing returns the kind of the showing overlay, or "" when idle.
func (e *Engine) Showing() Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return ""
	}
	return e.current.kind
}

// ShowingRange returns the showing overlay's buffer range; ok is false
// when the engine is idle.
func (e *Engine) ShowingRange() (r host.Range, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return host.Range{}, false
	}
	return e.current.Range(), true
}

// ToggleHover dismisses the showing overlay when its range covers the
// cursor; otherwise it resolves a hover at the cursor position
// immediately, bypassing the rest debounce.
func (e *Engine) ToggleHover() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	ed := e.editor
	if ed == nil {
		e.mu.Unlock()
		return ErrNoEditor
	}
	pos := ed.CursorPosition()
	if e.current != nil && e.current.Range().Contains(pos) {
		released := e.takeCurrentLocked()
		e.mu.Unlock()
		released.Release()
		return nil
	}
	e.mu.Unlock()

	e.resolveHover(ed, pos)
	return nil
}

// ToggleSignature dismisses a showing signature overlay, or queries
// signature help at the cursor with an invoked trigger.
func (e *Engine) ToggleSignature() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	ed := e.editor
	if ed == nil {
		e.mu.Unlock()
		return ErrNoEditor
	}
	if e.current != nil && e.current.kind == KindSignature {
		released := e.takeCurrentLocked()
		e.mu.Unlock()
		released.Release()
		return nil
	}
	e.mu.Unlock()

	e.querySignature(ed, ed.CursorPosition(), provider.TriggerContext{Kind: provider.TriggerInvoked})
	return nil
}

// Dismiss unmounts any showing overlay.
func (e *Engine) Dismiss() {
	e.mu.Lock()
	released := e.takeCurrentLocked()
	e.mu.Unlock()
	if released != nil {
		released.Release()
	}
}

// handlePointerMoved feeds the pointer-rest scheduler.
func (e *Engine) handlePointerMoved(p host.PixelPoint) {
	if !e.settings.Get().Hover.ShowOnMouseMove {
		return
	}
	e.mu.Lock()
	rest := e.pointerRest
	e.mu.Unlock()
	if rest != nil {
		rest.Schedule(p)
	}
}

// pointerRested runs after the pointer has been still for the rest period.
func (e *Engine) pointerRested(p host.PixelPoint) {
	e.mu.Lock()
	ed := e.editor
	e.mu.Unlock()
	if ed == nil {
		return
	}

	s := e.settings.Get().Hover
	if !s.ShowOnMouseMove {
		return
	}

	pos, ok := ed.BufferPositionForPixel(p)
	if !ok {
		e.dismissKind(KindHover)
		return
	}

	// A position resolves even when the pointer is far past the end of a
	// line; compare against the cell's real pixel edge to tell on-text
	// from off-text.
	cell := ed.PixelForBufferPosition(pos)
	if math.Abs(p.X-cell.X) > ed.DefaultCharWidth()*s.OffTextThreshold {
		e.dismissKind(KindHover)
		return
	}

	e.mu.Lock()
	if e.current != nil && e.current.Range().Contains(pos) {
		// Still inside the mounted range, whatever kind is up: the overlay
		// already describes this spot.
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	e.resolveHover(ed, pos)
}

// handleCursorMoved recognizes pair skips over auto-inserted closing
// characters and feeds everything else to the cursor-rest scheduler.
func (e *Engine) handleCursorMoved(mv host.CursorMove) {
	if mv.TextChanged {
		// The text-change handler owns edit-driven moves.
		return
	}

	e.mu.Lock()
	ed := e.editor
	sigOpen := e.current != nil && e.current.kind == KindSignature
	cursorRest := e.cursorRest
	e.mu.Unlock()
	if ed == nil {
		return
	}

	// A pair skip stands in for a typed closing character, so it obeys the
	// same typing gate as a real edit.
	if sigOpen && e.settings.Get().SignatureHelp.ShowOverlayWhileTyping {
		if change, ok := e.pairSkipChange(ed, mv); ok {
			e.signatureOnEdit(ed, []host.TextChange{change}, true)
			return
		}
	}

	if cursorRest != nil {
		cursorRest.Schedule(mv)
	}
}

// cursorRested runs after the cursor has been still for the rest period.
// Nothing happens unless cursor hovers are enabled or a signature overlay
// is open, and an open signature overlay is left untouched while
// showOverlayWhileTyping is off.
func (e *Engine) cursorRested(host.CursorMove) {
	e.mu.Lock()
	ed := e.editor
	mounted := e.current != nil
	sigOpen := mounted && e.current.kind == KindSignature
	var mountedRange host.Range
	if mounted {
		mountedRange = e.current.Range()
	}
	e.mu.Unlock()
	if ed == nil {
		return
	}

	s := e.settings.Get()
	if !s.Hover.ShowOnCursorMove && !sigOpen {
		return
	}
	if sigOpen && !s.SignatureHelp.ShowOverlayWhileTyping {
		return
	}

	pos := ed.CursorPosition()
	if mounted && mountedRange.Contains(pos) {
		return
	}
	e.resolveHover(ed, pos)
}

// handleTextChanged dismisses stale hover state and drives signature
// (re)triggering.
func (e *Engine) handleTextChanged(changes []host.TextChange) {
	e.mu.Lock()
	ed := e.editor
	sigShowing := e.current != nil && e.current.kind == KindSignature
	if e.pointerRest != nil {
		e.pointerRest.Unschedule()
		e.cursorRest.Unschedule()
	}
	e.mu.Unlock()
	if ed == nil || len(changes) == 0 {
		return
	}

	// Hover content describes text that just changed; it never survives
	// an edit.
	e.dismissKind(KindHover)

	if !e.settings.Get().SignatureHelp.ShowOverlayWhileTyping {
		return
	}
	e.signatureOnEdit(ed, changes, sigShowing)
}

// dismissKind unmounts the showing overlay when it is of the given kind.
func (e *Engine) dismissKind(kind Kind) {
	e.mu.Lock()
	var released *Handle
	if e.current != nil && e.current.kind == kind {
		released = e.takeCurrentLocked()
	}
	e.mu.Unlock()
	if released != nil {
		released.Release()
	}
}

// takeCurrentLocked removes the showing overlay from the engine state and
// returns it for release outside the lock. The epoch advances so stale
// query continuations cannot resurrect it.
func (e *Engine) takeCurrentLocked() *Handle {
	if e.current == nil {
		return nil
	}
	e.epoch++
	h := e.current
	e.current = nil
	return h
}

// beginQueryLocked stamps a new query epoch and returns it. Issuing a
// query invalidates every older in-flight continuation: the newest trigger
// wins the race.
func (e *Engine) beginQueryLocked() uint64 {
	e.epoch++
	return e.epoch
}

// mountLocked swaps in a new overlay. Returns the replaced handle, which
// the caller releases outside the lock.
func (e *Engine) mountLocked(h *Handle) *Handle {
	old := e.takeCurrentLocked()
	e.epoch++
	e.current = h
	return old
}

// rebuildSchedulersLocked recreates the rest schedulers with the current
// hover time. Pending invocations on the old schedulers are cancelled.
func (e *Engine) rebuildSchedulersLocked() {
	if e.pointerRest != nil {
		e.pointerRest.Unschedule()
		e.cursorRest.Unschedule()
	}
	delay := e.settings.Get().Hover.RestDuration()
	e.pointerRest = debounce.NewScheduler(delay, e.pointerRested)
	e.cursorRest = debounce.NewScheduler(delay, e.cursorRested)
}

func (e *Engine) detachEditorLocked() {
	for _, unsub := range e.editorSubs {
		unsub()
	}
	e.editorSubs = nil
	e.editor = nil
}
