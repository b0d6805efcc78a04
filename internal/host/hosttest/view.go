package hosttest

import (
	"sync"

	"github.com/dshills/hoverlay/internal/host"
)

// View is an in-memory host.View that records markers and decorations.
type View struct {
	mu sync.Mutex

	markers     []*Marker
	decorations []*Decoration
}

// NewView creates an empty fake view.
func NewView() *View {
	return &View{}
}

// CreateRangeMarker implements host.View.
func (v *View) CreateRangeMarker(r host.Range, invalidate host.Invalidation) host.Marker {
	m := &Marker{view: v, rng: r, invalidate: invalidate}
	v.mu.Lock()
	v.markers = append(v.markers, m)
	v.mu.Unlock()
	return m
}

// Decorate implements host.View.
func (v *View) Decorate(m host.Marker, spec host.DecorationSpec) host.Decoration {
	d := &Decoration{marker: m.(*Marker), Spec: spec}
	v.mu.Lock()
	v.decorations = append(v.decorations, d)
	v.mu.Unlock()

	m.(*Marker).attach(d)
	return d
}

// LiveMarkers returns the markers that have not been destroyed.
func (v *View) LiveMarkers() []*Marker {
	v.mu.Lock()
	defer v.mu.Unlock()

	var live []*Marker
	for _, m := range v.markers {
		if !m.Destroyed() {
			live = append(live, m)
		}
	}
	return live
}

// LiveOverlays returns the overlay decorations that have not been destroyed.
func (v *View) LiveOverlays() []*Decoration {
	v.mu.Lock()
	defer v.mu.Unlock()

	var live []*Decoration
	for _, d := range v.decorations {
		if !d.Destroyed() && d.Spec.Kind == host.DecorationOverlay {
			live = append(live, d)
		}
	}
	return live
}

// FireVisible invokes the pending OnVisible callback of every live overlay
// decoration, simulating the host attaching the overlay elements.
func (v *View) FireVisible() {
	for _, d := range v.LiveOverlays() {
		d.fireVisible()
	}
}

// Marker is a recorded fake marker.
type Marker struct {
	mu          sync.Mutex
	view        *View
	rng         host.Range
	invalidate  host.Invalidation
	destroyed   bool
	decorations []*Decoration
}

// Range implements host.Marker.
func (m *Marker) Range() host.Range {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng
}

// Invalidation returns the strategy the marker was created with.
func (m *Marker) Invalidation() host.Invalidation {
	return m.invalidate
}

// Destroy implements host.Marker. Attached decorations are destroyed with
// the marker.
func (m *Marker) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	decs := m.decorations
	m.mu.Unlock()

	for _, d := range decs {
		d.Destroy()
	}
}

// Destroyed reports whether the marker has been destroyed.
func (m *Marker) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

func (m *Marker) attach(d *Decoration) {
	m.mu.Lock()
	m.decorations = append(m.decorations, d)
	m.mu.Unlock()
}

// Decoration is a recorded fake decoration.
type Decoration struct {
	mu        sync.Mutex
	marker    *Marker
	destroyed bool
	visible   bool

	// Spec is the decoration spec as passed to Decorate.
	Spec host.DecorationSpec
}

// Destroy implements host.Decoration.
func (d *Decoration) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed = true
}

// Destroyed reports whether the decoration has been destroyed.
func (d *Decoration) Destroyed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// Marker returns the marker the decoration is attached to.
func (d *Decoration) Marker() *Marker { return d.marker }

func (d *Decoration) fireVisible() {
	d.mu.Lock()
	if d.visible || d.Spec.OnVisible == nil {
		d.mu.Unlock()
		return
	}
	d.visible = true
	fn := d.Spec.OnVisible
	d.mu.Unlock()

	fn()
}

// Host is an in-memory host.Host.
type Host struct {
	mu      sync.Mutex
	active  host.Editor
	nextSub uint64
	fns     map[uint64]func(host.Editor)
}

// NewHost creates a fake host with no active editor.
func NewHost() *Host {
	return &Host{fns: make(map[uint64]func(host.Editor))}
}

// ActiveEditor implements host.Host.
func (h *Host) ActiveEditor() host.Editor {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// OnActiveEditorChanged implements host.Host.
func (h *Host) OnActiveEditorChanged(fn func(host.Editor)) host.UnsubscribeFunc {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.fns[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.fns, id)
		h.mu.Unlock()
	}
}

// SetActiveEditor changes focus and fires listeners. Pass nil for blur.
func (h *Host) SetActiveEditor(ed host.Editor) {
	h.mu.Lock()
	h.active = ed
	fns := make([]func(host.Editor), 0, len(h.fns))
	for _, fn := range h.fns {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ed)
	}
}

var _ host.View = (*View)(nil)
var _ host.Host = (*Host)(nil)
