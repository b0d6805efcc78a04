package overlay

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/hoverlay/internal/host"
)

// Handle owns one mounted overlay: its marker and the decorations attached
// to it.
type Handle struct {
	id     string
	kind   Kind
	marker host.Marker

	once        sync.Once
	decorations []host.Decoration
}

func newHandle(kind Kind, marker host.Marker, decorations []host.Decoration) *Handle {
	return &Handle{
		id:          uuid.NewString(),
		kind:        kind,
		marker:      marker,
		decorations: decorations,
	}
}

// ID identifies the overlay instance for logging.
func (h *Handle) ID() string { return h.id }

// Kind returns the overlay variant.
func (h *Handle) Kind() Kind { return h.kind }

// Range returns the marker's current buffer range.
func (h *Handle) Range() host.Range { return h.marker.Range() }

// Release destroys the decorations and the marker. Releasing twice is a
// no-op.
func (h *Handle) Release() {
	h.once.Do(func() {
		for _, d := range h.decorations {
			d.Destroy()
		}
		h.marker.Destroy()
	})
}
