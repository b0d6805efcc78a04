package provider

import (
	"sort"
	"sync"

	"github.com/dshills/hoverlay/internal/host"
)

// Registration is a disposal handle returned by the registries.
type Registration struct {
	once   sync.Once
	remove func()
}

// Dispose removes the provider exactly once; further calls are no-ops.
func (r *Registration) Dispose() {
	r.once.Do(r.remove)
}

// hoverEntry pairs a hover provider with its insertion order.
type hoverEntry struct {
	provider HoverProvider
	seq      uint64
}

// datatipEntry pairs a legacy datatip provider with its insertion order.
type datatipEntry struct {
	provider DatatipProvider
	seq      uint64
}

// HoverRegistry holds hover-capable providers.
//
// The preferred hover surface and the legacy datatip surface register into
// the same registry but resolve separately: the engine queries every
// preferred provider in priority order and falls back to the legacy list
// only when none answered.
type HoverRegistry struct {
	mu       sync.RWMutex
	nextSeq  uint64
	entries  []hoverEntry
	datatips []datatipEntry
}

// NewHoverRegistry creates an empty hover registry.
func NewHoverRegistry() *HoverRegistry {
	return &HoverRegistry{}
}

// Register adds a preferred hover provider.
func (r *HoverRegistry) Register(p HoverProvider) *Registration {
	r.mu.Lock()
	seq := r.nextSeq
	r.nextSeq++
	r.entries = append(r.entries, hoverEntry{provider: p, seq: seq})
	r.mu.Unlock()

	return &Registration{remove: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, e := range r.entries {
			if e.seq == seq {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
				return
			}
		}
	}}
}

// RegisterDatatip adds a legacy datatip provider.
func (r *HoverRegistry) RegisterDatatip(p DatatipProvider) *Registration {
	r.mu.Lock()
	seq := r.nextSeq
	r.nextSeq++
	r.datatips = append(r.datatips, datatipEntry{provider: p, seq: seq})
	r.mu.Unlock()

	return &Registration{remove: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, e := range r.datatips {
			if e.seq == seq {
				r.datatips = append(r.datatips[:i], r.datatips[i+1:]...)
				return
			}
		}
	}}
}

// ResolveAll returns the preferred providers applicable to the editor's
// grammar scope, sorted ascending by priority with stable ties. The result
// is a snapshot: later registry mutations do not affect it.
func (r *HoverRegistry) ResolveAll(ed host.Editor) []HoverProvider {
	scope := ed.GrammarScope()

	r.mu.RLock()
	matched := make([]hoverEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.provider.Info().AppliesTo(scope) {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].provider.Info().Priority < matched[j].provider.Info().Priority
	})

	out := make([]HoverProvider, len(matched))
	for i, e := range matched {
		out[i] = e.provider
	}
	return out
}

// ResolveDatatips returns the applicable legacy providers, ordered like
// ResolveAll.
func (r *HoverRegistry) ResolveDatatips(ed host.Editor) []DatatipProvider {
	scope := ed.GrammarScope()

	r.mu.RLock()
	matched := make([]datatipEntry, 0, len(r.datatips))
	for _, e := range r.datatips {
		if e.provider.Info().AppliesTo(scope) {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].provider.Info().Priority < matched[j].provider.Info().Priority
	})

	out := make([]DatatipProvider, len(matched))
	for i, e := range matched {
		out[i] = e.provider
	}
	return out
}

// signatureEntry pairs a signature provider with its insertion order.
type signatureEntry struct {
	provider SignatureProvider
	seq      uint64
}

// SignatureRegistry holds signature-capable providers.
//
// It is a separate concrete type rather than a generic shared with
// HoverRegistry: hover supports multiple providers queried in fallback
// order, while the legacy signature-help path picks only the single best
// provider, and the two surfaces evolve independently.
type SignatureRegistry struct {
	mu      sync.RWMutex
	nextSeq uint64
	entries []signatureEntry
	legacy  []signatureEntry
}

// NewSignatureRegistry creates an empty signature registry.
func NewSignatureRegistry() *SignatureRegistry {
	return &SignatureRegistry{}
}

// Register adds a preferred signature provider.
func (r *SignatureRegistry) Register(p SignatureProvider) *Registration {
	return r.register(p, false)
}

// RegisterLegacy adds a legacy signature-help provider. Legacy providers
// are consulted only when no preferred provider applies.
func (r *SignatureRegistry) RegisterLegacy(p SignatureProvider) *Registration {
	return r.register(p, true)
}

func (r *SignatureRegistry) register(p SignatureProvider, legacy bool) *Registration {
	r.mu.Lock()
	seq := r.nextSeq
	r.nextSeq++
	if legacy {
		r.legacy = append(r.legacy, signatureEntry{provider: p, seq: seq})
	} else {
		r.entries = append(r.entries, signatureEntry{provider: p, seq: seq})
	}
	r.mu.Unlock()

	return &Registration{remove: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		list := &r.entries
		if legacy {
			list = &r.legacy
		}
		for i, e := range *list {
			if e.seq == seq {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return
			}
		}
	}}
}

// ResolveAll returns the preferred providers applicable to the editor,
// sorted ascending by priority with stable ties, as an immutable snapshot.
func (r *SignatureRegistry) ResolveAll(ed host.Editor) []SignatureProvider {
	r.mu.RLock()
	snapshot := make([]signatureEntry, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.RUnlock()

	return resolveSignatures(snapshot, ed.GrammarScope())
}

// ResolveBest returns the best applicable provider: the top preferred
// provider, else the top legacy provider, else nil.
func (r *SignatureRegistry) ResolveBest(ed host.Editor) SignatureProvider {
	scope := ed.GrammarScope()

	r.mu.RLock()
	preferred := make([]signatureEntry, len(r.entries))
	copy(preferred, r.entries)
	legacy := make([]signatureEntry, len(r.legacy))
	copy(legacy, r.legacy)
	r.mu.RUnlock()

	if best := resolveSignatures(preferred, scope); len(best) > 0 {
		return best[0]
	}
	if best := resolveSignatures(legacy, scope); len(best) > 0 {
		return best[0]
	}
	return nil
}

func resolveSignatures(entries []signatureEntry, scope string) []SignatureProvider {
	matched := make([]signatureEntry, 0, len(entries))
	for _, e := range entries {
		if e.provider.Info().AppliesTo(scope) {
			matched = append(matched, e)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].provider.Info().Priority < matched[j].provider.Info().Priority
	})

	out := make([]SignatureProvider, len(matched))
	for i, e := range matched {
		out[i] = e.provider
	}
	return out
}
