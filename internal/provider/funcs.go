package provider

import (
	"context"

	"github.com/dshills/hoverlay/internal/host"
)

// HoverFunc adapts a function to the HoverProvider interface.
type HoverFunc struct {
	// Meta is the provider metadata.
	Meta Info

	// Fn answers the query.
	Fn func(ctx context.Context, ed host.Editor, pos host.Position) (*HoverResult, error)
}

// Info implements HoverProvider.
func (h HoverFunc) Info() Info { return h.Meta }

// Hover implements HoverProvider.
func (h HoverFunc) Hover(ctx context.Context, ed host.Editor, pos host.Position) (*HoverResult, error) {
	return h.Fn(ctx, ed, pos)
}

// DatatipFunc adapts a function to the DatatipProvider interface.
type DatatipFunc struct {
	// Meta is the provider metadata.
	Meta Info

	// Fn answers the query.
	Fn func(ctx context.Context, ed host.Editor, pos host.Position) (*Datatip, error)
}

// Info implements DatatipProvider.
func (d DatatipFunc) Info() Info { return d.Meta }

// Datatip implements DatatipProvider.
func (d DatatipFunc) Datatip(ctx context.Context, ed host.Editor, pos host.Position) (*Datatip, error) {
	return d.Fn(ctx, ed, pos)
}

// SignatureFunc adapts a function to the SignatureProvider interface.
type SignatureFunc struct {
	// Meta is the provider metadata.
	Meta Info

	// Triggers are the characters that start a query.
	Triggers string

	// Retriggers are the characters that re-query an open overlay.
	Retriggers string

	// Fn answers the query.
	Fn func(ctx context.Context, ed host.Editor, pos host.Position, trig TriggerContext) (*SignatureResult, error)
}

// Info implements SignatureProvider.
func (s SignatureFunc) Info() Info { return s.Meta }

// TriggerCharacters implements SignatureProvider.
func (s SignatureFunc) TriggerCharacters() string { return s.Triggers }

// RetriggerCharacters implements SignatureProvider.
func (s SignatureFunc) RetriggerCharacters() string { return s.Retriggers }

// Signatures implements SignatureProvider.
func (s SignatureFunc) Signatures(ctx context.Context, ed host.Editor, pos host.Position, trig TriggerContext) (*SignatureResult, error) {
	return s.Fn(ctx, ed, pos, trig)
}
