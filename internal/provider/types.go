// Package provider defines the capability providers the overlay engine
// queries and the registries that hold them.
//
// Two provider generations coexist: the preferred hover/signature surface
// and the legacy datatip/signature-help surface with a reduced feature set.
// The variants are distinct interfaces resolved once at the registry
// boundary; the engine never duck-types a result.
package provider

import (
	"context"

	"github.com/dshills/hoverlay/internal/host"
)

// MarkupKind tags hover content as markdown or plain text.
type MarkupKind string

const (
	// Markdown content is rendered through the markup collaborator.
	Markdown MarkupKind = "markdown"

	// PlainText content is escaped before rendering.
	PlainText MarkupKind = "plaintext"
)

// Info carries the metadata common to every provider variant.
type Info struct {
	// Name is the provider's display name.
	Name string

	// PackageName identifies the owning package.
	PackageName string

	// Priority orders providers; lower sorts first.
	Priority int

	// GrammarScopes lists the grammar scopes the provider applies to.
	// A nil or empty list applies to every editor.
	GrammarScopes []string
}

// AppliesTo reports whether the provider serves the given grammar scope.
func (i Info) AppliesTo(scope string) bool {
	if len(i.GrammarScopes) == 0 {
		return true
	}
	for _, s := range i.GrammarScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HoverResult is a successful hover query answer.
type HoverResult struct {
	// Range is the buffer span the result applies to. Nil means the result
	// applies to a zero-width range at the query point.
	Range *host.Range

	// Kind tags the content encoding.
	Kind MarkupKind

	// Value is the content.
	Value string
}

// HoverProvider answers hover queries.
type HoverProvider interface {
	// Info returns the provider metadata.
	Info() Info

	// Hover resolves hover content at pos, or nil when the provider has
	// nothing to show there.
	Hover(ctx context.Context, ed host.Editor, pos host.Position) (*HoverResult, error)
}

// MarkedString is one fragment of a legacy datatip result.
type MarkedString struct {
	// Snippet marks the fragment as a code snippet; Grammar then carries
	// the snippet's grammar scope. Non-snippet fragments are markdown.
	Snippet bool

	// Value is the fragment text.
	Value string

	// Grammar is the snippet's grammar scope identifier, e.g. "source.go".
	Grammar string
}

// Datatip is a legacy hover result.
type Datatip struct {
	// Range is the buffer span the tip applies to; nil defaults to the
	// query point.
	Range *host.Range

	// Marked is the fragment list. Empty with Component set means the
	// provider returned a visual component this engine cannot render.
	Marked []MarkedString

	// Component marks a non-text result; the engine treats it as no result.
	Component bool
}

// DatatipProvider answers legacy hover queries.
type DatatipProvider interface {
	// Info returns the provider metadata.
	Info() Info

	// Datatip resolves a legacy tip at pos, or nil for nothing.
	Datatip(ctx context.Context, ed host.Editor, pos host.Position) (*Datatip, error)
}

// TriggerKind records why a signature query was issued.
type TriggerKind int

const (
	// TriggerInvoked marks an explicit user invocation.
	TriggerInvoked TriggerKind = iota

	// TriggerCharacter marks a query caused by typing a trigger character.
	TriggerCharacter

	// TriggerContentChange marks a query caused by a content change.
	TriggerContentChange
)

// String returns the trigger kind name.
func (k TriggerKind) String() string {
	switch k {
	case TriggerInvoked:
		return "invoked"
	case TriggerCharacter:
		return "trigger-character"
	case TriggerContentChange:
		return "content-change"
	default:
		return "unknown"
	}
}

// TriggerContext is passed opaquely to signature providers.
type TriggerContext struct {
	// Kind is why the query was issued.
	Kind TriggerKind

	// Character is the triggering character, if any.
	Character string

	// IsRetrigger reports whether a signature overlay was already open
	// when the query was issued.
	IsRetrigger bool
}

// ParameterLabel is either a literal string or an offset pair into the
// owning signature's label.
type ParameterLabel struct {
	// Text is the literal label; used when Offsets is false.
	Text string

	// Offsets marks the label as an offset pair.
	Offsets bool

	// Start and End are [Start, End) character offsets into the signature
	// label; meaningful only when Offsets is set.
	Start int
	End   int
}

// StringLabel returns a literal parameter label.
func StringLabel(text string) ParameterLabel {
	return ParameterLabel{Text: text}
}

// OffsetLabel returns an offset-pair parameter label.
func OffsetLabel(start, end int) ParameterLabel {
	return ParameterLabel{Offsets: true, Start: start, End: end}
}

// ParameterInfo describes one parameter of a signature.
type ParameterInfo struct {
	// Label locates or names the parameter.
	Label ParameterLabel

	// Documentation is optional parameter documentation.
	Documentation string
}

// SignatureInfo describes one candidate signature.
type SignatureInfo struct {
	// Label is the full signature label, e.g. "concat(str1, str2)".
	Label string

	// Documentation is optional signature documentation.
	Documentation string

	// Parameters lists the signature's parameters.
	Parameters []ParameterInfo
}

// SignatureResult is a successful signature query answer.
type SignatureResult struct {
	// Signatures is the ordered candidate list.
	Signatures []SignatureInfo

	// ActiveSignature indexes the active signature; out-of-range or
	// negative values default to 0.
	ActiveSignature int

	// ActiveParameter indexes the active parameter of the active
	// signature; out-of-range or negative values default to 0.
	ActiveParameter int
}

// SignatureProvider answers signature-help queries.
type SignatureProvider interface {
	// Info returns the provider metadata.
	Info() Info

	// TriggerCharacters returns the characters that start a query.
	TriggerCharacters() string

	// RetriggerCharacters returns the characters that re-query an already
	// open overlay.
	RetriggerCharacters() string

	// Signatures resolves signature help at pos, or nil for nothing.
	Signatures(ctx context.Context, ed host.Editor, pos host.Position, trig TriggerContext) (*SignatureResult, error)
}
