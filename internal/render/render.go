package render

import "context"

// MarkupRenderer converts markdown text into a sanitized element tree.
//
// Implementations must run a pre-escaping step over the input before
// parsing, so raw markup embedded in provider content can never become
// element structure, and a sanitization pass after, so only known node
// kinds reach the host. Render returns (nil, nil) for input that produces
// no visible output.
type MarkupRenderer interface {
	Render(markdown string) (*Element, error)
}

// CodeHighlighter tokenizes a code fragment into highlighted markup.
//
// Implementations yield control cooperatively every few milliseconds of
// work so long fragments do not block the host, and honor ctx cancellation
// between slices.
type CodeHighlighter interface {
	Highlight(ctx context.Context, source, language string) (string, error)
}
