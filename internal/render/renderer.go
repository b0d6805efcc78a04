package render

import (
	"context"
	"strings"
)

// TreeRenderer is a minimal MarkupRenderer: it understands fenced code
// blocks, thematic breaks, and paragraphs, which is the full vocabulary the
// overlay engine produces.
//
// Pre-escaping and sanitization are structural here: every piece of input
// lands in a text leaf, never in a tag or attribute, so provider content
// cannot inject markup. Code fences are tokenized through the configured
// CodeHighlighter, whose span markup is parsed back into elements (and any
// unrecognized markup demoted to text).
type TreeRenderer struct {
	highlighter CodeHighlighter
}

// NewTreeRenderer creates a renderer. highlighter may be nil, in which case
// code blocks render as plain text leaves.
func NewTreeRenderer(highlighter CodeHighlighter) *TreeRenderer {
	return &TreeRenderer{highlighter: highlighter}
}

// Render implements MarkupRenderer. It returns (nil, nil) when the input
// produces no visible output.
func (r *TreeRenderer) Render(markdown string) (*Element, error) {
	root := NewElement("div", "hoverlay-content")

	lines := strings.Split(markdown, "\n")
	var paragraph []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(paragraph, " "))
		paragraph = paragraph[:0]
		if text == "" {
			return
		}
		root.AppendChild(NewElement("p", "", NewText(unescapeMarkdown(text))))
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "```"):
			flush()
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			var code []string
			for i++; i < len(lines); i++ {
				if strings.TrimSpace(lines[i]) == "```" {
					break
				}
				code = append(code, lines[i])
			}
			root.AppendChild(r.renderCode(strings.Join(code, "\n"), lang))

		case trimmed == "---":
			flush()
			root.AppendChild(NewElement("hr", ""))

		case trimmed == "":
			flush()

		default:
			paragraph = append(paragraph, trimmed)
		}
	}
	flush()

	if len(root.Children) == 0 || root.PlainText() == "" && !hasVisibleStructure(root) {
		return nil, nil
	}
	return root, nil
}

func hasVisibleStructure(root *Element) bool {
	return root.Find(func(e *Element) bool { return e.Tag == "hr" }) != nil
}

func (r *TreeRenderer) renderCode(source, lang string) *Element {
	code := NewElement("code", "syntax--"+lang)

	if r.highlighter == nil {
		code.AppendChild(NewText(source))
		return NewElement("pre", "", code)
	}

	markup, err := r.highlighter.Highlight(context.Background(), source, lang)
	if err != nil {
		code.AppendChild(NewText(source))
		return NewElement("pre", "", code)
	}

	for _, child := range parseSpans(markup) {
		code.AppendChild(child)
	}
	return NewElement("pre", "", code)
}

// parseSpans converts highlighter markup back into elements. Only the span
// vocabulary the highlighters emit is recognized; anything else is kept as
// literal text, which is the sanitization pass.
func parseSpans(markup string) []*Element {
	var out []*Element
	appendText := func(s string) {
		if s == "" {
			return
		}
		if n := len(out); n > 0 && out[n-1].IsText() {
			out[n-1].Text += s
			return
		}
		out = append(out, NewText(s))
	}

	for len(markup) > 0 {
		open := strings.Index(markup, `<span class="`)
		if open < 0 {
			appendText(unescapeHTML(markup))
			break
		}
		appendText(unescapeHTML(markup[:open]))
		rest := markup[open+len(`<span class="`):]

		classEnd := strings.Index(rest, `">`)
		if classEnd < 0 {
			appendText(unescapeHTML(markup[open:]))
			break
		}
		class := rest[:classEnd]
		rest = rest[classEnd+2:]

		close := strings.Index(rest, `</span>`)
		if close < 0 {
			appendText(unescapeHTML(markup[open:]))
			break
		}

		out = append(out, NewElement("span", class, NewText(unescapeHTML(rest[:close]))))
		markup = rest[close+len(`</span>`):]
	}
	return out
}

var htmlUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

func unescapeHTML(s string) string {
	return htmlUnescaper.Replace(s)
}

var markdownUnescaper = strings.NewReplacer(
	"\\\\", "\\",
	"\\`", "`",
	"\\*", "*",
	"\\_", "_",
	"\\#", "#",
	"\\[", "[",
	"\\]", "]",
)

func unescapeMarkdown(s string) string {
	return markdownUnescaper.Replace(s)
}

var _ MarkupRenderer = (*TreeRenderer)(nil)
