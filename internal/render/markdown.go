package render

import "strings"

// FenceLanguageForScope derives a fenced-code-block language tag from a
// grammar scope identifier: the first dot-delimited segment after
// "source.", so "source.go" and "source.js.jsx" yield "go" and "js".
// Scopes without a "source." prefix yield "".
func FenceLanguageForScope(scope string) string {
	rest, ok := strings.CutPrefix(scope, "source.")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// FencedBlock wraps source in a fenced code block tagged with lang.
func FencedBlock(source, lang string) string {
	var sb strings.Builder
	sb.WriteString("```")
	sb.WriteString(lang)
	sb.WriteByte('\n')
	sb.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString("```")
	return sb.String()
}

// markdownEscaper escapes the characters that would otherwise be parsed as
// markdown structure.
var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"`", "\\`",
	"*", "\\*",
	"_", "\\_",
	"#", "\\#",
	"[", "\\[",
	"]", "\\]",
)

// EscapeText escapes plain text for literal inclusion in markdown.
func EscapeText(text string) string {
	return markdownEscaper.Replace(text)
}
