package render

import (
	"context"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// TokenClass is the style class assigned to a highlighted token.
type TokenClass string

const (
	ClassKeyword TokenClass = "syntax--keyword"
	ClassString  TokenClass = "syntax--string"
	ClassNumber  TokenClass = "syntax--number"
	ClassComment TokenClass = "syntax--comment"
	ClassType    TokenClass = "syntax--type"
)

// rule matches one token kind on a single line.
type rule struct {
	pattern *regexp.Regexp
	class   TokenClass
}

// ruleSet is the ordered rule list for one language; earlier rules win.
type ruleSet struct {
	rules    []rule
	keywords map[string]TokenClass
}

var identPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// RegexHighlighter is a regex-based CodeHighlighter with per-language rule
// sets and a generic fallback. It is a stand-in for a real tokenizer; the
// engine only depends on the CodeHighlighter contract.
type RegexHighlighter struct {
	languages map[string]*ruleSet
	fallback  *ruleSet

	// sliceBudget bounds uninterrupted work before yielding.
	sliceBudget time.Duration
}

// NewRegexHighlighter creates a highlighter with built-in rule sets.
func NewRegexHighlighter() *RegexHighlighter {
	generic := &ruleSet{
		rules: []rule{
			{regexp.MustCompile(`//[^\n]*|#[^\n]*`), ClassComment},
			{regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`), ClassString},
			{regexp.MustCompile(`\b\d+(?:\.\d+)?\b`), ClassNumber},
		},
		keywords: map[string]TokenClass{
			"if": ClassKeyword, "else": ClassKeyword, "for": ClassKeyword,
			"while": ClassKeyword, "return": ClassKeyword, "function": ClassKeyword,
			"class": ClassKeyword, "const": ClassKeyword, "let": ClassKeyword,
			"var": ClassKeyword, "new": ClassKeyword, "import": ClassKeyword,
		},
	}

	golang := &ruleSet{
		rules: []rule{
			{regexp.MustCompile(`//[^\n]*`), ClassComment},
			{regexp.MustCompile("`[^`]*`|\"(?:[^\"\\\\]|\\\\.)*\"|'(?:[^'\\\\]|\\\\.)*'"), ClassString},
			{regexp.MustCompile(`\b\d+(?:\.\d+)?\b`), ClassNumber},
		},
		keywords: map[string]TokenClass{
			"break": ClassKeyword, "case": ClassKeyword, "chan": ClassKeyword,
			"const": ClassKeyword, "continue": ClassKeyword, "default": ClassKeyword,
			"defer": ClassKeyword, "else": ClassKeyword, "fallthrough": ClassKeyword,
			"for": ClassKeyword, "func": ClassKeyword, "go": ClassKeyword,
			"goto": ClassKeyword, "if": ClassKeyword, "import": ClassKeyword,
			"interface": ClassKeyword, "map": ClassKeyword, "package": ClassKeyword,
			"range": ClassKeyword, "return": ClassKeyword, "select": ClassKeyword,
			"struct": ClassKeyword, "switch": ClassKeyword, "type": ClassKeyword,
			"var": ClassKeyword,
			"string": ClassType, "int": ClassType, "int64": ClassType,
			"float64": ClassType, "bool": ClassType, "byte": ClassType,
			"rune": ClassType, "error": ClassType, "any": ClassType,
		},
	}

	return &RegexHighlighter{
		languages: map[string]*ruleSet{
			"go": golang,
		},
		fallback:    generic,
		sliceBudget: 5 * time.Millisecond,
	}
}

// Highlight implements CodeHighlighter. It emits span-wrapped tokens with
// HTML-escaped text, yielding between lines when the slice budget is
// exhausted.
func (h *RegexHighlighter) Highlight(ctx context.Context, source, language string) (string, error) {
	rs, ok := h.languages[language]
	if !ok {
		rs = h.fallback
	}

	var sb strings.Builder
	sliceStart := time.Now()

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		h.highlightLine(&sb, rs, line)

		if time.Since(sliceStart) >= h.sliceBudget {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			runtime.Gosched()
			sliceStart = time.Now()
		}
	}

	return sb.String(), nil
}

// highlightLine writes one line of markup, covering rule matches first and
// classifying the remaining identifiers against the keyword table.
func (h *RegexHighlighter) highlightLine(sb *strings.Builder, rs *ruleSet, line string) {
	type span struct {
		start, end int
		class      TokenClass
	}

	var spans []span
	covered := make([]bool, len(line))

	for _, r := range rs.rules {
		for _, m := range r.pattern.FindAllStringIndex(line, -1) {
			if regionCovered(covered, m[0], m[1]) {
				continue
			}
			spans = append(spans, span{m[0], m[1], r.class})
			for i := m[0]; i < m[1]; i++ {
				covered[i] = true
			}
		}
	}

	for _, m := range identPattern.FindAllStringIndex(line, -1) {
		if regionCovered(covered, m[0], m[1]) {
			continue
		}
		if class, ok := rs.keywords[line[m[0]:m[1]]]; ok {
			spans = append(spans, span{m[0], m[1], class})
			for i := m[0]; i < m[1]; i++ {
				covered[i] = true
			}
		}
	}

	// Emit in line order, plain text between spans.
	pos := 0
	for pos < len(line) {
		var next *span
		for i := range spans {
			s := &spans[i]
			if s.start >= pos && (next == nil || s.start < next.start) {
				next = s
			}
		}
		if next == nil {
			writeEscaped(sb, line[pos:])
			break
		}
		writeEscaped(sb, line[pos:next.start])
		sb.WriteString(`<span class="`)
		sb.WriteString(string(next.class))
		sb.WriteString(`">`)
		writeEscaped(sb, line[next.start:next.end])
		sb.WriteString(`</span>`)
		pos = next.end
	}
}

func regionCovered(covered []bool, start, end int) bool {
	for i := start; i < end && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func writeEscaped(sb *strings.Builder, s string) {
	htmlEscaper.WriteString(sb, s)
}

var _ CodeHighlighter = (*RegexHighlighter)(nil)
