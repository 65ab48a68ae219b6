package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMaxDescriptionLength caps the description, in runes.
const DefaultMaxDescriptionLength = 10000

// MaxFieldLength caps title, company and location, in runes.
const MaxFieldLength = 300

var blockAtoms = map[atom.Atom]struct{}{
	atom.P: {}, atom.Div: {}, atom.Br: {}, atom.Li: {}, atom.Ul: {}, atom.Ol: {},
	atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {},
	atom.Tr: {}, atom.Table: {}, atom.Section: {}, atom.Article: {},
	atom.Header: {}, atom.Footer: {}, atom.Blockquote: {}, atom.Pre: {},
	atom.Dd: {}, atom.Dt: {}, atom.Dl: {}, atom.Hr: {},
}

var skippedAtoms = map[atom.Atom]struct{}{
	atom.Script: {}, atom.Style: {}, atom.Noscript: {}, atom.Template: {},
	atom.Iframe: {}, atom.Svg: {}, atom.Head: {},
}

var escapedTag = regexp.MustCompile(`&lt;/?[a-zA-Z][a-zA-Z0-9]*`)

// unescapeMarkup decodes HTML that arrived entity-escaped (common in JSON-LD
// descriptions) so its tags can be stripped.
func unescapeMarkup(s string) string {
	if !strings.Contains(s, "<") && escapedTag.MatchString(s) {
		return html.UnescapeString(s)
	}
	return s
}

// HTMLToText strips tags and decodes entities. Block elements become line
// breaks; script and style contents are dropped.
func HTMLToText(s string) string {
	s = unescapeMarkup(s)
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return html.UnescapeString(s)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if _, skip := skippedAtoms[n.DataAtom]; skip {
				return
			}
		}
		_, block := blockAtoms[n.DataAtom]
		if block && n.Type == html.ElementNode {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block && n.Type == html.ElementNode {
			b.WriteByte('\n')
		}
	}
	walk(root)
	return b.String()
}

// CollapseWhitespace joins all whitespace runs into single spaces.
func CollapseWhitespace(s string) string {
	s = strings.Map(dropInvisible, s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeParagraphs collapses whitespace within each line and removes empty
// lines, keeping one line per block.
func NormalizeParagraphs(s string) string {
	lines := strings.Split(strings.Map(dropInvisible, s), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// normalizeMarkdown trims trailing spaces and squeezes blank line runs.
func normalizeMarkdown(s string) string {
	s = strings.Map(dropInvisible, s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func dropInvisible(r rune) rune {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff', '\u00ad':
		return -1
	case '\r':
		return '\n'
	}
	return r
}

// Truncate shortens s to at most limit runes, cutting at a word boundary near
// the limit when there is one and marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	runes := []rune(s)
	cut := runes[:limit-1]

	// Prefer breaking on whitespace near the end of the budget.
	floor := max(len(cut)-max(len(cut)/10, 20), 1)
	for i := len(cut) - 1; i >= floor; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + "…"
}
