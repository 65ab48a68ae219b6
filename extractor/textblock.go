package extractor

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TextBlockStrategy picks the container with the highest content score as
// the description. Each paragraph-like element scores its parent fully and
// its grandparent by half; the total is damped by link density and adjusted
// by tag and class/id signals.
type TextBlockStrategy struct{}

func (TextBlockStrategy) Name() string { return "textblock" }

const minParagraphRunes = 25

// Signal weights for the container scorer.
const (
	wClassID     = 1.0
	wTag         = 1.5
	wLinkDensity = 1.0
)

var positiveClassIDPatterns = []string{
	"description", "job", "posting", "content", "article", "main", "body", "text",
}

var negativeClassIDPatterns = []string{
	"sidebar", "widget", "nav", "menu", "comment", "footer", "header",
	"banner", "popup", "modal", "cookie", "social", "share", "related",
	"recommend", "promo", "similar",
}

func (TextBlockStrategy) Extract(doc *Document, field Field) string {
	if field != FieldDescription {
		return ""
	}

	scores := make(map[*html.Node]float64)
	var order []*html.Node
	add := func(n *html.Node, v float64) {
		if n == nil || n.Type != html.ElementNode {
			return
		}
		if _, ok := scores[n]; !ok {
			order = append(order, n)
		}
		scores[n] += v
	}

	doc.Doc.Find("body p, body li, body pre, body td").Each(func(_ int, s *goquery.Selection) {
		if s.Closest("script, style, noscript, nav, footer, header, aside, form").Length() > 0 {
			return
		}
		text := CollapseWhitespace(s.Text())
		n := utf8.RuneCountInString(text)
		if n < minParagraphRunes {
			return
		}
		score := 1 + float64(strings.Count(text, ",")) + math.Min(float64(n)/100, 3)
		node := s.Get(0)
		add(node.Parent, score)
		if node.Parent != nil {
			add(node.Parent.Parent, score/2)
		}
	})

	var (
		best      *html.Node
		bestScore float64
	)
	for _, n := range order {
		sel := goquery.NewDocumentFromNode(n).Selection
		score := scores[n]*(1-linkDensity(sel)*wLinkDensity) +
			tagWeight(n.Data)*wTag +
			classIDWeight(sel)*wClassID
		if best == nil || score > bestScore {
			best, bestScore = n, score
		}
	}
	if best == nil || bestScore <= 0 {
		return ""
	}

	h, err := goquery.NewDocumentFromNode(best).Selection.Html()
	if err != nil {
		return ""
	}
	return h
}

func linkDensity(s *goquery.Selection) float64 {
	textLen := utf8.RuneCountInString(strings.TrimSpace(s.Text()))
	if textLen == 0 {
		return 0
	}
	linkLen := 0
	s.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkLen += utf8.RuneCountInString(strings.TrimSpace(a.Text()))
	})
	return math.Min(float64(linkLen)/float64(textLen), 1)
}

func tagWeight(tag string) float64 {
	switch tag {
	case "article", "main", "section":
		return 5
	case "div", "td", "pre", "blockquote":
		return 1
	case "ul", "ol":
		return -1
	case "nav", "footer", "aside", "header", "form":
		return -5
	}
	return 0
}

// classIDWeight counts at most one hit per direction.
func classIDWeight(s *goquery.Selection) float64 {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	combined := strings.ToLower(class + " " + id)

	score := 0.0
	for _, pat := range positiveClassIDPatterns {
		if strings.Contains(combined, pat) {
			score += 3
			break
		}
	}
	for _, pat := range negativeClassIDPatterns {
		if strings.Contains(combined, pat) {
			score -= 3
			break
		}
	}
	return score
}
