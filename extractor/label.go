package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// LabelStrategy finds labelled values such as "Location: Berlin" in short
// text elements, definition lists and two-column tables.
type LabelStrategy struct{}

func (LabelStrategy) Name() string { return "label" }

var labelPatterns = map[Field]*regexp.Regexp{
	FieldLocation: regexp.MustCompile(`(?i)^(?:job\s+|work\s+|office\s+)?(?:location|locations|office|based in|standort|lieu)\s*[:：]\s*(.+)$`),
	FieldCompany:  regexp.MustCompile(`(?i)^(?:company|employer|organi[sz]ation|hiring company|unternehmen)\s*[:：]\s*(.+)$`),
}

const maxLabelledRunes = 160

func (LabelStrategy) Extract(doc *Document, field Field) string {
	re, ok := labelPatterns[field]
	if !ok {
		return ""
	}

	var found string
	doc.Doc.Find("li, p, span, div, td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Filter("div, p, li, ul, ol, table, section").Length() > 0 {
			return true
		}
		text := CollapseWhitespace(s.Text())
		if text == "" || utf8.RuneCountInString(text) > maxLabelledRunes {
			return true
		}
		if m := re.FindStringSubmatch(text); m != nil {
			found = m[1]
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	// <dt>Location</dt><dd>Berlin</dd> and <th>Location</th><td>Berlin</td>.
	doc.Doc.Find("dt, th").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		key := strings.TrimRight(CollapseWhitespace(s.Text()), ":： ")
		if key == "" || !re.MatchString(key+": x") {
			return true
		}
		value := s.NextFiltered("dd, td")
		if value.Length() == 0 {
			return true
		}
		if v := CollapseWhitespace(value.Text()); v != "" {
			found = v
			return false
		}
		return true
	})
	return found
}
