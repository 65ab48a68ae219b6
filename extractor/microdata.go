package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MicrodataStrategy reads schema.org JobPosting microdata (itemprop
// attributes). Pages that do not declare a JobPosting itemscope are searched
// as a whole.
type MicrodataStrategy struct{}

func (MicrodataStrategy) Name() string { return "microdata" }

func (MicrodataStrategy) Extract(doc *Document, field Field) string {
	scope := doc.Doc.Find(`[itemtype*="schema.org/JobPosting"]`).First()
	if scope.Length() == 0 {
		scope = doc.Doc.Selection
	}

	switch field {
	case FieldTitle:
		return itemValue(scope.Find(`[itemprop="title"]`).First())
	case FieldCompany:
		org := scope.Find(`[itemprop="hiringOrganization"]`).First()
		if org.Length() == 0 {
			return ""
		}
		if name := itemValue(org.Find(`[itemprop="name"]`).First()); name != "" {
			return name
		}
		return itemValue(org)
	case FieldLocation:
		loc := scope.Find(`[itemprop="jobLocation"]`).First()
		if loc.Length() == 0 {
			return ""
		}
		joined := joinNonEmpty(", ",
			itemValue(loc.Find(`[itemprop="addressLocality"]`).First()),
			itemValue(loc.Find(`[itemprop="addressRegion"]`).First()),
			itemValue(loc.Find(`[itemprop="addressCountry"]`).First()),
		)
		if joined != "" {
			return joined
		}
		return itemValue(loc)
	case FieldDescription:
		desc := scope.Find(`[itemprop="description"]`).First()
		if desc.Length() == 0 {
			return ""
		}
		if v, ok := desc.Attr("content"); ok {
			return v
		}
		h, err := desc.Html()
		if err != nil {
			return ""
		}
		return h
	}
	return ""
}

// itemValue returns the content attribute (meta/link form) or the text.
func itemValue(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if v, ok := s.Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(s.Text())
}
