package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MetaStrategy reads Open Graph, Twitter card and named <meta> tags.
// og:title is split like a page title since boards often write
// "Role at Company" there.
type MetaStrategy struct{}

func (MetaStrategy) Name() string { return "meta" }

func (MetaStrategy) Extract(doc *Document, field Field) string {
	switch field {
	case FieldTitle:
		raw := metaContent(doc, "og:title", "twitter:title")
		if parts := splitTitle(raw); parts.role != "" {
			return parts.role
		}
		return raw
	case FieldCompany:
		if name := metaContent(doc, "og:site_name", "application-name"); name != "" && !isBoardName(name) {
			return name
		}
		return splitTitle(metaContent(doc, "og:title", "twitter:title")).company
	case FieldLocation:
		return metaContent(doc, "geo.placename", "job:location")
	case FieldDescription:
		return metaContent(doc, "og:description", "twitter:description", "description")
	}
	return ""
}

// metaContent returns the content of the first non-empty meta tag whose
// property or name equals one of keys, trying keys in order.
func metaContent(doc *Document, keys ...string) string {
	values := make(map[string]string)
	doc.Doc.Find("meta[content]").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		if strings.TrimSpace(content) == "" {
			return
		}
		for _, attr := range []string{"property", "name", "itemprop"} {
			if key, ok := s.Attr(attr); ok {
				key = strings.ToLower(strings.TrimSpace(key))
				if _, exists := values[key]; !exists {
					values[key] = content
				}
			}
		}
	})
	for _, k := range keys {
		if v := values[k]; v != "" {
			return v
		}
	}
	return ""
}
