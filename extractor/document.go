package extractor

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed job page shared by all strategies of one extraction.
// It is not safe for concurrent use.
type Document struct {
	URL  *url.URL
	Doc  *goquery.Document
	HTML string

	postings []map[string]any

	readabilityDone bool
	readabilityHTML string
}

// NewDocument parses rawHTML. JSON-LD blocks are decoded eagerly since three
// fields read from them.
func NewDocument(rawHTML string, pageURL *url.URL) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	d := &Document{URL: pageURL, Doc: doc, HTML: rawHTML}
	d.postings = parseJobPostings(doc)
	return d, nil
}

// JobPostings returns the schema.org JobPosting objects found on the page,
// in document order.
func (d *Document) JobPostings() []map[string]any {
	return d.postings
}

// Host returns the lower-cased host name of the page.
func (d *Document) Host() string {
	return strings.ToLower(d.URL.Hostname())
}

// Origin returns scheme://host of the page, used to resolve relative links.
func (d *Document) Origin() string {
	if d.URL.Host == "" {
		return ""
	}
	return d.URL.Scheme + "://" + d.URL.Host
}

func parseJobPostings(doc *goquery.Document) []map[string]any {
	var postings []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			// Many sites emit literal newlines inside JSON strings.
			if err := json.Unmarshal([]byte(stripControlChars(raw)), &v); err != nil {
				return
			}
		}
		collectPostings(v, &postings, 0)
	})
	return postings
}

func collectPostings(v any, out *[]map[string]any, depth int) {
	if depth > 8 {
		return
	}
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			collectPostings(item, out, depth+1)
		}
	case map[string]any:
		if isJobPosting(node["@type"]) {
			*out = append(*out, node)
			return
		}
		for _, key := range []string{"@graph", "mainEntity", "itemListElement", "item"} {
			if child, ok := node[key]; ok {
				collectPostings(child, out, depth+1)
			}
		}
	}
}

func isJobPosting(t any) bool {
	switch typ := t.(type) {
	case string:
		return strings.EqualFold(strings.TrimPrefix(typ, "http://schema.org/"), "JobPosting") ||
			strings.EqualFold(strings.TrimPrefix(typ, "https://schema.org/"), "JobPosting")
	case []any:
		for _, item := range typ {
			if isJobPosting(item) {
				return true
			}
		}
	}
	return false
}

func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}
