package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SlugStrategy recovers the company from the account slug in hosted job
// board URLs, e.g. jobs.lever.co/acme-corp/... gives "Acme Corp".
type SlugStrategy struct{}

func (SlugStrategy) Name() string { return "slug" }

// pathSlugHosts carry the company as the first path segment.
var pathSlugHosts = []string{
	"boards.greenhouse.io",
	"job-boards.greenhouse.io",
	"job-boards.eu.greenhouse.io",
	"jobs.lever.co",
	"jobs.eu.lever.co",
	"jobs.ashbyhq.com",
	"apply.workable.com",
	"jobs.smartrecruiters.com",
	"careers.smartrecruiters.com",
}

// subdomainSlugSuffixes carry the company as the left-most label.
var subdomainSlugSuffixes = []string{
	".myworkdayjobs.com",
	".breezy.hr",
	".recruitee.com",
	".bamboohr.com",
	".teamtailor.com",
	".personio.de",
}

var workdayPod = regexp.MustCompile(`^wd\d+$`)

func (SlugStrategy) Extract(doc *Document, field Field) string {
	if field != FieldCompany {
		return ""
	}
	host := doc.Host()

	for _, h := range pathSlugHosts {
		if host != h {
			continue
		}
		segs := strings.Split(strings.Trim(doc.URL.Path, "/"), "/")
		if len(segs) == 0 || segs[0] == "" || segs[0] == "embed" {
			if slug := doc.URL.Query().Get("for"); slug != "" {
				return humanizeSlug(slug)
			}
			return ""
		}
		return humanizeSlug(segs[0])
	}

	for _, suffix := range subdomainSlugSuffixes {
		if !strings.HasSuffix(host, suffix) {
			continue
		}
		labels := strings.Split(strings.TrimSuffix(host, suffix), ".")
		// acme.wd5.myworkdayjobs.com
		if len(labels) > 1 && workdayPod.MatchString(labels[len(labels)-1]) {
			labels = labels[:len(labels)-1]
		}
		if len(labels) == 0 || labels[0] == "www" {
			return ""
		}
		return humanizeSlug(labels[len(labels)-1])
	}
	return ""
}

// humanizeSlug turns "acme-corp" into "Acme Corp".
func humanizeSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == '+'
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
