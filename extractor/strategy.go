package extractor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field names a job posting attribute. The values match the JSON keys of
// the POST /scrape-job response.
type Field string

const (
	FieldTitle       Field = "jobTitle"
	FieldCompany     Field = "companyName"
	FieldLocation    Field = "location"
	FieldDescription Field = "description"
)

// Fields lists every field in extraction order.
var Fields = []Field{FieldTitle, FieldCompany, FieldLocation, FieldDescription}

// Label is the human readable name used in error messages.
func (f Field) Label() string {
	switch f {
	case FieldTitle:
		return "job title"
	case FieldCompany:
		return "company name"
	case FieldLocation:
		return "location"
	case FieldDescription:
		return "description"
	}
	return string(f)
}

// ParseField accepts a field JSON key or a short alias (title, company,
// location, description).
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jobtitle", "title":
		return FieldTitle, nil
	case "companyname", "company":
		return FieldCompany, nil
	case "location":
		return FieldLocation, nil
	case "description":
		return FieldDescription, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Strategy recovers field values from a document. Extract returns "" when
// the strategy has nothing for the field. Values may contain markup; the
// extractor sanitizes them.
type Strategy interface {
	Name() string
	Extract(doc *Document, field Field) string
}

// Chain maps each field to the strategies tried for it, highest priority
// first.
type Chain map[Field][]Strategy

// DefaultChains returns the built-in strategy order.
func DefaultChains() Chain {
	var (
		jsonld      = JSONLDStrategy{}
		site        = NewSiteStrategy()
		microdata   = MicrodataStrategy{}
		meta        = MetaStrategy{}
		title       = TitleStrategy{}
		label       = LabelStrategy{}
		slug        = SlugStrategy{}
		readability = ReadabilityStrategy{}
		textblock   = TextBlockStrategy{}
	)
	return Chain{
		FieldTitle:       {jsonld, site, microdata, meta, title},
		FieldCompany:     {jsonld, site, microdata, label, meta, title, slug},
		FieldLocation:    {jsonld, site, microdata, label, meta, title},
		FieldDescription: {jsonld, site, microdata, readability, textblock, meta},
	}
}

// genericTitles are page titles that say nothing about the job.
var genericTitles = map[string]struct{}{
	"careers": {}, "career": {}, "jobs": {}, "job": {}, "job details": {},
	"job description": {}, "job posting": {}, "open positions": {},
	"current openings": {}, "home": {}, "homepage": {}, "login": {},
	"log in": {}, "sign in": {}, "apply": {}, "apply now": {},
	"job application": {}, "just a moment...": {}, "just a moment": {},
	"access denied": {}, "attention required!": {}, "forbidden": {},
	"404": {}, "page not found": {}, "not found": {}, "error": {},
	"untitled": {}, "loading...": {}, "loading": {},
}

// boardNames are job board brands that show up in og:site_name and title
// suffixes but never name the employer.
var boardNames = map[string]struct{}{
	"linkedin": {}, "indeed": {}, "indeed.com": {}, "glassdoor": {},
	"greenhouse": {}, "lever": {}, "workday": {}, "ashby": {},
	"smartrecruiters": {}, "workable": {}, "monster": {}, "ziprecruiter": {},
	"wellfound": {}, "angellist": {}, "stepstone": {}, "xing": {},
	"careers": {}, "jobs": {}, "job board": {},
}

func isGenericTitle(s string) bool {
	_, ok := genericTitles[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

func isBoardName(s string) bool {
	_, ok := boardNames[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// plausible reports whether a sanitized value can stand for field.
func plausible(field Field, v string) bool {
	n := utf8.RuneCountInString(v)
	if n == 0 || !hasLetterOrDigit(v) {
		return false
	}
	switch field {
	case FieldTitle:
		return n >= 2 && !isGenericTitle(v)
	case FieldCompany:
		return n <= 150 && !isBoardName(v) && !isGenericTitle(v)
	case FieldLocation:
		return n >= 2 && n <= 200
	case FieldDescription:
		return n >= 40
	}
	return true
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
