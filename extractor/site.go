package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// siteSelector reads a value from the first element matching sel. When attr
// is set the attribute is read instead of the text. Description selectors
// return inner HTML.
type siteSelector struct {
	sel  cascadia.Selector
	attr string
}

type siteRule struct {
	hostSuffix string
	fields     map[Field][]siteSelector
}

// SiteStrategy applies hand-written CSS selectors for the major job boards,
// matched by host suffix.
type SiteStrategy struct {
	rules []siteRule
}

func sel(css string) siteSelector { return siteSelector{sel: cascadia.MustCompile(css)} }

func attrSel(css, attr string) siteSelector {
	return siteSelector{sel: cascadia.MustCompile(css), attr: attr}
}

// NewSiteStrategy compiles the built-in board selectors.
func NewSiteStrategy() *SiteStrategy {
	return &SiteStrategy{rules: []siteRule{
		{hostSuffix: "greenhouse.io", fields: map[Field][]siteSelector{
			FieldTitle:       {sel("h1.app-title"), sel(".job__title h1"), sel("h1.section-header")},
			FieldCompany:     {sel("span.company-name"), sel(".company-name")},
			FieldLocation:    {sel("div.location"), sel(".job__location")},
			FieldDescription: {sel("#content"), sel(".job__description")},
		}},
		{hostSuffix: "lever.co", fields: map[Field][]siteSelector{
			FieldTitle:       {sel(".posting-headline h2")},
			FieldCompany:     {attrSel("a.main-header-logo img", "alt")},
			FieldLocation:    {sel(".posting-categories .location"), sel(".posting-categories .sort-by-time")},
			FieldDescription: {sel(`div[data-qa="job-description"]`), sel(".section-wrapper.page-full-width")},
		}},
		{hostSuffix: "linkedin.com", fields: map[Field][]siteSelector{
			FieldTitle:       {sel("h1.top-card-layout__title"), sel("h1.topcard__title")},
			FieldCompany:     {sel("a.topcard__org-name-link"), sel(".topcard__flavor--black-link")},
			FieldLocation:    {sel(".topcard__flavor--bullet")},
			FieldDescription: {sel(".show-more-less-html__markup"), sel(".description__text")},
		}},
		{hostSuffix: "indeed.com", fields: map[Field][]siteSelector{
			FieldTitle:       {sel(`[data-testid="jobsearch-JobInfoHeader-title"]`), sel("h1.jobsearch-JobInfoHeader-title")},
			FieldCompany:     {sel(`[data-testid="inlineHeader-companyName"]`), attrSel("[data-company-name]", "data-company-name")},
			FieldLocation:    {sel(`[data-testid="inlineHeader-companyLocation"]`), sel(`[data-testid="job-location"]`)},
			FieldDescription: {sel("#jobDescriptionText")},
		}},
		{hostSuffix: "myworkdayjobs.com", fields: map[Field][]siteSelector{
			FieldTitle:       {sel(`[data-automation-id="jobPostingHeader"]`)},
			FieldLocation:    {sel(`[data-automation-id="locations"] dd`)},
			FieldDescription: {sel(`[data-automation-id="jobPostingDescription"]`)},
		}},
		{hostSuffix: "ashbyhq.com", fields: map[Field][]siteSelector{
			FieldTitle:       {sel("h1.ashby-job-posting-heading")},
			FieldDescription: {sel(".ashby-job-posting-right-pane"), sel(`[class*="_descriptionText_"]`)},
		}},
		{hostSuffix: "smartrecruiters.com", fields: map[Field][]siteSelector{
			FieldTitle:       {sel("h1.job-title")},
			FieldCompany:     {attrSel(`meta[itemprop="hiringOrganization"]`, "content")},
			FieldLocation:    {sel("spl-job-location"), sel(".job-location")},
			FieldDescription: {sel(".job-sections")},
		}},
		{hostSuffix: "workable.com", fields: map[Field][]siteSelector{
			FieldTitle:       {sel(`[data-ui="job-title"]`)},
			FieldLocation:    {sel(`[data-ui="job-location"]`)},
			FieldDescription: {sel(`[data-ui="job-description"]`)},
		}},
	}}
}

func (*SiteStrategy) Name() string { return "site" }

func (s *SiteStrategy) Extract(doc *Document, field Field) string {
	host := doc.Host()
	for _, rule := range s.rules {
		if host != rule.hostSuffix && !strings.HasSuffix(host, "."+rule.hostSuffix) {
			continue
		}
		for _, ss := range rule.fields[field] {
			if v := ss.read(doc.Doc, field); strings.TrimSpace(v) != "" {
				return v
			}
		}
		return ""
	}
	return ""
}

func (ss siteSelector) read(doc *goquery.Document, field Field) string {
	match := doc.FindMatcher(ss.sel).First()
	if match.Length() == 0 {
		return ""
	}
	if ss.attr != "" {
		v, _ := match.Attr(ss.attr)
		return v
	}
	if field == FieldDescription {
		h, err := match.Html()
		if err != nil {
			return ""
		}
		return h
	}
	return match.Text()
}
