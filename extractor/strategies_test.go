package extractor

import (
	"net/url"
	"strings"
	"testing"
)

func mustDocument(t *testing.T, rawURL, page string) *Document {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	doc, err := NewDocument(page, u)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}

func TestSiteStrategyMatchesHostSuffix(t *testing.T) {
	page := `<html><body>
<div class="posting-headline"><h2>Growth Marketer</h2></div>
<a class="main-header-logo"><img alt="Pied Piper" src="/logo.png"></a>
<div class="posting-categories"><div class="location">Palo Alto, CA</div></div>
<div data-qa="job-description"><p>Own paid acquisition across channels and report weekly.</p></div>
</body></html>`

	s := NewSiteStrategy()
	doc := mustDocument(t, "https://jobs.lever.co/piedpiper/abc", page)
	tests := map[Field]string{
		FieldTitle:    "Growth Marketer",
		FieldCompany:  "Pied Piper",
		FieldLocation: "Palo Alto, CA",
	}
	for field, want := range tests {
		if got := strings.TrimSpace(s.Extract(doc, field)); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	if got := s.Extract(doc, FieldDescription); !strings.Contains(got, "<p>Own paid acquisition") {
		t.Errorf("description should keep inner HTML, got %q", got)
	}

	other := mustDocument(t, "https://notlever.co.example/job", page)
	if got := s.Extract(other, FieldTitle); got != "" {
		t.Errorf("rules applied to an unrelated host: %q", got)
	}
}

func TestMicrodataStrategy(t *testing.T) {
	page := `<div itemscope itemtype="https://schema.org/JobPosting">
<h1 itemprop="title">Line Cook</h1>
<div itemprop="hiringOrganization" itemscope itemtype="https://schema.org/Organization">
<span itemprop="name">Bob's Burgers</span></div>
<div itemprop="jobLocation" itemscope><div itemprop="address" itemscope>
<span itemprop="addressLocality">Seaside</span>, <span itemprop="addressRegion">NJ</span></div></div>
<meta itemprop="description" content="Cook burgers on the line during lunch and dinner service.">
</div>`
	doc := mustDocument(t, "https://bobs.test/jobs/1", page)
	m := MicrodataStrategy{}

	tests := map[Field]string{
		FieldTitle:       "Line Cook",
		FieldCompany:     "Bob's Burgers",
		FieldLocation:    "Seaside, NJ",
		FieldDescription: "Cook burgers on the line during lunch and dinner service.",
	}
	for field, want := range tests {
		if got := m.Extract(doc, field); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
}

func TestMetaStrategy(t *testing.T) {
	page := `<html><head>
<meta property="og:title" content="Account Executive at Massive Dynamic">
<meta property="og:site_name" content="LinkedIn">
<meta name="geo.placename" content="Boston, MA">
<meta name="description" content="Short">
<meta property="og:description" content="Sell enterprise software to Fortune 500 accounts in New England.">
</head><body></body></html>`
	doc := mustDocument(t, "https://www.linkedin.com/jobs/view/1", page)
	m := MetaStrategy{}

	tests := map[Field]string{
		FieldTitle:       "Account Executive",
		FieldCompany:     "Massive Dynamic",
		FieldLocation:    "Boston, MA",
		FieldDescription: "Sell enterprise software to Fortune 500 accounts in New England.",
	}
	for field, want := range tests {
		if got := m.Extract(doc, field); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
}

func TestLabelStrategy(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		field Field
		want  string
	}{
		{"inline label", `<ul><li>Department: Engineering</li><li>Location: Remote, EU</li></ul>`, FieldLocation, "Remote, EU"},
		{"company label", `<p><strong>Company:</strong> Soylent Corp</p>`, FieldCompany, "Soylent Corp"},
		{"definition list", `<dl><dt>Job Location</dt><dd>Toronto, ON</dd></dl>`, FieldLocation, "Toronto, ON"},
		{"table row", `<table><tr><th>Location:</th><td>Oslo</td></tr></table>`, FieldLocation, "Oslo"},
		{"long paragraph ignored", `<p>Location: ` + strings.Repeat("very long text ", 20) + `</p>`, FieldLocation, ""},
		{"unsupported field", `<p>Title: Engineer</p>`, FieldTitle, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDocument(t, "https://example.test/job", "<html><body>"+tt.page+"</body></html>")
			if got := (LabelStrategy{}).Extract(doc, tt.field); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlugStrategy(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://jobs.lever.co/acme-corp/1234-abcd", "Acme Corp"},
		{"https://boards.greenhouse.io/initech/jobs/555", "Initech"},
		{"https://boards.greenhouse.io/embed/job_app?for=globex&token=1", "Globex"},
		{"https://jobs.ashbyhq.com/hooli_xyz/abc", "Hooli Xyz"},
		{"https://umbrella.wd5.myworkdayjobs.com/en-US/careers/job/1", "Umbrella"},
		{"https://vandelay.breezy.hr/p/123", "Vandelay"},
		{"https://www.example.com/careers/1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			doc := mustDocument(t, tt.url, "<html></html>")
			if got := (SlugStrategy{}).Extract(doc, FieldCompany); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextBlockPrefersContent(t *testing.T) {
	page := `<html><body>
<nav><ul><li><a href="/">Home</a></li><li><a href="/jobs">All open positions at our company</a></li></ul></nav>
<div class="sidebar"><p>Sign up for our newsletter, get updates, and more things.</p></div>
<div class="job-description">
<p>We are looking for an electrician to maintain plant equipment, wiring, and controls.</p>
<p>You hold a journeyman license, have five years of experience, and like night shifts.</p>
<p>Benefits include health insurance, a pension plan, and paid overtime.</p>
</div>
<footer><p>Copyright 2025 Example Industries, all rights reserved worldwide.</p></footer>
</body></html>`
	doc := mustDocument(t, "https://example.test/job", page)

	got := (TextBlockStrategy{}).Extract(doc, FieldDescription)
	if !strings.Contains(got, "journeyman license") {
		t.Fatalf("content block not selected: %q", got)
	}
	if strings.Contains(got, "newsletter") || strings.Contains(got, "Copyright") {
		t.Errorf("boilerplate leaked into description: %q", got)
	}
}

func TestPlausible(t *testing.T) {
	tests := []struct {
		field Field
		v     string
		want  bool
	}{
		{FieldTitle, "Engineer", true},
		{FieldTitle, "Careers", false},
		{FieldTitle, "Just a moment...", false},
		{FieldTitle, "-", false},
		{FieldCompany, "X", true},
		{FieldCompany, "Indeed", false},
		{FieldCompany, strings.Repeat("a", 151), false},
		{FieldLocation, "NY", true},
		{FieldDescription, "too short", false},
		{FieldDescription, strings.Repeat("long enough ", 5), true},
	}
	for _, tt := range tests {
		if got := plausible(tt.field, tt.v); got != tt.want {
			t.Errorf("plausible(%s, %q) = %v, want %v", tt.field, tt.v, got, tt.want)
		}
	}
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]Field{
		"jobTitle": FieldTitle, "title": FieldTitle, "COMPANY": FieldCompany,
		"companyName": FieldCompany, " location ": FieldLocation, "description": FieldDescription,
	} {
		got, err := ParseField(in)
		if err != nil || got != want {
			t.Errorf("ParseField(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseField("salary"); err == nil {
		t.Error("ParseField(salary) should fail")
	}
}
