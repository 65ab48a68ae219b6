package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jarcoal/httpmock"

	"github.com/use-agent/jobscout/engine"
	"github.com/use-agent/jobscout/models"
)

type stubFetcher struct {
	html      string
	title     string
	truncated bool
	err       error
	calls     atomic.Int32
}

func (s *stubFetcher) Name() string { return "stub" }

func (s *stubFetcher) Fetch(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &engine.FetchResult{
		HTML:       s.html,
		Title:      s.title,
		StatusCode: 200,
		FinalURL:   req.URL,
		EngineName: "stub",
		Truncated:  s.truncated,
	}, nil
}

const jsonLDPage = `<!DOCTYPE html>
<html><head>
<title>Careers | Acme Corp</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "JobPosting",
  "title": "Senior Engineer",
  "hiringOrganization": {"@type": "Organization", "name": "Acme Corp"},
  "jobLocationType": "TELECOMMUTE",
  "description": "&lt;p&gt;Build and run the services behind our checkout.&lt;/p&gt;&lt;ul&gt;&lt;li&gt;Go&lt;/li&gt;&lt;li&gt;PostgreSQL&lt;/li&gt;&lt;/ul&gt;"
}
</script>
</head><body><h1>Something else entirely</h1></body></html>`

func TestExtractJSONLD(t *testing.T) {
	x := New(&stubFetcher{html: jsonLDPage}, Options{}, nil)
	r := x.Extract(context.Background(), "https://jobs.acme.test/123")

	if !r.Success {
		t.Fatalf("Success = false, error = %q", r.Error)
	}
	if r.JobTitle != "Senior Engineer" {
		t.Errorf("JobTitle = %q, want %q", r.JobTitle, "Senior Engineer")
	}
	if r.CompanyName != "Acme Corp" {
		t.Errorf("CompanyName = %q, want %q", r.CompanyName, "Acme Corp")
	}
	if r.Location != "Remote" {
		t.Errorf("Location = %q, want %q", r.Location, "Remote")
	}
	want := "Build and run the services behind our checkout.\nGo\nPostgreSQL"
	if r.Description != want {
		t.Errorf("Description = %q, want %q", r.Description, want)
	}
	if r.Error != "" {
		t.Errorf("Error = %q, want empty on success", r.Error)
	}
	if r.Sources["jobTitle"] != "jsonld" {
		t.Errorf("title source = %q, want jsonld", r.Sources["jobTitle"])
	}
}

func TestExtractMarkdownDescription(t *testing.T) {
	x := New(&stubFetcher{html: jsonLDPage}, Options{}, nil)
	r := x.ExtractAs(context.Background(), "https://jobs.acme.test/123", models.FormatMarkdown)

	if !strings.Contains(r.Description, "- Go") || !strings.Contains(r.Description, "- PostgreSQL") {
		t.Errorf("markdown description missing list items: %q", r.Description)
	}
	if strings.Contains(r.Description, "<") {
		t.Errorf("markdown description still contains markup: %q", r.Description)
	}
}

func TestExtractTitleFallback(t *testing.T) {
	page := `<html><head><title>Backend Developer at Acme - Careers</title></head>
<body><p>Apply now.</p></body></html>`
	x := New(&stubFetcher{html: page}, Options{}, nil)
	r := x.Extract(context.Background(), "https://acme.test/jobs/42")

	if !r.Success {
		t.Fatalf("Success = false, error = %q", r.Error)
	}
	if r.JobTitle != "Backend Developer" {
		t.Errorf("JobTitle = %q, want %q", r.JobTitle, "Backend Developer")
	}
	if r.CompanyName != "Acme" {
		t.Errorf("CompanyName = %q, want %q", r.CompanyName, "Acme")
	}
	if r.Sources["jobTitle"] != "title" {
		t.Errorf("title source = %q, want title", r.Sources["jobTitle"])
	}
}

func TestExtractIdempotent(t *testing.T) {
	page := `<html><head><title>Data Analyst | Globex</title>
<meta property="og:description" content="Globex is hiring a data analyst to own reporting across the sales org.">
</head><body><main><div class="job-description">
<p>You will own dashboards, metrics definitions, and weekly business reviews.</p>
<p>We use dbt, Snowflake, and Looker. Some Python is a plus, as is SQL tuning.</p>
</div></main></body></html>`
	x := New(&stubFetcher{html: page}, Options{}, nil)

	first := x.Extract(context.Background(), "https://globex.test/jobs/1")
	second := x.Extract(context.Background(), "https://globex.test/jobs/1")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\nfirst  %+v\nsecond %+v", first, second)
	}
	if first.Description == "" {
		t.Errorf("expected a description from the content block")
	}
}

func TestExtractTruncatesLargeDescription(t *testing.T) {
	long := strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 50000)
	page := `<html><head><title>Writer | Initech</title></head><body><article><p>` + long + `</p></article></body></html>`
	if len(page) < 2<<20 {
		t.Fatalf("fixture too small: %d bytes", len(page))
	}

	x := New(&stubFetcher{html: page}, Options{}, nil)
	r := x.Extract(context.Background(), "https://initech.test/jobs/9")
	if !r.Success {
		t.Fatalf("Success = false, error = %q", r.Error)
	}
	n := utf8.RuneCountInString(r.Description)
	if n == 0 || n > DefaultMaxDescriptionLength {
		t.Errorf("description length = %d runes, want 1..%d", n, DefaultMaxDescriptionLength)
	}

	small := New(&stubFetcher{html: page}, Options{MaxDescriptionLength: 200}, nil)
	if n := utf8.RuneCountInString(small.Extract(context.Background(), "https://initech.test/jobs/9").Description); n > 200 {
		t.Errorf("description length = %d runes with cap 200", n)
	}
}

func TestExtractInvalidURLDoesNotFetch(t *testing.T) {
	f := &stubFetcher{html: jsonLDPage}
	x := New(f, Options{}, nil)

	for _, raw := range []string{"", "   ", "not a url", "ftp://example.com/job", "https://"} {
		r := x.Extract(context.Background(), raw)
		if r.Success || r.ErrorCode != models.ErrCodeInvalidInput {
			t.Errorf("Extract(%q) = success %v code %q, want INVALID_INPUT", raw, r.Success, r.ErrorCode)
		}
	}
	if got := f.calls.Load(); got != 0 {
		t.Errorf("fetcher called %d times for invalid URLs", got)
	}
}

func TestExtractFetchFailureKeepsFieldsEmpty(t *testing.T) {
	x := New(&stubFetcher{err: &engine.StatusError{StatusCode: 503, URL: "https://x.test"}}, Options{}, nil)
	r := x.Extract(context.Background(), "https://x.test/job")

	if r.Success {
		t.Fatal("Success = true for a 503")
	}
	if r.ErrorCode != models.ErrCodeHTTPStatus || !strings.Contains(r.Error, "503") {
		t.Errorf("code = %q error = %q", r.ErrorCode, r.Error)
	}
	if r.JobTitle != "" || r.CompanyName != "" || r.Location != "" || r.Description != "" {
		t.Errorf("content fields should be empty on fetch failure: %+v", r)
	}
}

func TestExtractUnreachableHost(t *testing.T) {
	x := New(engine.NewHTTPEngine(engine.HTTPOptions{}), Options{}, nil)
	r := x.Extract(context.Background(), "http://127.0.0.1:1/job")

	if r.Success {
		t.Fatal("Success = true for an unreachable host")
	}
	if r.Error == "" {
		t.Error("Error is empty")
	}
	if r.ErrorCode != models.ErrCodeConnection {
		t.Errorf("ErrorCode = %q, want %q", r.ErrorCode, models.ErrCodeConnection)
	}
}

func TestExtractRedirectLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	x := New(engine.NewHTTPEngine(engine.HTTPOptions{}), Options{}, nil)
	r := x.Extract(context.Background(), srv.URL+"/loop")
	if r.Success || r.ErrorCode != models.ErrCodeTooManyRedirects {
		t.Errorf("success %v code %q, want TOO_MANY_REDIRECTS", r.Success, r.ErrorCode)
	}
}

func TestExtractRejectsPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	x := New(engine.NewHTTPEngine(engine.HTTPOptions{}), Options{}, nil)
	r := x.Extract(context.Background(), srv.URL+"/job.pdf")
	if r.Success || !strings.Contains(r.Error, "unsupported content type") {
		t.Errorf("success %v error %q, want unsupported content type", r.Success, r.Error)
	}
}

func TestExtractMissingRequiredFieldsKeepsPartial(t *testing.T) {
	page := `<html><head><title>Site Reliability Engineer</title></head><body></body></html>`
	x := New(&stubFetcher{html: page}, Options{RequiredFields: []Field{FieldTitle, FieldCompany}}, nil)
	r := x.Extract(context.Background(), "https://example.test/jobs/7")

	if r.Success {
		t.Fatal("Success = true without a company")
	}
	if r.Error != "could not extract required fields: company name" {
		t.Errorf("Error = %q", r.Error)
	}
	if r.JobTitle != "Site Reliability Engineer" {
		t.Errorf("partial JobTitle = %q", r.JobTitle)
	}
}

func TestExtractNothingFound(t *testing.T) {
	x := New(&stubFetcher{html: `<html><body><div id="root"></div></body></html>`}, Options{}, nil)
	r := x.Extract(context.Background(), "https://spa.test/job/1")
	if r.Success {
		t.Fatal("Success = true for an empty shell page")
	}
	if r.ErrorCode != models.ErrCodeFieldsMissing || !strings.Contains(r.Error, "job title") {
		t.Errorf("code %q error %q", r.ErrorCode, r.Error)
	}
}

type panicStrategy struct{}

func (panicStrategy) Name() string                   { return "boom" }
func (panicStrategy) Extract(*Document, Field) string { panic(errors.New("boom")) }

func TestExtractRecoversStrategyPanic(t *testing.T) {
	chains := Chain{FieldTitle: {panicStrategy{}, TitleStrategy{}}}
	x := New(&stubFetcher{html: `<title>QA Engineer | Hooli</title>`}, Options{Chains: chains}, nil)

	r := x.Extract(context.Background(), "https://hooli.test/jobs/3")
	if !r.Success || r.JobTitle != "QA Engineer" {
		t.Errorf("success %v title %q, want the next strategy to win", r.Success, r.JobTitle)
	}
}

const greenhousePage = `<html><head><title>Job Application for Platform Engineer at Umbrella</title></head>
<body><div id="app_body">
<div id="header"><h1 class="app-title">Platform Engineer</h1>
<span class="company-name">Umbrella</span>
<div class="location">Berlin, Germany</div></div>
<div id="content">
<p>Umbrella runs infrastructure for research labs across Europe.</p>
<h3>What you will do</h3>
<ul><li>Operate Kubernetes clusters</li><li>Build internal tooling in Go</li></ul>
</div></div></body></html>`

func TestExtractGreenhouseSelectors(t *testing.T) {
	transport := httpmock.NewMockTransport()
	resp := httpmock.NewStringResponse(200, greenhousePage)
	resp.Header.Set("Content-Type", "text/html; charset=utf-8")
	transport.RegisterResponder("GET", "https://boards.greenhouse.io/umbrella/jobs/4001",
		httpmock.ResponderFromResponse(resp))

	fetcher := engine.NewHTTPEngine(engine.HTTPOptions{})
	fetcher.SetTransport(transport)

	r := New(fetcher, Options{}, nil).Extract(context.Background(), "https://boards.greenhouse.io/umbrella/jobs/4001")
	if !r.Success {
		t.Fatalf("Success = false, error = %q", r.Error)
	}
	if r.JobTitle != "Platform Engineer" || r.CompanyName != "Umbrella" || r.Location != "Berlin, Germany" {
		t.Errorf("got title %q company %q location %q", r.JobTitle, r.CompanyName, r.Location)
	}
	if !strings.Contains(r.Description, "Operate Kubernetes clusters") {
		t.Errorf("Description = %q", r.Description)
	}
	for field, want := range map[string]string{"jobTitle": "site", "companyName": "site", "location": "site", "description": "site"} {
		if got := r.Sources[field]; got != want {
			t.Errorf("source[%s] = %q, want %q", field, got, want)
		}
	}
	if r.Engine != "http" {
		t.Errorf("Engine = %q", r.Engine)
	}
	if transport.GetTotalCallCount() != 1 {
		t.Errorf("outbound calls = %d, want exactly 1", transport.GetTotalCallCount())
	}
}

// deepPage nests depth divs, past what the HTML parser accepts.
func deepPage(title string, depth int) string {
	return "<html><head><title>" + title + "</title></head><body>" +
		strings.Repeat("<div>", depth) + "Apply now" + strings.Repeat("</div>", depth) +
		"</body></html>"
}

func TestExtractUnparsablePageKeepsTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(deepPage("Backend Developer at Acme - Careers", 2000)))
	}))
	defer srv.Close()

	x := New(engine.NewHTTPEngine(engine.HTTPOptions{}), Options{}, nil)
	r := x.Extract(context.Background(), srv.URL+"/jobs/42")

	if !r.Success {
		t.Fatalf("Success = false, code %q error %q", r.ErrorCode, r.Error)
	}
	if r.JobTitle != "Backend Developer" || r.CompanyName != "Acme" {
		t.Errorf("got title %q company %q", r.JobTitle, r.CompanyName)
	}
	if r.Sources["jobTitle"] != "title" {
		t.Errorf("title source = %q, want title", r.Sources["jobTitle"])
	}
}

func TestExtractUnparsablePageWithoutTitle(t *testing.T) {
	f := &stubFetcher{html: deepPage("Careers", 600), title: "Careers"}
	r := New(f, Options{}, nil).Extract(context.Background(), "https://acme.test/jobs/1")

	if r.Success || r.ErrorCode != models.ErrCodeParse {
		t.Errorf("success %v code %q, want PARSE_FAILED", r.Success, r.ErrorCode)
	}
	if r.JobTitle != "" || r.CompanyName != "" {
		t.Errorf("generic title produced fields: %+v", r)
	}
}

func TestExtractUnparsablePageKeepsPartialFields(t *testing.T) {
	f := &stubFetcher{html: deepPage("Acme Careers", 600), title: "Acme Careers"}
	r := New(f, Options{}, nil).Extract(context.Background(), "https://acme.test/jobs/1")

	if r.Success || r.ErrorCode != models.ErrCodeParse {
		t.Errorf("success %v code %q, want PARSE_FAILED", r.Success, r.ErrorCode)
	}
	if r.CompanyName != "Acme" {
		t.Errorf("CompanyName = %q, want the company kept from the title", r.CompanyName)
	}
}

func TestExtractCarriesTruncation(t *testing.T) {
	f := &stubFetcher{html: `<title>Welder | Acme</title>`, truncated: true}
	r := New(f, Options{}, nil).Extract(context.Background(), "https://acme.test/jobs/2")
	if !r.Truncated {
		t.Error("Truncated = false, want the engine flag carried through")
	}
}

func TestExtractCancelStopsFetch(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	x := New(engine.NewHTTPEngine(engine.HTTPOptions{Timeout: 30 * time.Second}), Options{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	r := x.Extract(ctx, srv.URL+"/slow")
	elapsed := time.Since(start)

	if r.Success || r.ErrorCode != models.ErrCodeCanceled {
		t.Errorf("success %v code %q, want REQUEST_CANCELED", r.Success, r.ErrorCode)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Extract returned after %v, want prompt cancellation", elapsed)
	}
}
