package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/jobscout/cache"
	"github.com/use-agent/jobscout/metrics"
	"github.com/use-agent/jobscout/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeExtractor struct {
	calls   atomic.Int32
	lastURL string
	format  string
	result  *models.ScrapeResult
}

func (f *fakeExtractor) ExtractAs(_ context.Context, rawURL, format string) *models.ScrapeResult {
	f.calls.Add(1)
	f.lastURL = rawURL
	f.format = format
	return f.result.Clone()
}

func newScrapeRouter(x JobExtractor, cc *cache.Cache) *gin.Engine {
	r := gin.New()
	r.POST("/scrape-job", ScrapeJob(x, cc, metrics.New()))
	return r
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/scrape-job", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScrapeJobRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", models.MsgURLRequired},
		{"missing url", `{}`, models.MsgURLRequired},
		{"blank url", `{"url":"   "}`, models.MsgURLRequired},
		{"not a url", `{"url":"not a url"}`, models.MsgInvalidURLFormat},
		{"relative", `{"url":"/jobs/1"}`, models.MsgInvalidURLFormat},
		{"ftp scheme", `{"url":"ftp://example.com/job"}`, models.MsgInvalidURLFormat},
		{"url not a string", `{"url":42}`, models.MsgInvalidURLFormat},
		{"broken json", `{"url":`, msgInvalidBody},
		{"bad format", `{"url":"https://example.com/job","description_format":"pdf"}`, msgInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := &fakeExtractor{result: &models.ScrapeResult{Success: true}}
			w := postJSON(newScrapeRouter(x, nil), tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp models.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.want {
				t.Errorf("error = %q, want %q", resp.Error, tt.want)
			}
			if n := x.calls.Load(); n != 0 {
				t.Errorf("extractor called %d times on bad input", n)
			}
		})
	}
}

func TestScrapeJobSuccess(t *testing.T) {
	x := &fakeExtractor{result: &models.ScrapeResult{
		Success:     true,
		JobTitle:    "Senior Engineer",
		CompanyName: "Acme Corp",
		Location:    "Remote",
		Description: "Build things.",
		Engine:      "http",
	}}
	w := postJSON(newScrapeRouter(x, nil), `{"url":" https://acme.test/jobs/1 "}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if x.lastURL != "https://acme.test/jobs/1" {
		t.Errorf("url passed = %q", x.lastURL)
	}
	if x.format != models.FormatText {
		t.Errorf("format = %q, want default text", x.format)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"success":     true,
		"jobTitle":    "Senior Engineer",
		"companyName": "Acme Corp",
		"location":    "Remote",
		"description": "Build things.",
	}
	if len(body) != len(want) {
		t.Errorf("body has keys %v, want exactly %v", body, want)
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}
}

func TestScrapeJobPartialIsStill200(t *testing.T) {
	x := &fakeExtractor{result: &models.ScrapeResult{
		Success:     false,
		CompanyName: "Acme Corp",
		Error:       "could not extract required fields: job title",
		ErrorCode:   models.ErrCodeFieldsMissing,
	}}
	w := postJSON(newScrapeRouter(x, nil), `{"url":"https://acme.test/jobs/1","description_format":"markdown"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if x.format != models.FormatMarkdown {
		t.Errorf("format = %q, want markdown", x.format)
	}
	var got models.ScrapeResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Success || got.Error == "" || got.CompanyName != "Acme Corp" {
		t.Errorf("partial result not forwarded: %+v", got)
	}
}

func TestScrapeJobNilResultIs500(t *testing.T) {
	x := &fakeExtractor{}
	w := postJSON(newScrapeRouter(x, nil), `{"url":"https://acme.test/jobs/1"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), msgInternal) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestScrapeJobUsesCache(t *testing.T) {
	cc := cache.New(10, time.Minute)
	x := &fakeExtractor{result: &models.ScrapeResult{Success: true, JobTitle: "Welder"}}
	r := newScrapeRouter(x, cc)

	for range 3 {
		if w := postJSON(r, `{"url":"https://acme.test/jobs/1"}`); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
	if n := x.calls.Load(); n != 1 {
		t.Errorf("extractor called %d times, want 1", n)
	}

	postJSON(r, `{"url":"https://acme.test/jobs/1","description_format":"markdown"}`)
	if n := x.calls.Load(); n != 2 {
		t.Errorf("a different format should miss the cache, calls = %d", n)
	}
}

func TestScrapeJobDoesNotCacheFailures(t *testing.T) {
	cc := cache.New(10, time.Minute)
	x := &fakeExtractor{result: &models.ScrapeResult{Error: "HTTP 503"}}
	r := newScrapeRouter(x, cc)

	postJSON(r, `{"url":"https://acme.test/jobs/1"}`)
	postJSON(r, `{"url":"https://acme.test/jobs/1"}`)
	if n := x.calls.Load(); n != 2 {
		t.Errorf("extractor called %d times, want 2", n)
	}
}

func TestHealth(t *testing.T) {
	cc := cache.New(10, time.Minute)
	cc.Set("k", &models.ScrapeResult{Success: true})

	r := gin.New()
	r.GET("/health", Health(cc, true, time.Now().Add(-time.Minute)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.CacheEntries != 1 || !got.Browser || got.Version == "" {
		t.Errorf("health = %+v", got)
	}
}
