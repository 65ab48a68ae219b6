package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/jobscout/engine"
	"github.com/use-agent/jobscout/metrics"
	"github.com/use-agent/jobscout/models"
)

// DefaultRequiredFields is the subset of fields that must be recovered for
// an extraction to count as successful.
var DefaultRequiredFields = []Field{FieldTitle}

// Options configures an Extractor. Zero values fall back to defaults.
type Options struct {
	MaxDescriptionLength int
	RequiredFields       []Field
	Chains               Chain
}

// Extractor turns a job posting URL into a ScrapeResult. It holds no
// per-request state and is safe for concurrent use.
type Extractor struct {
	fetcher  engine.Engine
	opts     Options
	chains   Chain
	mdConv   *converter.Converter
	metrics  *metrics.Metrics
	required []Field
}

// New creates an Extractor fetching pages through fetcher. m may be nil.
func New(fetcher engine.Engine, opts Options, m *metrics.Metrics) *Extractor {
	if opts.MaxDescriptionLength <= 0 {
		opts.MaxDescriptionLength = DefaultMaxDescriptionLength
	}
	required := opts.RequiredFields
	if len(required) == 0 {
		required = DefaultRequiredFields
	}
	chains := opts.Chains
	if chains == nil {
		chains = DefaultChains()
	}
	return &Extractor{
		fetcher:  fetcher,
		opts:     opts,
		chains:   chains,
		mdConv:   newMarkdownConverter(),
		metrics:  m,
		required: required,
	}
}

// Extract fetches rawURL and extracts a plain-text job posting.
func (e *Extractor) Extract(ctx context.Context, rawURL string) *models.ScrapeResult {
	return e.ExtractAs(ctx, rawURL, models.FormatText)
}

// ExtractAs is Extract with a description format ("text" or "markdown").
//
// It never returns nil and never panics: fetch failures, parse failures and
// missing fields are all reported through ScrapeResult.Error with whatever
// fields were recovered.
func (e *Extractor) ExtractAs(ctx context.Context, rawURL, format string) (result *models.ScrapeResult) {
	start := time.Now()
	result = &models.ScrapeResult{}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("extraction panicked", "url", rawURL, "panic", r)
			result.Fail(models.NewScrapeError(models.ErrCodeInternal, "internal error during extraction", nil))
		}
		e.record(rawURL, result, time.Since(start))
	}()

	u, err := models.ParseJobURL(rawURL)
	if err != nil {
		result.Fail(engine.Classify(err))
		return result
	}

	fetchStart := time.Now()
	page, err := e.fetcher.Fetch(ctx, &engine.FetchRequest{URL: u.String()})
	e.metrics.ObserveFetch(time.Since(fetchStart))
	if err != nil {
		scrapeErr := engine.Classify(err)
		e.metrics.IncFetchError(scrapeErr.Code)
		slog.Warn("fetch failed", "url", u.String(), "code", scrapeErr.Code, "error", err)
		result.Fail(scrapeErr)
		return result
	}

	result.FinalURL = page.FinalURL
	result.StatusCode = page.StatusCode
	result.Engine = page.EngineName

	pageURL := u
	if page.FinalURL != "" {
		if parsed, perr := url.Parse(page.FinalURL); perr == nil && parsed.Host != "" {
			pageURL = parsed
		}
	}

	result.Truncated = page.Truncated

	doc, err := NewDocument(page.HTML, pageURL)
	if err != nil {
		slog.Warn("page parse failed, using fetched title", "url", u.String(), "error", err)
		e.fillFromTitle(page.Title, result)
		if len(e.missingFields(result)) > 0 {
			result.Fail(models.NewScrapeError(models.ErrCodeParse, "could not parse page", err))
			return result
		}
		result.Success = true
		return result
	}

	e.fill(doc, result, format)

	if missing := e.missingFields(result); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, f := range missing {
			labels[i] = f.Label()
		}
		result.Fail(models.NewScrapeError(models.ErrCodeFieldsMissing,
			"could not extract required fields: "+strings.Join(labels, ", "), nil))
		return result
	}

	result.Success = true
	return result
}

// fill runs every field's strategy chain. Fields are independent: a failing
// strategy or field never affects the others.
func (e *Extractor) fill(doc *Document, result *models.ScrapeResult, format string) {
	result.Sources = make(map[string]string, len(Fields))
	for _, field := range Fields {
		for _, s := range e.chains[field] {
			raw := runStrategy(s, doc, field)
			if strings.TrimSpace(raw) == "" {
				continue
			}
			v, ok := e.clean(doc, field, raw, format)
			if !ok {
				continue
			}
			setField(result, field, v)
			result.Sources[string(field)] = s.Name()
			e.metrics.IncFieldHit(string(field), s.Name())
			break
		}
	}
}

// fillFromTitle recovers what it can from the title the engine tokenized
// when the page itself could not be parsed.
func (e *Extractor) fillFromTitle(title string, result *models.ScrapeResult) {
	parts := splitTitle(title)
	result.Sources = make(map[string]string, 3)
	for _, c := range []struct {
		field Field
		v     string
	}{
		{FieldTitle, parts.role},
		{FieldCompany, parts.company},
		{FieldLocation, parts.location},
	} {
		v := CollapseWhitespace(c.v)
		if !plausible(c.field, v) {
			continue
		}
		setField(result, c.field, Truncate(v, MaxFieldLength))
		result.Sources[string(c.field)] = TitleStrategy{}.Name()
		e.metrics.IncFieldHit(string(c.field), TitleStrategy{}.Name())
	}
}

// runStrategy isolates a strategy so a panic only costs that candidate.
func runStrategy(s Strategy, doc *Document, field Field) (v string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("strategy panicked", "strategy", s.Name(), "field", string(field), "panic", r)
			v = ""
		}
	}()
	return s.Extract(doc, field)
}

// clean sanitizes a candidate value and reports whether it is plausible.
func (e *Extractor) clean(doc *Document, field Field, raw, format string) (string, bool) {
	if field != FieldDescription {
		v := CollapseWhitespace(HTMLToText(raw))
		if !plausible(field, v) {
			return "", false
		}
		return Truncate(v, MaxFieldLength), true
	}

	text := NormalizeParagraphs(HTMLToText(raw))
	if !plausible(field, text) {
		return "", false
	}
	v := text
	if format == models.FormatMarkdown {
		md, err := toMarkdown(e.mdConv, unescapeMarkup(raw), doc.Origin())
		if err != nil {
			slog.Debug("markdown conversion failed, using text", "error", err)
		} else if md = normalizeMarkdown(md); md != "" {
			v = md
		}
	}
	return Truncate(v, e.opts.MaxDescriptionLength), true
}

func (e *Extractor) missingFields(r *models.ScrapeResult) []Field {
	var missing []Field
	for _, f := range e.required {
		if fieldValue(r, f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (e *Extractor) record(rawURL string, r *models.ScrapeResult, elapsed time.Duration) {
	outcome := "success"
	switch {
	case r.Success:
	case r.JobTitle != "" || r.CompanyName != "" || r.Location != "" || r.Description != "":
		outcome = "partial"
	default:
		outcome = "failed"
	}
	e.metrics.IncExtraction(outcome)

	attrs := []any{
		"url", rawURL,
		"success", r.Success,
		"fields", foundFields(r),
		"engine", r.Engine,
		"truncated", r.Truncated,
		"duration", elapsed.Round(time.Millisecond).String(),
	}
	if r.Success {
		slog.Info("job extracted", attrs...)
		return
	}
	slog.Warn("job extraction incomplete", append(attrs, "code", r.ErrorCode, "error", r.Error)...)
}

func foundFields(r *models.ScrapeResult) string {
	var found []string
	for _, f := range Fields {
		if fieldValue(r, f) != "" {
			found = append(found, fmt.Sprintf("%s(%s)", f, r.Sources[string(f)]))
		}
	}
	return strings.Join(found, ",")
}

func setField(r *models.ScrapeResult, f Field, v string) {
	switch f {
	case FieldTitle:
		r.JobTitle = v
	case FieldCompany:
		r.CompanyName = v
	case FieldLocation:
		r.Location = v
	case FieldDescription:
		r.Description = v
	}
}

func fieldValue(r *models.ScrapeResult, f Field) string {
	switch f {
	case FieldTitle:
		return r.JobTitle
	case FieldCompany:
		return r.CompanyName
	case FieldLocation:
		return r.Location
	case FieldDescription:
		return r.Description
	}
	return ""
}

