package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// BrowserOptions configures the headless Chrome engine.
type BrowserOptions struct {
	Headless  bool
	NoSandbox bool
	Bin       string
	Proxy     string
	MaxPages  int
	UserAgent string
	Timeout   time.Duration

	// MaxBodyBytes caps the rendered markup handed to the parser.
	MaxBodyBytes int64 // default: 5 MiB
}

// BrowserEngine renders pages in headless Chrome so job boards that build
// their content client-side still expose it. Pages come from a bounded pool.
type BrowserEngine struct {
	browser *rod.Browser
	pool    rod.Pool[rod.Page]
	health  *healthTracker[*rod.Page]
	opts    BrowserOptions
}

// blockedResources are never needed to read a job description.
var blockedResources = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeImage:      {},
	proto.NetworkResourceTypeStylesheet: {},
	proto.NetworkResourceTypeFont:       {},
	proto.NetworkResourceTypeMedia:      {},
}

// NewBrowserEngine launches Chrome and connects to it.
func NewBrowserEngine(opts BrowserOptions) (*BrowserEngine, error) {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 << 20
	}

	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser_engine: launch: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("browser_engine: connect: %w", err)
	}
	slog.Info("browser engine ready", "controlURL", controlURL, "maxPages", opts.MaxPages)

	return &BrowserEngine{
		browser: browser,
		pool:    rod.NewPagePool(opts.MaxPages),
		health:  newHealthTracker[*rod.Page](),
		opts:    opts,
	}, nil
}

func (e *BrowserEngine) Name() string { return "browser" }

func (e *BrowserEngine) Fetch(ctx context.Context, req *FetchRequest) (result *FetchResult, err error) {
	timeout := e.opts.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := e.pool.Get(func() (*rod.Page, error) {
		p, createErr := e.browser.Page(proto.TargetCreateTarget{})
		if createErr == nil {
			e.health.track(p)
		}
		return p, createErr
	})
	if err != nil {
		// Get consumed a pool slot; give it back empty.
		e.pool.Put(nil)
		return nil, fmt.Errorf("browser_engine: acquire page: %w", err)
	}
	// The original page reference has no request context, so cleanup
	// still works after ctx expires.
	defer func() {
		if e.health.release(page, !tabFault(err)) {
			slog.Debug("browser_engine: retiring page")
			_ = page.Close()
			e.pool.Put(nil)
			return
		}
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("browser_engine: reset page failed", "error", navErr)
		}
		e.pool.Put(page)
	}()

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("browser_engine: stealth injection failed", "error", err)
	}
	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: e.opts.UserAgent})

	headers := map[string]string{"Accept-Language": "en-US,en;q=0.9"}
	if u, parseErr := url.Parse(req.URL); parseErr == nil {
		headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
	}
	for k, v := range req.Headers {
		headers[k] = v
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if _, blocked := blockedResources[h.Request.Type()]; blocked {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
	defer func() { _ = router.Stop() }()

	p := page.Context(ctx)
	if err := p.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("browser_engine: navigate: %w", err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("browser_engine: DOM did not settle, using current DOM", "error", err)
	}

	statusCode := 0
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}
	finalURL := evalString(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}
	if statusCode >= 300 {
		return nil, &StatusError{StatusCode: statusCode, URL: finalURL}
	}

	contentType := evalString(p, `() => document.contentType`)
	if contentType != "" && !isHTMLContentType(contentType) {
		return nil, &ContentTypeError{ContentType: contentType}
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("browser_engine: read html: %w", err)
	}

	rawHTML, truncated := capMarkup(rawHTML, e.opts.MaxBodyBytes)

	return &FetchResult{
		HTML:        rawHTML,
		Title:       evalString(p, `() => document.title`),
		StatusCode:  statusCode,
		FinalURL:    finalURL,
		ContentType: "text/html",
		EngineName:  e.Name(),
		Truncated:   truncated,
	}, nil
}

// capMarkup cuts s to at most limit bytes without splitting a UTF-8 sequence.
func capMarkup(s string, limit int64) (string, bool) {
	if limit <= 0 || int64(len(s)) <= limit {
		return s, false
	}
	cut := int(limit)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}

// Close drains the page pool and kills the browser process.
func (e *BrowserEngine) Close() {
	e.pool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	if err := e.browser.Close(); err != nil {
		slog.Warn("browser_engine: close failed", "error", err)
	}
}

// tabFault reports whether err points at the tab itself rather than at the
// page it loaded.
func tabFault(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	var ctErr *ContentTypeError
	return !errors.As(err, &statusErr) && !errors.As(err, &ctErr)
}

func evalString(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders
// (map[string]gson.JSON).
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
