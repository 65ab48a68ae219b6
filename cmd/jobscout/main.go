package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/use-agent/jobscout/api"
	"github.com/use-agent/jobscout/cache"
	"github.com/use-agent/jobscout/config"
	"github.com/use-agent/jobscout/engine"
	"github.com/use-agent/jobscout/extractor"
	"github.com/use-agent/jobscout/metrics"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("jobscout starting",
		"addr", cfg.Addr(),
		"mode", cfg.Server.Mode,
		"browser", cfg.Browser.Enabled,
	)

	// ── 3. Fetch engines ────────────────────────────────────────────
	fetcher, closeFetcher, err := newFetcher(cfg)
	if err != nil {
		slog.Error("failed to initialise fetch engines", "error", err)
		os.Exit(1)
	}
	defer closeFetcher()

	// ── 4. Extractor, cache and metrics ─────────────────────────────
	required, err := requiredFields(cfg.Extract.RequiredFields)
	if err != nil {
		slog.Error("invalid required fields", "error", err)
		os.Exit(1)
	}
	m := metrics.New()
	x := extractor.New(fetcher, extractor.Options{
		MaxDescriptionLength: cfg.Extract.MaxDescriptionLength,
		RequiredFields:       required,
	}, m)
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(x, cfg, cc, m, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetch.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("jobscout stopped")
}

// newFetcher builds the HTTP engine and, when enabled, races it against a
// headless browser through a dispatcher. The returned func releases Chrome.
func newFetcher(cfg *config.Config) (engine.Engine, func(), error) {
	httpEngine := engine.NewHTTPEngine(httpOptions(cfg.Fetch))
	if !cfg.Browser.Enabled {
		return httpEngine, func() {}, nil
	}

	browser, err := engine.NewBrowserEngine(browserOptions(cfg))
	if err != nil {
		return nil, nil, err
	}

	engines := []engine.Engine{httpEngine, browser}
	memory := engine.NewDomainMemory(cfg.Browser.DomainMemoryTTL)
	slog.Info("multi-engine dispatcher enabled",
		"engines", len(engines),
		"delays", cfg.Browser.EscalationDelays,
	)
	return engine.NewDispatcher(engines, cfg.Browser.EscalationDelays, memory), browser.Close, nil
}

func httpOptions(c config.FetchConfig) engine.HTTPOptions {
	redirects := c.MaxRedirects
	if redirects == 0 {
		// The engine reads 0 as "use the default"; config 0 means none.
		redirects = -1
	}
	return engine.HTTPOptions{
		Timeout:      c.Timeout,
		MaxRedirects: redirects,
		MaxBodyBytes: c.MaxBodyBytes,
		UserAgent:    c.UserAgent,
		Proxy:        c.Proxy,
	}
}

func browserOptions(cfg *config.Config) engine.BrowserOptions {
	return engine.BrowserOptions{
		Headless:     cfg.Browser.Headless,
		NoSandbox:    cfg.Browser.NoSandbox,
		Bin:          cfg.Browser.Bin,
		Proxy:        cfg.Fetch.Proxy,
		MaxPages:     cfg.Browser.MaxPages,
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	}
}

func requiredFields(names []string) ([]extractor.Field, error) {
	fields := make([]extractor.Field, 0, len(names))
	for _, n := range names {
		f, err := extractor.ParseField(n)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
