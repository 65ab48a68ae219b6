package engine

import (
	"context"
	"time"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "browser").
	Name() string

	// Fetch retrieves the page for the given request. Implementations must
	// return an error for non-2xx statuses and non-HTML content so callers
	// never try to parse a PDF or an error page.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML        string
	Title       string
	StatusCode  int
	FinalURL    string
	ContentType string
	EngineName  string
	Truncated   bool
}
