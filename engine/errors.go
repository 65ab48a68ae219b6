package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/use-agent/jobscout/models"
)

// ErrTooManyRedirects is returned when a page exceeds the redirect budget.
var ErrTooManyRedirects = errors.New("too many redirects")

// StatusError indicates the page answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// ContentTypeError indicates the page is not HTML (PDF, JSON, image, ...).
type ContentTypeError struct {
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content type %q", e.ContentType)
}

// Classify converts a fetch error into a ScrapeError whose Message is fit
// for end users. Already-classified errors are returned unchanged.
func Classify(err error) *models.ScrapeError {
	if err == nil {
		return nil
	}

	var scrapeErr *models.ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr
	}

	if errors.Is(err, ErrTooManyRedirects) {
		return models.NewScrapeError(models.ErrCodeTooManyRedirects,
			"stopped after too many redirects (possible redirect loop)", err)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return models.NewScrapeError(models.ErrCodeHTTPStatus,
			fmt.Sprintf("page returned HTTP %d %s", statusErr.StatusCode, http.StatusText(statusErr.StatusCode)), err)
	}

	var ctErr *ContentTypeError
	if errors.As(err, &ctErr) {
		return models.NewScrapeError(models.ErrCodeUnsupportedContent,
			fmt.Sprintf("unsupported content type %q: only HTML job pages can be extracted", ctErr.ContentType), err)
	}

	if errors.Is(err, context.Canceled) {
		return models.NewScrapeError(models.ErrCodeCanceled, "request canceled", err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return models.NewScrapeError(models.ErrCodeDNS,
			fmt.Sprintf("could not resolve host %s", dnsErr.Name), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewScrapeError(models.ErrCodeTimeout, "timed out fetching page", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewScrapeError(models.ErrCodeTimeout, "timed out fetching page", err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return models.NewScrapeError(models.ErrCodeConnection, "could not connect to host", err)
	}

	return models.NewScrapeError(models.ErrCodeFetchFailed, "failed to fetch page", err)
}

// isTerminal reports whether retrying the same URL with a heavier engine
// cannot change the outcome.
func isTerminal(err error) bool {
	var ctErr *ContentTypeError
	if errors.As(err, &ctErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusGone
	}
	return false
}
