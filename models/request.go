package models

import (
	"net/url"
	"strings"
)

// Description formats accepted by POST /scrape-job.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// ScrapeJobRequest is the payload for POST /scrape-job.
type ScrapeJobRequest struct {
	// URL is the job posting page to extract. Required, absolute http(s).
	URL string `json:"url"`

	// DescriptionFormat controls how the description is rendered.
	// "text" (default) strips all markup; "markdown" keeps lists and headings.
	DescriptionFormat string `json:"description_format,omitempty" binding:"omitempty,oneof=text markdown"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeJobRequest) Defaults() {
	r.URL = strings.TrimSpace(r.URL)
	if r.DescriptionFormat == "" {
		r.DescriptionFormat = FormatText
	}
}

// ParseJobURL validates raw as an absolute http(s) URL. The returned error
// is a *ScrapeError whose Message is one of MsgURLRequired or MsgInvalidURLFormat.
func ParseJobURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, NewScrapeError(ErrCodeInvalidInput, MsgURLRequired, nil)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, NewScrapeError(ErrCodeInvalidInput, MsgInvalidURLFormat, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewScrapeError(ErrCodeInvalidInput, MsgInvalidURLFormat, nil)
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Host, " \t") {
		return nil, NewScrapeError(ErrCodeInvalidInput, MsgInvalidURLFormat, nil)
	}
	return u, nil
}
