package models

import "fmt"

// Error codes attached to failed extractions and API errors.
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeTimeout            = "FETCH_TIMEOUT"
	ErrCodeDNS                = "DNS_FAILURE"
	ErrCodeConnection         = "CONNECTION_FAILED"
	ErrCodeHTTPStatus         = "HTTP_STATUS"
	ErrCodeTooManyRedirects   = "TOO_MANY_REDIRECTS"
	ErrCodeUnsupportedContent = "UNSUPPORTED_CONTENT"
	ErrCodeCanceled           = "REQUEST_CANCELED"
	ErrCodeFetchFailed        = "FETCH_FAILED"
	ErrCodeParse              = "PARSE_FAILED"
	ErrCodeFieldsMissing      = "FIELDS_MISSING"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// Messages returned verbatim by POST /scrape-job on bad input.
const (
	MsgURLRequired      = "URL is required"
	MsgInvalidURLFormat = "Invalid URL format"
)

// ScrapeError is the internal error type carrying an error code.
// Message is safe to show to end users; Err keeps the underlying cause.
type ScrapeError struct {
	Code    string
	Message string
	Err     error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ErrorResponse is the body of every non-200 API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
