package models

// ScrapeResult is the outcome of one extraction. It is always produced, even
// when the fetch failed outright; missing content fields mean "not found".
//
// Only Success, the four content fields and Error are part of the
// POST /scrape-job body. The rest is diagnostic.
type ScrapeResult struct {
	Success     bool   `json:"success"`
	JobTitle    string `json:"jobTitle,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`

	// Error is set whenever Success is false.
	Error string `json:"error,omitempty"`

	ErrorCode  string            `json:"-"`
	FinalURL   string            `json:"-"`
	StatusCode int               `json:"-"`
	Engine     string            `json:"-"`
	Truncated  bool              `json:"-"` // page markup was cut at the body cap
	Sources    map[string]string `json:"-"` // field -> winning strategy
}

// Clone returns a deep copy so cached results are never shared.
func (r *ScrapeResult) Clone() *ScrapeResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Sources != nil {
		out.Sources = make(map[string]string, len(r.Sources))
		for k, v := range r.Sources {
			out.Sources[k] = v
		}
	}
	return &out
}

// Fail marks the result unsuccessful with the given error.
func (r *ScrapeResult) Fail(e *ScrapeError) {
	r.Success = false
	r.ErrorCode = e.Code
	r.Error = e.Message
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Version      string `json:"version"`
	CacheEntries int    `json:"cache_entries"`
	Browser      bool   `json:"browser_enabled"`
}
