package engine

import (
	"math"
	"sync"
	"time"
)

// Retirement thresholds for pooled browser tabs. Any one of them retires
// the tab.
const (
	retireErrScore = 3.0
	retireUses     = 50
	retireAge      = 50 * time.Minute
)

// pageHealth scores one pooled tab.
//
//   - success: errScore -= 0.5 (min 0)
//   - failure: errScore += 1.0
type pageHealth struct {
	errScore float64
	uses     int
	created  time.Time
}

func (h *pageHealth) record(success bool) {
	h.uses++
	if success {
		h.errScore = math.Max(0, h.errScore-0.5)
		return
	}
	h.errScore += 1.0
}

func (h *pageHealth) shouldRetire(now time.Time) bool {
	return h.errScore >= retireErrScore ||
		h.uses >= retireUses ||
		now.Sub(h.created) >= retireAge
}

// healthTracker keeps pageHealth per tab. K is *rod.Page in production.
type healthTracker[K comparable] struct {
	mu    sync.Mutex
	pages map[K]*pageHealth
	now   func() time.Time
}

func newHealthTracker[K comparable]() *healthTracker[K] {
	return &healthTracker[K]{pages: make(map[K]*pageHealth), now: time.Now}
}

// release records the outcome of one navigation on page and reports whether
// the page must be closed instead of returned to the pool. Retired pages
// are forgotten.
func (t *healthTracker[K]) release(page K, success bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.pages[page]
	if !ok {
		h = &pageHealth{created: t.now()}
		t.pages[page] = h
	}
	h.record(success)
	if h.shouldRetire(t.now()) {
		delete(t.pages, page)
		return true
	}
	return false
}

// track registers a freshly created page.
func (t *healthTracker[K]) track(page K) {
	t.mu.Lock()
	t.pages[page] = &pageHealth{created: t.now()}
	t.mu.Unlock()
}

func (t *healthTracker[K]) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pages)
}
