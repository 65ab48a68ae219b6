package engine

import (
	"sync"
	"time"
)

type domainEntry struct {
	engineName string
	expiresAt  time.Time
}

// DomainMemory remembers which engine last succeeded for each host so the
// next request for that host can skip the race. A nil *DomainMemory is a
// valid, always-empty memory.
type DomainMemory struct {
	mu    sync.Mutex
	store map[string]domainEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewDomainMemory creates a DomainMemory whose entries live for ttl.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	return &DomainMemory{
		store: make(map[string]domainEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the remembered engine for host, or "" if unknown or expired.
func (dm *DomainMemory) Get(host string) string {
	if dm == nil || host == "" {
		return ""
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	entry, ok := dm.store[host]
	if !ok {
		return ""
	}
	if dm.now().After(entry.expiresAt) {
		delete(dm.store, host)
		return ""
	}
	return entry.engineName
}

// Set records which engine succeeded for host. Expired entries are swept
// on write so the map stays bounded by the number of live hosts.
func (dm *DomainMemory) Set(host, engineName string) {
	if dm == nil || host == "" {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	now := dm.now()
	for h, e := range dm.store {
		if now.After(e.expiresAt) {
			delete(dm.store, h)
		}
	}
	dm.store[host] = domainEntry{engineName: engineName, expiresAt: now.Add(dm.ttl)}
}

// Delete forgets host (e.g. after the remembered engine failed).
func (dm *DomainMemory) Delete(host string) {
	if dm == nil {
		return
	}
	dm.mu.Lock()
	delete(dm.store, host)
	dm.mu.Unlock()
}

// Len returns the number of remembered hosts, expired or not.
func (dm *DomainMemory) Len() int {
	if dm == nil {
		return 0
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.store)
}
