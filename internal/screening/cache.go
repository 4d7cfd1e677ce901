package screening

import (
	"sync"
	"time"
)

// ResultCache keeps recent screening results keyed by criteria and
// universe. A nil cache or a non-positive TTL stores nothing.
type ResultCache struct {
	mu   sync.RWMutex
	data map[string]*resultEntry
	ttl  time.Duration
	now  func() time.Time
}

type resultEntry struct {
	result    *ScreenResult
	timestamp time.Time
}

// NewResultCache creates a cache with the given TTL.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		data: make(map[string]*resultEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns a copy of a live entry, marked Cached.
func (c *ResultCache) Get(key string) (*ScreenResult, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists || c.now().Sub(entry.timestamp) > c.ttl {
		return nil, false
	}

	out := copyResult(entry.result)
	out.Cached = true
	return out, true
}

// Set stores a copy of result.
func (c *ResultCache) Set(key string, result *ScreenResult) {
	if c == nil || c.ttl <= 0 || result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &resultEntry{
		result:    copyResult(result),
		timestamp: c.now(),
	}
}

// Cleanup drops expired entries and returns how many were removed.
func (c *ResultCache) Cleanup() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.data {
		if c.now().Sub(entry.timestamp) > c.ttl {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func copyResult(r *ScreenResult) *ScreenResult {
	out := *r
	out.Universe = append([]string(nil), r.Universe...)
	out.Candidates = append([]ScoredCandidate(nil), r.Candidates...)
	out.Criteria.CandidateList = append([]string(nil), r.Criteria.CandidateList...)
	out.Disqualified = make(map[string]int, len(r.Disqualified))
	for k, v := range r.Disqualified {
		out.Disqualified[k] = v
	}
	return &out
}
