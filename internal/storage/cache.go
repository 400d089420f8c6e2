package storage

import (
	"sync"
	"time"
)

// listCache memoizes List results between writes. Listing re-reads every
// document on disk, which gets noticeably slow once conversations pile up;
// the cache holds the last result until it expires or a write invalidates it.
type listCache struct {
	mu        sync.RWMutex
	summaries []Summary
	updatedAt time.Time
	ttl       time.Duration
}

func newListCache(ttl time.Duration) *listCache {
	return &listCache{ttl: ttl}
}

func (c *listCache) get() ([]Summary, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.summaries == nil || time.Since(c.updatedAt) > c.ttl {
		return nil, false
	}
	out := make([]Summary, len(c.summaries))
	copy(out, c.summaries)
	return out, true
}

func (c *listCache) set(summaries []Summary) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summaries = make([]Summary, len(summaries))
	copy(c.summaries, summaries)
	c.updatedAt = time.Now()
}

func (c *listCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries = nil
}
