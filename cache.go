package tradebook

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns the hash of the canonical JSON encoding of the whole
// snapshot. Any change in any input gives a different fingerprint.
func Fingerprint(s Snapshot) (uint64, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("fingerprinting %s: %w", s.Ticker, err)
	}
	return xxhash.Sum64(data), nil
}

// Cache memoizes analyses by snapshot fingerprint, one entry per ticker: a
// new snapshot for a ticker replaces the previous analysis entirely.
//
// Returned analyses are shared and must not be modified.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	key      uint64
	analysis *Analysis
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Analyze returns the cached analysis when the snapshot is unchanged, or
// runs Analyze. Errors are not cached.
func (c *Cache) Analyze(s Snapshot) (*Analysis, error) {
	key, err := Fingerprint(s)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if e, ok := c.entries[s.Ticker]; ok && e.key == key {
		c.hits++
		c.mu.Unlock()
		return e.analysis, nil
	}
	c.misses++
	c.mu.Unlock()

	a, err := Analyze(s)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[s.Ticker] = cacheEntry{key: key, analysis: a}
	return a, nil
}

// Invalidate drops the analysis of a ticker.
func (c *Cache) Invalidate(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ticker)
}

// Stats returns the number of hits and misses so far.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
