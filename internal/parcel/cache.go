package parcel

import (
	"sync"
	"time"

	"github.com/uber/h3-go/v4"

	"github.com/rotaviva/stops-cli/internal/model"
)

// lookupCache memoizes parcel lookups keyed by the H3 cell of the query
// point. At the configured resolution cells are a few meters across, so
// nearby stops on the same lot share an entry.
type lookupCache struct {
	mu  sync.Mutex
	max int
	ttl time.Duration
	res int

	entries map[h3.Cell]cacheEntry
}

type cacheEntry struct {
	match model.ParcelMatch
	at    time.Time
}

func newLookupCache(max int, ttl time.Duration, res int) *lookupCache {
	return &lookupCache{
		max:     max,
		ttl:     ttl,
		res:     res,
		entries: make(map[h3.Cell]cacheEntry),
	}
}

func (c *lookupCache) key(lat, lng float64) (h3.Cell, bool) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), c.res)
	if err != nil {
		return 0, false
	}
	return cell, true
}

func (c *lookupCache) Get(lat, lng float64) (model.ParcelMatch, bool) {
	cell, ok := c.key(lat, lng)
	if !ok {
		return model.ParcelMatch{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cell]
	if !ok {
		return model.ParcelMatch{}, false
	}
	if c.ttl > 0 && time.Since(entry.at) > c.ttl {
		delete(c.entries, cell)
		return model.ParcelMatch{}, false
	}
	return entry.match, true
}

func (c *lookupCache) Put(lat, lng float64, match model.ParcelMatch) {
	cell, ok := c.key(lat, lng)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.max > 0 && len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.entries[cell] = cacheEntry{match: match, at: time.Now()}
}

// evictLocked drops expired entries, then the oldest one if still full.
func (c *lookupCache) evictLocked() {
	now := time.Now()
	if c.ttl > 0 {
		for cell, entry := range c.entries {
			if now.Sub(entry.at) > c.ttl {
				delete(c.entries, cell)
			}
		}
		if len(c.entries) < c.max {
			return
		}
	}

	var oldest h3.Cell
	var oldestAt time.Time
	first := true
	for cell, entry := range c.entries {
		if first || entry.at.Before(oldestAt) {
			oldest, oldestAt, first = cell, entry.at, false
		}
	}
	if !first {
		delete(c.entries, oldest)
	}
}
