package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pricedigest/internal/catalog"
)

// entry stores the items of one search with expiry.
type entry struct {
	expiresAt time.Time
	items     []catalog.Item
}

// Catalog caches search results per keyword and item count for a TTL.
// Concurrent searches for the same key share one upstream call.
// Failed searches are never cached.
type Catalog struct {
	C        catalog.Catalog
	TTL      time.Duration
	MaxItems int
	// ServeStale returns an expired entry when the upstream search fails.
	ServeStale bool

	now   func() time.Time
	group singleflight.Group
	mu    sync.RWMutex
	items map[string]entry
}

func (c *Catalog) Name() string { return c.C.Name() }

func (c *Catalog) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func key(keyword string, itemCount int) string {
	return strconv.Itoa(itemCount) + "\x00" + keyword
}

// Search returns cached items when valid, otherwise searches upstream.
func (c *Catalog) Search(ctx context.Context, keyword string, itemCount int) ([]catalog.Item, error) {
	if c.TTL <= 0 {
		return c.C.Search(ctx, keyword, itemCount)
	}

	k := key(keyword, itemCount)
	c.mu.RLock()
	e, found := c.items[k]
	c.mu.RUnlock()
	if found && c.clock().Before(e.expiresAt) {
		return e.items, nil
	}

	v, err, _ := c.group.Do(k, func() (any, error) {
		items, err := c.C.Search(ctx, keyword, itemCount)
		if err != nil {
			return nil, err
		}
		c.store(k, items)
		return items, nil
	})
	if err != nil {
		if found && c.ServeStale {
			return e.items, nil
		}
		return nil, err
	}
	return v.([]catalog.Item), nil
}

func (c *Catalog) store(k string, items []catalog.Item) {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]entry)
	}
	c.items[k] = entry{expiresAt: now.Add(c.TTL), items: items}

	if c.MaxItems <= 0 || len(c.items) <= c.MaxItems {
		return
	}
	// expired entries go first, then arbitrary ones
	for ek, ev := range c.items {
		if len(c.items) <= c.MaxItems {
			return
		}
		if ek != k && !now.Before(ev.expiresAt) {
			delete(c.items, ek)
		}
	}
	for ek := range c.items {
		if len(c.items) <= c.MaxItems {
			return
		}
		if ek != k {
			delete(c.items, ek)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
