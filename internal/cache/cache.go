// Package cache keeps rendered pages for a fixed time window.
//
// Entries are replaced whole, so a concurrent reader sees either the old
// render or the new one. Concurrent misses on the same key share a single
// render.
package cache

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	IndexPrefix = "index_page"
	IndexTTL    = 20 * time.Second
)

type Entry struct {
	Value    []byte
	StoredAt time.Time
}

// IsFresh reports whether e may still be served at now. Entries stored in
// the future relative to now are treated as stale.
func IsFresh(e Entry, now time.Time, ttl time.Duration) bool {
	if now.Before(e.StoredAt) {
		return false
	}
	return now.Sub(e.StoredAt) < ttl
}

type PageCache struct {
	prefix  string
	ttl     time.Duration
	entries *lru.Cache[string, Entry]
	group   singleflight.Group

	// bumped by Clear so that renders started before it are not stored
	generation atomic.Uint64
}

func NewPageCache(prefix string, ttl time.Duration, size int) (*PageCache, error) {
	if ttl <= 0 {
		ttl = IndexTTL
	}
	if size < 1 {
		size = 1
	}

	entries, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании кэша: %w", err)
	}

	return &PageCache{prefix: prefix, ttl: ttl, entries: entries}, nil
}

func (c *PageCache) TTL() time.Duration {
	return c.ttl
}

// Key builds a cache key under the cache prefix.
func (c *PageCache) Key(parts ...string) string {
	return strings.Join(append([]string{c.prefix}, parts...), ":")
}

func (c *PageCache) Get(key string, now time.Time) ([]byte, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if !IsFresh(entry, now, c.ttl) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.Value, true
}

func (c *PageCache) Set(key string, value []byte, now time.Time) {
	c.entries.Add(key, Entry{Value: value, StoredAt: now})
}

// Clear drops every entry at once, regardless of age.
func (c *PageCache) Clear() {
	c.generation.Add(1)
	c.entries.Purge()
}

func (c *PageCache) Len() int {
	return c.entries.Len()
}

// GetOrRender serves a fresh entry or calls render and stores its output.
// The boolean result reports a cache hit. Render errors are never cached.
func (c *PageCache) GetOrRender(key string, now time.Time, render func() ([]byte, error)) ([]byte, bool, error) {
	if value, ok := c.Get(key, now); ok {
		return value, true, nil
	}

	// a miss after Clear must not join a render started before it
	gen := c.generation.Load()
	v, err, _ := c.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (interface{}, error) {
		value, err := render()
		if err != nil {
			return nil, err
		}
		if c.generation.Load() == gen {
			c.Set(key, value, now)
		}
		return value, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.([]byte), false, nil
}
