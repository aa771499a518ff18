// Package cache provides a small in-process read cache whose entries are
// grouped by tags, so a write path can drop every cached read it affects
// with one Invalidate call.
package cache

import "sync"

// Invalidator is the side the write paths see.
type Invalidator interface {
	Invalidate(tag string)
}

// TagCache is a mutex-guarded map cache. Entries carry tags; invalidating
// a tag evicts every entry carrying it.
type TagCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	byTag   map[string]map[string]struct{}
}

type entry struct {
	value interface{}
	tags  []string
}

// New creates an empty TagCache.
func New() *TagCache {
	return &TagCache{
		entries: make(map[string]*entry),
		byTag:   make(map[string]map[string]struct{}),
	}
}

// Get returns the cached value for key, if present.
func (c *TagCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, associated with the given tags.
func (c *TagCache) Set(key string, value interface{}, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.removeFromTags(key, old.tags)
	}

	c.entries[key] = &entry{value: value, tags: tags}
	for _, tag := range tags {
		keys, ok := c.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Invalidate evicts every entry carrying the tag.
func (c *TagCache) Invalidate(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.byTag[tag] {
		if e, ok := c.entries[key]; ok {
			c.removeFromTags(key, e.tags)
			delete(c.entries, key)
		}
	}
	delete(c.byTag, tag)
}

// Len returns the number of live entries.
func (c *TagCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// removeFromTags detaches key from the tag index. Caller holds the lock.
func (c *TagCache) removeFromTags(key string, tags []string) {
	for _, tag := range tags {
		if keys, ok := c.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.byTag, tag)
			}
		}
	}
}

// NoOp is an Invalidator and read cache that stores nothing. Used where
// caching is disabled.
type NoOp struct{}

func (NoOp) Get(string) (interface{}, bool)     { return nil, false }
func (NoOp) Set(string, interface{}, ...string) {}
func (NoOp) Invalidate(string)                  {}
