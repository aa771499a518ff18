package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCacheSetGet(t *testing.T) {
	c := New()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key-a", "value-a", "tag-1")
	got, ok := c.Get("key-a")
	require.True(t, ok)
	assert.Equal(t, "value-a", got)
	assert.Equal(t, 1, c.Len())

	// Overwriting replaces the value under the same key.
	c.Set("key-a", "value-b", "tag-1")
	got, _ = c.Get("key-a")
	assert.Equal(t, "value-b", got)
	assert.Equal(t, 1, c.Len())
}

func TestTagCacheInvalidate(t *testing.T) {
	c := New()
	c.Set("key-a", 1, "tag-1")
	c.Set("key-b", 2, "tag-1", "tag-2")
	c.Set("key-c", 3, "tag-2")

	c.Invalidate("tag-1")

	_, ok := c.Get("key-a")
	assert.False(t, ok)
	_, ok = c.Get("key-b")
	assert.False(t, ok, "entries with any invalidated tag are evicted")
	got, ok := c.Get("key-c")
	require.True(t, ok)
	assert.Equal(t, 3, got)
	assert.Equal(t, 1, c.Len())

	// Unknown tags are a no-op.
	c.Invalidate("tag-never-set")
	assert.Equal(t, 1, c.Len())
}

func TestTagCacheRetagging(t *testing.T) {
	c := New()
	c.Set("key-a", 1, "tag-1")
	c.Set("key-a", 1, "tag-2")

	// The old tag no longer reaches the entry.
	c.Invalidate("tag-1")
	_, ok := c.Get("key-a")
	assert.True(t, ok)

	c.Invalidate("tag-2")
	_, ok = c.Get("key-a")
	assert.False(t, ok)
}

func TestTagCacheConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j)
				c.Set(key, j, "shared")
				c.Get(key)
				if j%10 == 0 {
					c.Invalidate("shared")
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestNoOp(t *testing.T) {
	var c NoOp
	c.Set("key", "value", "tag")
	_, ok := c.Get("key")
	assert.False(t, ok)
	c.Invalidate("tag")
}
