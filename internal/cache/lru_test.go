package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/isbnmap/internal/resource"
)

func tile(x, y int) Key {
	return Key{Route: "tile", X: x, Y: y}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU(30, nil)

	c.Set(tile(0, 0), make([]byte, 10))
	c.Set(tile(1, 0), make([]byte, 10))
	c.Set(tile(2, 0), make([]byte, 10))
	assert.Equal(t, 3, c.Len())

	// touch the oldest so the second one is evicted next
	_, ok := c.Get(tile(0, 0))
	assert.True(t, ok)

	c.Set(tile(3, 0), make([]byte, 10))
	assert.Equal(t, int64(30), c.Size())

	_, ok = c.Get(tile(1, 0))
	assert.False(t, ok)
	_, ok = c.Get(tile(0, 0))
	assert.True(t, ok)
}

func TestLRU_EdgeCases(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRU(50, rc)
	k := tile(1, 1)

	c.Set(k, make([]byte, 60))
	_, ok := c.Get(k)
	assert.False(t, ok, "value larger than capacity is not cached")

	c.Set(k, make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())
	assert.Equal(t, int64(10), rc.MemoryUsage())

	c.Set(k, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	assert.Equal(t, int64(20), rc.MemoryUsage())

	c.Set(k, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, int64(5), rc.MemoryUsage())

	c.Purge()
	assert.Zero(t, c.Size())
	assert.Zero(t, rc.MemoryUsage())
}

func TestLRU_ControllerDenies(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c := NewLRU(50, rc)
	k := tile(0, 0)

	c.Set(k, make([]byte, 8))
	c.Set(k, make([]byte, 12))

	val, ok := c.Get(k)
	assert.True(t, ok)
	assert.Len(t, val, 8, "growth beyond the budget keeps the old value")

	c.Set(tile(1, 0), make([]byte, 4))
	_, ok = c.Get(tile(1, 0))
	assert.False(t, ok)
}

func TestLRU_StatsAndInvalidate(t *testing.T) {
	c := NewLRU(100, nil)
	c.Set(Key{Route: "tile", Dataset: 1, X: 1}, []byte("a"))
	c.Set(Key{Route: "tile", Dataset: 1, X: 2}, []byte("b"))
	c.Set(Key{Route: "tile", Dataset: 2, X: 1}, []byte("c"))

	c.Invalidate(func(k Key) bool { return k.Dataset == 1 })

	_, ok := c.Get(Key{Route: "tile", Dataset: 1, X: 1})
	assert.False(t, ok)
	_, ok = c.Get(Key{Route: "tile", Dataset: 2, X: 1})
	assert.True(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}
