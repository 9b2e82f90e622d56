package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Lookup(t *testing.T) {
	c := New[string]()

	_, ok := c.Lookup("a.yml", "h1")
	assert.False(t, ok)

	c.Set("a.yml", "h1", "first")
	v, ok := c.Lookup("a.yml", "h1")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	_, ok = c.Lookup("a.yml", "h2")
	assert.False(t, ok, "hash mismatch must miss")

	c.Set("a.yml", "h2", "second")
	v, ok = c.Lookup("a.yml", "h2")
	require.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, 1, c.Size())

	entry, ok := c.Get("a.yml")
	require.True(t, ok)
	assert.Equal(t, "h2", entry.Hash)
	assert.Equal(t, "a.yml", entry.Path)
}

func TestCache_Invalidate(t *testing.T) {
	c := New[int]()
	c.Set("a.yml", "h", 1)
	c.Set("b.yml", "h", 2)

	c.Invalidate("a.yml")
	_, ok := c.Get("a.yml")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())

	c.InvalidateAll()
	assert.Equal(t, 0, c.Size())
}

func TestCache_Prune(t *testing.T) {
	c := New[int]()
	c.Set("old.yml", "h", 1)
	c.Set("new.yml", "h", 2)

	c.entries["old.yml"].LastChecked = time.Now().Add(-time.Hour)

	assert.Equal(t, 1, c.Prune(time.Minute))
	_, ok := c.Get("new.yml")
	assert.True(t, ok)
	_, ok = c.Get("old.yml")
	assert.False(t, ok)
}
