// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package datasource

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, entries int, ttl time.Duration) *ResponseCache {
	t.Helper()
	c, err := NewResponseCache(entries, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("get", "https://api.example.com", "/sales", map[string]string{"b": "2", "a": "x y"})
	assert.Equal(t, "GET:https://api.example.com/sales?a=x+y&b=2", key)

	assert.Equal(t, "POST:http://h/e?", CacheKey("POST", "http://h", "/e", nil))
}

func TestResponseCache_GetPut(t *testing.T) {
	c := newTestCache(t, 4, 0)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("k", []byte("hello"))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)

	// Callers get their own copy.
	got[0] = 'j'
	again, _ := c.Get("k")
	assert.Equal(t, []byte("hello"), again)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestResponseCache_TTL(t *testing.T) {
	c := newTestCache(t, 4, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("k", []byte("v"))
	now = now.Add(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire after ttl")
	assert.Equal(t, 0, c.Len())
}

func TestResponseCache_LRUEviction(t *testing.T) {
	c := newTestCache(t, 2, 0)

	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	_, _ = c.Get("a")
	c.Put("c", []byte("3"))

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestResponseCache_Compression(t *testing.T) {
	c := newTestCache(t, 4, 0)

	body := bytes.Repeat([]byte(`{"month":"Jan","sales":10},`), 200)
	require.GreaterOrEqual(t, len(body), CompressionThreshold)
	c.Put("big", body)

	v, ok := c.entries.Get("big")
	require.True(t, ok)
	entry := v.(*cacheEntry)
	assert.True(t, entry.compressed)
	assert.Less(t, len(entry.body), len(body))

	got, ok := c.Get("big")
	require.True(t, ok)
	assert.Equal(t, body, got)

	c.Put("small", []byte("tiny"))
	v, _ = c.entries.Get("small")
	assert.False(t, v.(*cacheEntry).compressed)
}

func TestResponseCache_Invalidate(t *testing.T) {
	c := newTestCache(t, 8, 0)
	c.Put("GET:http://a/sales?", []byte("1"))
	c.Put("GET:http://a/sales?year=2026", []byte("2"))
	c.Put("GET:http://a/users?", []byte("3"))

	assert.Equal(t, 2, c.Invalidate("/sales"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.Invalidate("/sales"))

	assert.Equal(t, 1, c.Invalidate(""))
	assert.Equal(t, 0, c.Len())
}

func TestResponseCache_Concurrent(t *testing.T) {
	c := newTestCache(t, 16, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("k%d", j%20)
				c.Put(key, []byte(key))
				if got, ok := c.Get(key); ok {
					assert.Equal(t, key, string(got))
				}
				if j%10 == 0 {
					c.Invalidate(fmt.Sprintf("k%d", i))
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
