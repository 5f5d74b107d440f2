// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package datasource

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultCacheEntries bounds a ResponseCache created with no size.
	DefaultCacheEntries = 256
	// CompressionThreshold is the body size at which cached bodies are
	// compressed.
	CompressionThreshold = 1024
)

// CacheKey builds METHOD:base+endpoint?query with the query sorted by key.
func CacheKey(method, baseURL, endpoint string, params map[string]string) string {
	return strings.ToUpper(method) + ":" + requestURL(baseURL, endpoint, params)
}

func requestURL(baseURL, endpoint string, params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return baseURL + endpoint + "?" + values.Encode()
}

type cacheEntry struct {
	body       []byte
	compressed bool
	expires    time.Time
}

// CacheStats are cumulative counters.
type CacheStats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// ResponseCache holds HTTP response bodies in a bounded LRU with a TTL.
// Entries expire ttl after they are stored; a zero ttl never expires.
// Bodies of CompressionThreshold bytes or more are stored zstd-compressed.
// It is safe for concurrent use.
type ResponseCache struct {
	mu      sync.Mutex
	entries *lru.Cache
	keys    map[string]struct{}
	ttl     time.Duration
	now     func() time.Time

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	hits, misses, evictions uint64
}

// NewResponseCache creates a cache holding at most maxEntries bodies.
func NewResponseCache(maxEntries int, ttl time.Duration) (*ResponseCache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	c := &ResponseCache{
		entries: lru.New(maxEntries),
		keys:    make(map[string]struct{}),
		ttl:     ttl,
		now:     time.Now,
		encoder: encoder,
		decoder: decoder,
	}
	c.entries.OnEvicted = func(key lru.Key, _ interface{}) {
		delete(c.keys, key.(string))
		c.evictions++
	}
	return c, nil
}

// Get returns a copy of the body stored under key.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	entry := v.(*cacheEntry)
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.entries.Remove(key)
		c.misses++
		return nil, false
	}

	if entry.compressed {
		body, err := c.decoder.DecodeAll(entry.body, nil)
		if err != nil {
			c.entries.Remove(key)
			c.misses++
			return nil, false
		}
		c.hits++
		return body, true
	}
	c.hits++
	return append([]byte(nil), entry.body...), true
}

// Put stores body under key, replacing any existing entry.
func (c *ResponseCache) Put(key string, body []byte) {
	entry := &cacheEntry{}
	if len(body) >= CompressionThreshold {
		if compressed := c.encoder.EncodeAll(body, nil); len(compressed) < len(body) {
			entry.body, entry.compressed = compressed, true
		}
	}
	if !entry.compressed {
		entry.body = append([]byte(nil), body...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl > 0 {
		entry.expires = c.now().Add(c.ttl)
	}
	c.entries.Add(key, entry)
	c.keys[key] = struct{}{}
}

// Invalidate removes every entry whose key contains substr and returns how
// many were removed. An empty substr removes everything.
func (c *ResponseCache) Invalidate(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doomed []string
	for key := range c.keys {
		if strings.Contains(key, substr) {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		c.entries.Remove(key)
	}
	return len(doomed)
}

// Len returns the number of stored entries, including expired ones not yet
// observed.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Stats returns the cache counters.
func (c *ResponseCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   c.entries.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Close releases the compression resources.
func (c *ResponseCache) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}
