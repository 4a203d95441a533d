// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package cache is a small file-backed TTL cache. Entries survive
// restarts in a JSON file next to the database; a corrupt or missing
// file degrades to an empty cache, never an error.
package cache

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type entry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp float64         `json:"timestamp"`
}

type Cache struct {
	path string
	ttl  time.Duration

	mu      sync.Mutex
	entries map[string]entry
}

// New loads the cache file at path, dropping entries older than ttl.
// Load failures are logged and leave the cache empty.
func New(path string, ttl time.Duration) *Cache {
	c := &Cache{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]entry),
	}

	c.load()
	return c
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", c.path).Msg("Failed to read cache file, starting empty")
		}
		return
	}

	var entries map[string]entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("Cache file is corrupt, starting empty")
		return
	}

	now := float64(time.Now().UnixNano()) / float64(time.Second)
	for key, e := range entries {
		if now-e.Timestamp < c.ttl.Seconds() {
			c.entries[key] = e
		}
	}

	log.Debug().Int("entries", len(c.entries)).Str("path", c.path).Msg("Loaded cache")
}

// Get returns the raw cached value for key, expiring it lazily.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	now := float64(time.Now().UnixNano()) / float64(time.Second)
	if now-e.Timestamp >= c.ttl.Seconds() {
		delete(c.entries, key)
		return nil, false
	}

	return e.Value, true
}

// GetJSON unmarshals the cached value for key into dest.
func (c *Cache) GetJSON(key string, dest any) bool {
	raw, ok := c.Get(key)
	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached value")
		return false
	}

	return true
}

// Set stores value under key and writes the cache file through.
// Persistence failures are logged; the in-memory entry still lands.
func (c *Cache) Set(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache value")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		Value:     raw,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	}

	c.persist()
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// persist writes the cache file. Callers must hold c.mu.
func (c *Cache) persist() {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode cache file")
		return
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("Failed to write cache file")
	}
}
