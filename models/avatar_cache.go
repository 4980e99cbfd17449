package models

import (
	"sort"
	"sync"

	h "github.com/microcosm-cc/avatars/helpers"
)

// AvatarCache is the in-memory map of avatar hash to avatar. It is safe for
// concurrent use. Every key maps to a fully fetched avatar.
type AvatarCache struct {
	mu      sync.RWMutex
	avatars map[string]AvatarType
}

// NewAvatarCache returns an empty cache
func NewAvatarCache() *AvatarCache {
	return &AvatarCache{avatars: make(map[string]AvatarType)}
}

// Get returns the avatar for hash
func (c *AvatarCache) Get(hash string) (AvatarType, bool) {
	if hash == "" {
		return AvatarType{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.avatars[hash]
	return m, ok
}

// Contains returns true if an avatar is cached for hash. Invalid hashes are
// never cached.
func (c *AvatarCache) Contains(hash string) bool {
	if !h.IsValidHash(hash) {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.avatars[hash]
	return ok
}

// Put inserts or replaces the avatar stored under m.Hash. Avatars without a
// valid hash are refused.
func (c *AvatarCache) Put(m AvatarType) bool {
	if !h.IsValidHash(m.Hash) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.avatars[m.Hash] = m
	return true
}

// Keys returns a sorted copy of the cached hashes. Later changes to the cache
// are not reflected in the returned slice.
func (c *AvatarCache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.avatars))
	for k := range c.avatars {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Values returns a copy of every cached avatar, ordered by hash
func (c *AvatarCache) Values() []AvatarType {
	c.mu.RLock()
	values := make([]AvatarType, 0, len(c.avatars))
	for _, m := range c.avatars {
		values = append(values, m)
	}
	c.mu.RUnlock()

	sort.Slice(values, func(i, j int) bool { return values[i].Hash < values[j].Hash })
	return values
}

// Len returns the number of cached avatars
func (c *AvatarCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.avatars)
}
