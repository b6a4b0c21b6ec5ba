// Package cache keeps client-side copies of server state keyed by what they
// represent, and reconciles optimistic local updates with dispatch outcomes.
// The Cache itself is a plain invalidation cache; the optimistic protocol
// lives in Coordinator, which is the only code allowed to touch entries
// speculatively.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Key identifies one cached piece of server state.
type Key string

const (
	KeyLists     Key = "lists"
	KeyCurrentID Key = "current-id"
	KeyCatalog   Key = "catalog"

	KeyTopItems      Key = "stats/top-items"
	KeyTopCategories Key = "stats/top-categories"
	KeyTimeline      Key = "stats/timeline"

	// StatsPrefix sweeps every statistics entry at once; purchase history
	// only changes when a list is created.
	StatsPrefix = "stats/"
)

// ListKey names the cache entry for a single list's details.
func ListKey(id int64) Key {
	return Key(fmt.Sprintf("list/%d", id))
}

// FetchFunc loads the authoritative value for a key from the server.
type FetchFunc func(ctx context.Context, key Key) (any, error)

type entry struct {
	value any
	valid bool
	// populated records that value was ever written, by a fetch or an
	// optimistic apply. A snapshot can pin a key that has neither; such an
	// entry must not be served, its nil value is not state.
	populated bool
	// pending counts optimistic mutations currently holding a snapshot of
	// this entry. While pending > 0 a populated entry is never refetched,
	// so an optimistic value cannot be clobbered by a stale server read.
	pending int
}

// Cache maps keys to values fetched via fetch. Invalidated entries keep
// their value for snapshotting but are refetched on the next Get.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	fetch   FetchFunc
}

func New(fetch FetchFunc) *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
		fetch:   fetch,
	}
}

// Get returns the cached value for key, fetching it when the entry is
// missing, invalidated, or pinned without ever having been populated.
// Populated entries with in-flight optimistic updates are served as-is.
func (c *Cache) Get(ctx context.Context, key Key) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && (e.valid || (e.pending > 0 && e.populated)) {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	value, err := c.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A mutation may have gone optimistic while we were fetching; its value
	// wins over our possibly-stale read. A pin without a value takes ours
	// instead of shadowing it.
	if e, ok := c.entries[key]; ok && e.pending > 0 {
		if e.populated {
			return e.value, nil
		}
		e.value = value
		e.valid = true
		e.populated = true
		return value, nil
	}
	c.entries[key] = &entry{value: value, valid: true, populated: true}
	return value, nil
}

// Peek returns the cached value without fetching. ok is false when the key
// is absent or was never populated.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.populated {
		return nil, false
	}
	return e.value, true
}

// Invalidate marks keys stale so the next Get refetches them. The stored
// value is kept until then.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.valid = false
		}
	}
}

// InvalidatePrefix invalidates every entry whose key starts with prefix.
// Used to sweep all per-list entries at once.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if strings.HasPrefix(string(key), prefix) {
			e.valid = false
		}
	}
}

// Drop removes keys entirely.
func (c *Cache) Drop(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// snapshot records key's current value for rollback and pins the entry
// against refetching. ok is false when the key has never been populated;
// rollback then clears the key instead of restoring a value it never had.
func (c *Cache) snapshot(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.entries[key] = &entry{pending: 1}
		return nil, false
	}
	e.pending++
	return e.value, e.populated
}

// apply overwrites key's value with the optimistic result.
func (c *Cache) apply(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.populated = true
	}
}

// commit releases the pin and invalidates so the next read confirms against
// the server.
func (c *Cache) commit(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if e.pending > 0 {
			e.pending--
		}
		e.valid = false
	}
}

// restore puts the snapshotted value back verbatim and releases the pin.
// A snapshot of a never-populated key drops the key once the last pin is
// gone; while other mutations still pin it, it reverts to unpopulated so a
// read fetches instead of seeing the discarded optimistic value.
func (c *Cache) restore(key Key, value any, existed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return
	}
	if e.pending > 0 {
		e.pending--
	}
	if !existed {
		if e.pending == 0 {
			delete(c.entries, key)
			return
		}
		e.value = nil
		e.valid = false
		e.populated = false
		return
	}
	e.value = value
	e.valid = false
	e.populated = true
}
