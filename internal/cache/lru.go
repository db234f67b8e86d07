// Package cache provides a byte-budget bounded LRU cache for decoded image
// data. It is safe for concurrent use by multiple in-flight load tasks.
package cache

import (
	"container/list"
	"errors"
	"sync"
)

// LRU is a key → bytes cache bounded by a total byte budget rather than an
// entry count: once the budget is exceeded, least-recently-used entries are
// evicted until the cache fits again.
type LRU struct {
	capacity int64

	mu    sync.Mutex
	bytes int64
	ll    *list.List
	items map[string]*list.Element
}

type entry struct {
	key string
	val []byte
}

// NewLRU returns an LRU bounded to capacity bytes.
func NewLRU(capacity int64) (*LRU, error) {
	if capacity <= 0 {
		return nil, errors.New("cache: capacity must be positive")
	}
	return &LRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}, nil
}

// Get returns the cached value for key and marks it most recently used.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).val, true
}

// Add stores val under key, evicting least-recently-used entries as needed.
// A value larger than the whole budget is rejected (returns false) instead
// of flushing everything else for a single entry.
func (c *LRU) Add(key string, val []byte) bool {
	size := int64(len(val))
	if size > c.capacity {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		c.bytes += size - int64(len(e.val))
		e.val = val
		c.ll.MoveToFront(el)
	} else {
		c.items[key] = c.ll.PushFront(&entry{key: key, val: val})
		c.bytes += size
	}

	for c.bytes > c.capacity {
		c.evictOldestLocked()
	}
	return true
}

// Remove drops key from the cache if present.
func (c *LRU) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Bytes returns the total size of all cached values.
func (c *LRU) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

func (c *LRU) evictOldestLocked() {
	if el := c.ll.Back(); el != nil {
		c.removeLocked(el)
	}
}

func (c *LRU) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, e.key)
	c.bytes -= int64(len(e.val))
}
