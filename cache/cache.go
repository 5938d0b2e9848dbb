// Package cache holds objects we don't want to go back to storage for, and
// the per-key locks that keep two writers off the same object.
package cache

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// LoadFunc fetches an object that is not in the cache.
type LoadFunc[T any] func(key string) (T, error)

// Cache is a bounded map of objects by key. When it is full, the object that
// was stored first is dropped.
type Cache[T any] struct {
	sync.Mutex
	objects map[string]T
	order   []string
	size    int
}

// New creates a cache that holds at most size objects. A size below one
// makes a cache that holds nothing.
func New[T any](size int) *Cache[T] {
	return &Cache[T]{objects: make(map[string]T), size: size}
}

// Get returns the cached object for key, loading and storing it first if it
// is missing. The cache is not locked while loadFunc runs, so callers that
// need one load per key hold their own lock around Get.
func (c *Cache[T]) Get(key string, loadFunc LoadFunc[T]) (T, error) {
	c.Lock()
	obj, ok := c.objects[key]
	c.Unlock()
	if ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}

	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := loadFunc(key)
	if err != nil {
		return obj, err
	}
	c.Put(key, obj)
	return obj, nil
}

// Put stores an object, replacing any object with the same key.
func (c *Cache[T]) Put(key string, obj T) {
	if c.size < 1 {
		return
	}
	c.Lock()
	defer c.Unlock()
	if _, ok := c.objects[key]; !ok {
		c.order = append(c.order, key)
	}
	c.objects[key] = obj
	for len(c.order) > c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.objects, oldest)
	}
}

// Delete drops the object for key, if there is one.
func (c *Cache[T]) Delete(key string) {
	c.Lock()
	defer c.Unlock()
	if _, ok := c.objects[key]; !ok {
		return
	}
	delete(c.objects, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached objects.
func (c *Cache[T]) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.objects)
}
