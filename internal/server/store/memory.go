// Package store is the in-memory persistence of the reference server.
package store

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/nutrisync/internal/common"
)

// Collection holds records of one type keyed by id. It is safe for
// concurrent use.
type Collection[T any] struct {
	mu   sync.RWMutex
	data map[string]T
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{data: make(map[string]T)}
}

func (c *Collection[T]) Put(id string, rec T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = rec
}

func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.data[id]
	if !ok {
		return rec, common.ErrNotFound
	}
	return rec, nil
}

func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[id]; !ok {
		return common.ErrNotFound
	}
	delete(c.data, id)
	return nil
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// IDs returns the stored ids in sorted order.
func (c *Collection[T]) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.data))
	for id := range c.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
