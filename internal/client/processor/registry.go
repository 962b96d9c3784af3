package processor

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

// Key selects a handler.
type Key struct {
	EntityType models.EntityType
	Operation  models.Operation
}

// Handler applies one queue entry to the remote API and reconciles the
// local store.
type Handler func(ctx context.Context, e *models.QueueEntry) error

// Registry maps entity type and operation pairs to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Key]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Key]Handler)}
}

// Register installs h, replacing any previous handler for the pair.
func (r *Registry) Register(entityType models.EntityType, op models.Operation, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[Key{entityType, op}] = h
}

func (r *Registry) Lookup(entityType models.EntityType, op models.Operation) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[Key{entityType, op}]
	return h, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
