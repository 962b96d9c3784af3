package processor

import (
	"sync"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

// Conflicts multicasts conflict notices. Each subscriber has a bounded
// buffer; notices that do not fit are dropped for that subscriber.
type Conflicts struct {
	mu     sync.Mutex
	buffer int
	subs   map[int]chan models.SyncConflict
	nextID int
}

func NewConflicts(buffer int) *Conflicts {
	if buffer <= 0 {
		buffer = 16
	}
	return &Conflicts{buffer: buffer, subs: make(map[int]chan models.SyncConflict)}
}

// Subscribe returns a channel of notices and a func that unsubscribes and
// closes it.
func (c *Conflicts) Subscribe() (<-chan models.SyncConflict, func()) {
	ch := make(chan models.SyncConflict, c.buffer)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// Notify delivers conflict to every subscriber without blocking.
func (c *Conflicts) Notify(conflict models.SyncConflict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- conflict:
		default:
		}
	}
}
