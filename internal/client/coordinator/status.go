package coordinator

import (
	"sync"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

// statusHub holds the current SyncStatus and fans it out to subscribers.
// Each subscriber channel holds one value; a slow reader only sees the most
// recent status.
type statusHub struct {
	mu      sync.Mutex
	current models.SyncStatus
	subs    map[int]chan models.SyncStatus
	nextID  int
}

func newStatusHub() *statusHub {
	return &statusHub{current: models.Idle(), subs: make(map[int]chan models.SyncStatus)}
}

func (h *statusHub) get() models.SyncStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *statusHub) publish(s models.SyncStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == s {
		return
	}
	h.current = s
	for _, ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

func (h *statusHub) subscribe() (<-chan models.SyncStatus, func()) {
	ch := make(chan models.SyncStatus, 1)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	ch <- h.current
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}
