package relay

import (
	"sync"

	"github.com/clintonluvs29/anime-fiesta/internal/domain"
)

// Subscriber channel depth. A subscriber that falls this far behind starts
// missing events instead of stalling the bridge.
const subscriberBuffer = 16

// Hub fans normalized events out to live subscribers grouped by project.
// Channels are created and closed only here; handlers attach, read until the
// channel closes, and detach.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[chan domain.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan domain.Event]struct{})}
}

// Attach subscribes to a project's event stream.
func (h *Hub) Attach(projectID string) chan domain.Event {
	ch := make(chan domain.Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[projectID]
	if !ok {
		room = make(map[chan domain.Event]struct{})
		h.rooms[projectID] = room
	}
	room[ch] = struct{}{}
	return ch
}

// Detach unsubscribes one channel and closes it. Calling it for a channel
// the hub already closed via CloseProject is a no-op.
func (h *Hub) Detach(projectID string, ch chan domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[projectID]
	if !ok {
		return
	}
	if _, ok := room[ch]; !ok {
		return
	}
	delete(room, ch)
	close(ch)
	if len(room) == 0 {
		delete(h.rooms, projectID)
	}
}

// Broadcast delivers an event to every subscriber of its project. Delivery
// never blocks: a subscriber whose buffer is full is evicted and its channel
// closed, leaving the others untouched.
func (h *Hub) Broadcast(e domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[e.ProjectID]
	for ch := range room {
		select {
		case ch <- e:
		default:
			delete(room, ch)
			close(ch)
		}
	}
	if len(room) == 0 {
		delete(h.rooms, e.ProjectID)
	}
}

// CloseProject closes every subscriber channel for a project and forgets the
// room. Subscribers drain whatever is buffered and then see end of stream.
func (h *Hub) CloseProject(projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.rooms[projectID] {
		close(ch)
	}
	delete(h.rooms, projectID)
}

// Subscribers reports the live subscriber count for a project.
func (h *Hub) Subscribers(projectID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[projectID])
}
