package hub

import "sync"

// Hub maps resource keys to the set of listeners interested in them.
// Listeners are plain callbacks that re-read whatever slice of the cache
// they care about; Notify runs every listener registered at the moment of
// the cache write before it returns.
type Hub struct {
	mu        sync.Mutex
	listeners map[string]map[int]func()
	nextId    int
}

func NewHub() *Hub {
	return &Hub{
		listeners: make(map[string]map[int]func()),
	}
}

func VoteKey(reviewId string) string {
	return "review:" + reviewId + ":helpful"
}

func RepliesKey(reviewId string) string {
	return "review:" + reviewId + ":replies"
}

func PreviewKey(businessId string) string {
	return "business:" + businessId + ":preview"
}

// Subscribe registers fn for key and returns its unsubscribe func. After
// unsubscribe returns, fn will not be invoked again; other listeners on
// the same key are unaffected.
func (h *Hub) Subscribe(key string, fn func()) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextId
	h.nextId++
	if h.listeners[key] == nil {
		h.listeners[key] = make(map[int]func())
	}
	h.listeners[key][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners[key], id)
		if len(h.listeners[key]) == 0 {
			delete(h.listeners, key)
		}
	}
}

func (h *Hub) Notify(key string) {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.listeners[key]))
	for _, fn := range h.listeners[key] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	// Called outside the lock so a listener may subscribe or unsubscribe
	// without deadlocking.
	for _, fn := range fns {
		fn()
	}
}
