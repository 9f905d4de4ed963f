package ptysession

import "sync"

// hubBacklog is the bounded broadcast capacity from §4.6.
const hubBacklog = 1024

// Subscriber is a passive consumer of the Fan-out Hub. Updates delivers
// keyframes and diffs; Raw delivers pre-batch byte chunks when the hub's
// debug raw-output channel is enabled; Lagged is closed exactly once if this
// subscriber ever overflows Updates, signaling it must request a fresh
// keyframe to resynchronize.
type Subscriber struct {
	Updates chan Update
	Raw     chan []byte
	Lagged  chan struct{}

	laggedOnce sync.Once
}

func newSubscriber(rawCap int) *Subscriber {
	return &Subscriber{
		Updates: make(chan Update, hubBacklog),
		Raw:     make(chan []byte, rawCap),
		Lagged:  make(chan struct{}),
	}
}

func (s *Subscriber) markLagged() {
	s.laggedOnce.Do(func() { close(s.Lagged) })
}

// Hub is the Fan-out Hub of §4.6: exactly one publisher (the session's
// processor goroutine), any number of passive subscribers. Publishing never
// blocks on a slow subscriber.
type Hub struct {
	mu          sync.Mutex
	subs        map[*Subscriber]struct{}
	debugOutput bool
}

// NewHub creates an empty hub. debugOutput controls whether raw byte chunks
// are forwarded to subscribers at all (Open Question (b): debug-only).
func NewHub(debugOutput bool) *Hub {
	return &Hub{subs: map[*Subscriber]struct{}{}, debugOutput: debugOutput}
}

// Subscribe registers a new passive subscriber and returns it. Callers must
// call Unsubscribe when done.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := newSubscriber(hubBacklog)
	h.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a subscriber. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// Publish broadcasts an update to every current subscriber, non-blocking:
// a subscriber whose Updates channel is full is marked lagged and the
// update is dropped for it only, per §4.6.
func (h *Hub) Publish(u Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.Updates <- u:
		default:
			sub.markLagged()
		}
	}
}

// PublishRaw broadcasts a pre-batch byte chunk to the debug raw channel, if
// enabled. Loss is tolerable, so this is always non-blocking.
func (h *Hub) PublishRaw(chunk []byte) {
	if !h.debugOutput {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.Raw <- chunk:
		default:
		}
	}
}

// Close disconnects every subscriber by closing their channels, signaling
// session termination per §4's lifecycle.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		close(sub.Updates)
		close(sub.Raw)
		delete(h.subs, sub)
	}
}
