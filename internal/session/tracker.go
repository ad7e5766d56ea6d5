// Package session follows the sign-in state of a single visitor.
package session

import (
	"sync"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// Stream delivers identity transitions for a visitor. A nil identity means
// the visitor signed out. The returned cancel func releases the subscription.
type Stream interface {
	Subscribe(visitorID string, fn func(*models.Identity)) (cancel func())
}

// Tracker holds the current identity of one visitor.
type Tracker struct {
	mu       sync.RWMutex
	identity *models.Identity
	onChange func(*models.Identity)
	cancel   func()
	started  bool
	closed   bool
}

// NewTracker starts from the identity known when the visitor connected.
func NewTracker(initial *models.Identity) *Tracker {
	return &Tracker{identity: initial}
}

// OnChange registers fn to run after every identity event. Must be called
// before Start.
func (t *Tracker) OnChange(fn func(*models.Identity)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Start subscribes to the visitor's stream. Only the first call subscribes;
// a closed tracker never subscribes again.
func (t *Tracker) Start(stream Stream, visitorID string) {
	t.mu.Lock()
	if t.started || t.closed {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	cancel := stream.Subscribe(visitorID, t.set)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		cancel()
		return
	}
	t.cancel = cancel
	t.mu.Unlock()
}

func (t *Tracker) set(identity *models.Identity) {
	if identity != nil {
		copied := *identity
		identity = &copied
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.identity = identity
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil {
		fn(identity)
	}
}

// Current returns the last known identity, or nil when signed out.
func (t *Tracker) Current() *models.Identity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.identity == nil {
		return nil
	}
	copied := *t.identity
	return &copied
}

// Close releases the subscription. It is safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.closed = true
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
