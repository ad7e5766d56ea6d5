package auth

import (
	"sync"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// Broker fans identity transitions out to the subscribers of a visitor. It
// implements session.Stream.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(*models.Identity)
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[int]func(*models.Identity))}
}

// Subscribe registers fn for visitorID until cancel is called.
func (b *Broker) Subscribe(visitorID string, fn func(*models.Identity)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[visitorID] == nil {
		b.subs[visitorID] = make(map[int]func(*models.Identity))
	}
	b.subs[visitorID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[visitorID], id)
			if len(b.subs[visitorID]) == 0 {
				delete(b.subs, visitorID)
			}
		})
	}
}

// Publish delivers identity to every current subscriber of visitorID.
// Callbacks run on the caller's goroutine, outside the broker lock.
func (b *Broker) Publish(visitorID string, identity *models.Identity) {
	b.mu.Lock()
	fns := make([]func(*models.Identity), 0, len(b.subs[visitorID]))
	for _, fn := range b.subs[visitorID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}

// Subscribers returns how many subscriptions visitorID currently has.
func (b *Broker) Subscribers(visitorID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[visitorID])
}
