// Package eventbus is a small synchronous publish/subscribe hub used for
// cross-component notifications (cart changes, filter changes, route changes).
package eventbus

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event names published by the storefront.
const (
	CartAdded            = "cart:added"
	CartRemoved          = "cart:removed"
	CartUpdated          = "cart:updated"
	CartCleared          = "cart:cleared"
	ProductFilterChanged = "product:filterChanged"
	ProductLoaded        = "product:loaded"
	RouteChanged         = "route:changed"
)

// Handler receives the payload passed to Emit.
type Handler func(payload any)

type subscription struct {
	id string
	fn Handler
}

// Bus dispatches events to handlers in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	log      *zap.Logger
}

// New returns an empty bus. A nil logger discards handler failures.
func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{handlers: make(map[string][]subscription), log: logger}
}

// On subscribes fn to event and returns the subscription id.
func (b *Bus) On(event string, fn Handler) string {
	id := uuid.NewString()
	b.mu.Lock()
	b.handlers[event] = append(b.handlers[event], subscription{id: id, fn: fn})
	b.mu.Unlock()
	return id
}

// Off removes the subscription with the given id. Unknown ids are ignored.
func (b *Bus) Off(event, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[event]
	for i, sub := range subs {
		if sub.id == id {
			b.handlers[event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[event]) == 0 {
		delete(b.handlers, event)
	}
}

// OffAll drops every subscription for event.
func (b *Bus) OffAll(event string) {
	b.mu.Lock()
	delete(b.handlers, event)
	b.mu.Unlock()
}

// Clear drops every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	b.handlers = make(map[string][]subscription)
	b.mu.Unlock()
}

// ListenerCount reports the number of subscriptions for event.
func (b *Bus) ListenerCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[event])
}

// Emit calls every handler subscribed to event. A panicking handler is logged
// and the remaining handlers still run.
func (b *Bus) Emit(event string, payload any) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[event]))
	copy(subs, b.handlers[event])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.call(event, sub, payload)
	}
}

func (b *Bus) call(event string, sub subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler failed",
				zap.String("event", event),
				zap.String("subscription", sub.id),
				zap.Any("panic", r),
			)
		}
	}()
	sub.fn(payload)
}
