// Package broadcast fans config change events out to the calculation
// sessions subscribed to a (service, company) key. Delivery is at-least-once
// and best-effort: a slow or panicking subscriber never blocks the others.
package broadcast

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/groundworks/estimator/model"
)

// Handler receives the freshly resolved config after a change.
type Handler func(cfg model.ServiceConfig)

// Broadcaster is an in-process publish/subscribe hub keyed by
// (serviceID, companyID).
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]map[string]Handler // key -> subscription ID -> handler
	logger *zap.Logger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		subs:   make(map[string]map[string]Handler),
		logger: logger,
	}
}

func subKey(serviceID, companyID string) string {
	return serviceID + "/" + companyID
}

// Subscribe registers a handler for config changes on the key and returns an
// unsubscribe function. Unsubscribing is safe at any time, including while a
// publish is in flight, and calling it more than once is a no-op.
func (b *Broadcaster) Subscribe(serviceID, companyID string, fn Handler) func() {
	key := subKey(serviceID, companyID)
	id := uuid.NewString()

	b.mu.Lock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[string]Handler)
	}
	b.subs[key][id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if handlers, ok := b.subs[key]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.subs, key)
			}
		}
	}
}

// Publish delivers cfg to every handler subscribed to the key. Handlers run
// against a snapshot of the subscription set, so concurrent subscribe and
// unsubscribe calls affect only later publishes.
func (b *Broadcaster) Publish(serviceID, companyID string, cfg model.ServiceConfig) {
	key := subKey(serviceID, companyID)

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[key]))
	for _, fn := range b.subs[key] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		b.deliver(serviceID, companyID, cfg, fn)
	}
}

// deliver invokes one handler, isolating panics so one bad subscriber
// cannot suppress delivery to the rest.
func (b *Broadcaster) deliver(serviceID, companyID string, cfg model.ServiceConfig, fn Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("config change subscriber panicked",
				zap.String("service_id", serviceID),
				zap.String("company_id", companyID),
				zap.Any("panic", r),
			)
		}
	}()
	fn(cfg)
}

// SubscriberCount returns the number of active subscriptions for a key. For
// testing.
func (b *Broadcaster) SubscriberCount(serviceID, companyID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[subKey(serviceID, companyID)])
}
