// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus implementation.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/ports"
)

// ErrClosed is returned when closing a bus that is already closed.
var ErrClosed = errors.New("event bus already closed")

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered to handlers synchronously in the order they were subscribed.
//
// Thread-safety: This implementation is thread-safe. Handlers are invoked without
// the bus lock held, so a handler may publish, subscribe or unsubscribe.
type SyncEventBus struct {
	logger *slog.Logger

	// subscribers map event types to their subscriptions
	subscribers map[domain.EventType][]subscription

	// allSubscribers contains handlers that receive all events
	allSubscribers []subscription

	// mu protects subscribers, allSubscribers and closed
	mu sync.RWMutex

	// idCounter generates unique subscription IDs
	idCounter atomic.Uint64

	closed bool
}

// a subscription represents a single event subscription.
type subscription struct {
	id      domain.SubscriptionID
	filter  ports.EventFilter
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
// A nil logger discards handler diagnostics.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SyncEventBus{
		logger:      logger.With("component", "eventbus"),
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// Publish publishes an event to all subscribers of that event type, then to
// the wildcard subscribers. If the event bus is closed, this method does nothing.
//
// Panics in handlers are recovered and logged, but do not stop other handlers
// from being called.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	// Snapshot so handlers can change subscriptions while we iterate
	targets := make([]subscription, 0, len(bus.subscribers[event.Type()])+len(bus.allSubscribers))
	targets = append(targets, bus.subscribers[event.Type()]...)
	targets = append(targets, bus.allSubscribers...)
	bus.mu.RUnlock()

	for _, sub := range targets {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		bus.callHandler(sub, event)
	}
}

// callHandler calls an event handler and recovers from panics.
func (bus *SyncEventBus) callHandler(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()

	bus.logger.Debug("event delivered",
		slog.String("event_type", string(event.Type())),
		slog.String("subscription", string(sub.id)))
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// The same handler can be registered multiple times with different IDs.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.SubscribeFiltered(eventType, nil, handler)
}

// SubscribeFiltered registers a handler that only receives events accepted by filter.
// A nil filter accepts every event.
func (bus *SyncEventBus) SubscribeFiltered(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	sub := subscription{
		id:      bus.nextID(string(eventType)),
		filter:  filter,
		handler: handler,
	}
	bus.subscribers[eventType] = append(bus.subscribers[eventType], sub)

	return sub.id
}

// SubscribeAll registers a handler that receives all events regardless of type.
// This is useful for logging and debugging.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	sub := subscription{
		id:      bus.nextID("all"),
		handler: handler,
	}
	bus.allSubscribers = append(bus.allSubscribers, sub)

	return sub.id
}

func (bus *SyncEventBus) nextID(scope string) domain.SubscriptionID {
	return domain.SubscriptionID(fmt.Sprintf("sub-%s-%d", scope, bus.idCounter.Add(1)))
}

// Unsubscribe removes a previously registered event handler, keeping the
// delivery order of the remaining ones. Unknown IDs are a no-op.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	isTarget := func(sub subscription, _ int) bool { return sub.id == id }

	for eventType, subs := range bus.subscribers {
		if lo.ContainsBy(subs, func(sub subscription) bool { return sub.id == id }) {
			bus.subscribers[eventType] = lo.Reject(subs, isTarget)
			return
		}
	}
	bus.allSubscribers = lo.Reject(bus.allSubscribers, isTarget)
}

// HasSubscribers returns true if any handler would see an event of the given type.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.subscribers[eventType]) > 0 || len(bus.allSubscribers) > 0
}

// Close shuts down the event bus and clears all subscriptions.
//
// Returns ErrClosed if already closed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}

	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.allSubscribers = nil

	return nil
}

// SubscriberCount returns the number of active subscriptions for debugging.
// This counts both type-specific and wildcard subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.allSubscribers) + lo.SumBy(lo.Values(bus.subscribers), func(subs []subscription) int {
		return len(subs)
	})
}

// Verify that SyncEventBus implements the FilteringEventBus interface
var _ ports.FilteringEventBus = (*SyncEventBus)(nil)
