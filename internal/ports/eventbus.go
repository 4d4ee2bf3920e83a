// Package ports define the EventBus interface for event-driven communication.
package ports

import (
	"github.com/tejashwikalptaru/encore/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// The session service publishes after every state transition; presenters and
// loggers subscribe. Neither side knows about the other.
//
// Thread-safety: Implementations must be thread-safe as events may be published and
// subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	subID := bus.Subscribe(domain.EventPlaybackChanged, func(event domain.Event) {
//	    e := event.(domain.PlaybackChangedEvent)
//	    view.SetPlaying(e.IsPlaying())
//	})
//	defer bus.Unsubscribe(subID)
type EventBus interface {
	// Publish delivers an event to all subscribers of its type.
	// Handlers should return quickly; they run on the publisher's goroutine
	// for synchronous implementations.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// Each subscription gets a unique SubscriptionID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// If the subscription ID is invalid or already unsubscribed, this is a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless of type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers returns true if there are any active subscriptions for the given event type.
	// Publishers use it to skip building events nobody listens to.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus. Publishing afterwards is a no-op.
	Close() error
}

// EventFilter is a function that determines if an event should be delivered to a subscriber.
type EventFilter func(event domain.Event) bool

// FilteringEventBus extends EventBus with filtered subscriptions.
type FilteringEventBus interface {
	EventBus

	// SubscribeFiltered registers a handler with a filter function.
	// The handler will only be called for events that pass the filter.
	//
	// Example: only report progress once the duration is known
	//
	//	bus.SubscribeFiltered(domain.EventProgress, func(e domain.Event) bool {
	//	    return e.(domain.ProgressEvent).DurationKnown
	//	}, handleProgress)
	SubscribeFiltered(eventType domain.EventType, filter EventFilter, handler domain.EventHandler) domain.SubscriptionID
}
