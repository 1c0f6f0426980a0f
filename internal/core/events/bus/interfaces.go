package bus

import "time"

// EventBus is an in-process pub/sub bus for scene lifecycle notifications.
//
// Handlers subscribe by Event.Type(), or to every type with Wildcard.
// Delivery is synchronous in the publisher's goroutine and follows
// subscription order. Handler errors are joined and returned from Publish.
// All methods are safe for concurrent use, but handlers run while the
// publisher waits, so they should hand heavy work off.
type EventBus interface {
	// Publish delivers the event to every active subscriber of event.Type()
	// and to wildcard subscribers.
	Publish(event Event) error
	// PublishBatch publishes sequentially and joins errors across events.
	PublishBatch(events ...Event) error
	// PublishWithFilters drops the event silently when any filter rejects it.
	PublishWithFilters(event Event, filters ...EventFilter) error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe is a no-op for nil.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics is only populated while at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// Event is an immutable message. Consumers must treat Data as read-only.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

type (
	EventHandler func(event Event) error
	EventFilter  func(event Event) bool
)

type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is told about every publish and its outcome.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}
