package event

import (
	"context"

	"github.com/dshills/formsync/internal/event/topic"
)

// Priority determines handler execution order.
// Lower values execute first.
type Priority int

const (
	// PriorityCritical is for handlers that keep derived state consistent.
	PriorityCritical Priority = 0

	// PriorityHigh is for array sections and watchers that feed other handlers.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 200

	// PriorityLow is for logging and scripting hooks that run last.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler processes events of type T.
type Handler[T any] interface {
	Handle(ctx context.Context, event T) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc[T any] func(ctx context.Context, event T) error

// Handle implements the Handler interface.
func (f HandlerFunc[T]) Handle(ctx context.Context, event T) error {
	return f(ctx, event)
}

// Observer adapts a plain callback that cannot fail.
func Observer[T any](fn func(event T)) HandlerFunc[T] {
	return func(_ context.Context, event T) error {
		fn(event)
		return nil
	}
}

// FilterFunc is a predicate for filtering events.
// Return true to allow the event, false to filter it out.
type FilterFunc func(event any) bool

// TopicProvider is implemented by events that name the field path they
// concern. Path filters ignore events that do not implement it.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// Stats contains subject statistics.
type Stats struct {
	// EventsPublished is the total number of events published.
	EventsPublished uint64

	// EventsDelivered is the total number of handler invocations that succeeded.
	EventsDelivered uint64

	// EventsFiltered is the number of deliveries skipped by a filter.
	EventsFiltered uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// ActiveSubscribers is the current number of active subscriptions.
	ActiveSubscribers int
}

// PanicHandler is called when a handler panics.
type PanicHandler func(err *PanicError)

// ErrorHandler is called when a handler returns an error.
type ErrorHandler func(err *HandlerError)
