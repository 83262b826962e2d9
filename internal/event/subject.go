package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// Subject is a typed synchronous multicast channel.
type Subject[T any] struct {
	name     string
	registry registry[T]
	nextSeq  atomic.Uint64
	closed   atomic.Bool

	onPanic PanicHandler
	onError ErrorHandler

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	eventsFiltered  atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// SubjectOption configures a Subject.
type SubjectOption func(*subjectConfig)

type subjectConfig struct {
	name    string
	onPanic PanicHandler
	onError ErrorHandler
}

// WithName names the subject in handler errors.
func WithName(name string) SubjectOption {
	return func(c *subjectConfig) {
		c.name = name
	}
}

// WithPanicHandler sets the function called when a handler panics.
func WithPanicHandler(h PanicHandler) SubjectOption {
	return func(c *subjectConfig) {
		c.onPanic = h
	}
}

// WithErrorHandler sets the function called when a handler returns an error.
func WithErrorHandler(h ErrorHandler) SubjectOption {
	return func(c *subjectConfig) {
		c.onError = h
	}
}

// NewSubject creates a subject.
func NewSubject[T any](opts ...SubjectOption) *Subject[T] {
	config := subjectConfig{name: "subject"}
	for _, opt := range opts {
		opt(&config)
	}
	return &Subject[T]{
		name:    config.name,
		onPanic: config.onPanic,
		onError: config.onError,
	}
}

// Name returns the subject name.
func (s *Subject[T]) Name() string {
	return s.name
}

// Subscribe registers a handler.
func (s *Subject[T]) Subscribe(handler Handler[T], opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if s.closed.Load() {
		return nil, ErrSubjectClosed
	}

	seq := s.nextSeq.Add(1)
	sub := newSubscription(s, seq, fmt.Sprintf("%s-%d", s.name, seq), handler, opts...)
	s.registry.add(sub)
	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (s *Subject[T]) SubscribeFunc(fn HandlerFunc[T], opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return s.Subscribe(fn, opts...)
}

// Unsubscribe cancels and removes a subscription. It is idempotent and safe
// to call from inside a handler, including the subscription's own.
func (s *Subject[T]) Unsubscribe(sub Subscription) error {
	own, ok := sub.(*subscription[T])
	if !ok || own == nil || own.owner != s {
		return ErrInvalidSubscription
	}
	own.Cancel()
	s.registry.remove(own)
	return nil
}

// Publish delivers event to every matching subscription before returning.
// Handler errors and panics are counted and reported to the configured
// handlers but do not stop delivery. Publish stops early only when ctx is
// done, returning the context error.
func (s *Subject[T]) Publish(ctx context.Context, event T) error {
	if s.closed.Load() {
		return ErrSubjectClosed
	}
	s.eventsPublished.Add(1)

	for _, sub := range s.registry.snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch sub.State() {
		case SubscriptionStateCancelled:
			s.registry.remove(sub)
			continue
		case SubscriptionStatePaused:
			continue
		}

		if !sub.accepts(event) {
			s.eventsFiltered.Add(1)
			continue
		}

		if sub.config.Once {
			if !sub.claimOnce() {
				continue
			}
			s.registry.remove(sub)
		}

		s.dispatch(ctx, sub, event)
	}
	return nil
}

func (s *Subject[T]) dispatch(ctx context.Context, sub *subscription[T], event T) {
	defer func() {
		if r := recover(); r != nil {
			s.handlerPanics.Add(1)
			if s.onPanic != nil {
				s.onPanic(&PanicError{
					SubscriptionID: sub.id,
					Subject:        s.name,
					Value:          r,
					Stack:          string(debug.Stack()),
				})
			}
		}
	}()

	if err := sub.handler.Handle(ctx, event); err != nil {
		s.handlerErrors.Add(1)
		if s.onError != nil {
			s.onError(&HandlerError{SubscriptionID: sub.id, Subject: s.name, Err: err})
		}
		return
	}
	s.eventsDelivered.Add(1)
}

// Count returns the number of registered subscriptions, paused ones included.
func (s *Subject[T]) Count() int {
	return s.registry.count()
}

// Stats returns current subject statistics.
func (s *Subject[T]) Stats() Stats {
	return Stats{
		EventsPublished:   s.eventsPublished.Load(),
		EventsDelivered:   s.eventsDelivered.Load(),
		EventsFiltered:    s.eventsFiltered.Load(),
		HandlerErrors:     s.handlerErrors.Load(),
		HandlerPanics:     s.handlerPanics.Load(),
		ActiveSubscribers: s.registry.countActive(),
	}
}

// Close cancels every subscription and rejects further use.
func (s *Subject[T]) Close() {
	if s.closed.Swap(true) {
		return
	}
	for _, sub := range s.registry.clear() {
		sub.Cancel()
	}
}

// IsClosed reports whether Close was called.
func (s *Subject[T]) IsClosed() bool {
	return s.closed.Load()
}
