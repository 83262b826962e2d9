package event

import "sync/atomic"

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStatePaused means the subscription is temporarily not receiving events.
	SubscriptionStatePaused

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription represents an active subscription on a Subject.
type Subscription interface {
	// ID returns the subscription identifier, unique within its subject.
	ID() string

	// Priority returns the delivery priority.
	Priority() Priority

	// State returns the current subscription state.
	State() SubscriptionState

	// IsActive returns true if the subscription can receive events.
	IsActive() bool

	// Pause temporarily stops event delivery to this subscription.
	Pause()

	// Resume restarts event delivery after a pause.
	Resume()

	// Cancel permanently cancels the subscription. The subject drops it on
	// its next Publish or Unsubscribe.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority

	// Filter is an optional predicate to filter events.
	Filter FilterFunc

	// Once cancels the subscription right before its first delivery.
	Once bool
}

// DefaultSubscriptionConfig returns a default subscription configuration.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{Priority: PriorityNormal}
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter sets a filter predicate. Multiple filters are combined with And.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		if f == nil {
			return
		}
		if c.Filter == nil {
			c.Filter = f
			return
		}
		c.Filter = And(c.Filter, f)
	}
}

// WithOnce sets the subscription to auto-cancel after the first event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// subscription is the internal implementation of Subscription.
type subscription[T any] struct {
	id      string
	seq     uint64
	owner   *Subject[T]
	handler Handler[T]
	config  SubscriptionConfig
	state   atomic.Int32
}

func newSubscription[T any](owner *Subject[T], seq uint64, id string, h Handler[T], opts ...SubscriptionOption) *subscription[T] {
	config := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&config)
	}
	s := &subscription[T]{
		id:      id,
		seq:     seq,
		owner:   owner,
		handler: h,
		config:  config,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

// ID returns the subscription ID.
func (s *subscription[T]) ID() string {
	return s.id
}

// Priority returns the delivery priority.
func (s *subscription[T]) Priority() Priority {
	return s.config.Priority
}

// State returns the current subscription state.
func (s *subscription[T]) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// IsActive returns true if the subscription is active.
func (s *subscription[T]) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// Pause temporarily stops event delivery.
func (s *subscription[T]) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

// Resume restarts event delivery.
func (s *subscription[T]) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

// Cancel permanently cancels the subscription.
func (s *subscription[T]) Cancel() {
	s.state.Store(int32(SubscriptionStateCancelled))
}

// claimOnce moves a once-subscription from active to cancelled. It reports
// false when another delivery already claimed it.
func (s *subscription[T]) claimOnce() bool {
	return s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStateCancelled))
}

// accepts reports whether the filter allows event.
func (s *subscription[T]) accepts(event T) bool {
	return s.config.Filter == nil || s.config.Filter(event)
}
