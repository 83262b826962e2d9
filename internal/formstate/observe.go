package formstate

import (
	"context"
	"sort"

	"github.com/dshills/formsync/internal/event"
	"github.com/dshills/formsync/internal/event/topic"
	"github.com/dshills/formsync/internal/pathstore"
)

// SubscribeState declares in and calls fn after every change of the form
// state. Handlers read the new state with Snapshot.
func (s *Store) SubscribeState(in Interest, fn func(StateEvent), opts ...event.SubscriptionOption) (event.Subscription, error) {
	if s.closed {
		return nil, ErrClosed
	}
	s.Declare(in)
	return s.states.SubscribeFunc(event.Observer(fn), opts...)
}

// Watch calls fn whenever a value changes at, above or below one of names.
// With no names every value change is delivered. Names may use the
// wildcards "*" and "**".
func (s *Store) Watch(fn func(WatchEvent), names ...string) (event.Subscription, error) {
	if s.closed {
		return nil, ErrClosed
	}
	patterns := make([]topic.Topic, 0, len(names))
	for _, name := range names {
		patterns = append(patterns, topic.Topic(name))
	}
	return s.watches.SubscribeFunc(event.Observer(fn), event.WithFilter(event.FilterRelated(patterns...)))
}

// Unsubscribe cancels a subscription returned by SubscribeState, Watch or
// FieldArray.Subscribe. It is safe to call more than once.
func (s *Store) Unsubscribe(sub event.Subscription) {
	if sub == nil {
		return
	}
	if s.states.Unsubscribe(sub) == nil || s.watches.Unsubscribe(sub) == nil || s.entries.Unsubscribe(sub) == nil {
		return
	}
	sub.Cancel()
}

func (s *Store) publishState(ctx context.Context, p pathstore.Path, flags StateFlag) {
	s.publish(ctx, "state", func(ctx context.Context) error {
		return s.states.Publish(ctx, StateEvent{Name: p.String(), Changed: flags})
	})
}

func (s *Store) publishWatch(ctx context.Context, p pathstore.Path, kind WatchKind) {
	s.publish(ctx, "watch", func(ctx context.Context) error {
		return s.watches.Publish(ctx, WatchEvent{Name: p.String(), Kind: kind})
	})
}

func (s *Store) publishArray(ctx context.Context, e ArrayEvent) {
	s.publish(ctx, "array", func(ctx context.Context) error {
		return s.entries.Publish(ctx, e)
	})
}

func (s *Store) publish(ctx context.Context, subject string, send func(context.Context) error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.publishes.Add(1)
	if err := send(ctx); err != nil {
		s.log.Debug("publish aborted", "subject", subject, "err", err)
	}
}

// arrayNames returns the field array paths in sorted order.
func (s *Store) arrayNames() []string {
	names := make([]string, 0, len(s.arrays))
	for name := range s.arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
