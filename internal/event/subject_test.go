package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	calls []string
}

func (r *recorder) handler(name string) HandlerFunc[int] {
	return func(ctx context.Context, event int) error {
		r.calls = append(r.calls, name)
		return nil
	}
}

func TestSubject_DeliveryOrder(t *testing.T) {
	s := NewSubject[int]()
	rec := &recorder{}

	mustSubscribe(t, s, rec.handler("normal-1"))
	mustSubscribe(t, s, rec.handler("low"), WithPriority(PriorityLow))
	mustSubscribe(t, s, rec.handler("critical"), WithPriority(PriorityCritical))
	mustSubscribe(t, s, rec.handler("normal-2"))

	if err := s.Publish(context.Background(), 1); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	want := []string{"critical", "normal-1", "normal-2", "low"}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("delivery order mismatch (-want +got):\n%s", diff)
	}
}

func TestSubject_UnsubscribeDuringDelivery(t *testing.T) {
	s := NewSubject[int]()
	var calls []string
	var second Subscription

	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		calls = append(calls, "first")
		return nil
	})
	var self Subscription
	self = mustSubscribe(t, s, func(ctx context.Context, e int) error {
		calls = append(calls, "self")
		if err := s.Unsubscribe(self); err != nil {
			t.Errorf("Unsubscribe(self): %v", err)
		}
		// Idempotent.
		if err := s.Unsubscribe(self); err != nil {
			t.Errorf("second Unsubscribe(self): %v", err)
		}
		return nil
	})
	second = mustSubscribe(t, s, func(ctx context.Context, e int) error {
		calls = append(calls, "after")
		return nil
	})
	_ = second

	ctx := context.Background()
	if err := s.Publish(ctx, 1); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if diff := cmp.Diff([]string{"first", "self", "after"}, calls); diff != "" {
		t.Errorf("first publish mismatch (-want +got):\n%s", diff)
	}

	calls = nil
	if err := s.Publish(ctx, 2); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if diff := cmp.Diff([]string{"first", "after"}, calls); diff != "" {
		t.Errorf("second publish mismatch (-want +got):\n%s", diff)
	}
}

func TestSubject_UnsubscribeOtherDuringDelivery(t *testing.T) {
	s := NewSubject[int]()
	var calls []string
	var victim Subscription

	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		calls = append(calls, "killer")
		_ = s.Unsubscribe(victim)
		return nil
	})
	victim = mustSubscribe(t, s, func(ctx context.Context, e int) error {
		calls = append(calls, "victim")
		return nil
	})
	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		calls = append(calls, "bystander")
		return nil
	})

	_ = s.Publish(context.Background(), 1)

	if diff := cmp.Diff([]string{"killer", "bystander"}, calls); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if s.Count() != 2 {
		t.Errorf("Count = %d, want 2", s.Count())
	}
}

func TestSubject_SubscribeDuringDelivery(t *testing.T) {
	s := NewSubject[int]()
	var calls []int
	added := false

	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		if !added {
			added = true
			mustSubscribe(t, s, func(ctx context.Context, e int) error {
				calls = append(calls, e)
				return nil
			})
		}
		return nil
	})

	_ = s.Publish(context.Background(), 1)
	_ = s.Publish(context.Background(), 2)

	if diff := cmp.Diff([]int{2}, calls); diff != "" {
		t.Errorf("late subscriber mismatch (-want +got):\n%s", diff)
	}
}

func TestSubject_Once(t *testing.T) {
	s := NewSubject[int]()
	count := 0
	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		count++
		// Re-entrant publish must not deliver to the once-subscription again.
		if e == 1 {
			_ = s.Publish(ctx, 2)
		}
		return nil
	}, WithOnce())

	_ = s.Publish(context.Background(), 1)
	_ = s.Publish(context.Background(), 3)

	if count != 1 {
		t.Errorf("once handler called %d times", count)
	}
	if s.Count() != 0 {
		t.Errorf("once subscription not removed, Count = %d", s.Count())
	}
}

func TestSubject_PauseResume(t *testing.T) {
	s := NewSubject[int]()
	count := 0
	sub := mustSubscribe(t, s, func(ctx context.Context, e int) error {
		count++
		return nil
	})

	sub.Pause()
	_ = s.Publish(context.Background(), 1)
	sub.Resume()
	_ = s.Publish(context.Background(), 2)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestSubject_PanicRecovery(t *testing.T) {
	var reported *PanicError
	s := NewSubject[int](WithName("values"), WithPanicHandler(func(err *PanicError) {
		reported = err
	}))

	after := false
	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		panic("boom")
	})
	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		after = true
		return nil
	})

	if err := s.Publish(context.Background(), 1); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !after {
		t.Error("panic stopped delivery to later subscribers")
	}
	if reported == nil {
		t.Fatal("panic handler not called")
	}
	if !errors.Is(reported, ErrHandlerPanic) {
		t.Error("PanicError should match ErrHandlerPanic")
	}
	if reported.Subject != "values" || reported.Value != "boom" {
		t.Errorf("unexpected panic report %+v", reported)
	}
	if got := s.Stats().HandlerPanics; got != 1 {
		t.Errorf("HandlerPanics = %d", got)
	}
}

func TestSubject_HandlerErrors(t *testing.T) {
	boom := errors.New("boom")
	var reported *HandlerError
	s := NewSubject[int](WithErrorHandler(func(err *HandlerError) {
		reported = err
	}))
	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		return boom
	})

	_ = s.Publish(context.Background(), 1)

	if reported == nil || !errors.Is(reported, boom) {
		t.Fatalf("error handler got %v", reported)
	}
	stats := s.Stats()
	if stats.HandlerErrors != 1 || stats.EventsDelivered != 0 || stats.EventsPublished != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestSubject_Filter(t *testing.T) {
	s := NewSubject[int]()
	var got []int
	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		got = append(got, e)
		return nil
	}, WithFilter(Typed(func(e int) bool { return e%2 == 0 })))

	for i := 1; i <= 4; i++ {
		_ = s.Publish(context.Background(), i)
	}
	if diff := cmp.Diff([]int{2, 4}, got); diff != "" {
		t.Errorf("filtered delivery mismatch (-want +got):\n%s", diff)
	}
	if s.Stats().EventsFiltered != 2 {
		t.Errorf("EventsFiltered = %d", s.Stats().EventsFiltered)
	}
}

func TestSubject_ContextCancelled(t *testing.T) {
	s := NewSubject[int]()
	called := false
	mustSubscribe(t, s, func(ctx context.Context, e int) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Publish(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("handler called with cancelled context")
	}
}

func TestSubject_Close(t *testing.T) {
	s := NewSubject[int]()
	sub := mustSubscribe(t, s, func(ctx context.Context, e int) error { return nil })

	s.Close()
	s.Close()

	if sub.State() != SubscriptionStateCancelled {
		t.Error("Close should cancel subscriptions")
	}
	if !errors.Is(s.Publish(context.Background(), 1), ErrSubjectClosed) {
		t.Error("Publish after Close should fail")
	}
	if _, err := s.SubscribeFunc(func(ctx context.Context, e int) error { return nil }); !errors.Is(err, ErrSubjectClosed) {
		t.Error("Subscribe after Close should fail")
	}
}

func TestSubject_InvalidUse(t *testing.T) {
	s := NewSubject[int]()
	other := NewSubject[int]()

	if _, err := s.Subscribe(nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("Subscribe(nil) error = %v", err)
	}
	if _, err := s.SubscribeFunc(nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("SubscribeFunc(nil) error = %v", err)
	}
	if err := s.Unsubscribe(nil); !errors.Is(err, ErrInvalidSubscription) {
		t.Errorf("Unsubscribe(nil) error = %v", err)
	}
	foreign, _ := other.SubscribeFunc(func(ctx context.Context, e int) error { return nil })
	if err := s.Unsubscribe(foreign); !errors.Is(err, ErrInvalidSubscription) {
		t.Errorf("Unsubscribe(foreign) error = %v", err)
	}
}

func TestObserver(t *testing.T) {
	s := NewSubject[string]()
	var got string
	if _, err := s.Subscribe(Observer(func(e string) { got = e })); err != nil {
		t.Fatal(err)
	}
	_ = s.Publish(context.Background(), "hello")
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func mustSubscribe(t *testing.T, s *Subject[int], fn HandlerFunc[int], opts ...SubscriptionOption) Subscription {
	t.Helper()
	sub, err := s.SubscribeFunc(fn, opts...)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	return sub
}
