// Package event provides the subject bus the form engine uses to notify
// observers.
//
// A Subject is a typed, synchronous multicast channel. Mutation sites publish
// one event per change and every subscription whose filter accepts the event
// receives it before Publish returns, so an observer that reads state during
// delivery always sees the state after the mutation that triggered it.
//
// # Architecture
//
//	          mutation site
//	                │  Publish(ctx, evt)
//	                ▼
//	┌──────────────────────────────────┐
//	│            Subject[T]            │
//	│  - ordered subscription registry │
//	│  - filter evaluation             │
//	│  - panic isolation               │
//	└──────────────────────────────────┘
//	                │
//	    ┌───────────┼───────────┐
//	    ▼           ▼           ▼
//	 form state   watched     array
//	 observers    paths       sections
//
// # Delivery Order
//
// Subscriptions are delivered in ascending Priority and, within a priority, in
// registration order. Publish works on a copy of the subscription list taken
// when it starts: subscriptions added during delivery first see the next event,
// and a subscription cancelled during delivery is skipped if it has not been
// reached yet. Cancelling never shifts or repeats delivery to the others.
//
// # Filters
//
// Filters are predicates evaluated before a handler runs:
//
//	sub, _ := watch.Subscribe(h, event.WithFilter(event.FilterRelated("items", "user.name")))
//
// Path filters use the topic package: FilterByTopic matches exactly (with
// wildcards) and FilterRelated also accepts ancestors and descendants of the
// watched paths. Filters compose with And, Or and Not.
//
// # Concurrency
//
// A Subject may be used from several goroutines, but delivery itself is
// synchronous in the publishing goroutine. The form engine publishes from a
// single goroutine.
package event
