package event

import "github.com/dshills/formsync/internal/event/topic"

// Common filter predicates for subscriptions.

// Typed adapts a predicate over a concrete event type. Events of other types
// are rejected.
func Typed[T any](pred func(T) bool) FilterFunc {
	return func(event any) bool {
		e, ok := event.(T)
		return ok && pred(e)
	}
}

func eventTopic(event any) (topic.Topic, bool) {
	tp, ok := event.(TopicProvider)
	if !ok {
		return "", false
	}
	return tp.EventTopic(), true
}

// FilterByTopic allows events whose topic matches pattern, wildcards included.
func FilterByTopic(pattern topic.Topic) FilterFunc {
	return func(event any) bool {
		t, ok := eventTopic(event)
		return ok && t.Matches(pattern)
	}
}

// FilterExact allows events whose topic equals one of topics segment for
// segment, so "items[0]" and "items.0" are the same topic.
func FilterExact(topics ...topic.Topic) FilterFunc {
	return func(event any) bool {
		t, ok := eventTopic(event)
		if !ok {
			return false
		}
		for _, want := range topics {
			if t.HasPrefix(want) && want.HasPrefix(t) {
				return true
			}
		}
		return false
	}
}

// FilterRelated allows events whose topic is related to any of patterns: the
// event path equals a pattern, lies below it, or is one of its ancestors. With
// no patterns every event with a topic is allowed.
func FilterRelated(patterns ...topic.Topic) FilterFunc {
	if len(patterns) == 0 {
		return func(event any) bool {
			_, ok := eventTopic(event)
			return ok
		}
	}
	m := topic.NewMatcher()
	for _, p := range patterns {
		m.Add(p)
	}
	return FilterMatcher(m)
}

// FilterMatcher allows events related to any pattern currently held by m.
// Patterns added to m later take effect immediately.
func FilterMatcher(m *topic.Matcher) FilterFunc {
	return func(event any) bool {
		t, ok := eventTopic(event)
		return ok && m.Related(t)
	}
}

// FilterByTopicPrefix allows events at or below prefix.
func FilterByTopicPrefix(prefix topic.Topic) FilterFunc {
	return func(event any) bool {
		t, ok := eventTopic(event)
		return ok && t.HasPrefix(prefix)
	}
}

// And combines filters with logical AND.
// All filters must return true for the event to pass.
func And(filters ...FilterFunc) FilterFunc {
	return func(event any) bool {
		for _, f := range filters {
			if f != nil && !f(event) {
				return false
			}
		}
		return true
	}
}

// Or combines filters with logical OR.
// At least one filter must return true for the event to pass.
func Or(filters ...FilterFunc) FilterFunc {
	return func(event any) bool {
		for _, f := range filters {
			if f != nil && f(event) {
				return true
			}
		}
		return false
	}
}

// Not negates a filter.
func Not(filter FilterFunc) FilterFunc {
	return func(event any) bool {
		return !filter(event)
	}
}

// Always returns a filter that always passes.
func Always() FilterFunc {
	return func(event any) bool {
		return true
	}
}

// Never returns a filter that never passes.
func Never() FilterFunc {
	return func(event any) bool {
		return false
	}
}
