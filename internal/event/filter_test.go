package event

import (
	"testing"

	"github.com/dshills/formsync/internal/event/topic"
)

type pathEvent string

func (e pathEvent) EventTopic() topic.Topic { return topic.Topic(e) }

func TestFilterByTopic(t *testing.T) {
	f := FilterByTopic("items.*.price")

	tests := []struct {
		event any
		want  bool
	}{
		{pathEvent("items.0.price"), true},
		{pathEvent("items.0"), false},
		{pathEvent("user"), false},
		{"not a topic provider", false},
	}
	for _, tt := range tests {
		if got := f(tt.event); got != tt.want {
			t.Errorf("FilterByTopic(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestFilterExact(t *testing.T) {
	f := FilterExact("items[0]", "user.name")
	if !f(pathEvent("items.0")) {
		t.Error("items.0 should equal items[0]")
	}
	if f(pathEvent("items.0.price")) {
		t.Error("descendant should not pass an exact filter")
	}
	if !f(pathEvent("user.name")) {
		t.Error("user.name should pass")
	}
}

func TestFilterRelated(t *testing.T) {
	f := FilterRelated("items", "user.name")

	tests := []struct {
		event pathEvent
		want  bool
	}{
		{"items", true},
		{"items.3.price", true},
		{"user", true},
		{"user.name", true},
		{"user.email", false},
		{"total", false},
	}
	for _, tt := range tests {
		if got := f(tt.event); got != tt.want {
			t.Errorf("FilterRelated(%q) = %v, want %v", tt.event, got, tt.want)
		}
	}

	all := FilterRelated()
	if !all(pathEvent("anything")) || all(42) {
		t.Error("FilterRelated() should pass every topic provider and nothing else")
	}
}

func TestFilterMatcherLive(t *testing.T) {
	m := topic.NewMatcher()
	f := FilterMatcher(m)
	if f(pathEvent("a")) {
		t.Error("empty matcher should reject")
	}
	m.Add("a")
	if !f(pathEvent("a.b")) {
		t.Error("pattern added after construction should apply")
	}
}

func TestFilterByTopicPrefix(t *testing.T) {
	f := FilterByTopicPrefix("items.0")
	if !f(pathEvent("items.0.price")) || !f(pathEvent("items.0")) {
		t.Error("prefix filter rejected a descendant")
	}
	if f(pathEvent("items.01")) || f(pathEvent("items")) {
		t.Error("prefix filter accepted a non-descendant")
	}
}

func TestCombinators(t *testing.T) {
	even := Typed(func(n int) bool { return n%2 == 0 })
	big := Typed(func(n int) bool { return n > 10 })

	tests := []struct {
		name string
		f    FilterFunc
		in   any
		want bool
	}{
		{"and both", And(even, big), 12, true},
		{"and one", And(even, big), 4, false},
		{"or one", Or(even, big), 4, true},
		{"or none", Or(even, big), 3, false},
		{"not", Not(even), 3, true},
		{"typed mismatch", even, "12", false},
		{"always", Always(), nil, true},
		{"never", Never(), 1, false},
		{"and empty", And(), 1, true},
		{"or empty", Or(), 1, false},
	}
	for _, tt := range tests {
		if got := tt.f(tt.in); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWithFilterCombines(t *testing.T) {
	config := DefaultSubscriptionConfig()
	WithFilter(Typed(func(n int) bool { return n > 0 }))(&config)
	WithFilter(Typed(func(n int) bool { return n < 10 }))(&config)
	WithFilter(nil)(&config)

	if !config.Filter(5) || config.Filter(11) || config.Filter(-1) {
		t.Error("WithFilter should AND filters together")
	}
}
