package topic

import "testing"

func TestMatcherRelated(t *testing.T) {
	m := NewMatcher()
	m.Add("items.*.price")
	m.Add("user")

	tests := []struct {
		event Topic
		want  bool
	}{
		{"user.name", true},
		{"user", true},
		{"items", true},
		{"items.4", true},
		{"items.4.price", true},
		{"items.4.qty", false},
		{"total", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := m.Related(tt.event); got != tt.want {
			t.Errorf("Related(%q) = %v, want %v", tt.event, got, tt.want)
		}
		if got := Related(tt.event, "items.*.price") || Related(tt.event, "user"); got != tt.want {
			t.Errorf("trie and linear matching disagree on %q", tt.event)
		}
	}
}

func TestMatcherMatch(t *testing.T) {
	m := NewMatcher()
	m.Add("items.**")
	m.Add("user.name")

	tests := []struct {
		event Topic
		want  bool
	}{
		{"items", true},
		{"items.0.price", true},
		{"user.name", true},
		{"user", false},
		{"user.name.first", false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.event); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestMatcherRefCounting(t *testing.T) {
	m := NewMatcher()
	m.Add("a.b")
	m.Add("a.b")
	m.Add("a.c")

	if m.Count() != 3 {
		t.Fatalf("Count = %d, want 3", m.Count())
	}

	m.Remove("a.b")
	if !m.Has("a.b") {
		t.Error("a.b removed after a single Remove of two references")
	}
	m.Remove("a.b")
	if m.Has("a.b") {
		t.Error("a.b still present after removing both references")
	}
	if m.Related("a.b") {
		t.Error("pruned pattern still relates")
	}
	if !m.Related("a") {
		t.Error("a.c should still relate to a")
	}

	m.Remove("missing.path")
	m.Remove("a.c")
	if m.Count() != 0 || m.Related("a") {
		t.Error("matcher should be empty")
	}
}

func TestMatcherRoot(t *testing.T) {
	m := NewMatcher()
	if m.Related("x") {
		t.Error("empty matcher relates to nothing")
	}
	m.Add("")
	if !m.Related("x.y") {
		t.Error("root pattern relates to every topic")
	}
	m.Clear()
	if m.Count() != 0 {
		t.Error("Clear left patterns behind")
	}
}
