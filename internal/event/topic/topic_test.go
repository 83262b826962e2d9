package topic

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/formsync/internal/pathstore"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		topic Topic
		want  []string
	}{
		{"", nil},
		{"user", []string{"user"}},
		{"items.0.price", []string{"items", "0", "price"}},
		{"items[0].price", []string{"items", "0", "price"}},
		{`accounts["a.b"].owner`, []string{"accounts", "a.b", "owner"}},
		{"items.*.price", []string{"items", "*", "price"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.topic.Segments()); diff != "" {
			t.Errorf("Segments(%q) mismatch (-want +got):\n%s", tt.topic, diff)
		}
	}
}

func TestFromPath(t *testing.T) {
	p := pathstore.MustParse("items[2].name")
	if got := FromPath(p); got != "items.2.name" {
		t.Errorf("FromPath = %q", got)
	}
	if got := FromPath(nil); got != "" {
		t.Errorf("FromPath(root) = %q", got)
	}
}

func TestParentChild(t *testing.T) {
	if got := Topic("items.0.price").Parent(); got != "items.0" {
		t.Errorf("Parent = %q", got)
	}
	if got := Topic("items").Parent(); got != "" {
		t.Errorf("Parent of single segment = %q", got)
	}
	if got := Topic("").Child("a"); got != "a" {
		t.Errorf("Child of root = %q", got)
	}
	if got := Topic("items").Child("3"); got != "items.3" {
		t.Errorf("Child = %q", got)
	}
	if got := Join("a", "b", "c"); got != "a.b.c" {
		t.Errorf("Join = %q", got)
	}
}

func TestHasPrefix(t *testing.T) {
	tests := []struct {
		topic, prefix Topic
		want          bool
	}{
		{"items.0.price", "items", true},
		{"items.0.price", "items.0", true},
		{"items.0.price", "items.0.price", true},
		{"items.0.price", "item", false},
		{"items10", "items1", false},
		{"a", "", true},
	}
	for _, tt := range tests {
		if got := tt.topic.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("%q.HasPrefix(%q) = %v, want %v", tt.topic, tt.prefix, got, tt.want)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		topic, pattern Topic
		want           bool
	}{
		{"items.0.price", "items.0.price", true},
		{"items.0.price", "items.*.price", true},
		{"items.0.price", "items.*", false},
		{"items.0.price", "items.**", true},
		{"items", "items.**", true},
		{"anything.at.all", "**", true},
		{"items.0.price", "**.price", true},
		{"items.0.qty", "**.price", false},
	}
	for _, tt := range tests {
		if got := tt.topic.Matches(tt.pattern); got != tt.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestRelated(t *testing.T) {
	tests := []struct {
		topic, pattern Topic
		want           bool
	}{
		{"items.2.price", "items", true},
		{"items", "items.2.price", true},
		{"items.2.price", "items.2.price", true},
		{"items.2.price", "items.3", false},
		{"items.2.price", "items.*.price", true},
		{"items.2.qty", "items.*.price", false},
		{"total", "items", false},
		{"", "items.0", true},
		{"items.0", "", true},
	}
	for _, tt := range tests {
		if got := Related(tt.topic, tt.pattern); got != tt.want {
			t.Errorf("Related(%q, %q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestIsWildcard(t *testing.T) {
	if !Topic("a.*.b").IsWildcard() {
		t.Error("a.*.b should be a wildcard")
	}
	if Topic("a.b").IsWildcard() {
		t.Error("a.b should not be a wildcard")
	}
}
