package identity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUUIDDistinct(t *testing.T) {
	gen := UUID()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate key %q after %d calls", id, i)
		}
		seen[id] = true
	}
}

func TestSequence(t *testing.T) {
	gen := Sequence("k")
	got := []string{gen(), gen(), gen()}
	want := []string{"k1", "k2", "k3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sequence mismatch (-want +got):\n%s", diff)
	}

	other := Sequence("k")
	if other() != "k1" {
		t.Error("sequences must not share a counter")
	}
}

func TestNewKeyerDefaultsToUUID(t *testing.T) {
	k := NewKeyer(nil)
	if len(k.GenerateID()) != 36 {
		t.Error("default generator should produce UUIDs")
	}
}

func TestMapIDsAndOmitKeys(t *testing.T) {
	k := NewKeyer(Sequence("id"))
	items := []any{
		map[string]any{"x": "101"},
		map[string]any{"key": "user-field"},
		"plain",
	}

	entries := k.MapIDs(items)
	if diff := cmp.Diff([]string{"id1", "id2", "id3"}, Keys(entries)); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	// A user field named "key" is untouched by the wrapper.
	if entries[1].Value.(map[string]any)["key"] != "user-field" {
		t.Error("user field was overwritten by the synthetic key")
	}

	values := OmitKeys(entries)
	if diff := cmp.Diff(items, values); diff != "" {
		t.Errorf("OmitKeys mismatch (-want +got):\n%s", diff)
	}

	values[0].(map[string]any)["x"] = "changed"
	if entries[0].Value.(map[string]any)["x"] != "101" {
		t.Error("OmitKeys returned values aliasing the entries")
	}
	if items[0].(map[string]any)["x"] != "101" {
		t.Error("MapIDs aliased the input items")
	}
}

func TestAppendIDFreshKeys(t *testing.T) {
	k := NewKeyer(Sequence("n"))
	a := k.AppendID("v")
	b := k.AppendID("v")
	if a.Key == b.Key {
		t.Errorf("AppendID reused key %q", a.Key)
	}
}
