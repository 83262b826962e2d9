package formsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/formsync/internal/config"
)

func TestNewFromFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "signup.yaml")
	body := "name: ada\nitems:\n  - title: first\n  - title: second\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	form, err := NewFromFile(path,
		WithKeyGenerator(SequenceKeys("item-")),
		WithInterest(Interest{Dirty: true}),
	)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	defer form.Close()

	items, err := form.FieldArray("items")
	if err != nil {
		t.Fatal(err)
	}
	if err := items.Swap(ctx, 0, 1); err != nil {
		t.Fatal(err)
	}

	var keys []string
	for _, e := range items.Fields() {
		keys = append(keys, e.Key)
	}
	if diff := cmp.Diff([]string{"item-2", "item-1"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if !form.Snapshot().IsDirty {
		t.Error("IsDirty = false after swapping items")
	}
}

func TestNewFromFileMissing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, config.ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound", err)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("onTouched")
	if err != nil || m != OnTouched {
		t.Errorf("ParseMode = %v, %v; want onTouched", m, err)
	}
}
