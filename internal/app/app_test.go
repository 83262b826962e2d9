package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/dshills/formsync/internal/formstate"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewRequiresScript(t *testing.T) {
	if _, err := New(Options{}, nil, nil); !errors.Is(err, ErrNoScript) {
		t.Errorf("New error = %v, want ErrNoScript", err)
	}
	if _, err := New(Options{ScriptPath: "x.lua", Mode: "sometimes"}, nil, nil); err == nil {
		t.Error("New accepted an unknown mode")
	}
}

func TestRunOnce(t *testing.T) {
	dir := t.TempDir()
	defaults := writeFile(t, dir, "signup.toml", `
name = ""

[[items]]
title = "first"

[[items]]
title = "second"
`)
	scenario := writeFile(t, dir, "scenario.lua", `
local items = form.field_array("items")
items:remove(0)
form.set_value("name", "ada", {touch = true})
form.submit()
`)

	var out bytes.Buffer
	app, err := New(Options{
		ScriptPath:   scenario,
		DefaultsPath: defaults,
		Overrides:    []string{"name=bob"},
		KeyPrefix:    "k",
	}, &out, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := app.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	var state struct {
		Values        map[string]any `json:"values"`
		DefaultValues map[string]any `json:"defaultValues"`
		IsDirty       bool           `json:"isDirty"`
		SubmitCount   int            `json:"submitCount"`
	}
	if err := json.Unmarshal(out.Bytes(), &state); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}

	wantValues := map[string]any{
		"name":  "ada",
		"items": []any{map[string]any{"title": "second"}},
	}
	if diff := cmp.Diff(wantValues, state.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if got := state.DefaultValues["name"]; got != "bob" {
		t.Errorf("default name = %v, want bob", got)
	}
	if !state.IsDirty || state.SubmitCount != 1 {
		t.Errorf("isDirty = %v, submitCount = %d", state.IsDirty, state.SubmitCount)
	}
}

func TestRunOnceQuery(t *testing.T) {
	dir := t.TempDir()
	scenario := writeFile(t, dir, "scenario.lua", `form.set_value("user.name", "ada")`)

	tests := []struct {
		query   string
		want    string
		wantErr error
	}{
		{query: "values.user.name", want: `"ada"`},
		{query: "values.user", want: `{"name":"ada"}`},
		{query: "values.missing", wantErr: ErrNoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var out bytes.Buffer
			app, err := New(Options{ScriptPath: scenario, Query: tt.query}, &out, nil)
			if err != nil {
				t.Fatal(err)
			}
			err = app.RunOnce(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("RunOnce error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			got := strings.Join(strings.Fields(out.String()), "")
			if got != tt.want {
				t.Errorf("output = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRunOnceScriptError(t *testing.T) {
	dir := t.TempDir()
	scenario := writeFile(t, dir, "broken.lua", `
form.set_value("name", "ada")
error("stop here")
`)
	var out bytes.Buffer
	app, err := New(Options{ScriptPath: scenario, Query: "values.name"}, &out, nil)
	if err != nil {
		t.Fatal(err)
	}

	err = app.RunOnce(context.Background())
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "run" {
		t.Fatalf("RunOnce error = %v, want a run OperationError", err)
	}
	if !strings.Contains(out.String(), `"ada"`) {
		t.Errorf("snapshot not printed after failure: %q", out.String())
	}
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		want      map[string]any
		wantErr   error
	}{
		{
			name:      "string and json values",
			overrides: []string{"name=ada", "age=36", `tags=["a","b"]`},
			want: map[string]any{
				"name": "ada",
				"age":  float64(36),
				"tags": []any{"a", "b"},
				"list": []any{map[string]any{"x": "1"}},
			},
		},
		{
			name:      "array index",
			overrides: []string{"list.0.x=2"},
			want:      map[string]any{"list": []any{map[string]any{"x": "2"}}},
		},
		{
			name:      "missing separator",
			overrides: []string{"name"},
			wantErr:   ErrInvalidOverride,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := map[string]any{"list": []any{map[string]any{"x": "1"}}}
			got, err := applyOverrides(base, tt.overrides)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("overrides mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderColor(t *testing.T) {
	doc, err := render(formstate.FormState{Values: map[string]any{"a": 1}}, "values", true)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(doc, []byte("\x1b[")) {
		t.Errorf("colored output has no escape codes: %q", doc)
	}
}
