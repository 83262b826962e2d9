package config

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func newTestLoader(files map[string]string, opts ...LoaderOption) *Loader {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return NewLoader(append([]LoaderOption{WithFS(fsys)}, opts...)...)
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want map[string]any
	}{
		{
			name: "toml",
			path: "form.toml",
			body: "name = \"ada\"\n\n[[test]]\nx = \"101\"\n\n[[test]]\nx = \"102\"\n",
			want: map[string]any{
				"name": "ada",
				"test": []any{map[string]any{"x": "101"}, map[string]any{"x": "102"}},
			},
		},
		{
			name: "yaml",
			path: "form.yaml",
			body: "name: ada\ntest:\n  - x: \"101\"\n  - x: \"102\"\n",
			want: map[string]any{
				"name": "ada",
				"test": []any{map[string]any{"x": "101"}, map[string]any{"x": "102"}},
			},
		},
		{
			name: "yml extension",
			path: "form.yml",
			body: "age: 36\n",
			want: map[string]any{"age": 36},
		},
		{
			name: "json",
			path: "form.json",
			body: `{"name": "ada", "age": 36, "tags": ["a", null]}`,
			want: map[string]any{"name": "ada", "age": float64(36), "tags": []any{"a", nil}},
		},
		{
			name: "empty json",
			path: "empty.json",
			body: "null",
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoader(map[string]string{tt.path: tt.body})
			got, err := l.Load(tt.path)
			if err != nil {
				t.Fatalf("Load(%q): %v", tt.path, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestLoadYAMLNonStringKeys(t *testing.T) {
	l := newTestLoader(map[string]string{"form.yaml": "codes:\n  1: one\n  2: two\n"})
	got, err := l.Load("form.yaml")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"codes": map[string]any{"1": "one", "2": "two"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		path    string
		wantErr error
	}{
		{"missing file", nil, "nope.toml", ErrFileNotFound},
		{"unknown extension", map[string]string{"form.ini": "a=1"}, "form.ini", ErrUnsupportedFormat},
		{"json array at top", map[string]string{"form.json": "[1, 2]"}, "form.json", ErrNotATable},
		{"yaml scalar at top", map[string]string{"form.yaml": "hello"}, "form.yaml", ErrNotATable},
		{"bad include", map[string]string{"form.toml": "\"@include\" = 3\n"}, "form.toml", ErrInvalidInclude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader(tt.files).Load(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantLine bool
	}{
		{"toml", "form.toml", "name = \"ada\"\nage = \n", true},
		{"yaml", "form.yaml", "name: [ada\n", false},
		{"json", "form.json", "{\n  \"name\": ,\n}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader(map[string]string{tt.path: tt.body}).Load(tt.path)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Load(%q) error = %v, want *ParseError", tt.path, err)
			}
			if perr.Path != tt.path {
				t.Errorf("ParseError.Path = %q, want %q", perr.Path, tt.path)
			}
			if perr.Err == nil || errors.Unwrap(perr) != perr.Err {
				t.Error("ParseError does not unwrap to the decoder error")
			}
			if tt.wantLine && perr.Line < 1 {
				t.Errorf("ParseError.Line = %d, want a position", perr.Line)
			}
			if !strings.Contains(perr.Error(), tt.path) {
				t.Errorf("Error() = %q, want it to name the file", perr.Error())
			}
		})
	}
}

func TestLoadIncludes(t *testing.T) {
	files := map[string]string{
		"forms/signup.toml": `"@include" = ["shared.yaml", "address.json"]
name = "ada"

[contact]
email = "ada@example.com"
`,
		"forms/shared.yaml": "name: anonymous\ncontact:\n  phone: \"555\"\n  email: none\n",
		"forms/address.json": `{"address": {"city": "London"}}`,
	}
	got, err := newTestLoader(files).Load("forms/signup.toml")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"name":    "ada",
		"contact": map[string]any{"email": "ada@example.com", "phone": "555"},
		"address": map[string]any{"city": "London"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged document mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadIncludeCycle(t *testing.T) {
	files := map[string]string{
		"a.toml": "\"@include\" = \"b.toml\"\n",
		"b.toml": "\"@include\" = \"a.toml\"\n",
	}
	_, err := newTestLoader(files, WithMaxIncludeDepth(3)).Load("a.toml")
	if !errors.Is(err, ErrIncludeDepthExceeded) {
		t.Errorf("error = %v, want ErrIncludeDepthExceeded", err)
	}
}

func TestLoadFromReader(t *testing.T) {
	l := NewLoader()
	got, err := l.LoadFromReader(strings.NewReader("name: ada\n\"@include\": other.yaml\n"), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"name": "ada"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := l.LoadFromReader(strings.NewReader(""), FormatUnknown); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.toml", FormatTOML},
		{"a.YAML", FormatYAML},
		{"dir/a.yml", FormatYAML},
		{"a.json", FormatJSON},
		{"a.txt", FormatUnknown},
		{"toml", FormatUnknown},
	}
	for _, tt := range tests {
		if got := FormatOf(tt.path); got != tt.want {
			t.Errorf("FormatOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPosition(t *testing.T) {
	data := []byte("ab\ncd\ne")
	tests := []struct {
		offset, line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{7, 3, 2},
		{100, 3, 2},
	}
	for _, tt := range tests {
		line, col := position(data, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("position(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}
