package pathstore

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []SegmentKind
		keys  []string
	}{
		{"empty", "", nil, nil},
		{"single key", "name", []SegmentKind{KindKey}, []string{"name"}},
		{"dotted", "a.b.c", []SegmentKind{KindKey, KindKey, KindKey}, []string{"a", "b", "c"}},
		{"dotted numeric", "items.0.name", []SegmentKind{KindKey, KindNumeric, KindKey}, []string{"items", "0", "name"}},
		{"bracket index", "items[12].name", []SegmentKind{KindKey, KindIndex, KindKey}, []string{"items", "12", "name"}},
		{"quoted key", `accounts["0042"]`, []SegmentKind{KindKey, KindKey}, []string{"accounts", "0042"}},
		{"quoted numeric key", `accounts["7"].owner`, []SegmentKind{KindKey, KindKey, KindKey}, []string{"accounts", "7", "owner"}},
		{"leading zero stays key", "a.007", []SegmentKind{KindKey, KindKey}, []string{"a", "007"}},
		{"leading bracket", "[3]", []SegmentKind{KindIndex}, []string{"3"}},
		{"chained brackets", "m[0][1]", []SegmentKind{KindKey, KindIndex, KindIndex}, []string{"m", "0", "1"}},
		{"quoted key with dot", `a["x.y"].b`, []SegmentKind{KindKey, KindKey, KindKey}, []string{"a", "x.y", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if len(p) != len(tt.kinds) {
				t.Fatalf("Parse(%q) len = %d, want %d", tt.input, len(p), len(tt.kinds))
			}
			for i, seg := range p {
				if seg.Kind != tt.kinds[i] {
					t.Errorf("segment %d kind = %v, want %v", i, seg.Kind, tt.kinds[i])
				}
				if seg.Key != tt.keys[i] {
					t.Errorf("segment %d key = %q, want %q", i, seg.Key, tt.keys[i])
				}
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		".a",
		"a.",
		"a..b",
		"a[",
		"a[x]",
		"a[-1]",
		"a[01]",
		`a["x]`,
		`a["x"`,
		"a[0]b",
		"a]b",
		`a"b`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", in)
			}
			if !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Parse(%q) error %v is not ErrInvalidPath", in, err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("Parse(%q) error is not *SyntaxError", in)
			}
		})
	}
}

func TestPathString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a.b", "a.b"},
		{"items[0].name", "items.0.name"},
		{"items.0.name", "items.0.name"},
		{`accounts["0042"]`, `accounts["0042"]`},
		{`accounts["7"]`, `accounts["7"]`},
		{`a["x.y"].b`, `a["x.y"].b`},
		{`a[""]`, `a[""]`},
	}
	for _, tt := range tests {
		p := MustParse(tt.input)
		if got := p.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.want)
		}
		again := MustParse(p.String())
		if !again.Equal(p) {
			t.Errorf("round trip of %q changed the path", tt.input)
		}
	}
}

func TestPathHelpers(t *testing.T) {
	p := MustParse("a.b[2].c")

	if got := p.Parent().String(); got != "a.b.2" {
		t.Errorf("Parent = %q", got)
	}
	last, ok := p.Last()
	if !ok || last.Key != "c" {
		t.Errorf("Last = %v, %v", last, ok)
	}
	if !p.HasPrefix(MustParse("a.b.2")) {
		t.Error("expected a.b.2 to prefix a.b[2].c")
	}
	if p.HasPrefix(MustParse("a.bc")) {
		t.Error("a.bc must not prefix a.b[2].c")
	}
	if !Path(nil).IsRoot() {
		t.Error("nil path should be root")
	}

	parent := p.Parent()
	_ = parent.Child("x")
	if p.String() != "a.b.2.c" {
		t.Errorf("Child mutated the original path: %q", p.String())
	}
	if got := MustParse("list").At(3).Child("v").String(); got != "list.3.v" {
		t.Errorf("At/Child = %q", got)
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("a..b")
}
