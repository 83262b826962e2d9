package pathstore

import (
	"strconv"
	"strings"
)

// SegmentKind distinguishes how a path segment addresses its container.
type SegmentKind uint8

const (
	// KindKey addresses an object key.
	KindKey SegmentKind = iota

	// KindIndex addresses an array slot. Produced by bracket syntax ("a[0]").
	KindIndex

	// KindNumeric is a dotted numeric segment ("a.0"). It indexes arrays and
	// names keys of objects; see the package documentation for the rule.
	KindNumeric
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindIndex:
		return "index"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Segment is one step of a Path.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Key returns an object-key segment.
func Key(k string) Segment {
	return Segment{Kind: KindKey, Key: k}
}

// Index returns an array-index segment.
func Index(i int) Segment {
	return Segment{Kind: KindIndex, Key: strconv.Itoa(i), Index: i}
}

// IsNumeric reports whether the segment can address an array slot.
func (s Segment) IsNumeric() bool {
	return s.Kind != KindKey
}

// Text returns the raw segment text without quoting.
func (s Segment) Text() string {
	return s.Key
}

// MaxImplicitIndex bounds the arrays a dotted numeric segment creates where
// nothing exists yet. Larger numbers, such as account numbers, create object
// keys instead.
const MaxImplicitIndex = 1024

// Path is a parsed field path. The zero value addresses the root.
type Path []Segment

// Parse parses a dot/bracket field path.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}

	var p Path
	i := 0
	expectSegment := true

	for i < len(s) {
		c := s[i]
		switch {
		case c == '[':
			seg, next, err := parseBracket(s, i)
			if err != nil {
				return nil, err
			}
			p = append(p, seg)
			i = next
			expectSegment = false
			if i < len(s) && s[i] != '.' && s[i] != '[' {
				return nil, &SyntaxError{Path: s, Offset: i, Message: "expected '.' or '[' after ']'"}
			}
		case c == '.':
			if expectSegment {
				return nil, &SyntaxError{Path: s, Offset: i, Message: "empty segment"}
			}
			i++
			expectSegment = true
			if i == len(s) {
				return nil, &SyntaxError{Path: s, Offset: i, Message: "trailing '.'"}
			}
		default:
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				if s[i] == ']' || s[i] == '"' {
					return nil, &SyntaxError{Path: s, Offset: i, Message: "unexpected " + strconv.QuoteRune(rune(s[i]))}
				}
				i++
			}
			p = append(p, bareSegment(s[start:i]))
			expectSegment = false
		}
	}

	return p, nil
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func bareSegment(text string) Segment {
	if n, ok := canonicalIndex(text); ok {
		return Segment{Kind: KindNumeric, Key: text, Index: n}
	}
	return Segment{Kind: KindKey, Key: text}
}

// canonicalIndex accepts non-negative decimal integers without leading zeros,
// so "0042" stays a key and round-trips through String.
func canonicalIndex(text string) (int, bool) {
	if text == "" || len(text) > 9 {
		return 0, false
	}
	if len(text) > 1 && text[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseBracket(s string, open int) (Segment, int, error) {
	i := open + 1
	if i >= len(s) {
		return Segment{}, 0, &SyntaxError{Path: s, Offset: open, Message: "unterminated '['"}
	}

	if s[i] == '"' {
		end := i + 1
		for end < len(s) && s[end] != '"' {
			if s[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(s) {
			return Segment{}, 0, &SyntaxError{Path: s, Offset: i, Message: "unterminated quoted key"}
		}
		key, err := strconv.Unquote(s[i : end+1])
		if err != nil {
			return Segment{}, 0, &SyntaxError{Path: s, Offset: i, Message: "bad quoted key"}
		}
		if end+1 >= len(s) || s[end+1] != ']' {
			return Segment{}, 0, &SyntaxError{Path: s, Offset: end + 1, Message: "expected ']'"}
		}
		return Key(key), end + 2, nil
	}

	end := strings.IndexByte(s[i:], ']')
	if end < 0 {
		return Segment{}, 0, &SyntaxError{Path: s, Offset: open, Message: "unterminated '['"}
	}
	text := s[i : i+end]
	n, ok := canonicalIndex(text)
	if !ok {
		return Segment{}, 0, &SyntaxError{Path: s, Offset: i, Message: "index must be a non-negative integer"}
	}
	return Index(n), i + end + 1, nil
}

// String renders the path in canonical dotted form. Keys that would not
// survive a round trip are rendered as quoted brackets.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, seg := range p {
		if seg.Kind == KindKey && needsQuote(seg.Key) {
			b.WriteString("[")
			b.WriteString(strconv.Quote(seg.Key))
			b.WriteString("]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

func needsQuote(key string) bool {
	if key == "" {
		return true
	}
	if _, ok := canonicalIndex(key); ok {
		return true
	}
	return strings.ContainsAny(key, `.[]"`)
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p)
}

// IsRoot reports whether the path addresses the tree root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the final segment. The second result is false for the root.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Append returns a new path with segs appended. The receiver is not modified.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Child returns p extended by an object key.
func (p Path) Child(key string) Path {
	return p.Append(Key(key))
}

// At returns p extended by an array index.
func (p Path) At(i int) Path {
	return p.Append(Index(i))
}

// HasPrefix reports whether prefix is an ancestor of p or equal to it,
// comparing segment text so "a.0" and "a[0]" are the same location.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i].Key != prefix[i].Key {
			return false
		}
	}
	return true
}

// Equal reports whether both paths address the same location.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}
