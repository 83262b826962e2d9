package topic

import (
	"strings"

	"github.com/dshills/formsync/internal/pathstore"
)

// Topic is a field path used as an event name. The empty topic is the root and
// relates to every path.
type Topic string

// Wildcard constants for pattern matching.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// FromPath returns the topic naming p.
func FromPath(p pathstore.Path) Topic {
	return Topic(p.String())
}

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Path parses the topic as a field path.
func (t Topic) Path() (pathstore.Path, error) {
	return pathstore.Parse(string(t))
}

// Segments returns the segment texts of the topic. Topics that do not parse
// as field paths are split on the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	p, err := pathstore.Parse(string(t))
	if err != nil {
		return strings.Split(string(t), Separator)
	}
	out := make([]string, len(p))
	for i, seg := range p {
		out[i] = seg.Text()
	}
	return out
}

// Parent returns the topic without its last segment.
//
// Example: "items.0.price" -> "items.0"
func (t Topic) Parent() Topic {
	p, err := t.Path()
	if err != nil || len(p) == 0 {
		return ""
	}
	return FromPath(p.Parent())
}

// Child returns a child topic.
//
// Example: "items".Child("0") -> "items.0"
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return Topic(string(t) + Separator + segment)
}

// HasPrefix reports whether prefix names t or one of its ancestors, comparing
// whole segments.
func (t Topic) HasPrefix(prefix Topic) bool {
	return hasPrefix(t.Segments(), prefix.Segments())
}

// IsWildcard reports whether the topic contains a wildcard segment.
func (t Topic) IsWildcard() bool {
	for _, seg := range t.Segments() {
		if seg == WildcardSingle || seg == WildcardMulti {
			return true
		}
	}
	return false
}

// Matches reports whether t matches pattern exactly, honoring wildcards.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

// Related reports whether a change at t is visible at pattern: pattern
// matches t, an ancestor of t, or a descendant of t.
func Related(t, pattern Topic) bool {
	return relatedSegments(t.Segments(), pattern.Segments())
}

func hasPrefix(segs, prefix []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i := range prefix {
		if segs[i] != prefix[i] {
			return false
		}
	}
	return true
}

// matchSegments performs recursive pattern matching on topic segments.
func matchSegments(topic, pattern []string) bool {
	ti, pi := 0, 0

	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			for ti <= len(topic) {
				if matchSegments(topic[ti:], pattern[pi+1:]) {
					return true
				}
				ti++
			}
			return false
		}

		if ti >= len(topic) {
			return false
		}

		if pattern[pi] != WildcardSingle && pattern[pi] != topic[ti] {
			return false
		}
		ti++
		pi++
	}

	return ti == len(topic)
}

// relatedSegments is matchSegments where running out of either side early
// counts as a match.
func relatedSegments(topic, pattern []string) bool {
	ti, pi := 0, 0

	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			return true
		}
		if ti >= len(topic) {
			// topic is an ancestor of pattern
			return true
		}
		if pattern[pi] != WildcardSingle && pattern[pi] != topic[ti] {
			return false
		}
		ti++
		pi++
	}

	// pattern is an ancestor of topic, or equal to it
	return true
}

// Join joins segments into a topic.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}
