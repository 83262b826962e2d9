package topic

import "sync"

// Matcher indexes watch patterns in a trie so a published topic can be tested
// against all of them in one walk. It is safe for concurrent use.
type Matcher struct {
	mu   sync.RWMutex
	root *trieNode
}

type trieNode struct {
	children map[string]*trieNode
	// refs counts how many times a pattern ending here was added.
	refs int
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{root: newTrieNode()}
}

// Add adds a pattern. Patterns are reference counted, so adding the same
// pattern twice requires removing it twice. The empty pattern watches the root.
func (m *Matcher) Add(pattern Topic) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := m.root
	for _, seg := range pattern.Segments() {
		child := node.children[seg]
		if child == nil {
			child = newTrieNode()
			node.children[seg] = child
		}
		node = child
	}
	node.refs++
}

// Remove drops one reference to pattern and prunes nodes left unused.
func (m *Matcher) Remove(pattern Topic) {
	m.mu.Lock()
	defer m.mu.Unlock()

	segs := pattern.Segments()
	trail := make([]*trieNode, 0, len(segs)+1)
	trail = append(trail, m.root)
	node := m.root
	for _, seg := range segs {
		node = node.children[seg]
		if node == nil {
			return
		}
		trail = append(trail, node)
	}
	if node.refs == 0 {
		return
	}
	node.refs--

	for i := len(segs); i > 0; i-- {
		n := trail[i]
		if n.refs > 0 || len(n.children) > 0 {
			break
		}
		delete(trail[i-1].children, segs[i-1])
	}
}

// Has reports whether pattern was added and not yet removed.
func (m *Matcher) Has(pattern Topic) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node := m.root
	for _, seg := range pattern.Segments() {
		node = node.children[seg]
		if node == nil {
			return false
		}
	}
	return node.refs > 0
}

// Count returns the number of pattern references held.
func (m *Matcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countRefs(m.root)
}

func countRefs(n *trieNode) int {
	total := n.refs
	for _, child := range n.children {
		total += countRefs(child)
	}
	return total
}

// Match reports whether any pattern matches eventTopic exactly.
func (m *Matcher) Match(eventTopic Topic) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return matchNode(m.root, eventTopic.Segments(), false)
}

// Related reports whether any pattern is related to eventTopic: it matches
// the topic, one of its ancestors, or one of its descendants.
func (m *Matcher) Related(eventTopic Topic) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return matchNode(m.root, eventTopic.Segments(), true)
}

func matchNode(node *trieNode, segs []string, related bool) bool {
	if related && node.refs > 0 {
		// pattern ends above or at the event
		return true
	}
	if len(segs) == 0 {
		if node.refs > 0 {
			return true
		}
		if related {
			// any pattern below the event
			return len(node.children) > 0
		}
		if child := node.children[WildcardMulti]; child != nil {
			return matchNode(child, segs, related)
		}
		return false
	}

	if child := node.children[segs[0]]; child != nil && matchNode(child, segs[1:], related) {
		return true
	}
	if child := node.children[WildcardSingle]; child != nil && matchNode(child, segs[1:], related) {
		return true
	}
	if child := node.children[WildcardMulti]; child != nil {
		for i := 0; i <= len(segs); i++ {
			if matchNode(child, segs[i:], related) {
				return true
			}
		}
	}
	return false
}

// Clear removes all patterns.
func (m *Matcher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = newTrieNode()
}
