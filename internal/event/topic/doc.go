// Package topic names field paths for event routing and matches them against
// watch patterns.
//
// # Topic Format
//
// A topic is the canonical rendering of a field path:
//
//	user.name
//	items.0.price
//	accounts["0042"]
//
// Segments are split the same way the path parser splits them, so a quoted
// key containing dots stays one segment.
//
// # Wildcards
//
// Two wildcard segments are supported in patterns:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	items.*.price      matches items.0.price, items.7.price
//	items.**           matches items, items.3, items.3.tags.0
//	**                 matches everything
//
// # Related Topics
//
// Watchers care about more than exact matches. A value change at items.2.price
// is relevant to a watcher of items (the watched value contains it) and a
// replacement of items is relevant to a watcher of items.2.price (the watched
// value was replaced with it). Related and Matcher.Related answer that question.
//
// # Usage
//
//	m := topic.NewMatcher()
//	m.Add(topic.Topic("items.*.price"))
//	m.Add(topic.Topic("user"))
//
//	m.Related(topic.Topic("user.name"))  // true
//	m.Related(topic.Topic("items"))      // true
//	m.Related(topic.Topic("total"))      // false
package topic
