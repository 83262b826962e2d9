package event

import (
	"sort"
	"sync"
)

// registry keeps a subject's subscriptions ordered by priority and then by
// registration. It is safe for concurrent access.
type registry[T any] struct {
	mu   sync.RWMutex
	subs []*subscription[T]
}

func (r *registry[T]) add(sub *subscription[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Stable position: after every subscription with the same or lower priority.
	i := sort.Search(len(r.subs), func(i int) bool {
		return r.subs[i].config.Priority > sub.config.Priority
	})
	r.subs = append(r.subs, nil)
	copy(r.subs[i+1:], r.subs[i:])
	r.subs[i] = sub
}

func (r *registry[T]) remove(sub *subscription[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.subs {
		if s == sub {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot returns a copy of the current list.
func (r *registry[T]) snapshot() []*subscription[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*subscription[T], len(r.subs))
	copy(out, r.subs)
	return out
}

func (r *registry[T]) countActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.subs {
		if s.IsActive() {
			n++
		}
	}
	return n
}

func (r *registry[T]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func (r *registry[T]) clear() []*subscription[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.subs
	r.subs = nil
	return subs
}
