// Package selector holds helpers for pure derived views over slice snapshots.
package selector

import "sync"

// Memo caches the result of f for the last snapshot pointer it was given.
// A new snapshot pointer always recomputes; there is no manual invalidation.
type Memo[S any, R any] struct {
	f func(*S) R

	mu   sync.Mutex
	last *S
	val  R
}

func NewMemo[S any, R any](f func(*S) R) *Memo[S, R] {
	return &Memo[S, R]{f: f}
}

// Get returns f(s), recomputing only when s is a new snapshot. A nil
// snapshot yields the zero value without calling f.
func (m *Memo[S, R]) Get(s *S) R {
	if s == nil {
		var zero R
		return zero
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == m.last {
		return m.val
	}
	m.val = m.f(s)
	m.last = s
	return m.val
}

// Find returns the first item whose id matches. It does not rely on ordering.
func Find[T any](items []T, id int64, idOf func(T) int64) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
