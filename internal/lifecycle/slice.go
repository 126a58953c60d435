package lifecycle

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Cloner is implemented by slice state. Clone must copy every collection the
// slice mutates so published snapshots stay immutable.
type Cloner[S any] interface {
	Clone() S
}

// Slice holds one partition of store state. Readers get an immutable snapshot
// pointer; every write clones, mutates the clone and publishes it atomically.
type Slice[S Cloner[S]] struct {
	name   string
	logger *zap.Logger

	mu       sync.Mutex
	epoch    uint64
	onChange func(name string)

	state atomic.Pointer[S]
}

func NewSlice[S Cloner[S]](name string, initial S, logger *zap.Logger) *Slice[S] {
	s := &Slice[S]{name: name, logger: logger.With(zap.String("slice", name))}
	s.state.Store(&initial)
	return s
}

func (s *Slice[S]) Name() string { return s.name }

// State returns the current snapshot. Callers must treat it as read-only; a
// new pointer is published on every change.
func (s *Slice[S]) State() *S { return s.state.Load() }

// Epoch counts resets. In-flight operations started under an older epoch are
// discarded when they settle.
func (s *Slice[S]) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// OnChange registers the callback fired after each published change.
func (s *Slice[S]) OnChange(fn func(name string)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Update applies a synchronous mutation.
func (s *Slice[S]) Update(fn func(*S)) {
	s.apply(false, nil, fn)
}

// Reset applies fn and bumps the epoch so pending results are dropped.
func (s *Slice[S]) Reset(fn func(*S)) {
	s.apply(true, nil, fn)
}

// updateAt applies fn only if no reset happened since epoch was captured.
func (s *Slice[S]) updateAt(epoch uint64, fn func(*S)) bool {
	return s.apply(false, &epoch, fn)
}

// begin applies fn and returns the epoch it ran under.
func (s *Slice[S]) begin(fn func(*S)) uint64 {
	s.mu.Lock()
	epoch := s.epoch
	s.publishLocked(fn)
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(s.name)
	}
	return epoch
}

func (s *Slice[S]) apply(bump bool, at *uint64, fn func(*S)) bool {
	s.mu.Lock()
	if at != nil && *at != s.epoch {
		s.mu.Unlock()
		return false
	}
	if bump {
		s.epoch++
	}
	s.publishLocked(fn)
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(s.name)
	}
	return true
}

func (s *Slice[S]) publishLocked(fn func(*S)) {
	next := (*s.state.Load()).Clone()
	fn(&next)
	s.state.Store(&next)
}
