// Package state holds the observable values screens subscribe to.
package state

import "sync"

// Value is a thread-safe observable holding the latest T. Subscribers get a
// conflating stream: a slow reader sees the most recent value, never a
// backlog.
type Value[T any] struct {
	mu   sync.RWMutex
	v    T
	subs map[int]chan T
	next int
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (s *Value[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

// Set stores v and notifies subscribers.
func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = v
	s.notifyLocked()
}

// Update applies fn to the current value atomically and returns the result.
func (s *Value[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = fn(s.v)
	s.notifyLocked()
	return s.v
}

// Subscribe returns a channel that immediately yields the current value and
// then every later one, plus a cancel func that closes the channel.
func (s *Value[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan T, 1)
	ch <- s.v
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Value[T]) notifyLocked() {
	for _, ch := range s.subs {
		// drop the stale pending value, if any
		select {
		case <-ch:
		default:
		}
		ch <- s.v
	}
}
