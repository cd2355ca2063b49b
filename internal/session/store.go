package session

import (
	"sync"
)

// Store holds the single Session of a running application.
// Writes replace the whole record and are delivered to subscribers in
// subscription order before Write returns.
type Store struct {
	// writeMu orders set and notify so subscribers see writes in the
	// order they were applied.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current Session

	subMu  sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Session)
}

// NewStore creates a store in the loading state, before the initial
// identity resolution has run.
func NewStore() *Store {
	return &Store{current: Session{Loading: true}}
}

// Read returns the latest session. The returned value is a copy.
func (s *Store) Read() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Write replaces the session and notifies subscribers.
func (s *Store) Write(next Session) {
	next = next.clone()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(next.clone())
	}
}

// Subscribe registers fn to be called after every Write.
// The returned function removes the subscription.
//
// fn runs synchronously inside Write. It may call Read but must not call
// Write, and must not call into a gateway.Gateway, which writes while
// holding its own lock.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
