package store

import "sync"

// Listener is called after every transition with the state before and after.
type Listener func(prev, next State)

// Store owns the state of one session and serializes all transitions.
// The zero value is not usable; create stores with New.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// New creates a store holding the initial state.
func New() *Store {
	return &Store{
		state:     Initial(),
		listeners: make(map[int]Listener),
	}
}

// State returns the current state.
// The returned value must be treated as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies cmd and returns the new state.
// Listeners run after the transition, outside the lock, in the
// dispatching goroutine.
func (s *Store) Dispatch(cmd Command) State {
	s.mu.Lock()
	prev := s.state
	next := Apply(prev, cmd)
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
	return next
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
		})
	}
}
