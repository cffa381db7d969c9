package store

import "sync"

// ChangeListener is called with the key of a document after it has been
// written. Views subscribe explicitly instead of relying on ambient
// app-wide events; the returned cancel func removes the subscription.
type ChangeListener func(key string)

type listenerSet struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]ChangeListener
}

func newListenerSet() *listenerSet {
	return &listenerSet{fns: make(map[int]ChangeListener)}
}

// Subscribe registers fn for change notifications on every document.
func (s *Store) Subscribe(fn ChangeListener) (cancel func()) {
	s.listeners.mu.Lock()
	defer s.listeners.mu.Unlock()
	id := s.listeners.nextID
	s.listeners.nextID++
	s.listeners.fns[id] = fn
	return func() {
		s.listeners.mu.Lock()
		defer s.listeners.mu.Unlock()
		delete(s.listeners.fns, id)
	}
}

func (l *listenerSet) notify(key string) {
	l.mu.Lock()
	fns := make([]ChangeListener, 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
