package pins

import (
	"sync"
)

// Store is the ordered in-memory pin collection, the single source of
// truth for rendering. The viewport loader replaces it wholesale, creation
// prepends, and the confirmation engine patches entries in place. Order is
// whatever the server returned (reverse-chronological by convention), with
// prepended pins first.
type Store struct {
	mu   sync.RWMutex
	pins []Pin
}

// NewStore creates an empty pin store.
func NewStore() *Store {
	return &Store{}
}

// ReplaceAll swaps the collection for the given list, adopting its order.
func (s *Store) ReplaceAll(list []Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins = append([]Pin(nil), list...)
}

// Prepend inserts a newly created pin at the front.
func (s *Store) Prepend(pin Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins = append([]Pin{pin}, s.pins...)
}

// Patch applies an in-place update to the pin with the given id. Returns
// false when the pin is not present.
func (s *Store) Patch(id int64, fn func(*Pin)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pins {
		if s.pins[i].ID == id {
			fn(&s.pins[i])
			return true
		}
	}
	return false
}

// Set replaces the stored pin with the given value, keyed by the value's
// own id. Used for server reconciliation and rollback.
func (s *Store) Set(pin Pin) bool {
	ok := false
	s.Patch(pin.ID, func(p *Pin) {
		*p = pin
		ok = true
	})
	return ok
}

// Get returns a copy of the pin with the given id. The copy doubles as a
// rollback snapshot.
func (s *Store) Get(id int64) (Pin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.pins {
		if s.pins[i].ID == id {
			return s.pins[i], true
		}
	}
	return Pin{}, false
}

// All returns a copy of the collection in order.
func (s *Store) All() []Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Pin(nil), s.pins...)
}

// Len returns the number of pins held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pins)
}
