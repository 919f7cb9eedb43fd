package lock

import (
	"strings"
	"sync"
)

// Keyed serializes critical sections per key. Bookings use it to make the
// conflict-check-then-commit sequence atomic for a (court, date) pair.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{
		entries: map[string]*entry{},
	}
}

// Lock acquires the mutex for key and returns its release function. Entries
// are reference counted so the map does not grow with every key ever seen.
func (k *Keyed) Lock(key string) func() {
	k.mu.Lock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}

	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()

		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}

		k.mu.Unlock()
	}
}

// Key builds a lock key from its parts.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
