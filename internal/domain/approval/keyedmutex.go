package approval

import (
	"sync"

	"github.com/google/uuid"
)

// KeyedMutex serializes the check-then-clear span per reservation without
// coupling unrelated reservations to one lock. Entries are reference counted
// so the map does not grow with every reservation ever seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*keyedLock)}
}

// Lock blocks until the per-key lock is held and returns the matching unlock.
func (m *KeyedMutex) Lock(key uuid.UUID) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}
