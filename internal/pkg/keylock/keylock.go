// Package keylock provides in-process mutual exclusion keyed by string.
// Reconciliation serializes on entry dates and on entity natural keys so
// two concurrent passes cannot create duplicate rows for the same key.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func New() *KeyLock {
	return &KeyLock{locks: map[string]*entry{}}
}

// Lock blocks until the key is held and returns the matching unlock func.
// The per-key entry is reference counted and removed once the last holder
// releases it, so idle keys do not accumulate.
func (k *KeyLock) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
