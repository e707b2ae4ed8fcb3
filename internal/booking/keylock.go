package booking

import "sync"

// keyedMutex serializes work per key.  The engine keys it by facility id plus
// date so that the conflict-scan-then-insert sequence for one facility/day
// cannot interleave with another request for the same facility/day, while
// unrelated facilities proceed in parallel.  Entries are reference-counted
// and removed when the last holder unlocks, so the map does not grow with the
// number of distinct keys ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLockEntry
}

type keyedLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLockEntry)}
}

// lock blocks until the key is held and returns the matching unlock func.
func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedLockEntry{}
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
