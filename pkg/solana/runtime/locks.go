package runtime

import (
	"crypto/ed25519"
	"sync"
)

// accountLocks tracks the accounts held by in flight transactions. Locks are
// never waited on: a conflicting request fails immediately.
type accountLocks struct {
	mu       sync.Mutex
	writable map[string]struct{}
	readonly map[string]int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{
		writable: make(map[string]struct{}),
		readonly: make(map[string]int),
	}
}

// tryLock takes every lock or none.
func (l *accountLocks) tryLock(writable, readonly []ed25519.PublicKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range writable {
		k := string(key)
		if _, ok := l.writable[k]; ok {
			return false
		}
		if l.readonly[k] > 0 {
			return false
		}
	}
	for _, key := range readonly {
		if _, ok := l.writable[string(key)]; ok {
			return false
		}
	}

	for _, key := range writable {
		l.writable[string(key)] = struct{}{}
	}
	for _, key := range readonly {
		l.readonly[string(key)]++
	}

	return true
}

func (l *accountLocks) unlock(writable, readonly []ed25519.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range writable {
		delete(l.writable, string(key))
	}
	for _, key := range readonly {
		k := string(key)
		l.readonly[k]--
		if l.readonly[k] <= 0 {
			delete(l.readonly, k)
		}
	}
}
