// Package locks serializes mutations of one post or one user.
//
// Keys are built with PostKey and UserKey. A caller that needs both takes
// the post lock first and never holds two user keys at once.
package locks

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Locker hands out exclusive locks by key
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

// PostKey is the lock key of a post
func PostKey(id primitive.ObjectID) string { return "post:" + id.Hex() }

// UserKey is the lock key of a user
func UserKey(id primitive.ObjectID) string { return "user:" + id.Hex() }

// UserDeletionKey serializes deletions of one account. It is always taken
// before any post or user key.
func UserDeletionKey(id primitive.ObjectID) string { return "user-delete:" + id.Hex() }

type memoryEntry struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker is a keyed mutex for a single process
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

var _ Locker = (*MemoryLocker)(nil)

// NewMemoryLocker creates a new MemoryLocker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: make(map[string]*memoryEntry)}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &memoryEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *MemoryLocker) release(key string, e *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// held reports the number of keys with holders or waiters
func (l *MemoryLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
