package anesthesia

import (
	"sync"

	"github.com/google/uuid"
)

// recordLocks serializes read-modify-write cycles per record id.
type recordLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*recordLock
}

type recordLock struct {
	mu   sync.Mutex
	refs int
}

func (l *recordLocks) lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[uuid.UUID]*recordLock)
	}
	rl, ok := l.m[id]
	if !ok {
		rl = &recordLock{}
		l.m[id] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
