package session

import (
	"context"
	"sync"
)

// LockManager serializes work per session. Locks for idle sessions are
// released so the map only holds sessions with a turn in flight.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sem  chan struct{}
	refs int
}

func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*sessionLock)}
}

// Lock blocks until the session is free or ctx is done.
// The returned func releases the lock and must be called exactly once.
func (m *LockManager) Lock(ctx context.Context, sessionID string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sessionLock{sem: make(chan struct{}, 1)}
		m.locks[sessionID] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(sessionID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			m.release(sessionID, l)
		})
	}, nil
}

func (m *LockManager) release(sessionID string, l *sessionLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, sessionID)
	}
}
