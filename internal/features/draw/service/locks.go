package service

import "sync"

// handleLocks serializes plays of one handle inside the process. Entries
// are dropped once nobody holds or waits for them.
type handleLocks struct {
	mu    sync.Mutex
	locks map[string]*handleLock
}

type handleLock struct {
	mu   sync.Mutex
	refs int
}

func newHandleLocks() *handleLocks {
	return &handleLocks{locks: make(map[string]*handleLock)}
}

// lock blocks until handle is free and returns its unlock func.
func (h *handleLocks) lock(handle string) func() {
	h.mu.Lock()
	l, ok := h.locks[handle]
	if !ok {
		l = &handleLock{}
		h.locks[handle] = l
	}
	l.refs++
	h.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		h.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, handle)
		}
		h.mu.Unlock()
	}
}

func (h *handleLocks) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.locks)
}
