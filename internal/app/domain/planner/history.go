package planner

import "sync"

// historyLocks hands out one mutex per history key so every session of a
// client serialises its read-modify-write of the saved list.
type historyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newHistoryLocks() *historyLocks {
	return &historyLocks{locks: map[string]*sync.Mutex{}}
}

func (h *historyLocks) forKey(key string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.locks[key]
	if !ok {
		l = &sync.Mutex{}
		h.locks[key] = l
	}
	return l
}
