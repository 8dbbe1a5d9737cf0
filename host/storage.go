package host

import (
	"sync"
	"sync/atomic"
)

type goroutineStorage struct {
	slots map[int64]map[Key]any
	mu    sync.RWMutex
	next  atomic.Uint32
}

func newGoroutineStorage() *goroutineStorage {
	return &goroutineStorage{
		slots: make(map[int64]map[Key]any),
	}
}

func (s *goroutineStorage) NewKey() Key {
	return Key(s.next.Add(1))
}

func (s *goroutineStorage) Get(key Key) any {
	gid := goroutineID()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[gid][key]
}

func (s *goroutineStorage) Set(key Key, value any) {
	gid := goroutineID()

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.slots[gid]
	if value == nil {
		if m != nil {
			delete(m, key)
			if len(m) == 0 {
				delete(s.slots, gid)
			}
		}
		return
	}
	if m == nil {
		m = make(map[Key]any)
		s.slots[gid] = m
	}
	m[key] = value
}

func (s *goroutineStorage) DeleteKey(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for gid, m := range s.slots {
		delete(m, key)
		if len(m) == 0 {
			delete(s.slots, gid)
		}
	}
}

func (s *goroutineStorage) Forget(gid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, gid)
}

// threads returns how many goroutines currently hold at least one slot.
func (s *goroutineStorage) threads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}
