package host

import (
	"sync/atomic"
)

// chanMutex is a one-slot semaphore. Unlike sync.Mutex it reports misuse
// as a Status instead of crashing, and it supports a non-blocking attempt.
type chanMutex struct {
	sem       chan struct{}
	destroyed atomic.Bool
}

func newChanMutex() *chanMutex {
	return &chanMutex{sem: make(chan struct{}, 1)}
}

func (m *chanMutex) Lock() {
	m.sem <- struct{}{}
}

func (m *chanMutex) TryLock() Status {
	if m.destroyed.Load() {
		return StatusInvalid
	}
	select {
	case m.sem <- struct{}{}:
		return StatusOK
	default:
		return StatusBusy
	}
}

func (m *chanMutex) Unlock() Status {
	select {
	case <-m.sem:
		return StatusOK
	default:
		return StatusInvalid
	}
}

func (m *chanMutex) Destroy() Status {
	if len(m.sem) != 0 {
		return StatusBusy
	}
	if !m.destroyed.CompareAndSwap(false, true) {
		return StatusInvalid
	}
	return StatusOK
}
