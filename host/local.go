package host

import (
	"errors"
	"sync/atomic"
)

var ErrThreadLimit = errors.New("host thread limit reached")

// LocalOptions configures the goroutine-backed host.
type LocalOptions struct {
	// Clock defaults to WallClock.
	Clock Clock

	// MaxThreads caps concurrently live spawned threads. Zero means no cap.
	MaxThreads int
}

// Local implements Host with goroutines and channels.
// Safe for concurrent use.
type Local struct {
	clock   Clock
	storage *goroutineStorage
	opts    LocalOptions
	live    atomic.Int64
}

// NewLocal creates a goroutine-backed host.
func NewLocal(opts LocalOptions) *Local {
	clock := opts.Clock
	if clock == nil {
		clock = WallClock{}
	}
	return &Local{
		clock:   clock,
		storage: newGoroutineStorage(),
		opts:    opts,
	}
}

// NewMutex returns a channel-backed mutex.
func (h *Local) NewMutex() Mutex {
	return newChanMutex()
}

// NewCond returns a FIFO condition variable.
func (h *Local) NewCond() Cond {
	return newWaitCond()
}

// Spawn starts entry(arg) on a new goroutine. Per-thread storage written by
// the goroutine is dropped when entry returns.
func (h *Local) Spawn(entry func(arg any), arg any) (Thread, error) {
	if !h.reserve() {
		return nil, ErrThreadLimit
	}

	t := &goThread{done: make(chan struct{})}
	go func() {
		gid := goroutineID()
		t.gid.Store(gid)
		defer func() {
			h.storage.Forget(gid)
			h.live.Add(-1)
			close(t.done)
		}()
		entry(arg)
	}()
	return t, nil
}

func (h *Local) reserve() bool {
	limit := int64(h.opts.MaxThreads)
	if limit <= 0 {
		h.live.Add(1)
		return true
	}
	for {
		n := h.live.Load()
		if n >= limit {
			return false
		}
		if h.live.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Storage returns the goroutine-keyed storage shared by all threads.
func (h *Local) Storage() Storage {
	return h.storage
}

// Clock returns the configured clock.
func (h *Local) Clock() Clock {
	return h.clock
}

// Live returns the number of spawned threads that have not finished.
func (h *Local) Live() int {
	return int(h.live.Load())
}
