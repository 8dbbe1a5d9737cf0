package host

import (
	"time"
)

// Status is the outcome of a raw primitive operation.
type Status uint8

const (
	StatusOK Status = iota
	StatusBusy
	StatusTimeout
	StatusInterrupted
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBusy:
		return "busy"
	case StatusTimeout:
		return "timeout"
	case StatusInterrupted:
		return "interrupted"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Mutex is a raw, non-reentrant host lock.
type Mutex interface {
	// Lock blocks until the mutex is held.
	Lock()

	// TryLock acquires without blocking. Returns StatusBusy when held elsewhere.
	TryLock() Status

	// Unlock releases the mutex. Returns StatusInvalid if it was not held.
	Unlock() Status

	// Destroy releases the mutex. Returns StatusBusy if it is still held.
	Destroy() Status
}

// Cond is a raw host condition variable.
type Cond interface {
	// Signal wakes at most one waiter.
	Signal() Status

	// Broadcast wakes all waiters.
	Broadcast() Status

	// TimedWait atomically unlocks m and waits for a signal or the timeout.
	// A zero timeout waits forever. m is locked again before returning.
	TimedWait(m Mutex, timeout time.Duration) Status

	// Destroy releases the condition variable.
	Destroy() Status
}

// Thread is a spawned unit of execution.
type Thread interface {
	// Join blocks until the thread's entry point returns.
	Join() Status

	// Done reports whether the entry point has returned.
	Done() bool

	// Destroy releases the host thread object.
	Destroy()
}

// Key identifies one slot in per-thread storage.
type Key uint32

// Storage is per-thread storage keyed implicitly by the calling goroutine.
type Storage interface {
	// NewKey allocates a slot.
	NewKey() Key

	// Get returns the calling goroutine's value for key, or nil.
	Get(key Key) any

	// Set stores the calling goroutine's value for key.
	Set(key Key, value any)

	// DeleteKey drops key for every goroutine.
	DeleteKey(key Key)

	// Forget drops every slot held by goroutine gid.
	Forget(gid int64)
}

// Clock reports time in milliseconds.
type Clock interface {
	Now() int64
}

// Host is the full set of raw primitives a platform provides.
type Host interface {
	NewMutex() Mutex
	NewCond() Cond

	// Spawn starts entry(arg) on a new host thread.
	Spawn(entry func(arg any), arg any) (Thread, error)

	Storage() Storage
	Clock() Clock
}
