// Package host defines the raw threading primitives a constrained execution
// environment offers, and provides Local, a goroutine-backed implementation.
//
// The primitives:
//
//	Mutex    non-reentrant lock with a non-blocking TryLock
//	Cond     condition variable with Signal and a timed wait
//	Thread   spawn/join of a unit of execution
//	Storage  per-thread slots keyed implicitly by the calling goroutine
//	Clock    millisecond clock, possibly a constant stub
//
// None of them track ownership or reentrancy; callers layer that on top.
// Operations report a Status instead of an error so that callers can
// distinguish the documented outcomes (busy, timeout) from host failures.
//
// # Local Backend
//
// Local models an enclave host with a fixed number of thread slots:
//
//	h := host.NewLocal(host.LocalOptions{MaxThreads: 8})
//	m := h.NewMutex()
//	c := h.NewCond()
//
//	m.Lock()
//	st := c.TimedWait(m, 100*time.Millisecond) // StatusOK or StatusTimeout
//	m.Unlock()
//
// Spawn fails with ErrThreadLimit once MaxThreads threads are live, as a
// TCS-limited enclave does.
package host
