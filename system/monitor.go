package system

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/host"
	"github.com/wippyai/hostsync/resource"
)

// Monitor is a reentrant lock with an owner, a recursion depth and a FIFO
// wait queue.
//
// The host mutex is held exactly while the monitor has an owner. Owner and
// depth are written only by the owner; they are atomics so that other
// threads may read them without taking the lock. The queue is guarded by
// the host mutex.
type Monitor struct {
	sys      *System
	mu       host.Mutex
	owner    atomic.Pointer[Thread]
	depth    atomic.Uint32
	queue    []*Thread
	waiters  atomic.Int32
	handle   resource.Handle
	disposed atomic.Bool
}

var _ hostsync.Monitor = (*Monitor)(nil)

// NewMonitor creates an unowned monitor with an empty wait queue.
func (s *System) NewMonitor() (hostsync.Monitor, error) {
	m := &Monitor{sys: s, mu: s.host.NewMutex()}
	h, err := s.register(errors.PhaseMonitor, resource.TypeMonitor, m)
	if err != nil {
		return nil, err
	}
	m.handle = h
	return m, nil
}

// Handle returns the registry handle.
func (m *Monitor) Handle() resource.Handle {
	return m.handle
}

// TryAcquire enters the monitor without blocking.
func (m *Monitor) TryAcquire(t hostsync.Thread) bool {
	th := m.sys.thread(errors.PhaseMonitor, m.name(), t)
	if m.owner.Load() == th {
		m.depth.Add(1)
		return true
	}

	switch st := m.mu.TryLock(); st {
	case host.StatusOK:
		m.own(th, 1)
		return true
	case host.StatusBusy:
		return false
	default:
		m.sys.fail(errors.HostFailure(errors.PhaseMonitor, m.name(), "trylock", st))
		return false
	}
}

// Acquire enters the monitor, blocking while another thread owns it.
func (m *Monitor) Acquire(t hostsync.Thread) {
	th := m.sys.thread(errors.PhaseMonitor, m.name(), t)
	if m.owner.Load() == th {
		m.depth.Add(1)
		return
	}
	m.mu.Lock()
	m.own(th, 1)
}

// Release leaves the monitor once. The last release unlocks it.
func (m *Monitor) Release(t hostsync.Thread) {
	th := m.checkOwner(t, "release")
	if m.depth.Add(^uint32(0)) > 0 {
		return
	}
	m.disown(th)
	if st := m.mu.Unlock(); st != host.StatusOK {
		m.sys.fail(errors.HostFailure(errors.PhaseMonitor, m.name(), "unlock", st))
	}
}

// Wait releases the monitor and parks t until notified, interrupted or
// timed out. A zero timeout waits forever. The interrupted flag is left
// set. Returns whether t was interrupted.
func (m *Monitor) Wait(t hostsync.Thread, timeout time.Duration) bool {
	return m.wait(t, timeout, false)
}

// WaitAndClearInterrupted is Wait, except that an observed interrupt is
// consumed.
func (m *Monitor) WaitAndClearInterrupted(t hostsync.Thread, timeout time.Duration) bool {
	return m.wait(t, timeout, true)
}

func (m *Monitor) wait(t hostsync.Thread, timeout time.Duration, clear bool) bool {
	th := m.checkOwner(t, "wait")

	th.waiting.Store(true)
	th.mu.Lock()
	if th.notified {
		th.mu.Unlock()
		m.sys.fail(errors.ContractViolation(errors.PhaseMonitor, m.name(),
			fmt.Sprintf("%s entered wait already notified", th.name())))
	}

	interrupted := th.takeInterrupted(clear)
	m.enqueue(th)

	depth := m.depth.Swap(0)
	m.disown(th)
	if st := m.mu.Unlock(); st != host.StatusOK {
		th.mu.Unlock()
		m.sys.fail(errors.HostFailure(errors.PhaseMonitor, m.name(), "unlock", st))
	}

	if !interrupted {
		switch st := th.cond.TimedWait(th.mu, timeout); st {
		case host.StatusOK, host.StatusTimeout, host.StatusInterrupted:
		default:
			th.mu.Unlock()
			m.sys.fail(errors.HostFailure(errors.PhaseMonitor, m.name(), "timed wait", st))
		}
		if th.takeInterrupted(clear) {
			interrupted = true
		}
	}
	notified := th.notified
	th.mu.Unlock()

	m.mu.Lock()

	th.mu.Lock()
	th.notified = false
	th.mu.Unlock()

	if !notified {
		m.dequeue(th)
	} else if m.sys.opts.CheckQueues && m.queued(th) {
		m.sys.fail(errors.ContractViolation(errors.PhaseMonitor, m.name(),
			fmt.Sprintf("%s still queued after notify", th.name())))
	}

	m.own(th, depth)
	th.waiting.Store(false)
	return interrupted
}

// Notify wakes the longest-waiting thread, if any.
func (m *Monitor) Notify(t hostsync.Thread) {
	m.checkOwner(t, "notify")
	if len(m.queue) == 0 {
		return
	}

	w := m.queue[0]
	m.queue[0] = nil
	m.queue = m.queue[1:]
	m.waiters.Store(int32(len(m.queue)))
	m.wake(w)
}

// NotifyAll wakes every queued thread in queue order.
func (m *Monitor) NotifyAll(t hostsync.Thread) {
	m.checkOwner(t, "notify all")
	for _, w := range m.queue {
		m.wake(w)
	}
	m.queue = nil
	m.waiters.Store(0)
}

// Owner returns the owning thread, or nil when unowned.
func (m *Monitor) Owner() hostsync.Thread {
	if o := m.owner.Load(); o != nil {
		return o
	}
	return nil
}

// Depth returns the owner's recursion count.
func (m *Monitor) Depth() uint32 {
	return m.depth.Load()
}

// Waiters returns the number of queued threads.
func (m *Monitor) Waiters() int {
	return int(m.waiters.Load())
}

// Dispose destroys an unowned monitor.
func (m *Monitor) Dispose() {
	if o := m.owner.Load(); o != nil {
		m.sys.fail(errors.ContractViolation(errors.PhaseMonitor, m.name(),
			fmt.Sprintf("disposed while owned by %s", o.name())))
	}
	if !m.disposed.CompareAndSwap(false, true) {
		m.sys.fail(errors.ContractViolation(errors.PhaseMonitor, m.name(), "disposed twice"))
	}
	if st := m.mu.Destroy(); st != host.StatusOK {
		m.sys.fail(errors.HostFailure(errors.PhaseMonitor, m.name(), "destroy", st))
	}
	m.sys.unregister(resource.TypeMonitor, m.handle)
}

func (m *Monitor) checkOwner(t hostsync.Thread, op string) *Thread {
	th := m.sys.thread(errors.PhaseMonitor, m.name(), t)
	if m.owner.Load() != th {
		m.sys.fail(errors.ContractViolation(errors.PhaseMonitor, m.name(),
			fmt.Sprintf("%s by non-owner %s", op, th.name())))
	}
	return th
}

func (m *Monitor) own(th *Thread, depth uint32) {
	m.owner.Store(th)
	m.depth.Store(depth)
	th.held.Add(1)
}

func (m *Monitor) disown(th *Thread) {
	m.owner.Store(nil)
	th.held.Add(-1)
}

// wake marks w notified and signals it. Caller owns the monitor.
func (m *Monitor) wake(w *Thread) {
	w.mu.Lock()
	w.notified = true
	st := w.cond.Signal()
	w.mu.Unlock()

	if st != host.StatusOK {
		m.sys.fail(errors.HostFailure(errors.PhaseMonitor, m.name(), "cond signal", st))
	}
}

func (m *Monitor) enqueue(th *Thread) {
	if m.sys.opts.CheckQueues && m.queued(th) {
		m.sys.fail(errors.ContractViolation(errors.PhaseMonitor, m.name(),
			fmt.Sprintf("%s queued twice", th.name())))
	}
	m.queue = append(m.queue, th)
	m.waiters.Store(int32(len(m.queue)))
}

func (m *Monitor) dequeue(th *Thread) {
	for i, w := range m.queue {
		if w == th {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
	m.waiters.Store(int32(len(m.queue)))
}

func (m *Monitor) queued(th *Thread) bool {
	for _, w := range m.queue {
		if w == th {
			return true
		}
	}
	return false
}

func (m *Monitor) name() string {
	return objectName(resource.TypeMonitor, m.handle)
}
