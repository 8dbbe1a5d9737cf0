package system

import (
	"sync"
	"testing"
	"time"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
)

func newMonitor(t *testing.T, s *System) *Monitor {
	t.Helper()
	m, err := s.NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}
	return m.(*Monitor)
}

func TestMonitor_Reentrant(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	th := attach(t, s)

	for i := 0; i < 3; i++ {
		m.Acquire(th)
	}
	if m.Owner() != th || m.Depth() != 3 {
		t.Fatalf("owner=%v depth=%d, want self and 3", m.Owner(), m.Depth())
	}

	m.Release(th)
	m.Release(th)
	if m.Owner() != th || m.Depth() != 1 {
		t.Fatalf("after two releases depth=%d, want 1", m.Depth())
	}

	m.Release(th)
	if m.Owner() != nil {
		t.Fatal("monitor should be unowned after the last release")
	}

	m.Dispose()
	th.Dispose()
}

func TestMonitor_TryAcquire(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	a := attach(t, s)
	b := attach(t, s)

	if !m.TryAcquire(a) {
		t.Fatal("TryAcquire on a free monitor should succeed")
	}
	if !m.TryAcquire(a) {
		t.Fatal("TryAcquire by the owner should succeed")
	}
	if m.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", m.Depth())
	}
	if m.TryAcquire(b) {
		t.Fatal("TryAcquire by another thread should fail while owned")
	}

	m.Release(a)
	m.Release(a)
	if !m.TryAcquire(b) {
		t.Fatal("TryAcquire should succeed once released")
	}
	m.Release(b)
}

func TestMonitor_AcquireBlocks(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	main := attach(t, s)

	m.Acquire(main)

	acquired := make(chan struct{})
	w := start(t, s, func(self hostsync.Thread) {
		m.Acquire(self)
		close(acquired)
		m.Release(self)
	})

	select {
	case <-acquired:
		t.Fatal("second thread acquired an owned monitor")
	case <-time.After(20 * time.Millisecond):
	}

	m.Release(main)
	w.Join()
	select {
	case <-acquired:
	default:
		t.Fatal("second thread never acquired the monitor")
	}
}

func TestMonitor_NonOwnerFatal(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	a := attach(t, s)
	b := attach(t, s)

	expectFatal(t, errors.KindContractViolation, func() { m.Release(a) })
	expectFatal(t, errors.KindContractViolation, func() { m.Wait(a, time.Millisecond) })
	expectFatal(t, errors.KindContractViolation, func() { m.Notify(a) })
	expectFatal(t, errors.KindContractViolation, func() { m.NotifyAll(a) })

	m.Acquire(a)
	err := expectFatal(t, errors.KindContractViolation, func() { m.Release(b) })
	if err.Phase != errors.PhaseMonitor {
		t.Fatalf("phase = %s, want monitor", err.Phase)
	}
	m.Release(a)
}

func TestMonitor_ForeignThreadFatal(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	other := newTestSystem(t, Options{})
	defer other.Dispose()

	m := newMonitor(t, s)
	foreign := attach(t, other)

	expectFatal(t, errors.KindContractViolation, func() { m.Acquire(foreign) })
	expectFatal(t, errors.KindContractViolation, func() { m.Acquire(nil) })
}

func TestMonitor_DisposeOwnedFatal(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	th := attach(t, s)

	m.Acquire(th)
	expectFatal(t, errors.KindContractViolation, m.Dispose)
	m.Release(th)
	m.Dispose()
	expectFatal(t, errors.KindContractViolation, m.Dispose)
}

func TestMonitor_TimedWait(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	th := attach(t, s)

	m.Acquire(th)
	m.Acquire(th)

	begin := time.Now()
	if m.Wait(th, 30*time.Millisecond) {
		t.Fatal("timed wait without interrupt reported interrupted")
	}
	if elapsed := time.Since(begin); elapsed < 25*time.Millisecond {
		t.Fatalf("wait returned after %v, want about 30ms", elapsed)
	}

	if m.Owner() != th || m.Depth() != 2 {
		t.Fatalf("owner=%v depth=%d after wait, want self and 2", m.Owner(), m.Depth())
	}
	if m.Waiters() != 0 {
		t.Fatalf("queue length %d after timeout, want 0", m.Waiters())
	}

	m.Release(th)
	m.Release(th)
}

func TestMonitor_WaitReleasesOwnership(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	main := attach(t, s)

	waiter := start(t, s, func(self hostsync.Thread) {
		m.Acquire(self)
		m.Acquire(self)
		m.Wait(self, 0)
		if m.Depth() != 2 {
			panic("depth not restored")
		}
		m.Release(self)
		m.Release(self)
	})

	waitFor(t, "waiter to queue", func() bool { return m.Waiters() == 1 })

	if !m.TryAcquire(main) {
		t.Fatal("monitor should be free while its owner waits")
	}
	if m.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", m.Depth())
	}
	m.Notify(main)
	m.Release(main)

	waiter.Join()
	waiter.Dispose()
}

func TestMonitor_NotifyFIFO(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	main := attach(t, s)

	var mu sync.Mutex
	var order []int
	var threads []hostsync.Thread

	for i := 0; i < 3; i++ {
		i := i
		threads = append(threads, start(t, s, func(self hostsync.Thread) {
			m.Acquire(self)
			m.Wait(self, 0)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			m.Release(self)
		}))
		waitFor(t, "waiter to queue", func() bool { return m.Waiters() == i+1 })
	}

	for i := 0; i < 3; i++ {
		m.Acquire(main)
		m.Notify(main)
		m.Release(main)
		waitFor(t, "notified waiter to finish", func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(order) == i+1
		})
	}

	for i, got := range order {
		if got != i {
			t.Fatalf("wake order = %v, want [0 1 2]", order)
		}
	}
	for _, th := range threads {
		th.Join()
		th.Dispose()
	}
}

func TestMonitor_NotifyEmptyQueue(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	th := attach(t, s)

	m.Acquire(th)
	m.Notify(th)
	m.NotifyAll(th)
	m.Release(th)
}

func TestMonitor_NotifyAll(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	main := attach(t, s)

	const n = 4
	var threads []hostsync.Thread
	for i := 0; i < n; i++ {
		threads = append(threads, start(t, s, func(self hostsync.Thread) {
			m.Acquire(self)
			m.Wait(self, 0)
			m.Release(self)
		}))
	}
	waitFor(t, "all waiters to queue", func() bool { return m.Waiters() == n })

	m.Acquire(main)
	m.NotifyAll(main)
	if m.Waiters() != 0 {
		t.Fatalf("queue length %d after NotifyAll, want 0", m.Waiters())
	}
	m.Release(main)

	for _, th := range threads {
		th.Join()
		th.Dispose()
	}
}

func TestMonitor_InterruptWakesWaiter(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)

	result := make(chan bool, 1)
	waiter := start(t, s, func(self hostsync.Thread) {
		m.Acquire(self)
		result <- m.Wait(self, 0)
		m.Release(self)
	})
	waitFor(t, "waiter to queue", func() bool { return m.Waiters() == 1 })

	waiter.Interrupt()
	waiter.Join()

	if !<-result {
		t.Fatal("Wait should report the interrupt")
	}
	if m.Waiters() != 0 {
		t.Fatal("interrupted waiter should leave the queue")
	}
	if !waiter.GetAndClearInterrupted() {
		t.Fatal("Wait should leave the interrupted flag set")
	}
	if waiter.GetAndClearInterrupted() {
		t.Fatal("GetAndClearInterrupted should clear the flag")
	}
	waiter.Dispose()
}

func TestMonitor_WaitAndClearInterrupted(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)

	result := make(chan bool, 1)
	waiter := start(t, s, func(self hostsync.Thread) {
		m.Acquire(self)
		result <- m.WaitAndClearInterrupted(self, 0)
		m.Release(self)
	})
	waitFor(t, "waiter to queue", func() bool { return m.Waiters() == 1 })

	waiter.Interrupt()
	waiter.Join()

	if !<-result {
		t.Fatal("WaitAndClearInterrupted should report the interrupt")
	}
	if waiter.GetAndClearInterrupted() {
		t.Fatal("interrupt flag should have been consumed")
	}
	waiter.Dispose()
}

func TestMonitor_PendingInterrupt(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	th := attach(t, s)

	th.Interrupt()
	m.Acquire(th)

	begin := time.Now()
	if !m.Wait(th, time.Hour) {
		t.Fatal("wait with a pending interrupt should report it")
	}
	if time.Since(begin) > time.Second {
		t.Fatal("wait with a pending interrupt should not block")
	}
	if m.Owner() != th {
		t.Fatal("owner not restored")
	}
	m.Release(th)
}

func TestMonitor_InterruptIsPerThread(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	main := attach(t, s)

	results := make(chan bool, 2)
	a := start(t, s, func(self hostsync.Thread) {
		m.Acquire(self)
		results <- m.Wait(self, 0)
		m.Release(self)
	})
	waitFor(t, "first waiter", func() bool { return m.Waiters() == 1 })
	b := start(t, s, func(self hostsync.Thread) {
		m.Acquire(self)
		results <- m.Wait(self, 0)
		m.Release(self)
	})
	waitFor(t, "second waiter", func() bool { return m.Waiters() == 2 })

	b.Interrupt()
	b.Join()
	if !<-results {
		t.Fatal("interrupted thread should report interrupt")
	}
	if m.Waiters() != 1 {
		t.Fatalf("queue length %d, want the uninterrupted waiter only", m.Waiters())
	}

	m.Acquire(main)
	m.Notify(main)
	m.Release(main)
	a.Join()
	if <-results {
		t.Fatal("notified thread should not report interrupt")
	}

	a.Dispose()
	b.Dispose()
}

func TestMonitor_NotifyAllSparesLaterWaiters(t *testing.T) {
	s := newTestSystem(t, Options{})
	defer s.Dispose()
	m := newMonitor(t, s)
	owner := attach(t, s)

	early := start(t, s, func(self hostsync.Thread) {
		m.Acquire(self)
		m.Wait(self, 0)
		m.Release(self)
	})
	waitFor(t, "early waiter to queue", func() bool { return m.Waiters() == 1 })

	m.Acquire(owner)
	m.NotifyAll(owner)
	m.Release(owner)
	early.Join()
	early.Dispose()

	const timeout = 50 * time.Millisecond
	elapsed := make(chan time.Duration, 1)
	late := start(t, s, func(self hostsync.Thread) {
		m.Acquire(self)
		begin := time.Now()
		if m.Wait(self, timeout) {
			panic("late waiter interrupted")
		}
		elapsed <- time.Since(begin)
		m.Release(self)
	})
	late.Join()
	late.Dispose()

	if got := <-elapsed; got < timeout-5*time.Millisecond {
		t.Fatalf("late waiter woke after %v, want the full %v timeout", got, timeout)
	}
}
