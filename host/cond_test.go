package host

import (
	"sync"
	"testing"
	"time"
)

func TestCond_TimedWaitTimeout(t *testing.T) {
	h := NewLocal(LocalOptions{})
	m := h.NewMutex()
	c := h.NewCond()

	m.Lock()
	start := time.Now()
	st := c.TimedWait(m, 30*time.Millisecond)
	elapsed := time.Since(start)

	if st != StatusTimeout {
		t.Fatalf("TimedWait = %v, want timeout", st)
	}
	if elapsed < 30*time.Millisecond {
		t.Fatalf("TimedWait returned after %v, want >= 30ms", elapsed)
	}
	if m.TryLock() != StatusBusy {
		t.Fatal("mutex should be held again after TimedWait")
	}
	m.Unlock()
}

func TestCond_SignalWakesWaiter(t *testing.T) {
	h := NewLocal(LocalOptions{})
	m := h.NewMutex()
	c := h.NewCond().(*waitCond)

	result := make(chan Status, 1)
	go func() {
		m.Lock()
		result <- c.TimedWait(m, 0)
		m.Unlock()
	}()
	waitForWaiters(t, c, 1)

	m.Lock()
	c.Signal()
	m.Unlock()

	select {
	case got := <-result:
		if got != StatusOK {
			t.Fatalf("waiter status = %v, want ok", got)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by Signal")
	}
}

func TestCond_SignalFIFO(t *testing.T) {
	h := NewLocal(LocalOptions{})
	m := h.NewMutex()
	c := h.NewCond().(*waitCond)

	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			m.Lock()
			c.TimedWait(m, 0)
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			m.Unlock()
		}(i)
		waitForWaiters(t, c, i+1)
	}

	for i := 0; i < 3; i++ {
		m.Lock()
		c.Signal()
		m.Unlock()

		deadline := time.Now().Add(time.Second)
		for {
			mu.Lock()
			n := len(order)
			mu.Unlock()
			if n == i+1 {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("waiter %d did not wake", i)
			}
			time.Sleep(time.Millisecond)
		}
	}
	wg.Wait()

	for i, id := range order {
		if id != i {
			t.Fatalf("wake order = %v, want [0 1 2]", order)
		}
	}
}

func TestCond_Broadcast(t *testing.T) {
	h := NewLocal(LocalOptions{})
	m := h.NewMutex()
	c := h.NewCond().(*waitCond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			c.TimedWait(m, 0)
			m.Unlock()
		}()
	}
	waitForWaiters(t, c, 4)

	m.Lock()
	if st := c.Broadcast(); st != StatusOK {
		t.Fatalf("Broadcast = %v", st)
	}
	m.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast did not wake all waiters")
	}
}

func TestCond_SignalWithoutWaiters(t *testing.T) {
	h := NewLocal(LocalOptions{})
	m := h.NewMutex()
	c := h.NewCond()

	if st := c.Signal(); st != StatusOK {
		t.Fatalf("Signal = %v", st)
	}

	// The earlier signal must not be remembered.
	m.Lock()
	if st := c.TimedWait(m, 10*time.Millisecond); st != StatusTimeout {
		t.Fatalf("TimedWait after stale signal = %v, want timeout", st)
	}
	m.Unlock()
}

func TestCond_Destroy(t *testing.T) {
	c := NewLocal(LocalOptions{}).NewCond()
	if st := c.Destroy(); st != StatusOK {
		t.Fatalf("Destroy = %v", st)
	}
	if st := c.Signal(); st != StatusInvalid {
		t.Fatalf("Signal after Destroy = %v, want invalid", st)
	}
}

func TestCond_TimedWaitRequiresHeldMutex(t *testing.T) {
	h := NewLocal(LocalOptions{})
	m := h.NewMutex()
	c := h.NewCond().(*waitCond)

	if st := c.TimedWait(m, time.Millisecond); st != StatusInvalid {
		t.Fatalf("TimedWait with unheld mutex = %v, want invalid", st)
	}
	if len(c.waiters) != 0 {
		t.Fatal("failed TimedWait left a waiter behind")
	}
}

func waitForWaiters(t *testing.T, c *waitCond, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		got := len(c.waiters)
		c.mu.Unlock()
		if got == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d waiters", n)
}
