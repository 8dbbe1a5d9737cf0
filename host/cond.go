package host

import (
	"sync"
	"time"
)

// waitCond hands each waiter its own channel so Signal wakes exactly one
// goroutine, oldest first.
type waitCond struct {
	waiters   []chan struct{}
	mu        sync.Mutex
	destroyed bool
}

func newWaitCond() *waitCond {
	return &waitCond{}
}

func (c *waitCond) Signal() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return StatusInvalid
	}
	if len(c.waiters) > 0 {
		w := c.waiters[0]
		c.waiters[0] = nil
		c.waiters = c.waiters[1:]
		close(w)
	}
	return StatusOK
}

func (c *waitCond) Broadcast() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return StatusInvalid
	}
	for _, w := range c.waiters {
		close(w)
	}
	c.waiters = nil
	return StatusOK
}

func (c *waitCond) TimedWait(m Mutex, timeout time.Duration) Status {
	w := make(chan struct{})

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return StatusInvalid
	}
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()

	if m.Unlock() != StatusOK {
		c.remove(w)
		return StatusInvalid
	}

	st := StatusOK
	if timeout <= 0 {
		<-w
	} else {
		timer := time.NewTimer(timeout)
		select {
		case <-w:
		case <-timer.C:
			st = StatusTimeout
		}
		timer.Stop()
	}

	// A signal that raced the timer already dequeued us; report it as a wake.
	if st == StatusTimeout && !c.remove(w) {
		st = StatusOK
	}

	m.Lock()
	return st
}

func (c *waitCond) Destroy() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return StatusInvalid
	}
	if len(c.waiters) > 0 {
		return StatusBusy
	}
	c.destroyed = true
	return StatusOK
}

func (c *waitCond) remove(w chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, x := range c.waiters {
		if x == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}
