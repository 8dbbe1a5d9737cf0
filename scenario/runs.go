package scenario

import (
	"context"
	"sync"
	"time"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/system"
)

func init() {
	register(Scenario{
		Name:        "reentrant",
		Description: "enter one monitor three times and leave it again",
		Run:         runReentrant,
	})
	register(Scenario{
		Name:        "timed-wait",
		Description: "wait on a monitor nobody notifies until the timeout",
		Run:         runTimedWait,
	})
	register(Scenario{
		Name:        "broadcast",
		Description: "park several threads and wake them with notify-all",
		Run:         runBroadcast,
	})
	register(Scenario{
		Name:        "interrupt",
		Description: "interrupt a thread blocked in an untimed wait",
		Run:         runInterrupt,
	})
	register(Scenario{
		Name:        "producer-consumer",
		Description: "pass items through a bounded buffer guarded by a monitor",
		Run:         runProducerConsumer,
	})
}

func newMonitor(sys *system.System) (*system.Monitor, error) {
	m, err := sys.NewMonitor()
	if err != nil {
		return nil, err
	}
	return m.(*system.Monitor), nil
}

func runReentrant(_ context.Context, sys *system.System, report Reporter) error {
	self, err := sys.Attach(hostsync.RunnableFunc(func() {}))
	if err != nil {
		return err
	}
	defer self.Dispose()

	m, err := newMonitor(sys)
	if err != nil {
		return err
	}
	defer m.Dispose()

	for i := 1; i <= 3; i++ {
		m.Acquire(self)
		reportf(report, "acquire %d: depth %d", i, m.Depth())
	}
	for i := 3; i >= 1; i-- {
		m.Release(self)
		reportf(report, "release: depth %d", m.Depth())
	}
	if m.Owner() != nil {
		return failf("monitor still owned after balanced releases")
	}
	return nil
}

func runTimedWait(_ context.Context, sys *system.System, report Reporter) error {
	self, err := sys.Attach(hostsync.RunnableFunc(func() {}))
	if err != nil {
		return err
	}
	defer self.Dispose()

	m, err := newMonitor(sys)
	if err != nil {
		return err
	}
	defer m.Dispose()

	const timeout = 50 * time.Millisecond
	m.Acquire(self)
	begin := time.Now()
	interrupted := m.Wait(self, timeout)
	elapsed := time.Since(begin)
	m.Release(self)

	reportf(report, "waited %s (timeout %s), interrupted=%v", elapsed.Round(time.Millisecond), timeout, interrupted)
	if interrupted {
		return failf("timed wait reported an interrupt")
	}
	if elapsed < timeout/2 {
		return failf("timed wait returned after %s", elapsed)
	}
	return nil
}

func runBroadcast(ctx context.Context, sys *system.System, report Reporter) error {
	const n = 4

	self, err := sys.Attach(hostsync.RunnableFunc(func() {}))
	if err != nil {
		return err
	}
	defer self.Dispose()

	m, err := newMonitor(sys)
	if err != nil {
		return err
	}
	defer m.Dispose()

	var woke sync.WaitGroup
	threads := make([]hostsync.Thread, 0, n)
	for i := 0; i < n; i++ {
		woke.Add(1)
		t, err := spawn(sys, func(me hostsync.Thread) {
			m.Acquire(me)
			m.Wait(me, 0)
			m.Release(me)
			woke.Done()
		})
		if err != nil {
			return err
		}
		threads = append(threads, t)
	}

	if err := waitQueued(ctx, m, n); err != nil {
		return err
	}
	reportf(report, "%d threads waiting", m.Waiters())

	m.Acquire(self)
	m.NotifyAll(self)
	m.Release(self)

	woke.Wait()
	joinAll(threads)
	reportf(report, "all %d threads woke", n)
	return nil
}

func runInterrupt(ctx context.Context, sys *system.System, report Reporter) error {
	m, err := newMonitor(sys)
	if err != nil {
		return err
	}
	defer m.Dispose()

	result := make(chan bool, 1)
	t, err := spawn(sys, func(me hostsync.Thread) {
		m.Acquire(me)
		result <- m.Wait(me, 0)
		m.Release(me)
	})
	if err != nil {
		return err
	}

	if err := waitQueued(ctx, m, 1); err != nil {
		return err
	}
	reportf(report, "thread %d waiting, interrupting", t.ID())
	t.Interrupt()
	t.Join()

	interrupted := <-result
	flag := t.GetAndClearInterrupted()
	t.Dispose()

	reportf(report, "wait returned interrupted=%v, flag=%v", interrupted, flag)
	if !interrupted || !flag {
		return failf("interrupt not observed (wait=%v flag=%v)", interrupted, flag)
	}
	return nil
}

func runProducerConsumer(_ context.Context, sys *system.System, report Reporter) error {
	const (
		items    = 20
		capacity = 2
	)

	m, err := newMonitor(sys)
	if err != nil {
		return err
	}
	defer m.Dispose()

	var buf []int
	got := make([]int, 0, items)

	producer, err := spawn(sys, func(me hostsync.Thread) {
		for i := 0; i < items; i++ {
			m.Acquire(me)
			for len(buf) == capacity {
				m.Wait(me, 0)
			}
			buf = append(buf, i)
			m.NotifyAll(me)
			m.Release(me)
		}
	})
	if err != nil {
		return err
	}

	consumer, err := spawn(sys, func(me hostsync.Thread) {
		for len(got) < items {
			m.Acquire(me)
			for len(buf) == 0 {
				m.Wait(me, 0)
			}
			got = append(got, buf[0])
			buf = buf[1:]
			m.NotifyAll(me)
			m.Release(me)
		}
	})
	if err != nil {
		producer.Join()
		producer.Dispose()
		return err
	}

	joinAll([]hostsync.Thread{producer, consumer})
	reportf(report, "consumed %d items", len(got))

	for i, v := range got {
		if v != i {
			return failf("item %d out of order: %d", i, v)
		}
	}
	if len(got) != items {
		return failf("consumed %d items, want %d", len(got), items)
	}
	return nil
}
