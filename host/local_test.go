package host

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocal_SpawnJoin(t *testing.T) {
	h := NewLocal(LocalOptions{})

	var ran bool
	th, err := h.Spawn(func(arg any) {
		ran = arg.(string) == "payload"
	}, "payload")
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	if st := th.Join(); st != StatusOK {
		t.Fatalf("Join = %v", st)
	}
	if !ran {
		t.Fatal("entry did not run with its argument")
	}
	if !th.Done() {
		t.Fatal("Done should be true after Join")
	}
	if h.Live() != 0 {
		t.Fatalf("Live = %d after join, want 0", h.Live())
	}
}

func TestLocal_JoinFinishedThread(t *testing.T) {
	h := NewLocal(LocalOptions{})
	th, err := h.Spawn(func(any) {}, nil)
	if err != nil {
		t.Fatal(err)
	}
	th.Join()

	done := make(chan struct{})
	go func() {
		th.Join()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Join blocked")
	}
}

func TestLocal_ThreadLimit(t *testing.T) {
	h := NewLocal(LocalOptions{MaxThreads: 2})
	release := make(chan struct{})

	var threads []Thread
	for i := 0; i < 2; i++ {
		th, err := h.Spawn(func(any) { <-release }, nil)
		if err != nil {
			t.Fatalf("Spawn %d failed: %v", i, err)
		}
		threads = append(threads, th)
	}

	_, err := h.Spawn(func(any) {}, nil)
	if !errors.Is(err, ErrThreadLimit) {
		t.Fatalf("Spawn over limit = %v, want ErrThreadLimit", err)
	}

	close(release)
	for _, th := range threads {
		th.Join()
	}

	th, err := h.Spawn(func(any) {}, nil)
	if err != nil {
		t.Fatalf("Spawn after threads finished failed: %v", err)
	}
	th.Join()
}

func TestLocal_JoinDestroyed(t *testing.T) {
	h := NewLocal(LocalOptions{})
	th, _ := h.Spawn(func(any) {}, nil)
	th.Join()
	th.Destroy()
	if st := th.Join(); st != StatusInvalid {
		t.Fatalf("Join after Destroy = %v, want invalid", st)
	}
}

func TestStorage_PerGoroutine(t *testing.T) {
	h := NewLocal(LocalOptions{})
	s := h.Storage()
	key := s.NewKey()

	s.Set(key, "main")

	var other any
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		other = s.Get(key)
		s.Set(key, "other")
	}()
	wg.Wait()

	if other != nil {
		t.Fatalf("new goroutine saw %v, want nil", other)
	}
	if got := s.Get(key); got != "main" {
		t.Fatalf("Get = %v, want main", got)
	}
}

func TestStorage_ReclaimedOnThreadExit(t *testing.T) {
	h := NewLocal(LocalOptions{})
	s := h.Storage()
	key := s.NewKey()

	th, _ := h.Spawn(func(any) {
		s.Set(key, 42)
	}, nil)
	th.Join()

	if n := h.storage.threads(); n != 0 {
		t.Fatalf("storage holds %d goroutines after exit, want 0", n)
	}
}

func TestStorage_DeleteKeyAndForget(t *testing.T) {
	h := NewLocal(LocalOptions{})
	s := h.Storage()
	a, b := s.NewKey(), s.NewKey()
	if a == b {
		t.Fatal("NewKey returned duplicate keys")
	}

	s.Set(a, 1)
	s.Set(b, 2)
	s.DeleteKey(a)
	if s.Get(a) != nil {
		t.Fatal("DeleteKey left a value")
	}
	if s.Get(b) != 2 {
		t.Fatal("DeleteKey removed an unrelated key")
	}

	s.Forget(CurrentThreadID())
	if s.Get(b) != nil {
		t.Fatal("Forget left a value")
	}

	s.Set(b, 3)
	s.Set(b, nil)
	if h.storage.threads() != 0 {
		t.Fatal("setting nil should release the goroutine's slots")
	}
}

func TestParseGID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"goroutine 123 [running]:\n", 123},
		{"goroutine 1 [", 1},
		{"goroutin", 0},
		{"thread 5", 0},
	}
	for _, c := range cases {
		if got := parseGID([]byte(c.in)); got != c.want {
			t.Errorf("parseGID(%q) = %d, want %d", c.in, got, c.want)
		}
	}

	if CurrentThreadID() <= 0 {
		t.Fatal("CurrentThreadID should be positive")
	}
}

func TestClocks(t *testing.T) {
	if ConstantClock(0).Now() != 0 {
		t.Error("ConstantClock(0) should report 0")
	}
	if ConstantClock(77).Now() != 77 {
		t.Error("ConstantClock(77) should report 77")
	}

	before := time.Now().UnixMilli()
	now := WallClock{}.Now()
	if now < before {
		t.Errorf("WallClock %d before %d", now, before)
	}

	mc := NewMonotonicClock()
	time.Sleep(5 * time.Millisecond)
	if mc.Now() < 5 {
		t.Errorf("MonotonicClock = %d, want >= 5", mc.Now())
	}

	if _, ok := NewLocal(LocalOptions{}).Clock().(WallClock); !ok {
		t.Error("default clock should be WallClock")
	}
}
