package system

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/host"
	"github.com/wippyai/hostsync/resource"
)

// ThreadState is a coarse view of a thread for inspection.
type ThreadState uint8

const (
	ThreadRunning ThreadState = iota
	ThreadWaiting
	ThreadFinished
)

func (s ThreadState) String() string {
	switch s {
	case ThreadRunning:
		return "running"
	case ThreadWaiting:
		return "waiting"
	case ThreadFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Thread is the handle for one unit of execution.
//
// The private mutex guards interrupted and notified; the private condition
// variable is what the thread parks on while waiting in any monitor, which
// lets Interrupt and Notify wake exactly this thread.
type Thread struct {
	sys        *System
	runnable   hostsync.Runnable
	mu         host.Mutex
	cond       host.Cond
	hostThread host.Thread // nil for attached threads
	handle     resource.Handle
	id         uint64
	gid        atomic.Int64

	interrupted bool
	notified    bool

	held     atomic.Int32 // monitors entered and not yet fully released
	waiting  atomic.Bool
	finished atomic.Bool
	disposed atomic.Bool
}

var _ hostsync.Thread = (*Thread)(nil)

func (s *System) newThread(r hostsync.Runnable) (*Thread, error) {
	if r == nil {
		return nil, errors.InvalidInput(errors.PhaseThread, "nil runnable")
	}
	t := &Thread{
		sys:      s,
		runnable: r,
		mu:       s.host.NewMutex(),
		cond:     s.host.NewCond(),
		id:       s.nextID.Add(1),
	}
	h, err := s.register(errors.PhaseThread, resource.TypeThread, t)
	if err != nil {
		t.mu.Destroy()
		t.cond.Destroy()
		return nil, err
	}
	t.handle = h
	return t, nil
}

// Attach registers the calling goroutine as a thread without spawning
// anything. The returned thread cannot be joined.
func (s *System) Attach(r hostsync.Runnable) (hostsync.Thread, error) {
	t, err := s.newThread(r)
	if err != nil {
		return nil, err
	}
	gid := host.CurrentThreadID()
	t.gid.Store(gid)
	s.attach(gid)
	if a, ok := r.(hostsync.Attacher); ok {
		a.Attach(t)
	}
	return t, nil
}

// Start spawns a host thread running r. Host refusal (for example, no
// free thread slots) is returned as a KindSpawn error.
func (s *System) Start(r hostsync.Runnable) (hostsync.Thread, error) {
	t, err := s.newThread(r)
	if err != nil {
		return nil, err
	}
	if a, ok := r.(hostsync.Attacher); ok {
		a.Attach(t)
	}

	ht, err := s.host.Spawn(runThread, t)
	if err != nil {
		Logger().Warn("thread spawn failed", zap.Uint64("thread", t.id), zap.Error(err))
		t.mu.Destroy()
		t.cond.Destroy()
		t.disposed.Store(true)
		s.unregister(resource.TypeThread, t.handle)
		return nil, errors.SpawnFailed(err)
	}
	t.hostThread = ht
	return t, nil
}

func runThread(arg any) {
	t := arg.(*Thread)
	t.gid.Store(host.CurrentThreadID())
	defer t.finished.Store(true)
	t.runnable.Run()
}

// ID returns a process-unique thread number.
func (t *Thread) ID() uint64 {
	return t.id
}

// Handle returns the registry handle.
func (t *Thread) Handle() resource.Handle {
	return t.handle
}

// Runnable returns the work the thread was created for.
func (t *Thread) Runnable() hostsync.Runnable {
	return t.runnable
}

// Interrupt sets the interrupted flag and wakes the thread if it is
// parked in a monitor wait.
func (t *Thread) Interrupt() {
	t.mu.Lock()
	t.interrupted = true
	st := t.cond.Signal()
	t.mu.Unlock()

	if st != host.StatusOK {
		t.sys.fail(errors.HostFailure(errors.PhaseThread, t.name(), "cond signal", st))
	}
}

// GetAndClearInterrupted reads and clears the interrupted flag.
func (t *Thread) GetAndClearInterrupted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	interrupted := t.interrupted
	t.interrupted = false
	return interrupted
}

// Interrupted reads the interrupted flag without clearing it.
func (t *Thread) Interrupted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interrupted
}

// Join blocks until the spawned host thread finishes. Joining an attached
// thread is a contract violation.
func (t *Thread) Join() {
	if t.hostThread == nil {
		t.sys.fail(errors.ContractViolation(errors.PhaseThread, t.name(), "join of a thread that was not started"))
	}
	if st := t.hostThread.Join(); st != host.StatusOK {
		t.sys.fail(errors.HostFailure(errors.PhaseThread, t.name(), "join", st))
	}
}

// State reports whether the thread is running, parked in a wait, or done.
func (t *Thread) State() ThreadState {
	if t.waiting.Load() {
		return ThreadWaiting
	}
	if t.finished.Load() {
		return ThreadFinished
	}
	return ThreadRunning
}

// Dispose releases the thread's private primitives and any owned host
// thread. The thread must not own a monitor or be waiting in one.
func (t *Thread) Dispose() {
	if t.held.Load() > 0 {
		t.sys.fail(errors.ContractViolation(errors.PhaseThread, t.name(),
			fmt.Sprintf("disposed while owning %d monitor(s)", t.held.Load())))
	}
	if t.waiting.Load() {
		t.sys.fail(errors.ContractViolation(errors.PhaseThread, t.name(), "disposed while waiting"))
	}
	if !t.disposed.CompareAndSwap(false, true) {
		t.sys.fail(errors.ContractViolation(errors.PhaseThread, t.name(), "disposed twice"))
	}

	if st := t.mu.Destroy(); st != host.StatusOK {
		t.sys.fail(errors.HostFailure(errors.PhaseThread, t.name(), "mutex destroy", st))
	}
	if st := t.cond.Destroy(); st != host.StatusOK {
		t.sys.fail(errors.HostFailure(errors.PhaseThread, t.name(), "cond destroy", st))
	}

	if t.hostThread != nil {
		t.hostThread.Destroy()
	} else if gid := t.gid.Load(); t.sys.detach(gid) {
		// Attached threads never exit through the host. Their goroutine's
		// storage goes with the last of them.
		t.sys.host.Storage().Forget(gid)
	}

	t.sys.unregister(resource.TypeThread, t.handle)
}

// takeInterrupted reads the interrupted flag, clearing it when asked.
// Caller holds t.mu.
func (t *Thread) takeInterrupted(clear bool) bool {
	interrupted := t.interrupted
	if interrupted && clear {
		t.interrupted = false
	}
	return interrupted
}

func (t *Thread) name() string {
	return objectName(resource.TypeThread, t.handle)
}
