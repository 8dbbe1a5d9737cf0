package system

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/host"
	"github.com/wippyai/hostsync/resource"
)

var active atomic.Pointer[System]

// System is the constrained-host implementation of hostsync.System.
// It creates every primitive, records it in its registry and owns it
// until it is disposed. Safe for concurrent use.
type System struct {
	host     host.Host
	registry *resource.Table
	signals  *SignalRegistrar
	opts     Options
	nextID   atomic.Uint64
	heapUsed atomic.Int64
	disposed atomic.Bool

	attachMu sync.Mutex
	attached map[int64]int // live attached threads per goroutine
}

var _ hostsync.System = (*System)(nil)

// New creates a System. Unless opts.Reentrant is set, only one System may
// be live per process; a second one fails with KindUnsupported.
func New(opts Options) (*System, error) {
	if opts.Host == nil {
		opts.Host = host.NewLocal(host.LocalOptions{})
	}
	if opts.Abort == nil {
		opts.Abort = ExitOnAbort
	}

	s := &System{
		host:     opts.Host,
		registry: resource.NewTable(),
		opts:     opts,
		attached: make(map[int64]int),
	}
	s.signals = &SignalRegistrar{}

	if !opts.Reentrant && !active.CompareAndSwap(nil, s) {
		return nil, errors.Unsupported(errors.PhaseSystem, "a non-reentrant system is already active")
	}

	Logger().Debug("system created",
		zap.Bool("reentrant", opts.Reentrant),
		zap.Int64("heap_limit", opts.HeapLimit))
	return s, nil
}

// Active returns the live non-reentrant System, or nil.
func Active() *System {
	return active.Load()
}

// Host returns the raw primitive backend.
func (s *System) Host() host.Host {
	return s.host
}

// Dispose releases the System. Primitives still registered are reported
// as leaks; they are not disposed on the caller's behalf.
func (s *System) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		s.fail(errors.ContractViolation(errors.PhaseSystem, "system", "disposed twice"))
	}

	for _, e := range s.registry.Entries() {
		Logger().Warn("primitive leaked at system dispose",
			zap.Stringer("type", e.Type),
			zap.Uint32("handle", uint32(e.Handle)))
	}
	_ = s.registry.Close()

	if !s.opts.Reentrant {
		active.CompareAndSwap(s, nil)
	}
	Logger().Debug("system disposed")
}

// Subscribe adds an observer of primitive creation and disposal.
func (s *System) Subscribe(o resource.Observer) {
	s.registry.Subscribe(o)
}

// Unsubscribe removes an observer.
func (s *System) Unsubscribe(o resource.Observer) {
	s.registry.Unsubscribe(o)
}

// Lookup resolves a registry handle to a live primitive of the given type.
func (s *System) Lookup(h resource.Handle, typ resource.Type) (any, bool) {
	return s.registry.GetTyped(h, typ)
}

// Live returns the number of live primitives per type.
func (s *System) Live() map[resource.Type]int {
	return s.registry.Counts()
}

// Entries returns every live primitive in handle order.
func (s *System) Entries() []resource.Entry {
	return s.registry.Entries()
}

// Now returns the host clock in milliseconds. Degraded hosts may report a constant.
func (s *System) Now() int64 {
	return s.host.Clock().Now()
}

// Yield gives other threads a chance to run.
func (s *System) Yield() {
	runtime.Gosched()
}

// Exit is not available inside the enclave; it aborts.
func (s *System) Exit(code int) {
	s.fail(errors.New(errors.PhaseSystem, errors.KindAbort).
		Detail("exit(%d)", code).
		Value(code).
		Build())
}

// Abort terminates the process through the abort handler.
func (s *System) Abort() {
	s.fail(errors.New(errors.PhaseSystem, errors.KindAbort).Detail("abort!").Build())
}

// fail logs a fatal error and hands it to the abort handler. It never returns.
func (s *System) fail(err *errors.Error) {
	Logger().Error("fatal", zap.Error(err))
	s.opts.Abort(err)
	panic(err)
}

func (s *System) register(phase errors.Phase, typ resource.Type, value any) (resource.Handle, error) {
	if s.disposed.Load() {
		return 0, errors.Closed(phase, "system")
	}
	h := s.registry.Insert(typ, value)
	if h == 0 {
		return 0, errors.Closed(phase, "system")
	}
	Logger().Debug("primitive created",
		zap.Stringer("type", typ),
		zap.Uint32("handle", uint32(h)))
	return h, nil
}

func (s *System) unregister(typ resource.Type, h resource.Handle) {
	if _, ok := s.registry.Remove(h); ok {
		Logger().Debug("primitive disposed",
			zap.Stringer("type", typ),
			zap.Uint32("handle", uint32(h)))
	}
}

// thread converts a caller-supplied thread into one of ours, aborting on
// nil or foreign threads.
func (s *System) thread(phase errors.Phase, object string, t hostsync.Thread) *Thread {
	th, ok := t.(*Thread)
	if !ok || th == nil || th.sys != s {
		s.fail(errors.ContractViolation(phase, object, fmt.Sprintf("foreign or nil thread %T", t)))
	}
	return th
}

// attach counts another attached thread on goroutine gid.
func (s *System) attach(gid int64) {
	s.attachMu.Lock()
	s.attached[gid]++
	s.attachMu.Unlock()
}

// detach drops one attached thread on goroutine gid and reports whether it
// was the last one.
func (s *System) detach(gid int64) bool {
	s.attachMu.Lock()
	defer s.attachMu.Unlock()

	n := s.attached[gid] - 1
	if n > 0 {
		s.attached[gid] = n
		return false
	}
	delete(s.attached, gid)
	return true
}

func objectName(typ resource.Type, h resource.Handle) string {
	return fmt.Sprintf("%s#%d", typ, h)
}
