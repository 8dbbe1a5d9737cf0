package wasmhost

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/resource"
	"github.com/wippyai/hostsync/system"
)

// DefaultModuleName is the import module guests link against.
const DefaultModuleName = "hostsync"

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// FuncDef describes one host export.
type FuncDef struct {
	Name        string
	Handler     api.GoModuleFunc
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// Options configures Instantiate.
type Options struct {
	// ModuleName defaults to DefaultModuleName.
	ModuleName string
}

// Binder adapts one System to guest calls.
type Binder struct {
	sys *system.System
}

// NewBinder creates a binder over sys.
func NewBinder(sys *system.System) *Binder {
	return &Binder{sys: sys}
}

// Instantiate builds and instantiates the host module in rt.
func Instantiate(ctx context.Context, rt wazero.Runtime, sys *system.System, opts Options) (api.Module, error) {
	name := opts.ModuleName
	if name == "" {
		name = DefaultModuleName
	}

	b := NewBinder(sys)
	builder := rt.NewHostModuleBuilder(name)
	for _, f := range b.Funcs() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.Handler, f.ParamTypes, f.ResultTypes).
			Export(f.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBinding, errors.KindInvalidInput, err, "instantiate host module "+name)
	}
	Logger().Debug("host module instantiated", zap.String("module", name))
	return mod, nil
}

// Funcs returns every export in a stable order.
func (b *Binder) Funcs() []FuncDef {
	return []FuncDef{
		{"thread_attach", b.threadAttach, nil, []api.ValueType{i32}},
		{"thread_interrupt", b.threadInterrupt, []api.ValueType{i32}, nil},
		{"thread_interrupted", b.threadInterrupted, []api.ValueType{i32}, []api.ValueType{i32}},
		{"thread_dispose", b.threadDispose, []api.ValueType{i32}, nil},

		{"mutex_new", b.mutexNew, nil, []api.ValueType{i32}},
		{"mutex_lock", b.mutexLock, []api.ValueType{i32}, nil},
		{"mutex_unlock", b.mutexUnlock, []api.ValueType{i32}, nil},
		{"mutex_dispose", b.mutexDispose, []api.ValueType{i32}, nil},

		{"monitor_new", b.monitorNew, nil, []api.ValueType{i32}},
		{"monitor_enter", b.monitorEnter, []api.ValueType{i32, i32}, nil},
		{"monitor_try_enter", b.monitorTryEnter, []api.ValueType{i32, i32}, []api.ValueType{i32}},
		{"monitor_exit", b.monitorExit, []api.ValueType{i32, i32}, nil},
		{"monitor_wait", b.monitorWait, []api.ValueType{i32, i32, i64}, []api.ValueType{i32}},
		{"monitor_notify", b.monitorNotify, []api.ValueType{i32, i32}, nil},
		{"monitor_notify_all", b.monitorNotifyAll, []api.ValueType{i32, i32}, nil},
		{"monitor_dispose", b.monitorDispose, []api.ValueType{i32}, nil},

		{"clock_now", b.clockNow, nil, []api.ValueType{i64}},
	}
}

// guestThread runs on the calling goroutine; it has no work of its own.
type guestThread struct{}

func (guestThread) Run() {}

func (b *Binder) threadAttach(_ context.Context, _ api.Module, stack []uint64) {
	t, err := b.sys.Attach(guestThread{})
	if err != nil {
		panic(err)
	}
	stack[0] = api.EncodeU32(uint32(t.(*system.Thread).Handle()))
}

func (b *Binder) threadInterrupt(_ context.Context, _ api.Module, stack []uint64) {
	b.thread(stack[0]).Interrupt()
}

func (b *Binder) threadInterrupted(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = encodeBool(b.thread(stack[0]).GetAndClearInterrupted())
}

func (b *Binder) threadDispose(_ context.Context, _ api.Module, stack []uint64) {
	b.thread(stack[0]).Dispose()
}

func (b *Binder) mutexNew(_ context.Context, _ api.Module, stack []uint64) {
	m, err := b.sys.NewMutex()
	if err != nil {
		panic(err)
	}
	stack[0] = api.EncodeU32(uint32(m.(*system.Mutex).Handle()))
}

func (b *Binder) mutexLock(_ context.Context, _ api.Module, stack []uint64) {
	b.mutex(stack[0]).Acquire()
}

func (b *Binder) mutexUnlock(_ context.Context, _ api.Module, stack []uint64) {
	b.mutex(stack[0]).Release()
}

func (b *Binder) mutexDispose(_ context.Context, _ api.Module, stack []uint64) {
	b.mutex(stack[0]).Dispose()
}

func (b *Binder) monitorNew(_ context.Context, _ api.Module, stack []uint64) {
	m, err := b.sys.NewMonitor()
	if err != nil {
		panic(err)
	}
	stack[0] = api.EncodeU32(uint32(m.(*system.Monitor).Handle()))
}

func (b *Binder) monitorEnter(_ context.Context, _ api.Module, stack []uint64) {
	b.monitor(stack[0]).Acquire(b.thread(stack[1]))
}

func (b *Binder) monitorTryEnter(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = encodeBool(b.monitor(stack[0]).TryAcquire(b.thread(stack[1])))
}

func (b *Binder) monitorExit(_ context.Context, _ api.Module, stack []uint64) {
	b.monitor(stack[0]).Release(b.thread(stack[1]))
}

func (b *Binder) monitorWait(_ context.Context, _ api.Module, stack []uint64) {
	m, t := b.monitor(stack[0]), b.thread(stack[1])
	millis := int64(stack[2])
	if millis < 0 {
		panic(errors.InvalidInput(errors.PhaseBinding, "negative wait timeout"))
	}
	stack[0] = encodeBool(m.Wait(t, time.Duration(millis)*time.Millisecond))
}

func (b *Binder) monitorNotify(_ context.Context, _ api.Module, stack []uint64) {
	b.monitor(stack[0]).Notify(b.thread(stack[1]))
}

func (b *Binder) monitorNotifyAll(_ context.Context, _ api.Module, stack []uint64) {
	b.monitor(stack[0]).NotifyAll(b.thread(stack[1]))
}

func (b *Binder) monitorDispose(_ context.Context, _ api.Module, stack []uint64) {
	b.monitor(stack[0]).Dispose()
}

func (b *Binder) clockNow(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeI64(b.sys.Now())
}

func (b *Binder) thread(v uint64) hostsync.Thread {
	return lookup[hostsync.Thread](b, v, resource.TypeThread)
}

func (b *Binder) mutex(v uint64) hostsync.Mutex {
	return lookup[hostsync.Mutex](b, v, resource.TypeMutex)
}

func (b *Binder) monitor(v uint64) hostsync.Monitor {
	return lookup[hostsync.Monitor](b, v, resource.TypeMonitor)
}

// lookup resolves a guest handle, trapping the guest when it is stale or
// of the wrong type.
func lookup[T any](b *Binder, v uint64, typ resource.Type) T {
	h := resource.Handle(api.DecodeU32(v))
	obj, ok := b.sys.Lookup(h, typ)
	if !ok {
		Logger().Warn("guest passed unknown handle",
			zap.Stringer("type", typ),
			zap.Uint32("handle", uint32(h)))
		panic(errors.New(errors.PhaseBinding, errors.KindNotFound).
			Value(uint32(h)).
			Detail("no live %s with handle %d", typ, h).
			Build())
	}
	return obj.(T)
}

func encodeBool(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}
