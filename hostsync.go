package hostsync

import "time"

// Runnable is the unit of work a Thread executes.
type Runnable interface {
	Run()
}

// RunnableFunc adapts a function to Runnable.
type RunnableFunc func()

func (f RunnableFunc) Run() { f() }

// Attacher is optionally implemented by a Runnable that wants to learn the
// Thread it has been bound to before it runs.
type Attacher interface {
	Attach(Thread)
}

// Thread is one schedulable unit of execution.
type Thread interface {
	ID() uint64
	Interrupt()
	GetAndClearInterrupted() bool
	Join()
	Dispose()
}

// Mutex is a plain, non-reentrant lock.
type Mutex interface {
	Acquire()
	Release()
	Dispose()
}

// Monitor is a reentrant lock with a FIFO wait queue.
type Monitor interface {
	TryAcquire(Thread) bool
	Acquire(Thread)
	Release(Thread)

	// Wait parks the owner until notified, interrupted or timed out.
	// A zero timeout waits forever. Reports whether the thread was interrupted.
	Wait(t Thread, timeout time.Duration) bool

	// WaitAndClearInterrupted is Wait that also clears the interrupted flag.
	WaitAndClearInterrupted(t Thread, timeout time.Duration) bool

	Notify(Thread)
	NotifyAll(Thread)
	Owner() Thread
	Dispose()
}

// Local is a single per-thread storage slot.
type Local interface {
	Get() any
	Set(any)
	Dispose()
}

// Library resolves symbols and embedded resources by name.
type Library interface {
	Resolve(name string) (any, bool)
	Name() string
	Next() Library
	SetNext(Library)
	DisposeAll()
}

// Region is a mapped file.
type Region interface {
	Start() []byte
	Length() int
	Dispose()
}

// Directory enumerates directory entries.
type Directory interface {
	Next() (string, bool)
	Dispose()
}

// ThreadVisitor inspects another thread's state.
type ThreadVisitor interface {
	Visit(ip, stack, link uintptr)
}

// SignalHandler receives a registered process signal.
type SignalHandler interface {
	HandleSignal(signal int) bool
}

// FileType classifies a path reported by Stat.
type FileType uint8

const (
	TypeUnknown FileType = iota
	TypeDoesNotExist
	TypeFile
	TypeDirectory
)

// System creates and owns the primitives above.
type System interface {
	NewMutex() (Mutex, error)
	NewMonitor() (Monitor, error)
	NewLocal() (Local, error)
	Attach(Runnable) (Thread, error)
	Start(Runnable) (Thread, error)

	Stat(name string) (FileType, int64)
	Map(name string) (Region, error)
	OpenDirectory(name string) (Directory, error)
	Load(name string) (Library, error)
	Now() int64
	Yield()

	Abort()
	Dispose()
}
