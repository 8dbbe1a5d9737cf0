// Package hostsync provides Java-style synchronization primitives for a
// managed language runtime running inside a constrained host.
//
// The host offers only a raw non-reentrant mutex, a raw condition variable,
// raw thread spawn/join, per-thread storage and a clock. On top of those,
// hostsync builds reentrant monitors with FIFO wait queues, interruptible
// and timed waits, single and broadcast notification, thread handles, and
// thread-local slots.
//
// # Architecture Overview
//
//	hostsync/           Capability interfaces (System, Monitor, Thread, ...)
//	├── system/         The constrained-host implementation of System
//	├── host/           Raw primitives and the goroutine-backed Local host
//	├── resource/       Handle table of live primitives
//	├── errors/         Structured error types
//	├── config/         YAML configuration
//	├── wasmhost/       Exposes a System to WebAssembly guests via wazero
//	├── scenario/       Named demonstration runs
//	└── cmd/hostsync/   CLI with a live registry view
//
// # Quick Start
//
//	sys, err := system.New(system.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sys.Dispose()
//
//	self, _ := sys.Attach(hostsync.RunnableFunc(func() {}))
//	mon, _ := sys.NewMonitor()
//
//	mon.Acquire(self)
//	mon.Acquire(self) // reentrant, depth 2
//	mon.Release(self)
//	mon.Release(self)
//
// # Error Tiers
//
// Contract violations (releasing a monitor you do not own, waiting without
// owning, disposing an owned monitor, joining an attached thread) and raw
// host failures are fatal: the System logs them and invokes its abort
// handler. Recoverable conditions such as thread spawn failure are returned
// as errors.
//
// # Lifetime
//
// Nothing is garbage collected implicitly. Every primitive is owned by the
// System that created it and must be disposed exactly once. Only one
// non-reentrant System may exist per process.
package hostsync
