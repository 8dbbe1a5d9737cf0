package system

import (
	"sync/atomic"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/host"
	"github.com/wippyai/hostsync/resource"
)

// Mutex is a thin wrapper over one host mutex. It has no owner or depth:
// acquiring it twice from the same thread deadlocks.
type Mutex struct {
	sys      *System
	mu       host.Mutex
	handle   resource.Handle
	disposed atomic.Bool
}

var _ hostsync.Mutex = (*Mutex)(nil)

// NewMutex creates a plain mutex.
func (s *System) NewMutex() (hostsync.Mutex, error) {
	m := &Mutex{sys: s, mu: s.host.NewMutex()}
	h, err := s.register(errors.PhaseMutex, resource.TypeMutex, m)
	if err != nil {
		return nil, err
	}
	m.handle = h
	return m, nil
}

// Handle returns the registry handle.
func (m *Mutex) Handle() resource.Handle {
	return m.handle
}

// Acquire blocks until the mutex is held.
func (m *Mutex) Acquire() {
	m.mu.Lock()
}

// Release unlocks the mutex. Releasing an unheld mutex is fatal.
func (m *Mutex) Release() {
	if st := m.mu.Unlock(); st != host.StatusOK {
		m.sys.fail(errors.HostFailure(errors.PhaseMutex, m.name(), "unlock", st))
	}
}

// Dispose destroys the host mutex and unregisters it.
func (m *Mutex) Dispose() {
	if !m.disposed.CompareAndSwap(false, true) {
		m.sys.fail(errors.ContractViolation(errors.PhaseMutex, m.name(), "disposed twice"))
	}
	if st := m.mu.Destroy(); st != host.StatusOK {
		m.sys.fail(errors.HostFailure(errors.PhaseMutex, m.name(), "destroy", st))
	}
	m.sys.unregister(resource.TypeMutex, m.handle)
}

func (m *Mutex) name() string {
	return objectName(resource.TypeMutex, m.handle)
}
