package system

import (
	"sync/atomic"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/host"
	"github.com/wippyai/hostsync/resource"
)

// Local is one per-thread storage slot. Each Local owns its own host key,
// so any number of them may coexist.
type Local struct {
	sys      *System
	key      host.Key
	handle   resource.Handle
	disposed atomic.Bool
}

var _ hostsync.Local = (*Local)(nil)

// NewLocal allocates a slot. Every thread initially reads nil.
func (s *System) NewLocal() (hostsync.Local, error) {
	l := &Local{sys: s, key: s.host.Storage().NewKey()}
	h, err := s.register(errors.PhaseLocal, resource.TypeLocal, l)
	if err != nil {
		s.host.Storage().DeleteKey(l.key)
		return nil, err
	}
	l.handle = h
	return l, nil
}

// Handle returns the registry handle.
func (l *Local) Handle() resource.Handle {
	return l.handle
}

// Get returns the calling thread's value.
func (l *Local) Get() any {
	return l.sys.host.Storage().Get(l.key)
}

// Set stores the calling thread's value. Other threads are unaffected.
func (l *Local) Set(v any) {
	l.sys.host.Storage().Set(l.key, v)
}

// Dispose releases the slot for every thread.
func (l *Local) Dispose() {
	if !l.disposed.CompareAndSwap(false, true) {
		l.sys.fail(errors.ContractViolation(errors.PhaseLocal, objectName(resource.TypeLocal, l.handle), "disposed twice"))
	}
	l.sys.host.Storage().DeleteKey(l.key)
	l.sys.unregister(resource.TypeLocal, l.handle)
}
