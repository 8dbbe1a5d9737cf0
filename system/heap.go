package system

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostsync/errors"
)

// TryAllocate returns a zeroed buffer of size bytes. Exceeding
// Options.HeapLimit is fatal.
func (s *System) TryAllocate(size int64) []byte {
	if size < 0 {
		s.fail(errors.ContractViolation(errors.PhaseSystem, "heap", "negative allocation size"))
	}

	used := s.heapUsed.Add(size)
	if limit := s.opts.HeapLimit; limit > 0 && used > limit {
		s.heapUsed.Add(-size)
		s.fail(errors.AllocationFailed(size, used-size, limit))
	}
	Logger().Debug("heap allocate", zap.Int64("size", size), zap.Int64("used", used))
	return make([]byte, size)
}

// Free returns buf's bytes to the heap budget.
func (s *System) Free(buf []byte) {
	s.heapUsed.Add(-int64(cap(buf)))
}

// HeapUsed returns the bytes currently accounted as allocated.
func (s *System) HeapUsed() int64 {
	return s.heapUsed.Load()
}
