package system

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostsync"
)

// SignalRegistrar accepts handler registrations but never delivers a
// signal.
type SignalRegistrar struct{}

// RegisterHandler records nothing and reports success.
func (r *SignalRegistrar) RegisterHandler(signal int, h hostsync.SignalHandler) bool {
	Logger().Debug("signal handler registration ignored", zap.Int("signal", signal))
	return true
}

// UnregisterHandler reports success.
func (r *SignalRegistrar) UnregisterHandler(signal int) bool {
	return true
}

// SetCrashDumpDirectory is ignored; no crash dumps are written.
func (r *SignalRegistrar) SetCrashDumpDirectory(path string) {}
