package system

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
)

// Stat reports every path as missing. There is no filesystem inside the
// enclave.
func (s *System) Stat(name string) (hostsync.FileType, int64) {
	if name != "." {
		Logger().Debug("stat on missing filesystem", zap.String("name", name))
	}
	return hostsync.TypeDoesNotExist, 0
}

// Map always fails: no file can be mapped.
func (s *System) Map(name string) (hostsync.Region, error) {
	Logger().Debug("map unsupported", zap.String("name", name))
	return nil, errors.New(errors.PhaseSystem, errors.KindUnsupported).
		Detail("map %q", name).
		Value(name).
		Build()
}

// OpenDirectory always fails with KindNotFound.
func (s *System) OpenDirectory(name string) (hostsync.Directory, error) {
	Logger().Debug("open directory on missing filesystem", zap.String("name", name))
	return nil, errors.NotFound(errors.PhaseSystem, "directory", name)
}

// Load returns the main library for the empty name. Shared libraries
// cannot be loaded.
func (s *System) Load(name string) (hostsync.Library, error) {
	if name != "" {
		Logger().Debug("load of shared library refused", zap.String("name", name))
		return nil, errors.NotFound(errors.PhaseResolve, "library", name)
	}
	return s.mainLibrary()
}

// Visit does nothing: threads cannot be suspended for inspection.
func (s *System) Visit(st, target hostsync.Thread, v hostsync.ThreadVisitor) {
	Logger().Debug("thread visit ignored")
}

// PathSeparator separates entries of a search path.
func (s *System) PathSeparator() byte {
	return ':'
}

// FileSeparator separates path components.
func (s *System) FileSeparator() byte {
	return '/'
}

// LibraryPrefix is prepended to shared library names.
func (s *System) LibraryPrefix() string {
	return "lib"
}

// LibrarySuffix is appended to shared library names.
func (s *System) LibrarySuffix() string {
	return ".so"
}

// ToAbsolutePath returns name unchanged.
func (s *System) ToAbsolutePath(name string) string {
	return name
}

// Signals returns the signal registrar.
func (s *System) Signals() *SignalRegistrar {
	return s.signals
}
