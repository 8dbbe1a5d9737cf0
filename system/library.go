package system

import (
	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/resource"
)

// Embedded resource names served by the main library.
const (
	EmbeddedBootJar = "embedded_file_boot_jar"
	EmbeddedAppJar  = "embedded_file_app_jar"
	JavaHomeJar     = "javahomeJar"
)

// EmbeddedFile returns the bytes of an embedded resource.
type EmbeddedFile func() []byte

// Library is the main program image. Symbols resolve from the embedded
// resources first and then from the configured symbol table.
type Library struct {
	sys     *System
	name    string
	next    hostsync.Library
	handle  resource.Handle
	symbols map[string]any
}

var _ hostsync.Library = (*Library)(nil)

func (s *System) mainLibrary() (*Library, error) {
	lib := &Library{sys: s, symbols: make(map[string]any)}
	for _, name := range []string{EmbeddedBootJar, EmbeddedAppJar, JavaHomeJar} {
		if blob, ok := s.opts.Embedded[name]; ok {
			lib.symbols[name] = EmbeddedFile(func() []byte { return blob })
		}
	}

	h, err := s.register(errors.PhaseResolve, resource.TypeLibrary, lib)
	if err != nil {
		return nil, err
	}
	lib.handle = h
	return lib, nil
}

// Resolve looks up an embedded resource or symbol by name.
func (l *Library) Resolve(name string) (any, bool) {
	if v, ok := l.symbols[name]; ok {
		return v, true
	}
	v, ok := l.sys.opts.Symbols[name]
	return v, ok
}

// Name is empty for the main library.
func (l *Library) Name() string {
	return l.name
}

// Next returns the library chained after this one, or nil.
func (l *Library) Next() hostsync.Library {
	return l.next
}

// SetNext chains next after this library.
func (l *Library) SetNext(next hostsync.Library) {
	l.next = next
}

// DisposeAll disposes this library and every library chained after it.
func (l *Library) DisposeAll() {
	if l.next != nil {
		l.next.DisposeAll()
	}
	l.sys.unregister(resource.TypeLibrary, l.handle)
}
