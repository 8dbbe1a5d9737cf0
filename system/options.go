package system

import (
	"fmt"
	"os"

	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/host"
)

// AbortHandler terminates the process after a fatal error. It must not
// return; if it does, the System panics with the error.
type AbortHandler func(*errors.Error)

// Options configures a System.
type Options struct {
	// Host supplies the raw primitives. Defaults to host.NewLocal.
	Host host.Host

	// Abort is invoked on contract violations and host failures.
	// Defaults to ExitOnAbort.
	Abort AbortHandler

	// Embedded holds the blobs served by the main library under the
	// fixed embedded resource names.
	Embedded map[string][]byte

	// Symbols is consulted by the main library after embedded resources.
	Symbols map[string]any

	// HeapLimit caps TryAllocate in bytes. Zero means no cap.
	HeapLimit int64

	// Reentrant systems skip the one-instance-per-process registration.
	Reentrant bool

	// CheckQueues enables wait queue consistency checks.
	CheckQueues bool
}

// DefaultOptions returns default system configuration.
func DefaultOptions() Options {
	return Options{
		CheckQueues: true,
	}
}

// ExitOnAbort prints the diagnostic and exits with the SIGABRT status.
func ExitOnAbort(err *errors.Error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(134)
}
