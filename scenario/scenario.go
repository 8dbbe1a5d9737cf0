// Package scenario holds named, self-checking runs over a System. The
// command line tool and the tests drive the primitives through them.
package scenario

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wippyai/hostsync"
	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/system"
)

// Reporter receives one progress line per step.
type Reporter func(line string)

// Scenario is a named run.
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, sys *system.System, report Reporter) error
}

var registry = map[string]Scenario{}

func register(s Scenario) {
	registry[s.Name] = s
}

// Lookup returns the scenario with the given name.
func Lookup(name string) (Scenario, bool) {
	s, ok := registry[name]
	return s, ok
}

// All returns every scenario sorted by name.
func All() []Scenario {
	out := make([]Scenario, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted scenario names.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// worker is a runnable that is handed its own thread before it runs.
type worker struct {
	self hostsync.Thread
	fn   func(self hostsync.Thread)
}

func (w *worker) Attach(t hostsync.Thread) { w.self = t }
func (w *worker) Run()                     { w.fn(w.self) }

func spawn(sys *system.System, fn func(self hostsync.Thread)) (hostsync.Thread, error) {
	return sys.Start(&worker{fn: fn})
}

func failf(format string, args ...any) error {
	return errors.New(errors.PhaseSystem, errors.KindInvalidData).Detail(format, args...).Build()
}

func reportf(report Reporter, format string, args ...any) {
	if report != nil {
		report(fmt.Sprintf(format, args...))
	}
}

// waitQueued polls until m has n waiters or ctx ends.
func waitQueued(ctx context.Context, m *system.Monitor, n int) error {
	for m.Waiters() < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

func joinAll(threads []hostsync.Thread) {
	for _, t := range threads {
		t.Join()
		t.Dispose()
	}
}
