package resource

import (
	"sync"
)

// Table registers primitives with type information and observer support.
type Table struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
	}
}

// Insert registers a value and returns its handle, or 0 once closed.
func (t *Table) Insert(typ Type, value any) Handle {
	t.closeMu.RLock()
	if t.closed {
		t.closeMu.RUnlock()
		return 0
	}
	t.closeMu.RUnlock()

	handle, err := t.backend.Create(typ, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Kind:   EventCreated,
		Handle: handle,
		Type:   typ,
		Value:  value,
	})

	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *Table) GetTyped(handle Handle, typ Type) (any, bool) {
	actual, ok := t.backend.TypeOf(handle)
	if !ok || actual != typ {
		return nil, false
	}
	return t.backend.Get(handle)
}

// Remove unregisters a handle and returns (value, true) if it was live.
func (t *Table) Remove(handle Handle) (any, bool) {
	typ, _ := t.backend.TypeOf(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	t.notify(Event{
		Kind:   EventDropped,
		Handle: handle,
		Type:   typ,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live primitives.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Counts returns the number of live primitives per type.
func (t *Table) Counts() map[Type]int {
	counts := make(map[Type]int)
	t.backend.Each(func(_ Handle, typ Type, _ any) bool {
		counts[typ]++
		return true
	})
	return counts
}

// Entries returns every live primitive in handle order.
func (t *Table) Entries() []Entry {
	var out []Entry
	t.backend.Each(func(h Handle, typ Type, value any) bool {
		out = append(out, Entry{Handle: h, Type: typ, Value: value})
		return true
	})
	return out
}

// Close stops accepting registrations and forgets all entries.
func (t *Table) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
