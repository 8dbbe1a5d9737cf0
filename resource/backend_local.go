package resource

import (
	"errors"
	"sync"
)

var (
	ErrClosed = errors.New("resource backend closed")
	ErrFull   = errors.New("resource backend full")
)

// A handle packs a slot number (low bits) and the slot's generation (high
// bits). Reusing a slot bumps its generation, so a stale handle never
// names the slot's new occupant.
const (
	slotBits = 20
	slotMask = 1<<slotBits - 1
	genMask  = 1<<(32-slotBits) - 1
)

// LocalBackend is an in-memory handle store. Slots are reused; handles are
// not, until a slot's generation counter wraps.
type LocalBackend struct {
	entries  []entry
	freeList []uint32
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value any
	typ   Type
	gen   uint32
	valid bool
}

func makeHandle(slot, gen uint32) Handle {
	return Handle(gen<<slotBits | slot)
}

// lookup returns the live entry a handle names. Caller holds b.mu.
func (b *LocalBackend) lookup(handle Handle) *entry {
	slot := uint32(handle) & slotMask
	if slot == 0 || int(slot) > len(b.entries) {
		return nil
	}
	e := &b.entries[slot-1]
	if !e.valid || e.gen != uint32(handle)>>slotBits {
		return nil
	}
	return e
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Create stores a value and returns a handle.
func (b *LocalBackend) Create(typ Type, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	e := entry{
		typ:   typ,
		value: value,
		valid: true,
	}

	if len(b.freeList) > 0 {
		slot := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		e.gen = (b.entries[slot-1].gen + 1) & genMask
		b.entries[slot-1] = e
		return makeHandle(slot, e.gen), nil
	}

	if len(b.entries) >= slotMask {
		return 0, ErrFull
	}
	b.entries = append(b.entries, e)
	return makeHandle(uint32(len(b.entries)), 0), nil
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// Drop removes an entry and returns its value.
func (b *LocalBackend) Drop(handle Handle) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil {
		return nil, false
	}

	value := e.value
	e.valid = false
	e.value = nil
	b.freeList = append(b.freeList, uint32(handle)&slotMask)

	return value, true
}

// Close forgets every entry and rejects further Create calls.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.entries = nil
	b.freeList = nil
	return nil
}

// TypeOf returns the type recorded for a handle.
func (b *LocalBackend) TypeOf(handle Handle) (Type, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return 0, false
	}
	return e.typ, true
}

// Len returns the number of live entries.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over live entries in handle order.
func (b *LocalBackend) Each(fn func(Handle, Type, any) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(makeHandle(uint32(i+1), e.gen), e.typ, e.value) {
				break
			}
		}
	}
}
