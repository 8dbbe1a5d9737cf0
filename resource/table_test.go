package resource

import (
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(TypeMonitor, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if _, ok = table.GetTyped(h, TypeMonitor); !ok {
		t.Fatal("GetTyped with correct type failed")
	}
	if _, ok = table.GetTyped(h, TypeMutex); ok {
		t.Fatal("GetTyped with wrong type should fail")
	}

	val, ok = table.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
	if _, ok := table.Remove(h); ok {
		t.Fatal("second Remove should fail")
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(TypeThread, "test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Kind != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Handle != h || obs.events[0].Type != TypeThread {
		t.Fatal("Wrong handle or type in event")
	}

	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Kind != EventDropped {
		t.Fatal("Expected EventDropped")
	}
	if obs.events[1].Type != TypeThread {
		t.Fatalf("dropped event type = %v, want thread", obs.events[1].Type)
	}

	table.Unsubscribe(obs)
	table.Insert(TypeThread, "test2")
	if len(obs.events) != 2 {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_CountsAndEntries(t *testing.T) {
	table := NewTable()

	table.Insert(TypeMutex, "a")
	table.Insert(TypeMonitor, "b")
	table.Insert(TypeMonitor, "c")

	counts := table.Counts()
	if counts[TypeMutex] != 1 || counts[TypeMonitor] != 2 || counts[TypeThread] != 0 {
		t.Fatalf("Counts = %v", counts)
	}

	entries := table.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries len = %d, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Handle != Handle(i+1) {
			t.Fatalf("entries not in handle order: %v", entries)
		}
	}
	if entries[0].Value != "a" || entries[0].Type != TypeMutex {
		t.Fatalf("first entry = %+v", entries[0])
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()

	table.Insert(TypeMutex, "a")
	table.Insert(TypeMutex, "b")

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if h := table.Insert(TypeMutex, "c"); h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
}

func TestType_String(t *testing.T) {
	cases := map[Type]string{
		TypeMutex:   "mutex",
		TypeMonitor: "monitor",
		TypeThread:  "thread",
		TypeLocal:   "local",
		TypeLibrary: "library",
		Type(0):     "unknown",
	}
	for typ, want := range cases {
		if typ.String() != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, typ.String(), want)
		}
	}
}
