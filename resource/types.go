package resource

// Handle is an opaque reference to a registered primitive.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Type identifies the kind of primitive behind a handle.
type Type uint32

const (
	TypeMutex Type = iota + 1
	TypeMonitor
	TypeThread
	TypeLocal
	TypeLibrary
)

func (t Type) String() string {
	switch t {
	case TypeMutex:
		return "mutex"
	case TypeMonitor:
		return "monitor"
	case TypeThread:
		return "thread"
	case TypeLocal:
		return "local"
	case TypeLibrary:
		return "library"
	default:
		return "unknown"
	}
}

// Event types for lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Type   Type
	Kind   EventType
}

// Observer receives notifications about lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Entry is a point-in-time view of one registered primitive.
type Entry struct {
	Value  any
	Handle Handle
	Type   Type
}
