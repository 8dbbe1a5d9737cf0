// Package resource tracks the live primitives a System has handed out.
//
// Every Mutex, Monitor, Thread, Local and Library is registered under an
// integer handle when it is created and removed when it is disposed. The
// table gives the owning System a complete inventory for leak reporting,
// and gives guest bindings a way to refer to primitives by number.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Register a value, get a handle
//	handle := table.Insert(resource.TypeMonitor, mon)
//
//	// Type-checked retrieval
//	value, ok := table.GetTyped(handle, resource.TypeMonitor) // ok
//	value, ok := table.GetTyped(handle, resource.TypeMutex)   // !ok
//
//	// Unregister
//	value, ok := table.Remove(handle)
//
// Handle 0 is never issued, so it can stand for "no object". A freed slot
// is reused under a new handle; the old handle stays invalid.
//
// # Observers
//
// Observers see every registration and removal, in order:
//
//	table.Subscribe(observer)
//
// Observers run synchronously on the goroutine that created or disposed
// the primitive and must not block.
package resource
