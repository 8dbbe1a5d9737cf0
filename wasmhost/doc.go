// Package wasmhost exposes a system.System to WebAssembly guests as a
// wazero host module.
//
// Every export uses the integer ABI: primitives are passed as i32
// registry handles, timeouts as i64 milliseconds and booleans as i32 0/1.
// A handle that does not name a live primitive of the expected type traps
// the calling guest. Contract violations abort through the System as they
// would for a Go caller.
//
//	(import "hostsync" "monitor_enter" (func (param i32 i32)))
//	(import "hostsync" "monitor_wait"  (func (param i32 i32 i64) (result i32)))
package wasmhost
