// Package errors provides structured error types for hostsync.
//
// Errors are categorized by Phase (which layer raised them) and Kind (error category).
// The Error type carries the offending object name, a detail message and a cause chain.
//
// Two tiers exist. Fatal kinds (contract violations, host failures, heap exhaustion)
// are handed to the System abort handler and never returned to callers. All other
// kinds are ordinary returned errors.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMonitor, errors.KindContractViolation).
//		Object("monitor#3").
//		Detail("release by non-owner thread %d", id).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SpawnFailed(cause)
//	err := errors.NotFound(errors.PhaseResolve, "symbol", name)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
