package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which layer raised the error
type Phase string

const (
	PhaseMutex   Phase = "mutex"   // plain mutex operations
	PhaseMonitor Phase = "monitor" // reentrant monitor operations
	PhaseThread  Phase = "thread"  // thread lifecycle
	PhaseLocal   Phase = "local"   // thread-local storage
	PhaseSystem  Phase = "system"  // facade and stubbed collaborators
	PhaseHost    Phase = "host"    // raw host primitives
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseResolve Phase = "resolve" // symbol and resource resolution
	PhaseBinding Phase = "binding" // guest module binding
)

// Kind categorizes the error
type Kind string

const (
	KindContractViolation Kind = "contract_violation"
	KindHostFailure       Kind = "host_failure"
	KindSpawn             Kind = "spawn"
	KindUnsupported       Kind = "unsupported"
	KindNotFound          Kind = "not_found"
	KindClosed            Kind = "closed"
	KindAllocation        Kind = "allocation"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidData       Kind = "invalid_data"
	KindAbort             Kind = "abort"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Object string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Object != "" {
		b.WriteString(" at ")
		b.WriteString(e.Object)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Fatal reports whether the error belongs to the abort tier.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case KindContractViolation, KindHostFailure, KindAllocation, KindAbort:
		return true
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Object names the primitive the error concerns, e.g. "monitor#3"
func (b *Builder) Object(name string) *Builder {
	b.err.Object = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ContractViolation creates an error for misuse of a primitive by its caller
func ContractViolation(phase Phase, object, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindContractViolation,
		Object: object,
		Detail: detail,
	}
}

// HostFailure creates an error for an unexpected raw primitive status
func HostFailure(phase Phase, object, op string, status any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHostFailure,
		Object: object,
		Detail: fmt.Sprintf("%s returned %v", op, status),
		Value:  status,
	}
}

// SpawnFailed creates a recoverable thread creation error
func SpawnFailed(cause error) *Error {
	return &Error{
		Phase:  PhaseThread,
		Kind:   KindSpawn,
		Detail: "start host thread",
		Cause:  cause,
	}
}

// AllocationFailed creates a heap exhaustion error
func AllocationFailed(size, used, limit int64) *Error {
	return &Error{
		Phase:  PhaseSystem,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("allocate %d bytes (in use %d, limit %d)", size, used, limit),
		Value:  size,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Closed creates an error for use of a disposed owner
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is disposed", what),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
