// Package errs defines the sentinel error kinds shared across libspl-go's
// containers, serializer, and transport packages.
//
// Callers distinguish failure modes with errors.Is/errors.As against the
// sentinels below rather than string matching. Internal causes (syscall
// failures, I/O errors) are wrapped with github.com/pkg/errors so that logs
// retain a stack trace, while the sentinel a caller checks against is
// preserved across the wrap.
package errs

import "errors"

var (
	// ErrElementNotFound is returned by container lookups/removals when the
	// requested key is absent. Erase operations are exempt: erasing an
	// absent key is a no-op, not an error.
	ErrElementNotFound = errors.New("libspl: element not found")

	// ErrOutOfRange is returned by seeks, positional I/O, and iterator
	// misuse that would land outside the addressable region.
	ErrOutOfRange = errors.New("libspl: out of range")

	// ErrTimeout is returned when a blocking operation's deadline expires.
	ErrTimeout = errors.New("libspl: timed out")

	// ErrDequeueTimedOut specializes ErrTimeout for deque consumers; it
	// satisfies errors.Is(err, ErrTimeout).
	ErrDequeueTimedOut = &timeoutError{msg: "libspl: dequeue timed out"}

	// ErrConnectionTimedOut indicates a TCP connect or I/O deadline expired.
	ErrConnectionTimedOut = errors.New("libspl: connection timed out")

	// ErrConnectionRefused indicates the remote end actively refused the
	// connection attempt.
	ErrConnectionRefused = errors.New("libspl: connection refused")

	// ErrNetworkUnreachable indicates the destination network could not be
	// reached.
	ErrNetworkUnreachable = errors.New("libspl: network unreachable")

	// ErrConnectionTerminated indicates a previously established connection
	// was closed by the peer or the local side.
	ErrConnectionTerminated = errors.New("libspl: connection terminated")

	// ErrSerialization covers unknown object codes, attempts to serialize a
	// non-serializable type, or a factory registration that is not
	// constructible. Use AsSerializationError to recover the Reason.
	ErrSerialization = errors.New("libspl: serialization error")

	// ErrStringNotNumeric is returned by string-to-number conversion
	// helpers consumed (not owned) by this library.
	ErrStringNotNumeric = errors.New("libspl: string is not numeric")

	// ErrStringParseError is returned when a string fails to parse into
	// the requested shape.
	ErrStringParseError = errors.New("libspl: string parse error")

	// ErrTaskRejected is returned when a worker pool declines a submitted
	// task (consumed, not owned, by this library).
	ErrTaskRejected = errors.New("libspl: task rejected")

	// ErrThreadNotJoinable mirrors the source's thread lifecycle misuse
	// error for goroutine-join helpers that wrap errgroup.
	ErrThreadNotJoinable = errors.New("libspl: thread not joinable")

	// ErrFileNotOpened is returned by the file serializer sink when an
	// operation is attempted on an unopened or already-closed file.
	ErrFileNotOpened = errors.New("libspl: file not opened")
)

type timeoutError struct {
	msg string
}

func (e *timeoutError) Error() string { return e.msg }

func (e *timeoutError) Unwrap() error { return ErrTimeout }

// SerializationReason distinguishes the three ways a serialization
// operation can fail per section 7 of the specification.
type SerializationReason int

const (
	// ReasonUnknownObjectCode means the factory has no registration for an
	// observed object code.
	ReasonUnknownObjectCode SerializationReason = iota
	// ReasonNotSerializable means the target type does not implement the
	// Serializable contract the framework requires.
	ReasonNotSerializable
	// ReasonNotConstructible means a factory thunk returned a nil instance.
	ReasonNotConstructible
)

func (r SerializationReason) String() string {
	switch r {
	case ReasonUnknownObjectCode:
		return "unknown object code"
	case ReasonNotSerializable:
		return "not serializable"
	case ReasonNotConstructible:
		return "not constructible"
	default:
		return "unknown reason"
	}
}

// SerializationError carries the specific reason behind ErrSerialization.
// It unwraps to ErrSerialization so errors.Is(err, ErrSerialization) still
// holds for callers that only care about the broad category.
type SerializationError struct {
	Reason   SerializationReason
	Code     uint32
	TypeName string
}

func (e *SerializationError) Error() string {
	if e.TypeName != "" {
		return "libspl: serialization error: " + e.Reason.String() + " (" + e.TypeName + ")"
	}
	return "libspl: serialization error: " + e.Reason.String()
}

func (e *SerializationError) Unwrap() error { return ErrSerialization }

// NewSerializationError builds a SerializationError for the given reason.
func NewSerializationError(reason SerializationReason, code uint32, typeName string) error {
	return &SerializationError{Reason: reason, Code: code, TypeName: typeName}
}
