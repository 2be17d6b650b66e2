package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat          ErrKind = iota // malformed schema or layout description
	ErrKindCorrupt                        // structural corruption in the decoded image
	ErrKindUnsupported                    // valid feature we don't support (yet)
	ErrKindNotFound                       // missing file, table type, or row
	ErrKindState                          // operation after the owning resource was released
	ErrKindOutOfRange                     // offset/length beyond a buffer, stream, or table
	ErrKindInvalidArgument                // absent/empty input or a stream lacking a capability
)

// String returns the short name of the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindCorrupt:
		return "corrupt"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindNotFound:
		return "not found"
	case ErrKindState:
		return "state"
	case ErrKindOutOfRange:
		return "out of range"
	case ErrKindInvalidArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrOutOfRange) matches every out-of-range failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations. Compare with errors.Is.
var (
	// ErrFormat indicates a malformed schema or layout description.
	ErrFormat = &Error{Kind: ErrKindFormat, Msg: "malformed layout"}
	// ErrCorrupt indicates non-recoverable structural inconsistency.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt image structure"}
	// ErrUnsupported indicates a recognized but unsupported feature/variant.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported feature"}
	// ErrNotFound indicates a missing path, table type, or row.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrState indicates use of a resource after it was released.
	ErrState = &Error{Kind: ErrKindState, Msg: "resource released"}
	// ErrOutOfRange indicates an offset/length combination beyond its bound.
	ErrOutOfRange = &Error{Kind: ErrKindOutOfRange, Msg: "out of range"}
	// ErrInvalidArgument indicates absent or unusable input.
	ErrInvalidArgument = &Error{Kind: ErrKindInvalidArgument, Msg: "invalid argument"}
)

// Errorf builds an *Error of the given kind.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around an underlying cause.
func Wrap(kind ErrKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// OutOfRange reports an offset/length that does not fit inside a bound.
func OutOfRange(format string, args ...any) *Error {
	return Errorf(ErrKindOutOfRange, format, args...)
}

// InvalidArgument reports absent or unusable input.
func InvalidArgument(format string, args ...any) *Error {
	return Errorf(ErrKindInvalidArgument, format, args...)
}

// NotFound reports a missing path, table type, or row.
func NotFound(format string, args ...any) *Error {
	return Errorf(ErrKindNotFound, format, args...)
}

// Released reports an operation attempted after Close.
func Released(what string) *Error {
	return &Error{Kind: ErrKindState, Msg: what + ": use after close"}
}
