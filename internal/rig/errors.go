package rig

import "fmt"

// Code identifies one entry of the fixed result-code taxonomy shared by the
// core, the transport layer and every backend.
type Code int

const (
	// OK means the operation completed successfully.
	OK Code = iota
	// CodeInvalidParameter covers nil handles, nil descriptors and
	// out-of-range arguments.
	CodeInvalidParameter
	// CodeInvalidConfiguration covers handles used in the wrong lifecycle
	// stage and unsupported transport kinds.
	CodeInvalidConfiguration
	// CodeMemoryShortage is kept for compatibility with external consumers
	// of the taxonomy; Go code never originates it.
	CodeMemoryShortage
	// CodeNotImplemented means the backend does not provide the requested
	// operation.
	CodeNotImplemented
	// CodeTimeout means a transport or protocol exchange exceeded the
	// configured timeout.
	CodeTimeout
	// CodeIO is a transport-level read or write failure.
	CodeIO
	// CodeInternal is an invariant violation inside the core.
	CodeInternal
	// CodeProtocol means the device answered with something malformed or
	// unexpected.
	CodeProtocol
	// CodeRejected means the device understood the command but declined it.
	CodeRejected
	// CodeTruncated means the operation only partially completed and the
	// result is not fully trustworthy.
	CodeTruncated
)

// descriptions is indexed by Code. Lookups go through Describe, which
// bounds-checks the index.
var descriptions = [...]string{
	OK:                       "Command completed successfully",
	CodeInvalidParameter:     "Invalid parameter",
	CodeInvalidConfiguration: "Invalid configuration",
	CodeMemoryShortage:       "Memory shortage",
	CodeNotImplemented:       "Feature not implemented",
	CodeTimeout:              "Communication timed out",
	CodeIO:                   "IO error",
	CodeInternal:             "Internal error",
	CodeProtocol:             "Protocol error",
	CodeRejected:             "Command rejected by the rig",
	CodeTruncated:            "Command performed, but arg truncated, result not guaranteed",
}

// Describe returns the fixed description for a result code. Out-of-range
// codes get a generic fallback rather than a panic.
func Describe(c Code) string {
	if c < 0 || int(c) >= len(descriptions) {
		return "Unknown error code"
	}
	return descriptions[c]
}

// Error carries a taxonomy code plus an optional underlying cause. Two
// Errors compare equal under errors.Is when their codes match, so callers
// can test against the package sentinels regardless of wrapping.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", Describe(e.Code), e.Err)
	}
	return Describe(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports code equality so errors.Is(err, ErrTimeout) matches any Error
// carrying CodeTimeout.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinel errors, one per taxonomy code the core or its collaborators can
// return. Backends should wrap causes with newError rather than invent
// their own error types.
var (
	ErrInvalidParameter     = &Error{Code: CodeInvalidParameter}
	ErrInvalidConfiguration = &Error{Code: CodeInvalidConfiguration}
	ErrMemoryShortage       = &Error{Code: CodeMemoryShortage}
	ErrNotImplemented       = &Error{Code: CodeNotImplemented}
	ErrTimeout              = &Error{Code: CodeTimeout}
	ErrIO                   = &Error{Code: CodeIO}
	ErrInternal             = &Error{Code: CodeInternal}
	ErrProtocol             = &Error{Code: CodeProtocol}
	ErrRejected             = &Error{Code: CodeRejected}
	ErrTruncated            = &Error{Code: CodeTruncated}
)

// newError wraps a cause with a taxonomy code.
func newError(code Code, cause error) *Error {
	return &Error{Code: code, Err: cause}
}
