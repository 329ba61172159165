// Package stegoerr provides typed error handling for the GhostBit
// steganography engine. It follows the same struct-based, user-safe vs.
// internal split used across the codebase's HTTP layer.
package stegoerr

import "fmt"

// Code categorizes errors for consistent handling by callers (CLI exit
// codes, HTTP status codes).
type Code int

const (
	// CodeUnknown indicates an unspecified error type.
	CodeUnknown Code = iota
	// CodeCapacity indicates the payload does not fit the carrier.
	CodeCapacity
	// CodeFormat indicates a malformed container: bad magic, version,
	// end marker, CRC, or file name.
	CodeFormat
	// CodeAuth indicates a KDF, decrypt, or tag-verification failure.
	CodeAuth
	// CodeKeyRequired indicates encrypted data was found but no password
	// was supplied.
	CodeKeyRequired
	// CodeCancelled indicates the operation was aborted by a progress
	// callback.
	CodeCancelled
	// CodeNoData indicates no hidden payload was found in the carrier.
	CodeNoData
	// CodeIO indicates a failure from a collaborator (file I/O, transcoder).
	CodeIO
)

// Error represents a domain error with a user-safe message and optional
// internal detail, which is never exposed to a caller and exists only for
// logging.
type Error struct {
	Code     Code
	Message  string
	Internal string
	Err      error
}

// Error implements the error interface, returning the user-safe message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithInternal attaches internal debugging detail, never shown to callers.
func (e *Error) WithInternal(format string, args ...any) *Error {
	e.Internal = fmt.Sprintf(format, args...)
	return e
}

// Wrap attaches an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Is reports whether target is a *Error with the same Code, so
// errors.Is(err, stegoerr.Capacity("")) style checks work regardless of
// message text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (c Code) String() string {
	switch c {
	case CodeCapacity:
		return "capacity"
	case CodeFormat:
		return "format"
	case CodeAuth:
		return "auth"
	case CodeKeyRequired:
		return "key_required"
	case CodeCancelled:
		return "cancelled"
	case CodeNoData:
		return "no_data"
	case CodeIO:
		return "io"
	default:
		return fmt.Sprintf("unknown_code_%d", c)
	}
}

// Capacity creates a CapacityError: payload exceeds carrier capacity.
func Capacity(message string) *Error {
	return &Error{Code: CodeCapacity, Message: message}
}

// Format creates a FormatError: malformed container.
func Format(message string) *Error {
	return &Error{Code: CodeFormat, Message: message}
}

// authMessage is the uniform message for every authentication failure, regardless
// of the underlying cause (wrong password, bad tag, truncated blob, unknown
// version) — this avoids an oracle that would let a caller distinguish why
// decryption failed.
const authMessage = "authentication failed"

// Auth creates an AuthError with the uniform public message. Pass the real
// cause to WithInternal/Wrap for logging only.
func Auth() *Error {
	return &Error{Code: CodeAuth, Message: authMessage}
}

// KeyRequired creates a KeyRequired error: encrypted data found, no password
// supplied.
func KeyRequired(message string) *Error {
	return &Error{Code: CodeKeyRequired, Message: message}
}

// Cancelled creates a Cancelled error: the operation was aborted.
func Cancelled(message string) *Error {
	return &Error{Code: CodeCancelled, Message: message}
}

// NoData creates a NoData error: the carrier holds no hidden payload.
func NoData(message string) *Error {
	return &Error{Code: CodeNoData, Message: message}
}

// IO creates an IOError, wrapping a failure from a collaborator.
func IO(message string, err error) *Error {
	return (&Error{Code: CodeIO, Message: message}).Wrap(err)
}

// ExitCode maps a Code to the CLI process exit code: 2 for capacity and
// format errors, 3 for auth, 4 for I/O, 5 for cancellation.
func (c Code) ExitCode() int {
	switch c {
	case CodeCapacity, CodeFormat:
		return 2
	case CodeAuth, CodeKeyRequired:
		return 3
	case CodeIO:
		return 4
	case CodeCancelled:
		return 5
	default:
		return 1
	}
}
