package encio

import (
	"errors"
	"runtime"
)

// Error handling in nbt is designed to provide an easy way to distinguish io errors and bad data from encoding errors,
// and to reuse a small set of common error kinds for as many errors as possible, with extra information wrapped as applicable.
// Panics are only used when there is a clear misuse of the library; programmer error.
// To this end, all error cases are grouped into two error wrappers; IOError and Error, the idea being that
// IOError errors indicate a bad io.Reader/io.Writer, and the caller should stop using it, and
// Error errors indicate a mismatch between the value and the stream, or a value that cannot be represented.
//
// In this way, errors can be checked with
//
//	var encErr encio.Error
//	var ioErr encio.IOError
//	if errors.As(err, &encErr) {
//		//handle encoding error
//	} else if errors.As(err, &ioErr) {
//		//handle io error
//	}
//
// or, for a specific kind,
//
//	if errors.Is(err, encio.ErrIncompatibleListType) {
//		...
//	}
//
// Nothing is retried, and nothing already written to a stream is rolled back.

// Tag mismatch errors. The decoder returns the one matching the tag it expected.
var (
	ErrExpectedEnd        = errors.New("expected End tag")
	ErrExpectedByte       = errors.New("expected Byte tag")
	ErrExpectedShort      = errors.New("expected Short tag")
	ErrExpectedInt        = errors.New("expected Int tag")
	ErrExpectedLong       = errors.New("expected Long tag")
	ErrExpectedFloat      = errors.New("expected Float tag")
	ErrExpectedDouble     = errors.New("expected Double tag")
	ErrExpectedByteArray  = errors.New("expected ByteArray tag")
	ErrExpectedString     = errors.New("expected String tag")
	ErrExpectedList       = errors.New("expected List tag")
	ErrExpectedCompound   = errors.New("expected Compound tag")
	ErrExpectedIntArray   = errors.New("expected IntArray tag")
	ErrExpectedLongArray  = errors.New("expected LongArray tag")
	ErrExpectedIdentifier = errors.New("expected identifier")
)

// Structural errors.
var (
	// ErrIncompatibleListType is returned when a list element encodes to a different tag than the first element.
	ErrIncompatibleListType = errors.New("incompatible list type")

	// ErrUnknownListType is returned when a list element does not encode to a usable element tag,
	// i.e. it wrote nothing, or wrote an End tag.
	ErrUnknownListType = errors.New("unknown list type")

	// ErrNotWritingToList is returned when list operations are used while no list is open.
	ErrNotWritingToList = errors.New("not writing to list")

	// ErrNotWritingToCompound is returned when named values are written while a list is open,
	// or a compound is closed while none is open.
	ErrNotWritingToCompound = errors.New("not writing to compound")

	// ErrTooDeep is returned when nesting exceeds the maximum depth.
	ErrTooDeep = errors.New("nesting too deep")
)

var (
	// ErrConversion is returned when an integer does not fit in the width it is being converted to,
	// or a length does not fit in its prefix.
	ErrConversion = errors.New("conversion overflow")

	// ErrInvalidUTF8 is returned when a name or string is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8")

	// ErrMalformed is returned when the read data is impossible to decode.
	ErrMalformed = errors.New("malformed")

	// ErrBadType is returned when a Go type cannot be represented, or is inappropriate.
	ErrBadType = errors.New("bad type")

	// ErrNilPointer is returned if a pointer that should not be nil is nil.
	ErrNilPointer = errors.New("nil pointer")
)

// NewIOError returns an IOError wrapping err with the given message.
// err is typically the error returned from the io.Reader/io.Writer, or another error describing why the reader isn't operating correctly.
// message has extra information about the error; if empty, it is filled with the calling function's name.
func NewIOError(err error, message string) error {
	if err == nil {
		return NewError(errors.New("unknown error"), "trying to create new IOError", "encio.NewIOError")
	}
	if message == "" {
		message = "in " + GetCaller(1)
	}

	return IOError{
		Err:     err,
		Message: message,
	}
}

// IOError is returned when io errors occur, or when the stream ends early.
type IOError struct {
	Err     error
	Message string
}

// Error implements error
func (e IOError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap implements errors's Unwrap()
func (e IOError) Unwrap() error {
	return e.Err
}

// NewError returns an Error wrapping err with message and caller.
// If caller is empty, it is automatically filled with the calling function's name.
func NewError(err error, message string, caller string) error {
	if caller == "" {
		caller = GetCaller(1)
	}

	return Error{
		Err:     err,
		Message: message,
		Caller:  caller,
	}
}

// Error is returned when a value cannot be encoded or decoded.
type Error struct {
	Err     error
	Message string
	Caller  string
}

// Error implements error
func (e Error) Error() (str string) {
	if e.Caller != "" {
		str = e.Caller + ": "
	}

	str += e.Err.Error()

	if e.Message != "" {
		str += " (" + e.Message + ")"
	}

	return str
}

// Unwrap implements errors's Unwrap()
func (e Error) Unwrap() error {
	return e.Err
}

// GetCaller returns the name of the calling function, skipping skip functions.
// i.e. 0 writes the calling function, 1 the function calling that etc...
func GetCaller(skip int) string {
	pcs := make([]uintptr, 1)
	n := runtime.Callers(2+skip, pcs)
	if n != 1 {
		return "Unknown Function"
	}

	frames := runtime.CallersFrames(pcs)
	frame, _ := frames.Next()
	return frame.Function
}
