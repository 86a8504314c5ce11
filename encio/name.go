package encio

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// MaxNameLen is the longest name or string, in bytes, that fits the unsigned 16 bit length prefix.
const MaxNameLen = math.MaxUint16

// NewName returns a new Name.
func NewName() Name {
	return Name{
		len: NewUint16(),
	}
}

// Name provides methods for encoding and decoding length-prefixed UTF-8 text;
// field names, and the payload of String values.
type Name struct {
	len  Uint16
	buff []byte
}

// Encode writes s to w.
func (e *Name) Encode(w io.Writer, s string) error {
	if len(s) > MaxNameLen {
		return NewError(ErrConversion, fmt.Sprintf("%v bytes does not fit a 16 bit length prefix", len(s)), "")
	}
	if !utf8.ValidString(s) {
		return NewError(ErrInvalidUTF8, fmt.Sprintf("%q", s), "")
	}

	if err := e.len.Encode(w, uint16(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}

	e.buff = append(e.buff[:0], s...)
	return Write(e.buff, w)
}

// Decode reads a string from r.
func (e *Name) Decode(r io.Reader) (string, error) {
	l, err := e.len.Decode(r)
	if err != nil {
		return "", err
	}
	if l == 0 {
		return "", nil
	}

	if cap(e.buff) < int(l) {
		e.buff = make([]byte, l)
	}
	e.buff = e.buff[:l]

	if err := Read(e.buff, r); err != nil {
		return "", err
	}
	if !utf8.Valid(e.buff) {
		return "", NewError(ErrInvalidUTF8, fmt.Sprintf("%q", e.buff), "")
	}

	return string(e.buff), nil
}

// Skip reads a string from r, discarding it.
func (e *Name) Skip(r io.Reader) error {
	l, err := e.len.Decode(r)
	if err != nil {
		return err
	}
	return Discard(r, int64(l))
}
