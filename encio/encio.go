// Package encio provides the byte-level primitives of the NBT wire format, as well as error types.
//
// All integers are big-endian. Names and strings share one codec; an unsigned 16 bit length followed by UTF-8 bytes.
package encio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// TooBig is a byte count used for simple sanity checking before things like allocation and iteration with numbers decoded from readers.
	// ErrMalformed is returned if a metric exceeds this.
	//
	// By default it is 32MB on 32bit machines, and 128MB on 64bit machines.
	// Feel free to change it.
	TooBig = uintptr(1 << (25 + ((^uint(0) >> 32) & 2)))
)

// MaxPrealloc is the most bytes allocated for data whose length was read from a stream, before the data itself is read.
const MaxPrealloc = 1 << 16

// Read reads from r, completely filling the buffer. It provides error handling with as little overhead as possible.
// In an ideal read, only a single int equality check is performed. If the read reports the whole buffer is read, returned errors are ignored.
// A stream that ends early returns an IOError wrapping io.ErrUnexpectedEOF.
func Read(buff []byte, r io.Reader) error {
	n, err := r.Read(buff)
	if n == len(buff) {
		return nil
	}

	end := n
	for end < len(buff) && err == nil {
		n, err = r.Read(buff[end:])
		end += n
		if n == 0 && err == nil {
			break
		}
	}

	if end != len(buff) {
		switch {
		case end > len(buff):
			return NewIOError(
				errors.New("bad io.Reader implementation"),
				fmt.Sprintf("%T reported %v bytes read, but buffer is only %v bytes", r, end, len(buff)),
			)
		case errors.Is(err, io.EOF):
			return NewIOError(
				io.ErrUnexpectedEOF,
				fmt.Sprintf("want %v bytes but only got %v", len(buff), end),
			)
		case err != nil:
			return err
		default: // err == nil
			return NewIOError(
				io.ErrNoProgress,
				fmt.Sprintf("want %v bytes but only got %v", len(buff), end),
			)
		}
	}
	return nil
}

// Write writes to w from buff, handling errors of io.Writer with as little overhead as possible.
// In an ideal write, only a single int equality check is performed. It returns any error from Write() verbatim.
func Write(buff []byte, w io.Writer) error {
	n, err := w.Write(buff)
	if n == len(buff) {
		return err
	}

	end := n
	for end < len(buff) && err == nil && n > 0 {
		Warnings.Warn().
			Str("writer", fmt.Sprintf("%T", w)).
			Int("given", len(buff)-(end-n)).
			Int("written", n).
			Msg("bad io.Writer implementation; short write without error, calling it again")
		n, err = w.Write(buff[end:])
		end += n
	}

	if end != len(buff) {
		switch {
		case end > len(buff):
			return NewIOError(
				errors.New("bad io.Writer implementation"),
				fmt.Sprintf("%T reported %v bytes written, but was only given %v bytes", w, end, len(buff)),
			)
		case err == nil:
			return NewIOError(
				io.ErrShortWrite,
				fmt.Sprintf("want %v bytes but only wrote %v bytes", len(buff), end),
			)
		default:
			return err
		}
	}
	return nil
}

// Discard reads and discards n bytes from r.
func Discard(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	got, err := io.CopyN(io.Discard, r, n)
	if got == n {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return NewIOError(err, fmt.Sprintf("want to skip %v bytes but only got %v", n, got))
}

// ReadBytes reads n bytes from r into a new slice.
// Past MaxPrealloc bytes the slice grows as data arrives, so a stream that ends early costs what it held, not n.
func ReadBytes(r io.Reader, n int) ([]byte, error) {
	if n <= MaxPrealloc {
		buff := make([]byte, n)
		return buff, Read(buff, r)
	}

	buff := bytes.NewBuffer(make([]byte, 0, MaxPrealloc))
	got, err := io.CopyN(buff, r, int64(n))
	if got == int64(n) {
		return buff.Bytes(), nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, NewIOError(err, fmt.Sprintf("want %v bytes but only got %v", n, got))
}
