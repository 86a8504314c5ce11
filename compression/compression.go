// Package compression provides the compressed containers NBT data is stored in.
//
// Minecraft writes level.dat and player data gzip compressed, region file chunks zlib compressed,
// and since 1.20.5 optionally LZ4, as the block stream of the Java lz4 library.
package compression

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
)

// Type identifies a compression format. Values are those used to mark chunks in region files.
// These values are protocol constants; changing them breaks region file compatibility.
type Type uint8

const (
	// Gzip is RFC 1952 gzip.
	Gzip Type = 1
	// Zlib is RFC 1950 zlib.
	Zlib Type = 2
	// None is uncompressed data.
	None Type = 3
	// LZ4 is the LZ4Block stream format of lz4-java.
	LZ4 Type = 4
)

var names = map[Type]string{
	Gzip: "gzip",
	Zlib: "zlib",
	None: "none",
	LZ4:  "lz4",
}

// String returns the name of a compression type.
func (t Type) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Valid returns true if t is a known compression type.
func (t Type) Valid() bool {
	_, ok := names[t]
	return ok
}

// ParseType parses a compression type from its name.
func ParseType(name string) (Type, error) {
	for t, n := range names {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown compression type %q", name)
}

// Set implements pflag.Value.
func (t *Type) Set(name string) error {
	parsed, err := ParseType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Type implements pflag.Value.
func (t *Type) Type() string {
	return "compression"
}

// Detect returns the compression type of the stream in r, looking at its first bytes without consuming them.
// Uncompressed data is recognised by its first byte being a tag, which none of the compressed formats start with.
// A String root starts with 0x08, a valid zlib header byte, so a zlib header is only accepted when its first byte isn't a tag.
func Detect(r *bufio.Reader) (Type, error) {
	head, err := r.Peek(len(lz4Magic))
	if len(head) == 0 {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, encio.NewIOError(err, "detecting compression")
	}

	switch {
	case len(head) >= 2 && head[0] == 0x1f && head[1] == 0x8b:
		return Gzip, nil
	case tag.Tag(head[0]).Valid():
		return None, nil
	case len(head) >= 2 && head[0]&0x0f == 8 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0:
		return Zlib, nil
	case bytes.Equal(head, lz4Magic):
		return LZ4, nil
	default:
		return None, nil
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NewReader returns a reader decompressing r.
// Closing it does not close r.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, encio.NewIOError(err, "reading gzip header")
		}
		return gr, nil
	case Zlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, encio.NewIOError(err, "reading zlib header")
		}
		return zr, nil
	case None:
		return io.NopCloser(r), nil
	case LZ4:
		return newLZ4Reader(r), nil
	default:
		return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("unknown compression type %v", uint8(t)), "")
	}
}

// NewWriter returns a writer compressing to w.
// It must be closed to flush the compressed stream; closing it does not close w.
func NewWriter(w io.Writer, t Type) (io.WriteCloser, error) {
	switch t {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zlib:
		return zlib.NewWriter(w), nil
	case None:
		return nopCloser{Writer: w}, nil
	case LZ4:
		return newLZ4Writer(w), nil
	default:
		return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("unknown compression type %v", uint8(t)), "")
	}
}

// Compress returns data compressed with t.
func Compress(data []byte, t Type) ([]byte, error) {
	buff := new(bytes.Buffer)
	w, err := NewWriter(buff, t)
	if err != nil {
		return nil, err
	}
	if err := encio.Write(data, w); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// Decompress returns data decompressed with t.
func Decompress(data []byte, t Type) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(data), t)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
