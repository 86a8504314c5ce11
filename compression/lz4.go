package compression

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"
	"github.com/stewi1014/nbt/encio"
)

// LZ4Block stream layout. Each block is a header followed by its data:
//
//	magic            8 bytes, "LZ4Block"
//	token            1 byte, method in the high nibble, log2(block size)-10 in the low
//	compressed len   4 bytes, little-endian
//	raw len          4 bytes, little-endian
//	checksum         4 bytes, little-endian xxh32 of the raw data, masked to 28 bits
//
// A block with a raw length of 0 ends the stream.
var lz4Magic = []byte("LZ4Block")

const (
	lz4HeaderSize = 8 + 1 + 4 + 4 + 4

	lz4MethodRaw = 0x10
	lz4MethodLZ4 = 0x20

	lz4BlockLevel = 6 // 64KB blocks
	lz4BlockSize  = 1 << (10 + lz4BlockLevel)

	lz4Seed         = 0x9747b28c
	lz4ChecksumMask = 0xfffffff
)

func lz4Checksum(b []byte) uint32 {
	return xxHash32.Checksum(b, lz4Seed) & lz4ChecksumMask
}

func newLZ4Writer(w io.Writer) *lz4Writer {
	return &lz4Writer{
		w:    w,
		buff: encio.GetBuffer(lz4BlockSize)[:0],
	}
}

type lz4Writer struct {
	w      io.Writer
	buff   []byte
	comp   []byte
	hdr    [lz4HeaderSize]byte
	closed bool
}

func (lw *lz4Writer) Write(p []byte) (int, error) {
	if lw.closed {
		return 0, encio.NewError(io.ErrClosedPipe, "write to closed lz4 writer", "")
	}

	n := 0
	for len(p) > 0 {
		c := copy(lw.buff[len(lw.buff):lz4BlockSize], p)
		lw.buff = lw.buff[:len(lw.buff)+c]
		p = p[c:]
		n += c

		if len(lw.buff) == lz4BlockSize {
			if err := lw.flush(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func (lw *lz4Writer) header(method byte, compressed, raw int, checksum uint32) error {
	copy(lw.hdr[:], lz4Magic)
	lw.hdr[8] = method | lz4BlockLevel
	binary.LittleEndian.PutUint32(lw.hdr[9:], uint32(compressed))
	binary.LittleEndian.PutUint32(lw.hdr[13:], uint32(raw))
	binary.LittleEndian.PutUint32(lw.hdr[17:], checksum)
	return encio.Write(lw.hdr[:], lw.w)
}

func (lw *lz4Writer) flush() error {
	if len(lw.buff) == 0 {
		return nil
	}

	if lw.comp == nil {
		lw.comp = make([]byte, lz4.CompressBlockBound(lz4BlockSize))
	}

	method, data := byte(lz4MethodLZ4), lw.comp
	written, err := lz4.CompressBlock(lw.buff, lw.comp, nil)
	if err != nil {
		return encio.NewError(err, "lz4 compress", "")
	}
	if written == 0 || written >= len(lw.buff) {
		method, data = lz4MethodRaw, lw.buff
	} else {
		data = data[:written]
	}

	if err := lw.header(method, len(data), len(lw.buff), lz4Checksum(lw.buff)); err != nil {
		return err
	}
	if err := encio.Write(data, lw.w); err != nil {
		return err
	}

	lw.buff = lw.buff[:0]
	return nil
}

// Close flushes buffered data and writes the end of stream block.
func (lw *lz4Writer) Close() error {
	if lw.closed {
		return nil
	}

	if err := lw.flush(); err != nil {
		return err
	}
	lw.closed = true
	encio.PutBuffer(lw.buff)
	lw.buff = nil
	return lw.header(lz4MethodRaw, 0, 0, 0)
}

func newLZ4Reader(r io.Reader) *lz4Reader {
	return &lz4Reader{r: r}
}

type lz4Reader struct {
	r    io.Reader
	hdr  [lz4HeaderSize]byte
	comp []byte
	buff []byte
	out  []byte
	done bool
}

func (lr *lz4Reader) Read(p []byte) (int, error) {
	for len(lr.out) == 0 {
		if lr.done {
			return 0, io.EOF
		}
		if err := lr.block(); err != nil {
			return 0, err
		}
	}

	n := copy(p, lr.out)
	lr.out = lr.out[n:]
	return n, nil
}

func (lr *lz4Reader) block() error {
	if err := encio.Read(lr.hdr[:], lr.r); err != nil {
		return err
	}
	if !bytes.Equal(lr.hdr[:8], lz4Magic) {
		return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("bad lz4 block magic %q", lr.hdr[:8]))
	}

	method := lr.hdr[8] & 0xf0
	level := lr.hdr[8] & 0x0f
	compressed := binary.LittleEndian.Uint32(lr.hdr[9:])
	raw := binary.LittleEndian.Uint32(lr.hdr[13:])
	checksum := binary.LittleEndian.Uint32(lr.hdr[17:])

	maxRaw := uint32(1) << (10 + level)
	switch {
	case method != lz4MethodRaw && method != lz4MethodLZ4:
		return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("unknown lz4 block method %#x", method))
	case raw > maxRaw:
		return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("lz4 block of %v bytes exceeds block size %v", raw, maxRaw))
	case compressed > uint32(lz4.CompressBlockBound(int(maxRaw))):
		return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("lz4 block compressed to %v bytes exceeds block size %v", compressed, maxRaw))
	case method == lz4MethodRaw && compressed != raw:
		return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("raw lz4 block of %v bytes has compressed length %v", raw, compressed))
	}

	if raw == 0 {
		if compressed != 0 || checksum != 0 {
			return encio.NewIOError(encio.ErrMalformed, "bad lz4 end of stream block")
		}
		lr.done = true
		encio.PutBuffer(lr.comp)
		encio.PutBuffer(lr.buff)
		lr.comp, lr.buff = nil, nil
		return nil
	}

	if cap(lr.comp) < int(compressed) {
		encio.PutBuffer(lr.comp)
		lr.comp = encio.GetBuffer(int(compressed))
	}
	lr.comp = lr.comp[:compressed]
	if err := encio.Read(lr.comp, lr.r); err != nil {
		return err
	}

	if method == lz4MethodRaw {
		lr.out = lr.comp
	} else {
		if cap(lr.buff) < int(raw) {
			encio.PutBuffer(lr.buff)
			lr.buff = encio.GetBuffer(int(raw))
		}
		lr.buff = lr.buff[:raw]

		n, err := lz4.UncompressBlock(lr.comp, lr.buff)
		if err != nil {
			return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("lz4 decompress: %v", err))
		}
		if n != int(raw) {
			return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("lz4 block decompressed to %v bytes, expected %v", n, raw))
		}
		lr.out = lr.buff
	}

	if sum := lz4Checksum(lr.out); sum != checksum {
		return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("lz4 block checksum %#x, expected %#x", sum, checksum))
	}
	return nil
}

func (lr *lz4Reader) Close() error {
	return nil
}
