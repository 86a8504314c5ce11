package encio

import (
	"io"
)

// Buffer is a buffer for data. It operates similar to bytes.Buffer.
// The list accumulator encodes each element into one, reads back the element's tag and name, and commits the rest to the stream.
type Buffer struct {
	buff []byte
	off  int
}

// Read implements io.Reader
func (b *Buffer) Read(buff []byte) (int, error) {
	if b.Len() == 0 && len(buff) > 0 {
		return 0, io.EOF
	}
	n := copy(buff, b.buff[b.off:])
	b.off += n
	return n, nil
}

// ReadByte implements io.ByteReader
func (b *Buffer) ReadByte() (byte, error) {
	if b.Len() == 0 {
		return 0, io.EOF
	}
	by := b.buff[b.off]
	b.off++
	return by, nil
}

// Write implements io.Writer
func (b *Buffer) Write(buff []byte) (int, error) {
	return copy(b.buff[b.grow(len(buff)):], buff), nil
}

// Len returns the length of the unread portion of the buffer
func (b *Buffer) Len() int {
	return len(b.buff) - b.off
}

// Bytes returns the unread portion of the buffer.
// The slice is only valid until the next modification of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buff[b.off:]
}

// Reset empties the buffer, retaining its storage.
func (b *Buffer) Reset() {
	b.buff = b.buff[:0]
	b.off = 0
}

func (b *Buffer) grow(n int) int {
	l := len(b.buff)
	if l+n <= cap(b.buff) {
		b.buff = b.buff[:l+n]
		return l
	}

	l -= b.off
	c := cap(b.buff)
	if (l+n)*8 <= c { // let cap grow to 8 time the size so we're not always sliding.
		// slide down
		copy(b.buff, b.buff[b.off:])
		b.buff = b.buff[:l+n]
		b.off = 0
		return l
	}
	// must allocate
	nb := make([]byte, l+n, c*2+n)
	copy(nb, b.buff[b.off:])
	b.buff = nb
	b.off = 0
	return l
}
