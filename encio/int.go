package encio

import (
	"io"
	"math"
)

// NewUint16 returns a Uint16.
func NewUint16() Uint16 {
	return Uint16{
		buff: make([]byte, 2),
	}
}

// Uint16 provides methods for encoding and decoding big-endian uint16s.
type Uint16 struct {
	buff []byte
}

// Encode writes the given uint16 to w.
func (e *Uint16) Encode(w io.Writer, n uint16) error {
	EncodeUint16(e.buff, n)
	return Write(e.buff, w)
}

// Decode decodes a uint16 from r.
func (e *Uint16) Decode(r io.Reader) (uint16, error) {
	err := Read(e.buff, r)
	return DecodeUint16(e.buff), err
}

// EncodeUint16 writes a uint16 to buff.
func EncodeUint16(buff []byte, n uint16) {
	buff[0] = uint8(n >> 8)
	buff[1] = uint8(n)
}

// DecodeUint16 reads a uint16 from buff.
func DecodeUint16(buff []byte) uint16 {
	return uint16(buff[0])<<8 | uint16(buff[1])
}

// NewInt16 returns an Int16.
func NewInt16() Int16 {
	return Int16{
		buff: make([]byte, 2),
	}
}

// Int16 provides methods for encoding and decoding big-endian int16s.
type Int16 struct {
	buff []byte
}

// Encode writes the given int16 to w.
func (e *Int16) Encode(w io.Writer, n int16) error {
	EncodeUint16(e.buff, uint16(n))
	return Write(e.buff, w)
}

// Decode decodes an int16 from r.
func (e *Int16) Decode(r io.Reader) (int16, error) {
	err := Read(e.buff, r)
	return int16(DecodeUint16(e.buff)), err
}

// NewInt32 returns a new Int32.
func NewInt32() Int32 {
	return Int32{
		buff: make([]byte, 4),
	}
}

// Int32 provides methods for encoding and decoding big-endian int32s.
type Int32 struct {
	buff []byte
}

// Encode writes the given int32 to w.
func (e *Int32) Encode(w io.Writer, n int32) error {
	EncodeUint32(e.buff, uint32(n))
	return Write(e.buff, w)
}

// Decode decodes a int32 from r.
func (e *Int32) Decode(r io.Reader) (int32, error) {
	err := Read(e.buff, r)
	return int32(DecodeUint32(e.buff)), err
}

// EncodeUint32 writes a uint32 to buff.
func EncodeUint32(buff []byte, n uint32) {
	buff[0] = uint8(n >> 24)
	buff[1] = uint8(n >> 16)
	buff[2] = uint8(n >> 8)
	buff[3] = uint8(n)
}

// DecodeUint32 reads a uint32 from buff.
func DecodeUint32(buff []byte) uint32 {
	n := uint32(buff[0]) << 24
	n |= uint32(buff[1]) << 16
	n |= uint32(buff[2]) << 8
	n |= uint32(buff[3])
	return n
}

// NewInt64 returns a new Int64.
func NewInt64() Int64 {
	return Int64{
		buff: make([]byte, 8),
	}
}

// Int64 provides methods for encoding and decoding big-endian int64s.
type Int64 struct {
	buff []byte
}

// Encode writes the given int64 to w.
func (e *Int64) Encode(w io.Writer, n int64) error {
	EncodeUint64(e.buff, uint64(n))
	return Write(e.buff, w)
}

// Decode decodes an int64 from r.
func (e *Int64) Decode(r io.Reader) (int64, error) {
	err := Read(e.buff, r)
	return int64(DecodeUint64(e.buff)), err
}

// EncodeUint64 writes a uint64 to buff.
func EncodeUint64(buff []byte, n uint64) {
	buff[0] = uint8(n >> 56)
	buff[1] = uint8(n >> 48)
	buff[2] = uint8(n >> 40)
	buff[3] = uint8(n >> 32)
	buff[4] = uint8(n >> 24)
	buff[5] = uint8(n >> 16)
	buff[6] = uint8(n >> 8)
	buff[7] = uint8(n)
}

// DecodeUint64 reads a uint64 from buff.
func DecodeUint64(buff []byte) uint64 {
	return uint64(DecodeUint32(buff))<<32 | uint64(DecodeUint32(buff[4:]))
}

// EncodeFloat32 writes the IEEE-754 representation of f to buff.
func EncodeFloat32(buff []byte, f float32) {
	EncodeUint32(buff, math.Float32bits(f))
}

// DecodeFloat32 reads an IEEE-754 float32 from buff.
func DecodeFloat32(buff []byte) float32 {
	return math.Float32frombits(DecodeUint32(buff))
}

// EncodeFloat64 writes the IEEE-754 representation of f to buff.
func EncodeFloat64(buff []byte, f float64) {
	EncodeUint64(buff, math.Float64bits(f))
}

// DecodeFloat64 reads an IEEE-754 float64 from buff.
func DecodeFloat64(buff []byte) float64 {
	return math.Float64frombits(DecodeUint64(buff))
}
