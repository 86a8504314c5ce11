package wire

import (
	"fmt"
	"io"
	"math"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
)

// NewEncoder returns a new Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:    w,
		buff: make([]byte, 8),
		name: encio.NewName(),
	}
}

// Encoder writes tagged values to a stream.
//
// Named values are written with the Encode* methods, BeginCompound and BeginList.
// While a list is open, values must be added with AppendElement instead;
// each element is encoded by a detached Encoder into a scratch buffer, and only its payload is committed to the stream,
// once its tag is known to match the list's element tag.
//
// Failed calls are not rolled back; after an error the stream is in an unknown position and should be discarded.
// Encoder is not safe for concurrent use.
type Encoder struct {
	w      io.Writer
	frames []encFrame
	base   int // depth of the Encoder that created this one
	buff   []byte
	name   encio.Name
}

type encFrame struct {
	kind    tag.Tag // tag.Compound or tag.List
	elem    tag.Tag
	len     int
	n       int
	scratch *encio.Buffer
}

// Depth returns the number of open compounds and lists, including those of parent Encoders.
func (e *Encoder) Depth() int {
	return e.base + len(e.frames)
}

func (e *Encoder) top() *encFrame {
	if len(e.frames) == 0 {
		return nil
	}
	return &e.frames[len(e.frames)-1]
}

// header writes the tag and name of a value.
func (e *Encoder) header(t tag.Tag, name string) error {
	if f := e.top(); f != nil && f.kind == tag.List {
		return encio.NewError(
			encio.ErrNotWritingToCompound,
			fmt.Sprintf("cannot write %v %q while a list is open; use AppendElement", t, name),
			"",
		)
	}

	e.buff[0] = byte(t)
	if err := encio.Write(e.buff[:1], e.w); err != nil {
		return err
	}
	return e.name.Encode(e.w, name)
}

func (e *Encoder) push(f encFrame) error {
	if e.Depth() >= MaxDepth {
		return encio.NewError(encio.ErrTooDeep, fmt.Sprintf("more than %v nested compounds and lists", MaxDepth), "")
	}
	e.frames = append(e.frames, f)
	return nil
}

// EncodeByte writes a Byte.
func (e *Encoder) EncodeByte(name string, v int8) error {
	if err := e.header(tag.Byte, name); err != nil {
		return err
	}
	e.buff[0] = byte(v)
	return encio.Write(e.buff[:1], e.w)
}

// EncodeBool writes a Byte holding 1 for true or 0 for false.
func (e *Encoder) EncodeBool(name string, v bool) error {
	if v {
		return e.EncodeByte(name, 1)
	}
	return e.EncodeByte(name, 0)
}

// EncodeShort writes a Short.
func (e *Encoder) EncodeShort(name string, v int16) error {
	if err := e.header(tag.Short, name); err != nil {
		return err
	}
	encio.EncodeUint16(e.buff, uint16(v))
	return encio.Write(e.buff[:2], e.w)
}

// EncodeInt writes an Int.
func (e *Encoder) EncodeInt(name string, v int32) error {
	if err := e.header(tag.Int, name); err != nil {
		return err
	}
	encio.EncodeUint32(e.buff, uint32(v))
	return encio.Write(e.buff[:4], e.w)
}

// EncodeLong writes a Long.
func (e *Encoder) EncodeLong(name string, v int64) error {
	if err := e.header(tag.Long, name); err != nil {
		return err
	}
	encio.EncodeUint64(e.buff, uint64(v))
	return encio.Write(e.buff[:8], e.w)
}

// EncodeFloat writes a Float.
func (e *Encoder) EncodeFloat(name string, v float32) error {
	if err := e.header(tag.Float, name); err != nil {
		return err
	}
	encio.EncodeFloat32(e.buff, v)
	return encio.Write(e.buff[:4], e.w)
}

// EncodeDouble writes a Double.
func (e *Encoder) EncodeDouble(name string, v float64) error {
	if err := e.header(tag.Double, name); err != nil {
		return err
	}
	encio.EncodeFloat64(e.buff, v)
	return encio.Write(e.buff[:8], e.w)
}

// EncodeString writes a String.
// The payload is an unsigned 16 bit length followed by UTF-8 bytes, the same as names.
func (e *Encoder) EncodeString(name string, v string) error {
	if err := e.header(tag.String, name); err != nil {
		return err
	}
	return e.name.Encode(e.w, v)
}

func (e *Encoder) arrayLen(t tag.Tag, name string, l int) error {
	if l > math.MaxInt32 {
		return encio.NewError(encio.ErrConversion, fmt.Sprintf("%v of %v elements does not fit a 32 bit count", t, l), "")
	}
	if err := e.header(t, name); err != nil {
		return err
	}
	encio.EncodeUint32(e.buff, uint32(l))
	return encio.Write(e.buff[:4], e.w)
}

// EncodeByteArray writes a ByteArray.
func (e *Encoder) EncodeByteArray(name string, v []byte) error {
	if err := e.arrayLen(tag.ByteArray, name, len(v)); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return encio.Write(v, e.w)
}

// EncodeIntArray writes an IntArray.
func (e *Encoder) EncodeIntArray(name string, v []int32) error {
	if err := e.arrayLen(tag.IntArray, name, len(v)); err != nil {
		return err
	}
	for _, n := range v {
		encio.EncodeUint32(e.buff, uint32(n))
		if err := encio.Write(e.buff[:4], e.w); err != nil {
			return err
		}
	}
	return nil
}

// EncodeLongArray writes a LongArray.
func (e *Encoder) EncodeLongArray(name string, v []int64) error {
	if err := e.arrayLen(tag.LongArray, name, len(v)); err != nil {
		return err
	}
	for _, n := range v {
		encio.EncodeUint64(e.buff, uint64(n))
		if err := encio.Write(e.buff[:8], e.w); err != nil {
			return err
		}
	}
	return nil
}

// BeginCompound writes the header of a Compound.
// Its fields are written with the named Encode* methods, and it must be closed with EndCompound.
func (e *Encoder) BeginCompound(name string) error {
	if err := e.header(tag.Compound, name); err != nil {
		return err
	}
	return e.push(encFrame{kind: tag.Compound})
}

// EndCompound writes the End tag closing the innermost Compound.
func (e *Encoder) EndCompound() error {
	f := e.top()
	if f == nil || f.kind != tag.Compound {
		return encio.NewError(encio.ErrNotWritingToCompound, "EndCompound without open compound", "")
	}

	e.buff[0] = byte(tag.End)
	if err := encio.Write(e.buff[:1], e.w); err != nil {
		return err
	}
	e.frames = e.frames[:len(e.frames)-1]
	return nil
}

// BeginList writes the header of a List that will hold n elements.
// The element tag is not known until the first element is appended, and so is written along with it.
// Exactly n elements must be appended before EndList.
func (e *Encoder) BeginList(name string, n int) error {
	if n < 0 || n > math.MaxInt32 {
		return encio.NewError(encio.ErrConversion, fmt.Sprintf("list of %v elements does not fit a 32 bit count", n), "")
	}
	if err := e.header(tag.List, name); err != nil {
		return err
	}
	return e.push(encFrame{kind: tag.List, elem: tag.End, len: n})
}

// AppendElement adds an element to the innermost List.
//
// encode is given a detached Encoder, and must write exactly one named value to it; the name is discarded.
// encode must not use e.
// The tag of the first element fixes the element tag of the list, and every later element must have the same tag,
// else ErrIncompatibleListType is returned. If encode writes nothing, or writes an End tag, ErrUnknownListType is returned.
// Elements committed before a failure are not rolled back.
func (e *Encoder) AppendElement(encode func(*Encoder) error) error {
	f := e.top()
	if f == nil || f.kind != tag.List {
		return encio.NewError(encio.ErrNotWritingToList, "AppendElement without open list", "")
	}
	if f.n >= f.len {
		return encio.NewError(encio.ErrNotWritingToList, fmt.Sprintf("list of %v elements is full", f.len), "")
	}

	if f.scratch == nil {
		f.scratch = new(encio.Buffer)
	}
	f.scratch.Reset()

	sub := NewEncoder(f.scratch)
	sub.base = e.Depth()
	if err := encode(sub); err != nil {
		return err
	}
	if len(sub.frames) != 0 {
		return encio.NewError(encio.ErrNotWritingToCompound, "list element left a compound or list open", "")
	}

	first, err := f.scratch.ReadByte()
	if err != nil {
		return encio.NewError(encio.ErrUnknownListType, "element wrote nothing", "")
	}

	t := tag.Tag(first)
	if t == tag.End || !t.Valid() {
		return encio.NewError(encio.ErrUnknownListType, fmt.Sprintf("element has tag %v", t), "")
	}

	if f.n == 0 {
		f.elem = t
		e.buff[0] = byte(t)
		encio.EncodeUint32(e.buff[1:], uint32(f.len))
		if err := encio.Write(e.buff[:5], e.w); err != nil {
			return err
		}
	} else if t != f.elem {
		return encio.NewError(
			encio.ErrIncompatibleListType,
			fmt.Sprintf("element %v has tag %v, list holds %v", f.n, t, f.elem),
			"",
		)
	}

	// skip the name of the detached value; only the payload belongs in a list.
	if err := encio.Read(e.buff[:2], f.scratch); err != nil {
		return err
	}
	if err := encio.Discard(f.scratch, int64(encio.DecodeUint16(e.buff))); err != nil {
		return err
	}
	if err := encio.Write(f.scratch.Bytes(), e.w); err != nil {
		return err
	}

	f.n++
	return nil
}

// EndList closes the innermost List.
// An empty list is written with an End element tag.
func (e *Encoder) EndList() error {
	f := e.top()
	if f == nil || f.kind != tag.List {
		return encio.NewError(encio.ErrNotWritingToList, "EndList without open list", "")
	}
	if f.n != f.len {
		return encio.NewError(encio.ErrNotWritingToList, fmt.Sprintf("list declared %v elements but %v were appended", f.len, f.n), "")
	}

	if f.len == 0 {
		e.buff[0] = byte(tag.End)
		encio.EncodeUint32(e.buff[1:], 0)
		if err := encio.Write(e.buff[:5], e.w); err != nil {
			return err
		}
	}

	e.frames = e.frames[:len(e.frames)-1]
	return nil
}
