package wire

import (
	"fmt"
	"io"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
)

// State is the lookahead state of a Decoder.
type State uint8

// Decoder states.
//
// PeekTag moves Idle to TagPending, reading one byte.
// PeekName and SkipName move TagPending to TagAndNamePending, reading the name.
// Consuming a value moves back to Idle, reading the payload.
const (
	Idle State = iota
	TagPending
	TagAndNamePending
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case TagPending:
		return "TagPending"
	case TagAndNamePending:
		return "TagAndNamePending"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// NewDecoder returns a new Decoder reading from r.
// Decoder reads exactly the bytes of the values it decodes, and does not buffer r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:       r,
		buff:    make([]byte, 8),
		nameDec: encio.NewName(),
	}
}

// Decoder reads tagged values from a stream.
//
// Before a value is interpreted its tag, and in compounds its name, is read and cached.
// A cached tag is consumed by exactly one of the Decode*, Begin* or Skip methods,
// and a cached name is consumed either by Identifier, or discarded when the value is consumed.
// Calling PeekTag again before that returns the cached tag without reading.
//
// Inside a list, values are neither tagged nor named; PeekTag returns the list's element tag without reading,
// and End once all of the list's elements have been consumed.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	r       io.Reader
	state   State
	tag     tag.Tag
	name    string
	hasName bool
	frames  []decFrame
	buff    []byte
	nameDec encio.Name

	disallowUnknownFields bool
}

type decFrame struct {
	kind      tag.Tag // tag.Compound or tag.List
	elem      tag.Tag
	remaining int
}

// DisallowUnknownFields causes struct decoding to return an error when a compound holds a field
// that the struct does not have, instead of skipping it.
func (d *Decoder) DisallowUnknownFields() {
	d.disallowUnknownFields = true
}

// UnknownFieldsDisallowed returns true if DisallowUnknownFields has been called.
func (d *Decoder) UnknownFieldsDisallowed() bool {
	return d.disallowUnknownFields
}

// State returns the lookahead state.
func (d *Decoder) State() State {
	return d.state
}

// Depth returns the number of open compounds and lists.
func (d *Decoder) Depth() int {
	return len(d.frames)
}

func (d *Decoder) top() *decFrame {
	if len(d.frames) == 0 {
		return nil
	}
	return &d.frames[len(d.frames)-1]
}

// inList returns true if the next value is a list element.
func (d *Decoder) inList() bool {
	f := d.top()
	return f != nil && f.kind == tag.List
}

// PeekTag returns the tag of the next value.
// Repeated calls return the same tag until the value is consumed.
// At the root, io.EOF is returned if the stream ends before the tag.
func (d *Decoder) PeekTag() (tag.Tag, error) {
	if d.state != Idle {
		return d.tag, nil
	}

	if f := d.top(); f != nil && f.kind == tag.List {
		if f.remaining == 0 {
			return tag.End, nil
		}
		d.tag = f.elem
		d.state = TagPending
		return d.tag, nil
	}

	if len(d.frames) == 0 {
		// a stream of root values can end cleanly.
		if _, err := io.ReadFull(d.r, d.buff[:1]); err != nil {
			if err == io.EOF {
				return tag.End, io.EOF
			}
			return tag.End, encio.NewIOError(err, "reading root tag")
		}
	} else if err := encio.Read(d.buff[:1], d.r); err != nil {
		return tag.End, err
	}

	t := tag.Tag(d.buff[0])
	if !t.Valid() {
		return tag.End, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("unknown tag %v", uint8(t)))
	}

	d.tag = t
	d.state = TagPending
	return t, nil
}

// named returns true if the pending value carries a name on the wire.
func (d *Decoder) named() bool {
	return d.tag != tag.End && !d.inList()
}

// PeekName returns the name of the next value, reading it if it has not been read yet.
// It returns ErrExpectedIdentifier if the next value has no name, or its name was already taken by Identifier.
func (d *Decoder) PeekName() (string, error) {
	if _, err := d.PeekTag(); err != nil {
		return "", err
	}
	if !d.named() {
		return "", encio.NewError(encio.ErrExpectedIdentifier, fmt.Sprintf("%v value has no name", d.tag), "")
	}

	if d.state == TagPending {
		name, err := d.nameDec.Decode(d.r)
		if err != nil {
			return "", err
		}
		d.name, d.hasName = name, true
		d.state = TagAndNamePending
	}

	if !d.hasName {
		return "", encio.NewError(encio.ErrExpectedIdentifier, "name already consumed", "")
	}
	return d.name, nil
}

// Identifier returns the cached name of the next value, and clears it from the cache.
// The name must have been read with PeekName or NextField; if no name is cached ErrExpectedIdentifier is returned.
func (d *Decoder) Identifier() (string, error) {
	if d.state != TagAndNamePending || !d.hasName {
		return "", encio.NewError(encio.ErrExpectedIdentifier, fmt.Sprintf("no cached name in state %v", d.state), "")
	}

	name := d.name
	d.name, d.hasName = "", false
	return name, nil
}

// SkipName consumes the name of the next value without returning it.
// If the name was already read it is discarded from the cache, else it is read from the stream.
func (d *Decoder) SkipName() error {
	if _, err := d.PeekTag(); err != nil {
		return err
	}

	if d.state == TagPending && d.named() {
		if err := d.nameDec.Skip(d.r); err != nil {
			return err
		}
		d.state = TagAndNamePending
	}

	d.name, d.hasName = "", false
	return nil
}

// begin checks that the next value has tag want, and consumes its tag and name.
// On a mismatch the tag stays pending.
func (d *Decoder) begin(want tag.Tag) error {
	got, err := d.PeekTag()
	if err != nil {
		return err
	}
	if got != want {
		return mismatch(want, got)
	}

	if err := d.SkipName(); err != nil {
		return err
	}

	d.state = Idle
	if f := d.top(); f != nil && f.kind == tag.List {
		f.remaining--
	}
	return nil
}

func (d *Decoder) read(n int) ([]byte, error) {
	if err := encio.Read(d.buff[:n], d.r); err != nil {
		return nil, err
	}
	return d.buff[:n], nil
}

// DecodeByte reads a Byte.
func (d *Decoder) DecodeByte() (int8, error) {
	if err := d.begin(tag.Byte); err != nil {
		return 0, err
	}
	b, err := d.read(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// DecodeShort reads a Short.
func (d *Decoder) DecodeShort() (int16, error) {
	if err := d.begin(tag.Short); err != nil {
		return 0, err
	}
	b, err := d.read(2)
	if err != nil {
		return 0, err
	}
	return int16(encio.DecodeUint16(b)), nil
}

// DecodeInt reads an Int.
func (d *Decoder) DecodeInt() (int32, error) {
	if err := d.begin(tag.Int); err != nil {
		return 0, err
	}
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return int32(encio.DecodeUint32(b)), nil
}

// DecodeLong reads a Long.
func (d *Decoder) DecodeLong() (int64, error) {
	if err := d.begin(tag.Long); err != nil {
		return 0, err
	}
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return int64(encio.DecodeUint64(b)), nil
}

// DecodeFloat reads a Float.
func (d *Decoder) DecodeFloat() (float32, error) {
	if err := d.begin(tag.Float); err != nil {
		return 0, err
	}
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return encio.DecodeFloat32(b), nil
}

// DecodeDouble reads a Double.
func (d *Decoder) DecodeDouble() (float64, error) {
	if err := d.begin(tag.Double); err != nil {
		return 0, err
	}
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return encio.DecodeFloat64(b), nil
}

// DecodeString reads a String.
func (d *Decoder) DecodeString() (string, error) {
	if err := d.begin(tag.String); err != nil {
		return "", err
	}
	return d.nameDec.Decode(d.r)
}

// arrayLen consumes the header of an array value, returning its element count.
func (d *Decoder) arrayLen(t tag.Tag) (int, error) {
	if err := d.begin(t); err != nil {
		return 0, err
	}
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}

	l := int32(encio.DecodeUint32(b))
	if l < 0 {
		return 0, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("%v of negative length %v", t, l))
	}
	if uintptr(l)*uintptr(t.ElemSize()) > encio.TooBig {
		return 0, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("%v of %v elements is too big", t, l))
	}
	return int(l), nil
}

// DecodeByteArray reads a ByteArray.
func (d *Decoder) DecodeByteArray() ([]byte, error) {
	l, err := d.arrayLen(tag.ByteArray)
	if err != nil {
		return nil, err
	}

	return encio.ReadBytes(d.r, l)
}

// DecodeIntArray reads an IntArray.
func (d *Decoder) DecodeIntArray() ([]int32, error) {
	l, err := d.arrayLen(tag.IntArray)
	if err != nil {
		return nil, err
	}

	v := make([]int32, 0, min(l, encio.MaxPrealloc/4))
	for i := 0; i < l; i++ {
		b, err := d.read(4)
		if err != nil {
			return nil, err
		}
		v = append(v, int32(encio.DecodeUint32(b)))
	}
	return v, nil
}

// DecodeLongArray reads a LongArray.
func (d *Decoder) DecodeLongArray() ([]int64, error) {
	l, err := d.arrayLen(tag.LongArray)
	if err != nil {
		return nil, err
	}

	v := make([]int64, 0, min(l, encio.MaxPrealloc/8))
	for i := 0; i < l; i++ {
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}
		v = append(v, int64(encio.DecodeUint64(b)))
	}
	return v, nil
}

func (d *Decoder) push(f decFrame) error {
	if len(d.frames) >= MaxDepth {
		return encio.NewError(encio.ErrTooDeep, fmt.Sprintf("more than %v nested compounds and lists", MaxDepth), "")
	}
	d.frames = append(d.frames, f)
	return nil
}

// BeginCompound consumes the header of a Compound.
// Its fields are read by calling NextField until it returns false, and it must be closed with EndCompound.
func (d *Decoder) BeginCompound() error {
	if err := d.begin(tag.Compound); err != nil {
		return err
	}
	return d.push(decFrame{kind: tag.Compound})
}

// NextField reads the tag and name of the next field of the innermost Compound.
// It returns false once the End tag is reached. The returned name has been taken from the cache;
// the field's value must be consumed next, by decoding or skipping it.
func (d *Decoder) NextField() (string, bool, error) {
	if f := d.top(); f == nil || f.kind != tag.Compound {
		return "", false, encio.NewError(encio.ErrExpectedCompound, "NextField outside of compound", "")
	}

	t, err := d.PeekTag()
	if err != nil {
		return "", false, err
	}
	if t == tag.End {
		return "", false, nil
	}

	if _, err := d.PeekName(); err != nil {
		return "", false, err
	}
	name, err := d.Identifier()
	return name, true, err
}

// EndCompound consumes the End tag closing the innermost Compound.
func (d *Decoder) EndCompound() error {
	if f := d.top(); f == nil || f.kind != tag.Compound {
		return encio.NewError(encio.ErrExpectedCompound, "EndCompound outside of compound", "")
	}

	t, err := d.PeekTag()
	if err != nil {
		return err
	}
	if t != tag.End {
		return mismatch(tag.End, t)
	}

	d.state = Idle
	d.frames = d.frames[:len(d.frames)-1]
	return nil
}

// BeginList consumes the header of a List, returning its element tag and length.
// Exactly n elements follow; they are read while NextElement returns true, and the list must be closed with EndList.
func (d *Decoder) BeginList() (elem tag.Tag, n int, err error) {
	if err := d.begin(tag.List); err != nil {
		return tag.End, 0, err
	}

	b, err := d.read(5)
	if err != nil {
		return tag.End, 0, err
	}

	elem = tag.Tag(b[0])
	l := int32(encio.DecodeUint32(b[1:]))
	switch {
	case !elem.Valid():
		return tag.End, 0, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("unknown list element tag %v", uint8(elem)))
	case l < 0:
		return tag.End, 0, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("list of negative length %v", l))
	case l > 0 && elem == tag.End:
		return tag.End, 0, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("list of %v End elements", l))
	case uintptr(l) > encio.TooBig:
		return tag.End, 0, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("list of %v elements is too big", l))
	}

	if err := d.push(decFrame{kind: tag.List, elem: elem, remaining: int(l)}); err != nil {
		return tag.End, 0, err
	}
	return elem, int(l), nil
}

// NextElement returns true if the innermost List has elements left to read.
func (d *Decoder) NextElement() (bool, error) {
	f := d.top()
	if f == nil || f.kind != tag.List {
		return false, encio.NewError(encio.ErrExpectedList, "NextElement outside of list", "")
	}
	return f.remaining > 0, nil
}

// EndList closes the innermost List. All of its elements must have been read.
func (d *Decoder) EndList() error {
	f := d.top()
	if f == nil || f.kind != tag.List {
		return encio.NewError(encio.ErrExpectedList, "EndList outside of list", "")
	}
	if f.remaining != 0 {
		return encio.NewError(encio.ErrMalformed, fmt.Sprintf("%v list elements left unread", f.remaining), "")
	}

	d.state = Idle
	d.frames = d.frames[:len(d.frames)-1]
	return nil
}

// Skip consumes the next value, whatever its tag.
func (d *Decoder) Skip() error {
	t, err := d.PeekTag()
	if err != nil {
		return err
	}

	switch t {
	case tag.End:
		return encio.NewError(encio.ErrMalformed, "cannot skip End", "")

	case tag.Byte, tag.Short, tag.Int, tag.Long, tag.Float, tag.Double:
		if err := d.begin(t); err != nil {
			return err
		}
		return encio.Discard(d.r, int64(t.Size()))

	case tag.String:
		if err := d.begin(t); err != nil {
			return err
		}
		return d.nameDec.Skip(d.r)

	case tag.ByteArray, tag.IntArray, tag.LongArray:
		l, err := d.arrayLen(t)
		if err != nil {
			return err
		}
		return encio.Discard(d.r, int64(l)*int64(t.ElemSize()))

	case tag.List:
		if _, _, err := d.BeginList(); err != nil {
			return err
		}
		for {
			more, err := d.NextElement()
			if err != nil {
				return err
			}
			if !more {
				break
			}
			if err := d.Skip(); err != nil {
				return err
			}
		}
		return d.EndList()

	case tag.Compound:
		if err := d.BeginCompound(); err != nil {
			return err
		}
		for {
			_, more, err := d.NextField()
			if err != nil {
				return err
			}
			if !more {
				break
			}
			if err := d.Skip(); err != nil {
				return err
			}
		}
		return d.EndCompound()

	default:
		return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("unknown tag %v", uint8(t)))
	}
}
