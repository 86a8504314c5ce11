package tree

import (
	"fmt"
	"io"
	"math"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
)

// MaxDepth is the deepest nesting of compounds and lists that Read and Write accept.
const MaxDepth = 512

// Write writes v to w as a named value.
func Write(w io.Writer, name string, v Value) error {
	wr := writer{
		w:    w,
		buff: make([]byte, 1),
		name: encio.NewName(),
		i16:  encio.NewInt16(),
		i32:  encio.NewInt32(),
		i64:  encio.NewInt64(),
	}
	return wr.named(name, v, 0)
}

type writer struct {
	w    io.Writer
	buff []byte
	name encio.Name
	i16  encio.Int16
	i32  encio.Int32
	i64  encio.Int64
}

func (wr *writer) named(name string, v Value, depth int) error {
	if v == nil {
		return encio.NewError(encio.ErrNilPointer, fmt.Sprintf("field %q has no value", name), "")
	}

	wr.buff[0] = byte(v.Tag())
	if err := encio.Write(wr.buff[:1], wr.w); err != nil {
		return err
	}
	if err := wr.name.Encode(wr.w, name); err != nil {
		return err
	}
	return wr.payload(v, depth)
}

func (wr *writer) count(n int) error {
	if n > math.MaxInt32 {
		return encio.NewError(encio.ErrConversion, fmt.Sprintf("%v elements does not fit a 32 bit count", n), "")
	}
	return wr.i32.Encode(wr.w, int32(n))
}

func (wr *writer) payload(v Value, depth int) error {
	switch v := v.(type) {
	case Byte:
		wr.buff[0] = byte(v)
		return encio.Write(wr.buff[:1], wr.w)

	case Short:
		return wr.i16.Encode(wr.w, int16(v))

	case Int:
		return wr.i32.Encode(wr.w, int32(v))

	case Long:
		return wr.i64.Encode(wr.w, int64(v))

	case Float:
		return wr.i32.Encode(wr.w, int32(math.Float32bits(float32(v))))

	case Double:
		return wr.i64.Encode(wr.w, int64(math.Float64bits(float64(v))))

	case String:
		return wr.name.Encode(wr.w, string(v))

	case ByteArray:
		if err := wr.count(len(v)); err != nil {
			return err
		}
		if len(v) == 0 {
			return nil
		}
		return encio.Write(v, wr.w)

	case IntArray:
		if err := wr.count(len(v)); err != nil {
			return err
		}
		for _, n := range v {
			if err := wr.i32.Encode(wr.w, n); err != nil {
				return err
			}
		}
		return nil

	case LongArray:
		if err := wr.count(len(v)); err != nil {
			return err
		}
		for _, n := range v {
			if err := wr.i64.Encode(wr.w, n); err != nil {
				return err
			}
		}
		return nil

	case List:
		return wr.list(v, depth)

	case Compound:
		if depth >= MaxDepth {
			return encio.NewError(encio.ErrTooDeep, fmt.Sprintf("more than %v nested compounds and lists", MaxDepth), "")
		}
		for _, f := range v {
			if err := wr.named(f.Name, f.Value, depth+1); err != nil {
				return err
			}
		}
		wr.buff[0] = byte(tag.End)
		return encio.Write(wr.buff[:1], wr.w)

	default:
		return encio.NewError(encio.ErrBadType, fmt.Sprintf("%T is not a tree value", v), "")
	}
}

func (wr *writer) list(l List, depth int) error {
	if depth >= MaxDepth {
		return encio.NewError(encio.ErrTooDeep, fmt.Sprintf("more than %v nested compounds and lists", MaxDepth), "")
	}

	elem := l.Elem
	if len(l.Values) == 0 {
		elem = tag.End
	} else if elem == tag.End || !elem.Valid() {
		return encio.NewError(encio.ErrUnknownListType, fmt.Sprintf("list of %v elements has element tag %v", len(l.Values), elem), "")
	}

	for i, v := range l.Values {
		if v == nil || v.Tag() != elem {
			return encio.NewError(encio.ErrIncompatibleListType, fmt.Sprintf("element %v of list of %v is %T", i, elem, v), "")
		}
	}

	wr.buff[0] = byte(elem)
	if err := encio.Write(wr.buff[:1], wr.w); err != nil {
		return err
	}
	if err := wr.count(len(l.Values)); err != nil {
		return err
	}

	for _, v := range l.Values {
		if err := wr.payload(v, depth+1); err != nil {
			return err
		}
	}
	return nil
}
