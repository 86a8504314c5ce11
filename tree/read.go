package tree

import (
	"fmt"
	"io"
	"math"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
)

// Read reads one named value from r.
// It returns io.EOF if r is already at its end.
func Read(r io.Reader) (name string, v Value, err error) {
	rd := reader{
		r:    r,
		buff: make([]byte, 1),
		name: encio.NewName(),
		i16:  encio.NewInt16(),
		i32:  encio.NewInt32(),
		i64:  encio.NewInt64(),
	}

	if _, err := io.ReadFull(r, rd.buff[:1]); err != nil {
		if err == io.EOF {
			return "", nil, io.EOF
		}
		return "", nil, encio.NewIOError(err, "reading root tag")
	}

	t := tag.Tag(rd.buff[0])
	if !t.Valid() {
		return "", nil, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("unknown tag %v", uint8(t)))
	}
	if t == tag.End {
		return "", nil, encio.NewIOError(encio.ErrMalformed, "stream starts with an End tag")
	}

	name, err = rd.name.Decode(r)
	if err != nil {
		return "", nil, err
	}

	v, err = rd.payload(t, 0)
	return name, v, err
}

type reader struct {
	r    io.Reader
	buff []byte
	name encio.Name
	i16  encio.Int16
	i32  encio.Int32
	i64  encio.Int64
}

func (rd *reader) readByte() (byte, error) {
	if err := encio.Read(rd.buff, rd.r); err != nil {
		return 0, err
	}
	return rd.buff[0], nil
}

func (rd *reader) tag() (tag.Tag, error) {
	b, err := rd.readByte()
	if err != nil {
		return tag.End, err
	}
	t := tag.Tag(b)
	if !t.Valid() {
		return tag.End, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("unknown tag %v", uint8(t)))
	}
	return t, nil
}

func (rd *reader) count() (int, error) {
	n, err := rd.i32.Decode(rd.r)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("negative count %v", n))
	}
	if uintptr(n) > encio.TooBig {
		return 0, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("count %v is too big", n))
	}
	return int(n), nil
}

func (rd *reader) payload(t tag.Tag, depth int) (Value, error) {
	switch t {
	case tag.Byte:
		b, err := rd.readByte()
		return Byte(b), err

	case tag.Short:
		n, err := rd.i16.Decode(rd.r)
		return Short(n), err

	case tag.Int:
		n, err := rd.i32.Decode(rd.r)
		return Int(n), err

	case tag.Long:
		n, err := rd.i64.Decode(rd.r)
		return Long(n), err

	case tag.Float:
		n, err := rd.i32.Decode(rd.r)
		return Float(math.Float32frombits(uint32(n))), err

	case tag.Double:
		n, err := rd.i64.Decode(rd.r)
		return Double(math.Float64frombits(uint64(n))), err

	case tag.String:
		s, err := rd.name.Decode(rd.r)
		return String(s), err

	case tag.ByteArray:
		n, err := rd.count()
		if err != nil {
			return nil, err
		}
		b, err := encio.ReadBytes(rd.r, n)
		if err != nil {
			return nil, err
		}
		return ByteArray(b), nil

	case tag.IntArray:
		n, err := rd.count()
		if err != nil {
			return nil, err
		}
		v := make(IntArray, 0, min(n, encio.MaxPrealloc/4))
		for i := 0; i < n; i++ {
			el, err := rd.i32.Decode(rd.r)
			if err != nil {
				return nil, err
			}
			v = append(v, el)
		}
		return v, nil

	case tag.LongArray:
		n, err := rd.count()
		if err != nil {
			return nil, err
		}
		v := make(LongArray, 0, min(n, encio.MaxPrealloc/8))
		for i := 0; i < n; i++ {
			el, err := rd.i64.Decode(rd.r)
			if err != nil {
				return nil, err
			}
			v = append(v, el)
		}
		return v, nil

	case tag.List:
		return rd.list(depth)

	case tag.Compound:
		return rd.compound(depth)

	default:
		return nil, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("no payload for tag %v", t))
	}
}

func (rd *reader) list(depth int) (Value, error) {
	if depth >= MaxDepth {
		return nil, encio.NewError(encio.ErrTooDeep, fmt.Sprintf("more than %v nested compounds and lists", MaxDepth), "")
	}

	elem, err := rd.tag()
	if err != nil {
		return nil, err
	}
	n, err := rd.count()
	if err != nil {
		return nil, err
	}
	if elem == tag.End && n > 0 {
		return nil, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("list of %v End elements", n))
	}

	l := List{Elem: elem}
	for i := 0; i < n; i++ {
		v, err := rd.payload(elem, depth+1)
		if err != nil {
			return nil, err
		}
		l.Values = append(l.Values, v)
	}
	return l, nil
}

func (rd *reader) compound(depth int) (Value, error) {
	if depth >= MaxDepth {
		return nil, encio.NewError(encio.ErrTooDeep, fmt.Sprintf("more than %v nested compounds and lists", MaxDepth), "")
	}

	c := Compound{}
	for {
		t, err := rd.tag()
		if err != nil {
			return nil, err
		}
		if t == tag.End {
			return c, nil
		}

		name, err := rd.name.Decode(rd.r)
		if err != nil {
			return nil, err
		}
		v, err := rd.payload(t, depth+1)
		if err != nil {
			return nil, err
		}
		c = append(c, Field{Name: name, Value: v})
	}
}
