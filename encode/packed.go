package encode

import (
	"fmt"
	"reflect"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
	"github.com/stewi1014/nbt/wire"
)

func packedTag(elem reflect.Type) tag.Tag {
	if implements(elem, marshalerType) || implements(elem, unmarshalerType) ||
		implements(elem, textMarshalerType) || implements(elem, textUnmarshalerType) {
		return tag.End
	}

	switch elem.Kind() {
	case reflect.Uint8, reflect.Int8:
		return tag.ByteArray
	case reflect.Int32:
		return tag.IntArray
	case reflect.Int64:
		return tag.LongArray
	}
	return tag.End
}

func isPacked(ty reflect.Type) bool {
	return packedTag(ty.Elem()) != tag.End
}

// NewPacked returns a new Encodable for slices and arrays of bytes, int32s or int64s,
// written as a ByteArray, IntArray or LongArray.
func NewPacked(ty reflect.Type) *Packed {
	if ty.Kind() != reflect.Slice && ty.Kind() != reflect.Array {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a slice or array", ty), ""))
	}

	t := packedTag(ty.Elem())
	if t == tag.End {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v cannot be written as an array tag", ty), ""))
	}

	return &Packed{
		ty:  ty,
		tag: t,
	}
}

// Packed is an Encodable for the array tags.
type Packed struct {
	ty  reflect.Type
	tag tag.Tag
}

// Type implements Encodable.
func (e *Packed) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Packed) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	l := v.Len()

	switch e.tag {
	case tag.ByteArray:
		if e.ty.Kind() == reflect.Slice && e.ty.Elem().Kind() == reflect.Uint8 {
			return enc.EncodeByteArray(name, v.Bytes())
		}

		b := make([]byte, l)
		for i := range b {
			el := v.Index(i)
			if el.Kind() == reflect.Int8 {
				b[i] = byte(el.Int())
			} else {
				b[i] = byte(el.Uint())
			}
		}
		return enc.EncodeByteArray(name, b)

	case tag.IntArray:
		s := make([]int32, l)
		for i := range s {
			s[i] = int32(v.Index(i).Int())
		}
		return enc.EncodeIntArray(name, s)

	default:
		s := make([]int64, l)
		for i := range s {
			s[i] = v.Index(i).Int()
		}
		return enc.EncodeLongArray(name, s)
	}
}

// Decode implements Encodable.
// Arrays are zeroed past the decoded elements; more elements than an array holds is encio.ErrConversion.
func (e *Packed) Decode(v reflect.Value, d *wire.Decoder) error {
	switch e.tag {
	case tag.ByteArray:
		b, err := d.DecodeByteArray()
		if err != nil {
			return err
		}

		if e.ty.Kind() == reflect.Slice && e.ty.Elem().Kind() == reflect.Uint8 {
			v.SetBytes(b)
			return nil
		}

		return fill(v, len(b), func(el reflect.Value, i int) {
			if el.Kind() == reflect.Int8 {
				el.SetInt(int64(int8(b[i])))
			} else {
				el.SetUint(uint64(b[i]))
			}
		})

	case tag.IntArray:
		s, err := d.DecodeIntArray()
		if err != nil {
			return err
		}
		return fill(v, len(s), func(el reflect.Value, i int) { el.SetInt(int64(s[i])) })

	default:
		s, err := d.DecodeLongArray()
		if err != nil {
			return err
		}
		return fill(v, len(s), func(el reflect.Value, i int) { el.SetInt(s[i]) })
	}
}

// sized makes the slice or array v hold l elements.
func sized(v reflect.Value, l int) error {
	if v.Kind() == reflect.Array {
		if l > v.Len() {
			return conversionError(fmt.Sprintf("%v elements", l), v.Type())
		}
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	if v.Cap() >= l && !v.IsNil() {
		v.SetLen(l)
		return nil
	}
	v.Set(reflect.MakeSlice(v.Type(), l, l))
	return nil
}

func fill(v reflect.Value, l int, set func(el reflect.Value, i int)) error {
	if err := sized(v, l); err != nil {
		return err
	}
	for i := 0; i < l; i++ {
		set(v.Index(i), i)
	}
	return nil
}
