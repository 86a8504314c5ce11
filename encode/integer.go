package encode

import (
	"fmt"
	"math"
	"reflect"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
	"github.com/stewi1014/nbt/wire"
)

// IntTag returns the tag a signed integer kind is written as.
// Go's int is taken to be 64 bits wide on every platform.
func IntTag(k reflect.Kind) tag.Tag {
	switch k {
	case reflect.Int8:
		return tag.Byte
	case reflect.Int16:
		return tag.Short
	case reflect.Int32:
		return tag.Int
	case reflect.Int64, reflect.Int:
		return tag.Long
	}
	return tag.End
}

// UintTag returns the tag an unsigned integer kind is written as.
// Unsigned integers widen to the next signed tag that holds every value, except 64 bit ones, which have none;
// they are written as a Long if they fit, else fail with encio.ErrConversion.
func UintTag(k reflect.Kind) tag.Tag {
	switch k {
	case reflect.Uint8:
		return tag.Byte
	case reflect.Uint16:
		return tag.Int
	case reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return tag.Long
	}
	return tag.End
}

func conversionError(v interface{}, ty reflect.Type) error {
	return encio.NewError(encio.ErrConversion, fmt.Sprintf("%v does not fit in %v", v, ty), encio.GetCaller(1))
}

// NewInt returns a new signed integer Encodable.
func NewInt(ty reflect.Type) *Int {
	t := IntTag(ty.Kind())
	if t == tag.End {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a signed integer", ty), ""))
	}

	return &Int{
		ty:  ty,
		tag: t,
	}
}

// Int is an Encodable for signed integers.
type Int struct {
	ty  reflect.Type
	tag tag.Tag
}

// Type implements Encodable.
func (e *Int) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Int) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	n := v.Int()
	switch e.tag {
	case tag.Byte:
		return enc.EncodeByte(name, int8(n))
	case tag.Short:
		return enc.EncodeShort(name, int16(n))
	case tag.Int:
		return enc.EncodeInt(name, int32(n))
	default:
		return enc.EncodeLong(name, n)
	}
}

// Decode implements Encodable.
func (e *Int) Decode(v reflect.Value, d *wire.Decoder) error {
	n, err := decodeInteger(e.tag, d)
	if err != nil {
		return err
	}
	if v.OverflowInt(n) {
		return conversionError(n, e.ty)
	}
	v.SetInt(n)
	return nil
}

func decodeInteger(t tag.Tag, d *wire.Decoder) (int64, error) {
	switch t {
	case tag.Byte:
		n, err := d.DecodeByte()
		return int64(n), err
	case tag.Short:
		n, err := d.DecodeShort()
		return int64(n), err
	case tag.Int:
		n, err := d.DecodeInt()
		return int64(n), err
	default:
		return d.DecodeLong()
	}
}

// NewUint returns a new unsigned integer Encodable.
func NewUint(ty reflect.Type) *Uint {
	t := UintTag(ty.Kind())
	if t == tag.End {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not an unsigned integer", ty), ""))
	}

	return &Uint{
		ty:  ty,
		tag: t,
	}
}

// Uint is an Encodable for unsigned integers.
type Uint struct {
	ty  reflect.Type
	tag tag.Tag
}

// Type implements Encodable.
func (e *Uint) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Uint) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	n := v.Uint()
	switch e.tag {
	case tag.Byte:
		return enc.EncodeByte(name, int8(uint8(n)))
	case tag.Int:
		return enc.EncodeInt(name, int32(n))
	default:
		if n > math.MaxInt64 {
			return conversionError(n, reflect.TypeOf(int64(0)))
		}
		return enc.EncodeLong(name, int64(n))
	}
}

// Decode implements Encodable.
// Byte is read back as its unsigned value; a negative Int or Long does not fit.
func (e *Uint) Decode(v reflect.Value, d *wire.Decoder) error {
	n, err := decodeInteger(e.tag, d)
	if err != nil {
		return err
	}

	var u uint64
	if e.tag == tag.Byte {
		u = uint64(uint8(n))
	} else {
		if n < 0 {
			return conversionError(n, e.ty)
		}
		u = uint64(n)
	}

	if v.OverflowUint(u) {
		return conversionError(u, e.ty)
	}
	v.SetUint(u)
	return nil
}
