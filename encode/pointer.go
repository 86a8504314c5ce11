package encode

import (
	"fmt"
	"reflect"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
	"github.com/stewi1014/nbt/wire"
)

// NewPointer returns a new pointer Encodable.
func NewPointer(ty reflect.Type, src Source) *Pointer {
	if ty.Kind() != reflect.Ptr {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a pointer", ty), ""))
	}

	return &Pointer{
		ty:   ty,
		elem: src.NewEncodable(ty.Elem(), nil),
	}
}

// Pointer encodes the value a pointer points to.
// A nil pointer is absent and writes nothing; it cannot be a list element.
type Pointer struct {
	ty   reflect.Type
	elem *Encodable
}

// Type implements Encodable.
func (e *Pointer) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Pointer) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	if v.IsNil() {
		return nil
	}
	return (*e.elem).Encode(v.Elem(), name, enc)
}

// Decode implements Encodable.
// A nil pointer is set to a new value before decoding into it.
func (e *Pointer) Decode(v reflect.Value, d *wire.Decoder) error {
	if v.IsNil() {
		v.Set(reflect.New(e.ty.Elem()))
	}
	return (*e.elem).Decode(v.Elem(), d)
}

var (
	byteArrayType = reflect.TypeOf([]byte(nil))
	intArrayType  = reflect.TypeOf([]int32(nil))
	longArrayType = reflect.TypeOf([]int64(nil))
	anyListType   = reflect.TypeOf([]interface{}(nil))
	anyMapType    = reflect.TypeOf(map[string]interface{}(nil))
)

// NativeType returns the type a value with tag t decodes to when decoded into an empty interface.
func NativeType(t tag.Tag) reflect.Type {
	switch t {
	case tag.Byte:
		return reflect.TypeOf(int8(0))
	case tag.Short:
		return reflect.TypeOf(int16(0))
	case tag.Int:
		return reflect.TypeOf(int32(0))
	case tag.Long:
		return reflect.TypeOf(int64(0))
	case tag.Float:
		return reflect.TypeOf(float32(0))
	case tag.Double:
		return reflect.TypeOf(float64(0))
	case tag.String:
		return reflect.TypeOf("")
	case tag.ByteArray:
		return byteArrayType
	case tag.IntArray:
		return intArrayType
	case tag.LongArray:
		return longArrayType
	case tag.List:
		return anyListType
	case tag.Compound:
		return anyMapType
	}
	return nil
}

// NewInterface returns a new interface Encodable.
func NewInterface(ty reflect.Type, src Source) *Interface {
	if ty.Kind() != reflect.Interface {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not an interface", ty), ""))
	}

	return &Interface{
		ty:  ty,
		src: src,
	}
}

// Interface encodes the value an interface holds, using an Encodable for its concrete type.
// A nil interface is absent and writes nothing.
//
// Decoding into an interface holding a non-nil pointer decodes into the pointed to value.
// Otherwise, decoding is only possible into empty interfaces, which are set to the value's NativeType.
type Interface struct {
	ty  reflect.Type
	src Source
}

// Type implements Encodable.
func (e *Interface) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Interface) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	if v.IsNil() {
		return nil
	}

	el := v.Elem()
	return (*e.src.NewEncodable(el.Type(), nil)).Encode(el, name, enc)
}

// Decode implements Encodable.
func (e *Interface) Decode(v reflect.Value, d *wire.Decoder) error {
	if !v.IsNil() {
		if el := v.Elem(); el.Kind() == reflect.Ptr && !el.IsNil() {
			return (*e.src.NewEncodable(el.Type(), nil)).Decode(el, d)
		}
	}

	if e.ty.NumMethod() != 0 {
		return encio.NewError(encio.ErrBadType, fmt.Sprintf("cannot decode into non-empty interface %v", e.ty), "")
	}

	t, err := d.PeekTag()
	if err != nil {
		return err
	}

	ty := NativeType(t)
	if ty == nil {
		return encio.NewError(encio.ErrMalformed, fmt.Sprintf("no value to decode, found %v", t), "")
	}

	el := reflect.New(ty).Elem()
	if err := (*e.src.NewEncodable(ty, nil)).Decode(el, d); err != nil {
		return err
	}
	v.Set(el)
	return nil
}
