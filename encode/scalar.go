package encode

import (
	"fmt"
	"reflect"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/wire"
)

// NewBool returns a new bool Encodable.
func NewBool(ty reflect.Type) *Bool {
	if ty.Kind() != reflect.Bool {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a bool", ty), ""))
	}
	return &Bool{ty: ty}
}

// Bool is an Encodable for bools, written as a Byte of 1 or 0.
type Bool struct {
	ty reflect.Type
}

// Type implements Encodable.
func (e *Bool) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Bool) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	return enc.EncodeBool(name, v.Bool())
}

// Decode implements Encodable.
// Any nonzero Byte is true.
func (e *Bool) Decode(v reflect.Value, d *wire.Decoder) error {
	n, err := d.DecodeByte()
	if err != nil {
		return err
	}
	if n != 0 && n != 1 {
		encio.Warnings.Debug().Int8("byte", n).Msg("decoding bool from a byte other than 0 or 1")
	}
	v.SetBool(n != 0)
	return nil
}

// NewFloat returns a new floating point Encodable.
func NewFloat(ty reflect.Type) *Float {
	switch ty.Kind() {
	case reflect.Float32, reflect.Float64:
		return &Float{ty: ty}
	default:
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a float", ty), ""))
	}
}

// Float is an Encodable for floats. float32 is written as a Float and float64 as a Double.
type Float struct {
	ty reflect.Type
}

// Type implements Encodable.
func (e *Float) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Float) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	if e.ty.Kind() == reflect.Float32 {
		return enc.EncodeFloat(name, float32(v.Float()))
	}
	return enc.EncodeDouble(name, v.Float())
}

// Decode implements Encodable.
func (e *Float) Decode(v reflect.Value, d *wire.Decoder) error {
	if e.ty.Kind() == reflect.Float32 {
		f, err := d.DecodeFloat()
		if err != nil {
			return err
		}
		v.SetFloat(float64(f))
		return nil
	}

	f, err := d.DecodeDouble()
	if err != nil {
		return err
	}
	v.SetFloat(f)
	return nil
}

// NewString returns a new string Encodable.
func NewString(ty reflect.Type) *String {
	if ty.Kind() != reflect.String {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a string", ty), ""))
	}
	return &String{ty: ty}
}

// String is an Encodable for strings.
type String struct {
	ty reflect.Type
}

// Type implements Encodable.
func (e *String) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *String) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	return enc.EncodeString(name, v.String())
}

// Decode implements Encodable.
func (e *String) Decode(v reflect.Value, d *wire.Decoder) error {
	s, err := d.DecodeString()
	if err != nil {
		return err
	}
	v.SetString(s)
	return nil
}

// NewUnsupported returns an Encodable for a type with no NBT representation.
func NewUnsupported(ty reflect.Type) *Unsupported {
	return &Unsupported{ty: ty}
}

// Unsupported fails to encode or decode its type with encio.ErrBadType.
type Unsupported struct {
	ty reflect.Type
}

// Type implements Encodable.
func (e *Unsupported) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Unsupported) Encode(reflect.Value, string, *wire.Encoder) error {
	return encio.NewError(encio.ErrBadType, fmt.Sprintf("%v cannot be encoded", e.ty), "")
}

// Decode implements Encodable.
func (e *Unsupported) Decode(reflect.Value, *wire.Decoder) error {
	return encio.NewError(encio.ErrBadType, fmt.Sprintf("%v cannot be decoded", e.ty), "")
}
