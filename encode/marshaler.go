package encode

import (
	"encoding"
	"reflect"

	"github.com/stewi1014/nbt/wire"
)

// Marshaler is implemented by types that write themselves.
// MarshalNBT must write exactly one value to e under name.
type Marshaler interface {
	MarshalNBT(name string, e *wire.Encoder) error
}

// Unmarshaler is implemented by types that read themselves.
// UnmarshalNBT must consume exactly one value from d; the name has already been read.
type Unmarshaler interface {
	UnmarshalNBT(d *wire.Decoder) error
}

// method returns v as iface, taking its address if the method has a pointer receiver.
// Unaddressable values are copied.
func method(v reflect.Value, iface reflect.Type) (interface{}, bool) {
	if v.Type().Implements(iface) {
		return v.Interface(), true
	}
	if !reflect.PointerTo(v.Type()).Implements(iface) {
		return nil, false
	}
	if v.CanAddr() {
		return v.Addr().Interface(), true
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p.Interface(), true
}

// NewMarshaler returns a new Encodable for types implementing Marshaler or Unmarshaler.
// fallback is used for the direction the type doesn't implement.
func NewMarshaler(ty reflect.Type, fallback Encodable) *Custom {
	return &Custom{
		ty:       ty,
		fallback: fallback,
	}
}

// Custom is an Encodable for types implementing Marshaler and Unmarshaler.
type Custom struct {
	ty       reflect.Type
	fallback Encodable
}

// Type implements Encodable.
func (e *Custom) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Custom) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	m, ok := method(v, marshalerType)
	if !ok {
		return e.fallback.Encode(v, name, enc)
	}
	return m.(Marshaler).MarshalNBT(name, enc)
}

// Decode implements Encodable.
func (e *Custom) Decode(v reflect.Value, d *wire.Decoder) error {
	u, ok := method(v, unmarshalerType)
	if !ok {
		return e.fallback.Decode(v, d)
	}
	return u.(Unmarshaler).UnmarshalNBT(d)
}

// NewText returns a new Encodable for types implementing encoding.TextMarshaler or encoding.TextUnmarshaler,
// written as a String.
// fallback is used for the direction the type doesn't implement.
func NewText(ty reflect.Type, fallback Encodable) *Text {
	return &Text{
		ty:       ty,
		fallback: fallback,
	}
}

// Text is an Encodable for types implementing encoding.TextMarshaler and encoding.TextUnmarshaler.
type Text struct {
	ty       reflect.Type
	fallback Encodable
}

// Type implements Encodable.
func (e *Text) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Text) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	m, ok := method(v, textMarshalerType)
	if !ok {
		return e.fallback.Encode(v, name, enc)
	}

	text, err := m.(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return err
	}
	return enc.EncodeString(name, string(text))
}

// Decode implements Encodable.
func (e *Text) Decode(v reflect.Value, d *wire.Decoder) error {
	u, ok := method(v, textUnmarshalerType)
	if !ok {
		return e.fallback.Decode(v, d)
	}

	s, err := d.DecodeString()
	if err != nil {
		return err
	}
	return u.(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
}
