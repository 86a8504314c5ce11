// Package encode maps Go types onto NBT values.
//
// Encodable is the primary implementation, providing Encode() and Decode() for a specific type
// on top of the wire protocol. Source generates Encodables, and New is the default mapping:
//
//	bool                    Byte (1 or 0)
//	int8, uint8             Byte
//	int16                   Short
//	int32, uint16           Int
//	int64, int, uint32      Long
//	uint64, uint, uintptr   Long, if the value fits
//	float32                 Float
//	float64                 Double
//	string                  String
//	[]byte, []int8          ByteArray
//	[]int32                 IntArray
//	[]int64                 LongArray
//	other slices, arrays    List
//	map[string]T, structs   Compound
//	pointers, interfaces    the value they hold, omitted when nil
//
// Types implementing Marshaler and Unmarshaler encode themselves,
// and those implementing encoding.TextMarshaler are written as a String.
package encode

import (
	"reflect"

	"github.com/stewi1014/nbt/wire"
)

const (
	// StructTag is the struct tag key read by struct Encodables.
	//
	// The first comma separated element names the field, the Go field name being used if it is empty.
	// A name of "-" excludes the field.
	// The "omitempty" option omits the field when it holds a zero value,
	// and "list" writes a []byte, []int32 or []int64 field as a List instead of an array.
	StructTag = "nbt"
)

// Encodable is an Encoder and Decoder for a specific type.
//
// Encodables are not assumed to be thread safe.
//
// Encode is given the value to write and the name it is written under; values inside lists are given an empty name.
// It must write exactly one value, unless the value is absent, as nil pointers are, in which case it writes nothing.
// The value given to Encode may not be addressable.
//
// Decode is given a settable value, and must consume exactly one value from d, or return an error.
// The name of the value has been read by the caller, if it had one.
//
// Encodables return the errors of package wire, and encio.Error for values that cannot be represented.
type Encodable interface {
	// Type returns the type that the Encodable encodes.
	Type() reflect.Type

	// Encode writes v to e under name.
	Encode(v reflect.Value, name string, e *wire.Encoder) error

	// Decode reads the next value from d into v.
	Decode(v reflect.Value, d *wire.Decoder) error
}
