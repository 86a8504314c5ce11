// Package tree holds NBT values as a tree of concrete types.
//
// It reads and writes the format directly with encio, without going through package wire,
// and so serves as an independent reference for the bytes an encoding should produce.
// It is also what the nbt command uses to look at files whose shape isn't known ahead of time.
package tree

import (
	"github.com/stewi1014/nbt/tag"
)

// Value is an NBT value.
type Value interface {
	// Tag returns the tag the value is written with.
	Tag() tag.Tag
}

type (
	// Byte is a signed 8 bit integer.
	Byte int8
	// Short is a signed 16 bit integer.
	Short int16
	// Int is a signed 32 bit integer.
	Int int32
	// Long is a signed 64 bit integer.
	Long int64
	// Float is a 32 bit float.
	Float float32
	// Double is a 64 bit float.
	Double float64
	// String is a UTF-8 string of at most 65535 bytes.
	String string
	// ByteArray is a packed array of bytes.
	ByteArray []byte
	// IntArray is a packed array of Ints.
	IntArray []int32
	// LongArray is a packed array of Longs.
	LongArray []int64
)

func (Byte) Tag() tag.Tag      { return tag.Byte }
func (Short) Tag() tag.Tag     { return tag.Short }
func (Int) Tag() tag.Tag       { return tag.Int }
func (Long) Tag() tag.Tag      { return tag.Long }
func (Float) Tag() tag.Tag     { return tag.Float }
func (Double) Tag() tag.Tag    { return tag.Double }
func (String) Tag() tag.Tag    { return tag.String }
func (ByteArray) Tag() tag.Tag { return tag.ByteArray }
func (IntArray) Tag() tag.Tag  { return tag.IntArray }
func (LongArray) Tag() tag.Tag { return tag.LongArray }

// List is a sequence of unnamed values that all have the tag Elem.
// An empty list has an Elem of tag.End.
type List struct {
	Elem   tag.Tag
	Values []Value
}

// Tag implements Value.
func (List) Tag() tag.Tag { return tag.List }

// NewList returns a List of values, taking the element tag from the first.
func NewList(values ...Value) List {
	if len(values) == 0 {
		return List{Elem: tag.End}
	}
	return List{Elem: values[0].Tag(), Values: values}
}

// Field is a named value in a Compound.
type Field struct {
	Name  string
	Value Value
}

// Compound is a sequence of named values, kept in the order they were read or added.
type Compound []Field

// Tag implements Value.
func (Compound) Tag() tag.Tag { return tag.Compound }

// Get returns the value of the first field called name.
func (c Compound) Get(name string) (Value, bool) {
	for _, f := range c {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the first field called name, or adds a new field if there isn't one.
func (c *Compound) Set(name string, v Value) {
	for i := range *c {
		if (*c)[i].Name == name {
			(*c)[i].Value = v
			return
		}
	}
	*c = append(*c, Field{Name: name, Value: v})
}
