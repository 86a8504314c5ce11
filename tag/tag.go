// Package tag defines the closed set of NBT type tags.
//
// Every value on the wire is preceded by one of these single byte identifiers,
// except list elements, whose tag is declared once in the list header.
package tag

import "fmt"

// Tag identifies the wire type of the value that follows it.
type Tag uint8

// Tag identifiers, as they appear on the wire.
const (
	End Tag = iota
	Byte
	Short
	Int
	Long
	Float
	Double
	ByteArray
	String
	List
	Compound
	IntArray
	LongArray
)

var names = [...]string{
	End:       "End",
	Byte:      "Byte",
	Short:     "Short",
	Int:       "Int",
	Long:      "Long",
	Float:     "Float",
	Double:    "Double",
	ByteArray: "ByteArray",
	String:    "String",
	List:      "List",
	Compound:  "Compound",
	IntArray:  "IntArray",
	LongArray: "LongArray",
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	if t.Valid() {
		return names[t]
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Valid returns true if t is a known tag.
func (t Tag) Valid() bool {
	return t <= LongArray
}

// Size returns the fixed payload width of t in bytes.
// It returns 0 for End, and -1 for tags whose payload is length-prefixed or nested.
func (t Tag) Size() int {
	switch t {
	case End:
		return 0
	case Byte:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	default:
		return -1
	}
}

// ElemSize returns the width of a single element of an array tag;
// 1 for ByteArray, 4 for IntArray and 8 for LongArray.
// It returns -1 for all other tags.
func (t Tag) ElemSize() int {
	switch t {
	case ByteArray:
		return 1
	case IntArray:
		return 4
	case LongArray:
		return 8
	default:
		return -1
	}
}
