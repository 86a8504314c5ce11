// Package wire implements the tagged NBT stream protocol.
//
// Encoder writes tags, names and payloads, inferring the element tag of lists from their first element.
// Decoder reads them back, looking ahead at the next tag and name before a caller commits to interpreting a value.
//
// Neither knows anything about Go types beyond the wire kinds; package encode drives them from reflect.Types.
package wire

import (
	"fmt"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
)

// MaxDepth is the deepest nesting of compounds and lists that will be encoded or decoded.
const MaxDepth = 512

var expectedErrs = [...]error{
	tag.End:       encio.ErrExpectedEnd,
	tag.Byte:      encio.ErrExpectedByte,
	tag.Short:     encio.ErrExpectedShort,
	tag.Int:       encio.ErrExpectedInt,
	tag.Long:      encio.ErrExpectedLong,
	tag.Float:     encio.ErrExpectedFloat,
	tag.Double:    encio.ErrExpectedDouble,
	tag.ByteArray: encio.ErrExpectedByteArray,
	tag.String:    encio.ErrExpectedString,
	tag.List:      encio.ErrExpectedList,
	tag.Compound:  encio.ErrExpectedCompound,
	tag.IntArray:  encio.ErrExpectedIntArray,
	tag.LongArray: encio.ErrExpectedLongArray,
}

// Expected returns the tag mismatch error for a wanted tag.
func Expected(want tag.Tag) error {
	if want.Valid() {
		return expectedErrs[want]
	}
	return encio.ErrMalformed
}

func mismatch(want, got tag.Tag) error {
	return encio.NewError(Expected(want), fmt.Sprintf("found %v", got), encio.GetCaller(1))
}
