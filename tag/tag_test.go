package tag_test

import (
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/stewi1014/nbt/tag"
)

func TestTagIDs(t *testing.T) {
	// ids are part of the wire format.
	td.Cmp(t, uint8(tag.End), uint8(0))
	td.Cmp(t, uint8(tag.Byte), uint8(1))
	td.Cmp(t, uint8(tag.String), uint8(8))
	td.Cmp(t, uint8(tag.List), uint8(9))
	td.Cmp(t, uint8(tag.Compound), uint8(10))
	td.Cmp(t, uint8(tag.LongArray), uint8(12))
}

func TestTagString(t *testing.T) {
	td.Cmp(t, tag.Compound.String(), "Compound")
	td.Cmp(t, tag.IntArray.String(), "IntArray")
	td.Cmp(t, tag.Tag(13).String(), "Tag(13)")
}

func TestTagSize(t *testing.T) {
	testCases := []struct {
		tag  tag.Tag
		size int
		elem int
	}{
		{tag.End, 0, -1},
		{tag.Byte, 1, -1},
		{tag.Short, 2, -1},
		{tag.Int, 4, -1},
		{tag.Long, 8, -1},
		{tag.Float, 4, -1},
		{tag.Double, 8, -1},
		{tag.ByteArray, -1, 1},
		{tag.String, -1, -1},
		{tag.List, -1, -1},
		{tag.Compound, -1, -1},
		{tag.IntArray, -1, 4},
		{tag.LongArray, -1, 8},
	}

	for _, tC := range testCases {
		t.Run(tC.tag.String(), func(t *testing.T) {
			td.CmpTrue(t, tC.tag.Valid())
			td.Cmp(t, tC.tag.Size(), tC.size)
			td.Cmp(t, tC.tag.ElemSize(), tC.elem)
		})
	}

	td.CmpFalse(t, tag.Tag(13).Valid())
}
