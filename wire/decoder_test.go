package wire_test

import (
	"bytes"
	"errors"
	"io"
	"runtime"
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
	"github.com/stewi1014/nbt/wire"
)

func TestDecoderLookahead(t *testing.T) {
	r := bytes.NewReader([]byte{3, 0, 1, 'a', 0, 0, 0, 7})
	d := wire.NewDecoder(r)
	td.Cmp(t, d.State(), wire.Idle)

	got, err := d.PeekTag()
	td.CmpNoError(t, err)
	td.Cmp(t, got, tag.Int)
	td.Cmp(t, d.State(), wire.TagPending)
	td.Cmp(t, r.Len(), 7)

	// peeking again does not read.
	got, err = d.PeekTag()
	td.CmpNoError(t, err)
	td.Cmp(t, got, tag.Int)
	td.Cmp(t, r.Len(), 7)

	name, err := d.PeekName()
	td.CmpNoError(t, err)
	td.Cmp(t, name, "a")
	td.Cmp(t, d.State(), wire.TagAndNamePending)
	td.Cmp(t, r.Len(), 4)

	name, err = d.PeekName()
	td.CmpNoError(t, err)
	td.Cmp(t, name, "a")
	td.Cmp(t, r.Len(), 4)

	name, err = d.Identifier()
	td.CmpNoError(t, err)
	td.Cmp(t, name, "a")

	// the identifier is one-shot.
	_, err = d.Identifier()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedIdentifier))
	_, err = d.PeekName()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedIdentifier))

	// the name was consumed from the stream, so the value is read without reading another name.
	n, err := d.DecodeInt()
	td.CmpNoError(t, err)
	td.Cmp(t, n, int32(7))
	td.Cmp(t, d.State(), wire.Idle)
	td.Cmp(t, r.Len(), 0)
}

func TestDecoderSkipNameThenDecode(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{8, 0, 1, 'b', 0, 2, 'h', 'i'}))

	_, err := d.PeekName()
	td.CmpNoError(t, err)
	td.CmpNoError(t, d.SkipName())
	td.Cmp(t, d.State(), wire.TagAndNamePending)

	_, err = d.Identifier()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedIdentifier))

	s, err := d.DecodeString()
	td.CmpNoError(t, err)
	td.Cmp(t, s, "hi")
}

func TestDecoderIdentifierWithoutName(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{3, 0, 1, 'a', 0, 0, 0, 7}))

	_, err := d.Identifier()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedIdentifier))

	_, err = d.PeekTag()
	td.CmpNoError(t, err)
	_, err = d.Identifier()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedIdentifier))
}

func TestDecoderTagMismatch(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{1, 0, 1, 'a', 5}))

	_, err := d.DecodeInt()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedInt))
	td.Cmp(t, d.State(), wire.TagPending)

	// the tag stays pending, so the value can still be read as what it is.
	b, err := d.DecodeByte()
	td.CmpNoError(t, err)
	td.Cmp(t, b, int8(5))
}

func TestDecoderMismatchErrors(t *testing.T) {
	testCases := []struct {
		desc   string
		decode func(*wire.Decoder) error
		want   error
	}{
		{"Byte", func(d *wire.Decoder) error { _, err := d.DecodeByte(); return err }, encio.ErrExpectedByte},
		{"Short", func(d *wire.Decoder) error { _, err := d.DecodeShort(); return err }, encio.ErrExpectedShort},
		{"Long", func(d *wire.Decoder) error { _, err := d.DecodeLong(); return err }, encio.ErrExpectedLong},
		{"Float", func(d *wire.Decoder) error { _, err := d.DecodeFloat(); return err }, encio.ErrExpectedFloat},
		{"Double", func(d *wire.Decoder) error { _, err := d.DecodeDouble(); return err }, encio.ErrExpectedDouble},
		{"String", func(d *wire.Decoder) error { _, err := d.DecodeString(); return err }, encio.ErrExpectedString},
		{"ByteArray", func(d *wire.Decoder) error { _, err := d.DecodeByteArray(); return err }, encio.ErrExpectedByteArray},
		{"IntArray", func(d *wire.Decoder) error { _, err := d.DecodeIntArray(); return err }, encio.ErrExpectedIntArray},
		{"LongArray", func(d *wire.Decoder) error { _, err := d.DecodeLongArray(); return err }, encio.ErrExpectedLongArray},
		{"List", func(d *wire.Decoder) error { _, _, err := d.BeginList(); return err }, encio.ErrExpectedList},
		{"Compound", func(d *wire.Decoder) error { return d.BeginCompound() }, encio.ErrExpectedCompound},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			d := wire.NewDecoder(bytes.NewReader([]byte{3, 0, 0, 0, 0, 0, 1}))
			err := tC.decode(d)
			td.CmpTrue(t, errors.Is(err, tC.want), err)
		})
	}
}

func TestDecoderCompound(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{
		10, 0, 4, 't', 'e', 's', 't',
		3, 0, 1, 'a', 0, 0, 0, 1,
		8, 0, 1, 'b', 0, 5, 'h', 'e', 'l', 'l', 'o',
		0,
	}))

	name, err := d.PeekName()
	td.CmpNoError(t, err)
	td.Cmp(t, name, "test")

	td.CmpNoError(t, d.BeginCompound())
	td.Cmp(t, d.Depth(), 1)

	field, more, err := d.NextField()
	td.CmpNoError(t, err)
	td.CmpTrue(t, more)
	td.Cmp(t, field, "a")
	a, err := d.DecodeInt()
	td.CmpNoError(t, err)
	td.Cmp(t, a, int32(1))

	field, more, err = d.NextField()
	td.CmpNoError(t, err)
	td.CmpTrue(t, more)
	td.Cmp(t, field, "b")
	b, err := d.DecodeString()
	td.CmpNoError(t, err)
	td.Cmp(t, b, "hello")

	_, more, err = d.NextField()
	td.CmpNoError(t, err)
	td.CmpFalse(t, more)

	td.CmpNoError(t, d.EndCompound())
	td.Cmp(t, d.Depth(), 0)
	td.Cmp(t, d.State(), wire.Idle)
}

func TestDecoderEndCompoundMismatch(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{10, 0, 0, 1, 0, 1, 'x', 1, 0}))

	td.CmpNoError(t, d.BeginCompound())
	err := d.EndCompound()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedEnd))

	_, _, err = d.NextField()
	td.CmpNoError(t, err)
	td.CmpNoError(t, d.Skip())
	td.CmpNoError(t, d.EndCompound())

	err = d.EndCompound()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedCompound))
	_, _, err = d.NextField()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedCompound))
}

func TestDecoderListByCount(t *testing.T) {
	// The first element is 0, the same byte as an End tag; it must still be read as an element.
	r := bytes.NewReader([]byte{9, 0, 1, 'l', 1, 0, 0, 0, 2, 0, 5})
	d := wire.NewDecoder(r)

	elem, n, err := d.BeginList()
	td.CmpNoError(t, err)
	td.Cmp(t, elem, tag.Byte)
	td.Cmp(t, n, 2)

	more, err := d.NextElement()
	td.CmpNoError(t, err)
	td.CmpTrue(t, more)

	got, err := d.PeekTag()
	td.CmpNoError(t, err)
	td.Cmp(t, got, tag.Byte)
	td.Cmp(t, r.Len(), 2)

	// list elements have no names.
	_, err = d.PeekName()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedIdentifier))

	b, err := d.DecodeByte()
	td.CmpNoError(t, err)
	td.Cmp(t, b, int8(0))

	b, err = d.DecodeByte()
	td.CmpNoError(t, err)
	td.Cmp(t, b, int8(5))

	more, err = d.NextElement()
	td.CmpNoError(t, err)
	td.CmpFalse(t, more)

	got, err = d.PeekTag()
	td.CmpNoError(t, err)
	td.Cmp(t, got, tag.End)

	td.CmpNoError(t, d.EndList())
	td.Cmp(t, r.Len(), 0)
}

func TestDecoderEmptyList(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{9, 0, 0, 0, 0, 0, 0, 0}))

	elem, n, err := d.BeginList()
	td.CmpNoError(t, err)
	td.Cmp(t, elem, tag.End)
	td.Cmp(t, n, 0)

	more, err := d.NextElement()
	td.CmpNoError(t, err)
	td.CmpFalse(t, more)
	td.CmpNoError(t, d.EndList())
}

func TestDecoderListErrors(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{9, 0, 0, 3, 0, 0, 0, 2, 0, 0, 0, 1, 0, 0, 0, 2}))

	_, err := d.NextElement()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedList))

	_, _, err = d.BeginList()
	td.CmpNoError(t, err)

	_, err = d.DecodeLong()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedLong))

	_, err = d.DecodeInt()
	td.CmpNoError(t, err)

	err = d.EndList()
	td.CmpTrue(t, errors.Is(err, encio.ErrMalformed))

	_, err = d.DecodeInt()
	td.CmpNoError(t, err)
	td.CmpNoError(t, d.EndList())

	err = d.EndList()
	td.CmpTrue(t, errors.Is(err, encio.ErrExpectedList))
}

func TestDecoderMalformed(t *testing.T) {
	testCases := []struct {
		desc string
		data []byte
	}{
		{"unknown tag", []byte{13, 0, 0}},
		{"negative list length", []byte{9, 0, 0, 1, 0xff, 0xff, 0xff, 0xff}},
		{"list of End", []byte{9, 0, 0, 0, 0, 0, 0, 1}},
		{"unknown list element tag", []byte{9, 0, 0, 20, 0, 0, 0, 1}},
		{"negative array length", []byte{7, 0, 0, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			d := wire.NewDecoder(bytes.NewReader(tC.data))
			err := d.Skip()
			td.CmpTrue(t, errors.Is(err, encio.ErrMalformed), err)
		})
	}
}

func TestDecoderTruncated(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{3, 0, 1, 'a', 0, 0}))
	_, err := d.DecodeInt()
	td.CmpTrue(t, errors.Is(err, io.ErrUnexpectedEOF))

	d = wire.NewDecoder(bytes.NewReader(nil))
	_, err = d.PeekTag()
	td.Cmp(t, err, io.EOF, "clean end of stream")

	d = wire.NewDecoder(bytes.NewReader([]byte{10, 0, 0}))
	td.CmpNoError(t, d.BeginCompound())
	_, _, err = d.NextField()
	td.CmpTrue(t, errors.Is(err, io.ErrUnexpectedEOF), "end of stream inside a compound")
}

func TestDecoderArrayCountUntrusted(t *testing.T) {
	testCases := []struct {
		desc   string
		data   []byte
		decode func(d *wire.Decoder) error
	}{
		{
			desc:   "ByteArray",
			data:   []byte{7, 0, 0, 0x07, 0xff, 0xff, 0xff, 1, 2},
			decode: func(d *wire.Decoder) error { _, err := d.DecodeByteArray(); return err },
		},
		{
			desc:   "IntArray",
			data:   []byte{11, 0, 0, 0x01, 0xff, 0xff, 0xff},
			decode: func(d *wire.Decoder) error { _, err := d.DecodeIntArray(); return err },
		},
		{
			desc:   "LongArray",
			data:   []byte{12, 0, 0, 0x00, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 0, 0, 1},
			decode: func(d *wire.Decoder) error { _, err := d.DecodeLongArray(); return err },
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&before)

			err := tC.decode(wire.NewDecoder(bytes.NewReader(tC.data)))

			runtime.ReadMemStats(&after)
			td.CmpTrue(t, errors.Is(err, io.ErrUnexpectedEOF), err)
			td.Cmp(t, after.TotalAlloc-before.TotalAlloc, td.Lt(uint64(8<<20)))
		})
	}
}

func TestDecoderLargeArrays(t *testing.T) {
	bs := bytes.Repeat([]byte{1, 2, 3}, encio.MaxPrealloc)
	longs := make([]int64, encio.MaxPrealloc)
	for i := range longs {
		longs[i] = int64(i) - 7
	}

	buff := new(bytes.Buffer)
	e := wire.NewEncoder(buff)
	td.CmpNoError(t, e.EncodeByteArray("b", bs))
	td.CmpNoError(t, e.EncodeLongArray("l", longs))

	d := wire.NewDecoder(buff)
	gotBytes, err := d.DecodeByteArray()
	td.CmpNoError(t, err)
	td.Cmp(t, gotBytes, bs)

	gotLongs, err := d.DecodeLongArray()
	td.CmpNoError(t, err)
	td.Cmp(t, gotLongs, longs)
}

func TestDecoderInvalidUTF8(t *testing.T) {
	d := wire.NewDecoder(bytes.NewReader([]byte{8, 0, 0, 0, 2, 0xff, 0xfe}))
	_, err := d.DecodeString()
	td.CmpTrue(t, errors.Is(err, encio.ErrInvalidUTF8))

	d = wire.NewDecoder(bytes.NewReader([]byte{8, 0, 1, 0xff}))
	_, err = d.PeekName()
	td.CmpTrue(t, errors.Is(err, encio.ErrInvalidUTF8))
}

func TestDecoderSkip(t *testing.T) {
	buff := new(bytes.Buffer)
	e := wire.NewEncoder(buff)

	td.CmpNoError(t, e.BeginCompound("skipped"))
	td.CmpNoError(t, e.EncodeByte("b", 1))
	td.CmpNoError(t, e.EncodeShort("s", 1))
	td.CmpNoError(t, e.EncodeLong("l", 1))
	td.CmpNoError(t, e.EncodeFloat("f", 1))
	td.CmpNoError(t, e.EncodeDouble("d", 1))
	td.CmpNoError(t, e.EncodeString("str", "hello"))
	td.CmpNoError(t, e.EncodeByteArray("ba", []byte{1, 2, 3}))
	td.CmpNoError(t, e.EncodeIntArray("ia", []int32{1, 2, 3}))
	td.CmpNoError(t, e.EncodeLongArray("la", []int64{1, 2, 3}))
	td.CmpNoError(t, e.BeginList("list", 2))
	for i := 0; i < 2; i++ {
		td.CmpNoError(t, e.AppendElement(func(e *wire.Encoder) error {
			if err := e.BeginCompound(""); err != nil {
				return err
			}
			if err := e.EncodeInt("x", 1); err != nil {
				return err
			}
			return e.EndCompound()
		}))
	}
	td.CmpNoError(t, e.EndList())
	td.CmpNoError(t, e.BeginCompound("nested"))
	td.CmpNoError(t, e.EndCompound())
	td.CmpNoError(t, e.EndCompound())

	td.CmpNoError(t, e.EncodeInt("after", 42))

	d := wire.NewDecoder(buff)
	td.CmpNoError(t, d.Skip())
	td.Cmp(t, d.Depth(), 0)

	n, err := d.DecodeInt()
	td.CmpNoError(t, err)
	td.Cmp(t, n, int32(42))
	td.Cmp(t, buff.Len(), 0)
}

func TestDecoderMaxDepth(t *testing.T) {
	data := make([]byte, 0, (wire.MaxDepth+1)*3)
	for i := 0; i <= wire.MaxDepth; i++ {
		data = append(data, 10, 0, 0)
	}

	err := wire.NewDecoder(bytes.NewReader(data)).Skip()
	td.CmpTrue(t, errors.Is(err, encio.ErrTooDeep))
}

func TestRoundTrip(t *testing.T) {
	buff := new(bytes.Buffer)
	e := wire.NewEncoder(buff)

	td.CmpNoError(t, e.BeginCompound("root"))
	td.CmpNoError(t, e.EncodeDouble("pi", 3.14159))
	td.CmpNoError(t, e.BeginList("words", 3))
	for _, w := range []string{"a", "bb", "ccc"} {
		w := w
		td.CmpNoError(t, e.AppendElement(func(e *wire.Encoder) error { return e.EncodeString("", w) }))
	}
	td.CmpNoError(t, e.EndList())
	td.CmpNoError(t, e.EndCompound())

	d := wire.NewDecoder(buff)
	name, err := d.PeekName()
	td.CmpNoError(t, err)
	td.Cmp(t, name, "root")
	td.CmpNoError(t, d.BeginCompound())

	field, _, err := d.NextField()
	td.CmpNoError(t, err)
	td.Cmp(t, field, "pi")
	pi, err := d.DecodeDouble()
	td.CmpNoError(t, err)
	td.Cmp(t, pi, 3.14159)

	field, _, err = d.NextField()
	td.CmpNoError(t, err)
	td.Cmp(t, field, "words")

	elem, n, err := d.BeginList()
	td.CmpNoError(t, err)
	td.Cmp(t, elem, tag.String)

	var words []string
	for i := 0; i < n; i++ {
		w, err := d.DecodeString()
		td.CmpNoError(t, err)
		words = append(words, w)
	}
	td.Cmp(t, words, []string{"a", "bb", "ccc"})
	td.CmpNoError(t, d.EndList())

	_, more, err := d.NextField()
	td.CmpNoError(t, err)
	td.CmpFalse(t, more)
	td.CmpNoError(t, d.EndCompound())
}
