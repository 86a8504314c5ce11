package tree_test

import (
	"bytes"
	"errors"
	"io"
	"runtime"
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/tag"
	"github.com/stewi1014/nbt/tree"
)

func level() tree.Compound {
	return tree.Compound{
		{Name: "b", Value: tree.Byte(-1)},
		{Name: "s", Value: tree.Short(2)},
		{Name: "i", Value: tree.Int(3)},
		{Name: "l", Value: tree.Long(4)},
		{Name: "f", Value: tree.Float(0.5)},
		{Name: "d", Value: tree.Double(1.25)},
		{Name: "str", Value: tree.String("héllo")},
		{Name: "ba", Value: tree.ByteArray{1, 2, 3}},
		{Name: "ia", Value: tree.IntArray{-1, 1}},
		{Name: "la", Value: tree.LongArray{1 << 40}},
		{Name: "list", Value: tree.NewList(tree.Int(1), tree.Int(2))},
		{Name: "empty", Value: tree.NewList()},
		{Name: "nested", Value: tree.NewList(
			tree.Compound{{Name: "x", Value: tree.Byte(1)}},
			tree.Compound{},
		)},
		{Name: "c", Value: tree.Compound{{Name: "z", Value: tree.NewList(tree.NewList(tree.String("a")))}}},
	}
}

func TestWriteRead(t *testing.T) {
	buff := new(bytes.Buffer)
	td.CmpNoError(t, tree.Write(buff, "Level", level()))

	name, v, err := tree.Read(buff)
	td.CmpNoError(t, err)
	td.Cmp(t, name, "Level")
	td.Cmp(t, v, level())
	td.Cmp(t, buff.Len(), 0)
}

func TestWriteBytes(t *testing.T) {
	testCases := []struct {
		desc string
		name string
		v    tree.Value
		want []byte
	}{
		{
			desc: "compound",
			name: "test",
			v: tree.Compound{
				{Name: "a", Value: tree.Int(1)},
				{Name: "b", Value: tree.String("hello")},
			},
			want: []byte{
				10, 0, 4, 't', 'e', 's', 't',
				3, 0, 1, 'a', 0, 0, 0, 1,
				8, 0, 1, 'b', 0, 5, 'h', 'e', 'l', 'l', 'o',
				0,
			},
		},
		{
			desc: "empty compound",
			name: "x",
			v:    tree.Compound{},
			want: []byte{10, 0, 1, 'x', 0},
		},
		{
			desc: "empty list",
			v:    tree.List{Elem: tag.Int},
			want: []byte{9, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			desc: "list",
			v:    tree.NewList(tree.Short(1), tree.Short(2)),
			want: []byte{9, 0, 0, 2, 0, 0, 0, 2, 0, 1, 0, 2},
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			buff := new(bytes.Buffer)
			td.CmpNoError(t, tree.Write(buff, tC.name, tC.v))
			td.Cmp(t, buff.Bytes(), tC.want)
		})
	}
}

func TestWriteErrors(t *testing.T) {
	testCases := []struct {
		desc string
		v    tree.Value
		err  error
	}{
		{
			desc: "mixed list",
			v:    tree.List{Elem: tag.Int, Values: []tree.Value{tree.Int(1), tree.String("x")}},
			err:  encio.ErrIncompatibleListType,
		},
		{
			desc: "list of End",
			v:    tree.List{Elem: tag.End, Values: []tree.Value{tree.Int(1)}},
			err:  encio.ErrUnknownListType,
		},
		{
			desc: "nil field",
			v:    tree.Compound{{Name: "a"}},
			err:  encio.ErrNilPointer,
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			err := tree.Write(new(bytes.Buffer), "", tC.v)
			td.CmpTrue(t, errors.Is(err, tC.err), err)
		})
	}
}

func TestDepth(t *testing.T) {
	var v tree.Value = tree.Compound{}
	for i := 0; i < tree.MaxDepth; i++ {
		v = tree.Compound{{Name: "", Value: v}}
	}

	buff := new(bytes.Buffer)
	err := tree.Write(buff, "", v)
	td.CmpTrue(t, errors.Is(err, encio.ErrTooDeep))

	// the same nesting, read instead.
	data := bytes.Repeat([]byte{10, 0, 0}, tree.MaxDepth+2)
	_, _, err = tree.Read(bytes.NewReader(data))
	td.CmpTrue(t, errors.Is(err, encio.ErrTooDeep))
}

func TestReadErrors(t *testing.T) {
	testCases := []struct {
		desc string
		data []byte
		err  error
	}{
		{desc: "empty", data: nil, err: io.EOF},
		{desc: "End", data: []byte{0}, err: encio.ErrMalformed},
		{desc: "unknown tag", data: []byte{13, 0, 0}, err: encio.ErrMalformed},
		{desc: "negative array", data: []byte{7, 0, 0, 0xff, 0xff, 0xff, 0xff}, err: encio.ErrMalformed},
		{desc: "list of End", data: []byte{9, 0, 0, 0, 0, 0, 0, 1}, err: encio.ErrMalformed},
		{desc: "truncated", data: []byte{3, 0, 0, 0, 0}, err: io.ErrUnexpectedEOF},
		{desc: "invalid UTF-8", data: []byte{8, 0, 0, 0, 1, 0xff}, err: encio.ErrInvalidUTF8},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, _, err := tree.Read(bytes.NewReader(tC.data))
			td.CmpTrue(t, errors.Is(err, tC.err), err)
		})
	}
}

func TestReadCountUntrusted(t *testing.T) {
	testCases := []struct {
		desc string
		data []byte
	}{
		{desc: "ByteArray", data: []byte{7, 0, 0, 0x07, 0xff, 0xff, 0xff, 1}},
		{desc: "IntArray", data: []byte{11, 0, 0, 0x01, 0xff, 0xff, 0xff, 0, 0, 0, 1}},
		{desc: "LongArray", data: []byte{12, 0, 0, 0x01, 0xff, 0xff, 0xff}},
		{desc: "List", data: []byte{9, 0, 0, 4, 0x01, 0xff, 0xff, 0xff}},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&before)

			_, _, err := tree.Read(bytes.NewReader(tC.data))

			runtime.ReadMemStats(&after)
			td.CmpTrue(t, errors.Is(err, io.ErrUnexpectedEOF), err)
			td.Cmp(t, after.TotalAlloc-before.TotalAlloc, td.Lt(uint64(8<<20)))
		})
	}
}

func TestSNBT(t *testing.T) {
	testCases := []struct {
		v    tree.Value
		want string
	}{
		{tree.Byte(1), "1b"},
		{tree.Short(-2), "-2s"},
		{tree.Int(3), "3"},
		{tree.Long(4), "4L"},
		{tree.Float(0.5), "0.5f"},
		{tree.Double(1e100), "1e+100d"},
		{tree.String(`say "hi"`), `"say \"hi\""`},
		{tree.ByteArray{1, 0xff}, "[B;1b,-1b]"},
		{tree.IntArray{1, 2}, "[I;1,2]"},
		{tree.LongArray{}, "[L;]"},
		{tree.NewList(tree.Int(1), tree.Int(2)), "[1,2]"},
		{
			tree.Compound{
				{Name: "id", Value: tree.String("minecraft:stone")},
				{Name: "Count", Value: tree.Byte(64)},
				{Name: "odd name", Value: tree.Compound{}},
			},
			`{id:"minecraft:stone",Count:64b,"odd name":{}}`,
		},
	}

	for _, tC := range testCases {
		t.Run(tC.want, func(t *testing.T) {
			td.Cmp(t, tree.SNBT(tC.v), tC.want)
		})
	}
}

func TestNative(t *testing.T) {
	td.Cmp(t, tree.Native(level()), map[string]interface{}{
		"b":      int8(-1),
		"s":      int16(2),
		"i":      int32(3),
		"l":      int64(4),
		"f":      float32(0.5),
		"d":      float64(1.25),
		"str":    "héllo",
		"ba":     []byte{1, 2, 3},
		"ia":     []int32{-1, 1},
		"la":     []int64{1 << 40},
		"list":   []interface{}{int32(1), int32(2)},
		"empty":  []interface{}{},
		"nested": []interface{}{map[string]interface{}{"x": int8(1)}, map[string]interface{}{}},
		"c":      map[string]interface{}{"z": []interface{}{[]interface{}{"a"}}},
	})
}

func TestFromNative(t *testing.T) {
	v, err := tree.FromNative(map[string]interface{}{
		"b":    true,
		"name": "x",
		"list": []int16{1, 2},
		"n":    map[string]int{"a": 1},
	})
	td.CmpNoError(t, err)
	td.Cmp(t, v, tree.Compound{
		{Name: "b", Value: tree.Byte(1)},
		{Name: "list", Value: tree.NewList(tree.Short(1), tree.Short(2))},
		{Name: "n", Value: tree.Compound{{Name: "a", Value: tree.Long(1)}}},
		{Name: "name", Value: tree.String("x")},
	})

	_, err = tree.FromNative(complex(1, 1))
	td.CmpTrue(t, errors.Is(err, encio.ErrBadType))
}

func TestCompound(t *testing.T) {
	c := level()

	v, ok := c.Get("i")
	td.CmpTrue(t, ok)
	td.Cmp(t, v, tree.Int(3))

	_, ok = c.Get("missing")
	td.CmpFalse(t, ok)

	c.Set("i", tree.Int(4))
	c.Set("new", tree.Byte(0))
	v, _ = c.Get("i")
	td.Cmp(t, v, tree.Int(4))
	td.Cmp(t, len(c), len(level())+1)
}
