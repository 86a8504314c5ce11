package compression

import (
	"bufio"
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/pierrec/xxHash/xxHash32"
	"github.com/spf13/pflag"
	"github.com/stewi1014/nbt/encio"
)

func testData() map[string][]byte {
	random := make([]byte, lz4BlockSize*2+100)
	rand.New(rand.NewSource(1)).Read(random)

	return map[string][]byte{
		"empty":       {},
		"small":       []byte("hello"),
		"nbt":         {10, 0, 4, 't', 'e', 's', 't', 3, 0, 1, 'a', 0, 0, 0, 1, 0},
		"repetitive":  bytes.Repeat([]byte("minecraft:stone "), lz4BlockSize/4),
		"random":      random,
		"block sized": bytes.Repeat([]byte{1, 2, 3, 4}, lz4BlockSize/4),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ty := range []Type{Gzip, Zlib, None, LZ4} {
		for desc, data := range testData() {
			t.Run(ty.String()+"/"+desc, func(t *testing.T) {
				compressed, err := Compress(data, ty)
				td.CmpNoError(t, err)

				got, err := Decompress(compressed, ty)
				td.CmpNoError(t, err)
				td.Cmp(t, got, td.Len(len(data)))
				td.CmpTrue(t, bytes.Equal(got, data))
			})
		}
	}
}

func TestDetect(t *testing.T) {
	data := testData()["nbt"]

	for _, ty := range []Type{Gzip, Zlib, None, LZ4} {
		t.Run(ty.String(), func(t *testing.T) {
			compressed, err := Compress(data, ty)
			td.CmpNoError(t, err)

			got, err := Detect(bufio.NewReader(bytes.NewReader(compressed)))
			td.CmpNoError(t, err)
			td.Cmp(t, got, ty)
		})
	}

	_, err := Detect(bufio.NewReader(bytes.NewReader(nil)))
	td.CmpError(t, err)

	// 0x08 0x1d is both a String root and a valid zlib header.
	testCases := []struct {
		desc string
		head []byte
		want Type
	}{
		{desc: "string root", head: []byte{8, 29, 0}, want: None},
		{desc: "compound root", head: []byte{10, 0, 0}, want: None},
		{desc: "one byte", head: []byte{8}, want: None},
		{desc: "zlib", head: []byte{0x78, 0x9c}, want: Zlib},
		{desc: "zlib small window", head: []byte{0x18, 0x95}, want: Zlib},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := Detect(bufio.NewReader(bytes.NewReader(tC.head)))
			td.CmpNoError(t, err)
			td.Cmp(t, got, tC.want)
		})
	}
}

func TestLZ4Format(t *testing.T) {
	compressed, err := Compress([]byte("hello"), LZ4)
	td.CmpNoError(t, err)

	// incompressible data is stored raw, followed by the end of stream block.
	want := append([]byte("LZ4Block"), lz4MethodRaw|lz4BlockLevel, 5, 0, 0, 0, 5, 0, 0, 0)
	sum := lz4Checksum([]byte("hello"))
	want = append(want, byte(sum), byte(sum>>8), byte(sum>>16), byte(sum>>24))
	want = append(want, "hello"...)
	want = append(want, "LZ4Block"...)
	want = append(want, lz4MethodRaw|lz4BlockLevel, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	td.Cmp(t, compressed, want)

	repetitive, err := Compress(testData()["repetitive"], LZ4)
	td.CmpNoError(t, err)
	td.Cmp(t, repetitive[8]&0xf0, byte(lz4MethodLZ4))
	td.CmpTrue(t, len(repetitive) < len(testData()["repetitive"]))
}

func TestLZ4Corrupt(t *testing.T) {
	compressed, err := Compress([]byte("hello"), LZ4)
	td.CmpNoError(t, err)

	testCases := []struct {
		desc   string
		offset int
	}{
		{desc: "magic", offset: 0},
		{desc: "method", offset: 8},
		{desc: "checksum", offset: 17},
		{desc: "data", offset: lz4HeaderSize},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			corrupt := append([]byte{}, compressed...)
			corrupt[tC.offset] ^= 0x40

			_, err := Decompress(corrupt, LZ4)
			td.CmpTrue(t, errors.Is(err, encio.ErrMalformed), err)
		})
	}

	_, err = Decompress(compressed[:len(compressed)-lz4HeaderSize], LZ4)
	td.CmpError(t, err, "missing end of stream block")
}

func TestLZ4Checksum(t *testing.T) {
	td.Cmp(t, xxHash32.Checksum(nil, 0), uint32(0x02cc5d05))
	td.Cmp(t, xxHash32.Checksum([]byte("abc"), 0), uint32(0x32d153ff))
	td.Cmp(t, xxHash32.Checksum([]byte("Nobody inspects the spammish repetition"), 0), uint32(0xe2293b2f))

	for name, data := range testData() {
		t.Run(name, func(t *testing.T) {
			sum := lz4Checksum(data)
			td.Cmp(t, sum, td.Lt(uint32(1<<28)))
			td.Cmp(t, sum, xxHash32.Checksum(data, lz4Seed)&0xfffffff)
		})
	}
}

func TestParseType(t *testing.T) {
	for _, ty := range []Type{Gzip, Zlib, None, LZ4} {
		got, err := ParseType(ty.String())
		td.CmpNoError(t, err)
		td.Cmp(t, got, ty)
		td.CmpTrue(t, ty.Valid())
	}

	_, err := ParseType("zstd")
	td.CmpError(t, err)

	var ty Type
	td.CmpNoError(t, ty.Set("lz4"))
	td.Cmp(t, ty, LZ4)
	td.Cmp(t, ty.Type(), "compression")
	td.Cmp(t, Type(9).String(), "unknown(9)")
	td.CmpFalse(t, Type(9).Valid())

	_, err = NewReader(nil, Type(9))
	td.CmpTrue(t, errors.Is(err, encio.ErrBadType))
	_, err = NewWriter(nil, Type(0))
	td.CmpTrue(t, errors.Is(err, encio.ErrBadType))
}

var _ pflag.Value = new(Type)
