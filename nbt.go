// Package nbt reads and writes Go values in NBT, the tagged binary format of Minecraft.
//
// A value is written as a tag, a name and a payload. Structs and maps with string keys become Compounds,
// slices become Lists, or the packed array tags for bytes, int32s and int64s,
// and numbers are widened to the smallest tag that holds them. See package encode for the full mapping.
//
// Marshal and Unmarshal work on byte slices, Encoder and Decoder on streams,
// and ReadFile and WriteFile on compressed files, as Minecraft stores them.
//
// nbt/wire provides the tagged stream protocol, for types that read and write themselves.
//
// nbt/tree provides a tree of values for data whose shape isn't known ahead of time.
package nbt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/stewi1014/nbt/encio"
)

// Marshal returns the encoding of v under name.
func Marshal(name string, v interface{}) ([]byte, error) {
	buff := new(bytes.Buffer)
	if err := NewEncoder(buff, nil).Encode(name, v); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// Unmarshal decodes the value in data into the value pointed to by v, discarding its name.
// data must hold exactly one value.
func Unmarshal(data []byte, v interface{}) error {
	r := bytes.NewReader(data)
	if _, err := NewDecoder(r, nil).Decode(v); err != nil {
		if err == io.EOF {
			return encio.NewIOError(io.ErrUnexpectedEOF, "no value")
		}
		return err
	}
	if r.Len() != 0 {
		return encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("%v bytes after value", r.Len()))
	}
	return nil
}
