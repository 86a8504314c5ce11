package nbt

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/encode"
	"github.com/stewi1014/nbt/wire"
)

// NewDecoder returns a new Decoder reading from r.
func NewDecoder(r io.Reader, config *Config) *Decoder {
	config = config.copyAndFill()

	d := wire.NewDecoder(r)
	if config.DisallowUnknownFields {
		d.DisallowUnknownFields()
	}

	return &Decoder{
		r:      d,
		source: config.Source,
	}
}

// Decoder reads named values from a stream.
// It is safe for concurrent use; each call to Decode reads one whole value.
type Decoder struct {
	mutex  sync.Mutex
	r      *wire.Decoder
	source encode.Source
}

// Decode reads the next value into the value pointed to by v, and returns its name.
// It returns io.EOF once the stream has no more values.
//
// If an error other than io.EOF is returned, the stream is left part way through a value,
// and further calls to Decode will fail.
func (d *Decoder) Decode(v interface{}) (string, error) {
	if v == nil {
		return "", encio.NewError(encio.ErrNilPointer, "cannot decode into nil interface", "")
	}

	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return "", encio.NewError(encio.ErrBadType, fmt.Sprintf("decoded values must be passed by reference (pointer), got %v", val.Type()), "")
	}
	if val.IsNil() {
		return "", encio.NewError(encio.ErrNilPointer, "cannot decode into nil pointer", "")
	}
	val = val.Elem()

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if _, err := d.r.PeekName(); err != nil {
		return "", err
	}
	name, err := d.r.Identifier()
	if err != nil {
		return "", err
	}

	enc := d.source.NewEncodable(val.Type(), nil)
	return name, (*enc).Decode(val, d.r)
}
