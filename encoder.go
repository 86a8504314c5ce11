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

// NewEncoder returns a new Encoder writing to w.
func NewEncoder(w io.Writer, config *Config) *Encoder {
	config = config.copyAndFill()
	return &Encoder{
		w:      wire.NewEncoder(w),
		source: config.Source,
	}
}

// Encoder writes named values to a stream.
// It is safe for concurrent use; each call to Encode writes one whole value.
type Encoder struct {
	mutex  sync.Mutex
	w      *wire.Encoder
	source encode.Source
}

// Encode writes v under name.
//
// If an error is returned, part of the value may have been written,
// and the stream should be discarded.
func (e *Encoder) Encode(name string, v interface{}) error {
	if v == nil {
		return encio.NewError(encio.ErrNilPointer, "cannot encode nil interface", "")
	}

	val := reflect.ValueOf(v)
	for p := val; p.Kind() == reflect.Ptr; p = p.Elem() {
		if p.IsNil() {
			return encio.NewError(encio.ErrNilPointer, fmt.Sprintf("cannot encode nil %v", p.Type()), "")
		}
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	enc := e.source.NewEncodable(val.Type(), nil)
	return (*enc).Encode(val, name, e.w)
}
