package encode

import (
	"reflect"
)

// NewRecursiveSource returns a new RecursiveSource.
//
// The provided Source can be 'dumb'; i.e. a big switch statement to create an Encodable for a type.
// It must respect the implementation details of Source; if it doesn't pass the source passed when creating an encodable,
// RecursiveSource cannot resolve recursive types.
func NewRecursiveSource(source Source) *RecursiveSource {
	return &RecursiveSource{
		source: source,
		seen:   make(map[reflect.Type]*Encodable),
	}
}

// RecursiveSource safely creates Encodables for recursive types.
//
// Each type is generated once. A type that is requested again while it is being generated
// is given the Encodable being generated, which is filled in once generation returns.
// Encodables must therefore not dereference element Encodables until Encode or Decode is called.
//
// Recursive values are not detected here; a value that contains itself nests until wire.MaxDepth is reached.
type RecursiveSource struct {
	source Source
	seen   map[reflect.Type]*Encodable
}

// NewEncodable implements Source.
func (src *RecursiveSource) NewEncodable(ty reflect.Type, source Source) *Encodable {
	if source == nil {
		source = src
	}

	if enc, ok := src.seen[ty]; ok {
		return enc
	}

	enc := new(Encodable)
	src.seen[ty] = enc
	*enc = *src.source.NewEncodable(ty, source)
	return enc
}
