package encode

import (
	"encoding"
	"reflect"
)

// Source is a generator of Encodables. Compound type Encodables take Source as an argument upon creation,
// and use it for the generation of their element types, either during creation or during encoding and decoding.
//
// Source is responsible for resolving recursive types if needed, but this is not a requirement for implementing Source.
// RecursiveSource, for example, has no idea what Encodables should be used to encode a given type; rather, it wraps a Source which does,
// and adds handling for recursive types.
type Source interface {
	// NewEncodable returns a new Encodable to be used to serialise the given type.
	//
	// It returns a pointer to an Encodable as it needs to be able to retroactively modify it.
	// The Encodable of a recursive type is needed before it is finished being made.
	//
	// The Source passed to NewEncodable must be passed to the Encodable that it creates.
	// It is used by wrapping Sources to pass themselves to new Encodables, so they don't lose control of element Encodable generation.
	NewEncodable(reflect.Type, Source) *Encodable
}

// SourceFromFunc creates a source from a function.
// It will substitute itself if NewEncodable() is called with a nil-source.
func SourceFromFunc(source func(reflect.Type, Source) Encodable) Source {
	return funcSource{newEncodable: source}
}

type funcSource struct {
	newEncodable func(reflect.Type, Source) Encodable
}

func (s funcSource) NewEncodable(ty reflect.Type, source Source) *Encodable {
	if source == nil {
		source = s
	}
	enc := s.newEncodable(ty, source)
	return &enc
}

// NewCachingSource returns a new CachingSource, using source for cache misses.
// Users of CachingSource must not pass it to element Encodables who may try to create themselves,
// else a recursive type can be given itself from the cache before it is finished.
// Pass the wrapped Source to element Encodables instead, assuming it properly resolves recursive types.
func NewCachingSource(source Source) *CachingSource {
	return &CachingSource{
		cache:  make(map[reflect.Type]*Encodable),
		Source: source,
	}
}

// CachingSource provides a cache of Encodables.
type CachingSource struct {
	cache map[reflect.Type]*Encodable
	Source
}

// NewEncodable implements Source.
func (src *CachingSource) NewEncodable(ty reflect.Type, parent Source) (enc *Encodable) {
	enc, ok := src.cache[ty]
	if ok {
		return enc
	}

	enc = src.Source.NewEncodable(ty, parent)
	src.cache[ty] = enc
	return enc
}

// NewDefaultSource returns the Source used when none is configured;
// New, with recursive types resolved and Encodables cached.
func NewDefaultSource() Source {
	return NewCachingSource(NewRecursiveSource(SourceFromFunc(New)))
}

var (
	marshalerType       = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType     = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

func implements(ty, iface reflect.Type) bool {
	return ty.Implements(iface) || reflect.PointerTo(ty).Implements(iface)
}

// New returns a new Encodable for ty, using src to make Encodables for its elements.
// Types with no NBT representation are given an Encodable that returns encio.ErrBadType.
func New(ty reflect.Type, src Source) Encodable {
	switch ty.Kind() {
	case reflect.Ptr:
		return NewPointer(ty, src)
	case reflect.Interface:
		return NewInterface(ty, src)
	}

	if implements(ty, marshalerType) || implements(ty, unmarshalerType) {
		return NewMarshaler(ty, NewKind(ty, src))
	}
	if implements(ty, textMarshalerType) || implements(ty, textUnmarshalerType) {
		return NewText(ty, NewKind(ty, src))
	}

	return NewKind(ty, src)
}

// NewKind returns a new Encodable for ty based only on its kind, ignoring any methods it has.
func NewKind(ty reflect.Type, src Source) Encodable {
	switch ty.Kind() {
	case reflect.Ptr:
		return NewPointer(ty, src)
	case reflect.Interface:
		return NewInterface(ty, src)
	case reflect.Bool:
		return NewBool(ty)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return NewInt(ty)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return NewUint(ty)
	case reflect.Float32, reflect.Float64:
		return NewFloat(ty)
	case reflect.String:
		return NewString(ty)
	case reflect.Slice, reflect.Array:
		if isPacked(ty) {
			return NewPacked(ty)
		}
		return NewList(ty, src)
	case reflect.Map:
		if ty.Key().Kind() != reflect.String {
			return NewUnsupported(ty)
		}
		return NewMap(ty, src)
	case reflect.Struct:
		return NewStruct(ty, src)
	default:
		return NewUnsupported(ty)
	}
}
