package encode

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/wire"
)

type structField struct {
	name      string
	index     []int
	omitEmpty bool
	enc       *Encodable
}

func parseTag(s string) (name string, omitEmpty, list bool) {
	parts := strings.Split(s, ",")
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty":
			omitEmpty = true
		case "list":
			list = true
		case "":
		default:
			encio.Warnings.Warn().Str("tag", s).Str("option", opt).Msg("unknown struct tag option")
		}
	}
	return parts[0], omitEmpty, list
}

// structFields returns the encoded fields of ty in declared order, with embedded structs flattened in place.
// Where two fields share a name, the first is kept.
func structFields(ty reflect.Type, index []int, src Source, fields []structField, names map[string]int) []structField {
	for i := 0; i < ty.NumField(); i++ {
		sf := ty.Field(i)

		tagStr := sf.Tag.Get(StructTag)
		if tagStr == "-" {
			continue
		}
		name, omitEmpty, list := parseTag(tagStr)

		idx := make([]int, len(index)+1)
		copy(idx, index)
		idx[len(index)] = i

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			fields = structFields(sf.Type, idx, src, fields, names)
			continue
		}

		if !sf.IsExported() {
			continue
		}

		if name == "" {
			name = sf.Name
		}
		if _, ok := names[name]; ok {
			encio.Warnings.Warn().Str("struct", ty.String()).Str("field", sf.Name).Msgf("duplicate field name %q ignored", name)
			continue
		}

		var enc *Encodable
		if list && (sf.Type.Kind() == reflect.Slice || sf.Type.Kind() == reflect.Array) {
			l := Encodable(NewList(sf.Type, src))
			enc = &l
		} else {
			if list {
				encio.Warnings.Warn().Str("struct", ty.String()).Str("field", sf.Name).Msg("list option on a field that is not a slice or array")
			}
			enc = src.NewEncodable(sf.Type, nil)
		}

		names[name] = len(fields)
		fields = append(fields, structField{
			name:      name,
			index:     idx,
			omitEmpty: omitEmpty,
			enc:       enc,
		})
	}

	return fields
}

// NewStruct returns a new struct Encodable.
func NewStruct(ty reflect.Type, src Source) *Struct {
	if ty.Kind() != reflect.Struct {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a struct", ty), ""))
	}

	names := make(map[string]int)
	return &Struct{
		ty:     ty,
		fields: structFields(ty, nil, src, nil, names),
		names:  names,
	}
}

// Struct is an Encodable for structs, written as a Compound of their exported fields.
//
// Fields are named by the StructTag or the Go field name.
// When decoding, fields missing from the Compound are zeroed,
// and fields the struct doesn't have are skipped, unless the Decoder disallows unknown fields.
type Struct struct {
	ty     reflect.Type
	fields []structField
	names  map[string]int
}

// Type implements Encodable.
func (e *Struct) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Struct) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	if err := enc.BeginCompound(name); err != nil {
		return err
	}

	for _, f := range e.fields {
		fv := v.FieldByIndex(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		if err := (*f.enc).Encode(fv, f.name, enc); err != nil {
			return err
		}
	}

	return enc.EndCompound()
}

// Decode implements Encodable.
func (e *Struct) Decode(v reflect.Value, d *wire.Decoder) error {
	if err := d.BeginCompound(); err != nil {
		return err
	}

	seen := make([]bool, len(e.fields))
	for {
		name, ok, err := d.NextField()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		i, ok := e.names[name]
		if !ok {
			if d.UnknownFieldsDisallowed() {
				return encio.NewError(encio.ErrBadType, fmt.Sprintf("%v has no field %q", e.ty, name), "")
			}
			encio.Warnings.Debug().Str("struct", e.ty.String()).Str("field", name).Msg("skipping unknown field")
			if err := d.Skip(); err != nil {
				return err
			}
			continue
		}

		f := e.fields[i]
		if err := (*f.enc).Decode(v.FieldByIndex(f.index), d); err != nil {
			return err
		}
		seen[i] = true
	}

	for i, f := range e.fields {
		if !seen[i] {
			fv := v.FieldByIndex(f.index)
			fv.Set(reflect.Zero(fv.Type()))
		}
	}

	return d.EndCompound()
}
