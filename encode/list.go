package encode

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/stewi1014/nbt/encio"
	"github.com/stewi1014/nbt/wire"
)

// NewList returns a new Encodable for slices and arrays written as a List.
func NewList(ty reflect.Type, src Source) *List {
	if ty.Kind() != reflect.Slice && ty.Kind() != reflect.Array {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a slice or array", ty), ""))
	}

	return &List{
		ty:   ty,
		elem: src.NewEncodable(ty.Elem(), nil),
	}
}

// List is an Encodable for slices and arrays.
// Every element must encode to the same tag; a nil slice is an empty list.
type List struct {
	ty   reflect.Type
	elem *Encodable
}

// Type implements Encodable.
func (e *List) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *List) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	l := v.Len()
	if err := enc.BeginList(name, l); err != nil {
		return err
	}

	for i := 0; i < l; i++ {
		el := v.Index(i)
		err := enc.AppendElement(func(sub *wire.Encoder) error {
			return (*e.elem).Encode(el, "", sub)
		})
		if err != nil {
			return err
		}
	}

	return enc.EndList()
}

// Decode implements Encodable.
func (e *List) Decode(v reflect.Value, d *wire.Decoder) error {
	_, n, err := d.BeginList()
	if err != nil {
		return err
	}

	if v.Kind() == reflect.Array {
		if err := sized(v, n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := (*e.elem).Decode(v.Index(i), d); err != nil {
				return err
			}
		}
		return d.EndList()
	}

	// the count is untrusted until the elements arrive, so a slice only grows as they are read.
	switch {
	case v.IsNil() || v.Cap() < n:
		v.Set(reflect.MakeSlice(e.ty, 0, prealloc(n, e.ty.Elem())))
	default:
		v.SetLen(0)
	}

	zero := reflect.Zero(e.ty.Elem())
	for i := 0; i < n; i++ {
		v.Set(reflect.Append(v, zero))
		if err := (*e.elem).Decode(v.Index(i), d); err != nil {
			return err
		}
	}

	return d.EndList()
}

func prealloc(n int, elem reflect.Type) int {
	size := int(elem.Size())
	if size == 0 {
		size = 1
	}
	if limit := encio.MaxPrealloc / size; n > limit {
		return limit
	}
	return n
}

// NewMap returns a new Encodable for maps with string keys, written as a Compound.
func NewMap(ty reflect.Type, src Source) *Map {
	if ty.Kind() != reflect.Map || ty.Key().Kind() != reflect.String {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a map with string keys", ty), ""))
	}

	return &Map{
		ty:   ty,
		elem: src.NewEncodable(ty.Elem(), nil),
	}
}

// Map is an Encodable for maps with string keys.
// Entries are written in key order, so equal maps encode to equal bytes.
type Map struct {
	ty   reflect.Type
	elem *Encodable
}

// Type implements Encodable.
func (e *Map) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Map) Encode(v reflect.Value, name string, enc *wire.Encoder) error {
	if err := enc.BeginCompound(name); err != nil {
		return err
	}

	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	for _, key := range keys {
		if err := (*e.elem).Encode(v.MapIndex(key), key.String(), enc); err != nil {
			return err
		}
	}

	return enc.EndCompound()
}

// Decode implements Encodable.
// Entries are added to the existing map, or a new one if it is nil.
func (e *Map) Decode(v reflect.Value, d *wire.Decoder) error {
	if err := d.BeginCompound(); err != nil {
		return err
	}

	if v.IsNil() {
		v.Set(reflect.MakeMap(e.ty))
	}

	for {
		name, ok, err := d.NextField()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		el := reflect.New(e.ty.Elem()).Elem()
		if err := (*e.elem).Decode(el, d); err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(name).Convert(e.ty.Key()), el)
	}

	return d.EndCompound()
}
