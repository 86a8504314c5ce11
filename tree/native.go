package tree

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/stewi1014/nbt/encio"
)

// Native returns v as plain Go values; the same values decoding into an interface{} gives.
// Lists become []interface{} and Compounds map[string]interface{}, losing field order.
func Native(v Value) interface{} {
	switch v := v.(type) {
	case Byte:
		return int8(v)
	case Short:
		return int16(v)
	case Int:
		return int32(v)
	case Long:
		return int64(v)
	case Float:
		return float32(v)
	case Double:
		return float64(v)
	case String:
		return string(v)
	case ByteArray:
		return append([]byte{}, v...)
	case IntArray:
		return append([]int32{}, v...)
	case LongArray:
		return append([]int64{}, v...)
	case List:
		l := make([]interface{}, len(v.Values))
		for i, el := range v.Values {
			l[i] = Native(el)
		}
		return l
	case Compound:
		m := make(map[string]interface{}, len(v))
		for _, f := range v {
			if _, ok := m[f.Name]; !ok {
				m[f.Name] = Native(f.Value)
			}
		}
		return m
	}
	return nil
}

// FromNative is the inverse of Native, also accepting bools, strings and maps of other types,
// and slices of any element type. Map keys are sorted to give Compounds a stable order.
func FromNative(x interface{}) (Value, error) {
	switch x := x.(type) {
	case bool:
		if x {
			return Byte(1), nil
		}
		return Byte(0), nil
	case int8:
		return Byte(x), nil
	case uint8:
		return Byte(x), nil
	case int16:
		return Short(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Long(x), nil
	case int:
		return Long(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Double(x), nil
	case string:
		return String(x), nil
	case []byte:
		return ByteArray(x), nil
	case []int32:
		return IntArray(x), nil
	case []int64:
		return LongArray(x), nil
	case Value:
		return x, nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		values := make([]Value, rv.Len())
		for i := range values {
			v, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return NewList(values...), nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

		c := make(Compound, 0, len(keys))
		for _, k := range keys {
			v, err := FromNative(rv.MapIndex(k).Interface())
			if err != nil {
				return nil, err
			}
			c = append(c, Field{Name: k.String(), Value: v})
		}
		return c, nil
	}

	return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("%T has no tree representation", x), "")
}
