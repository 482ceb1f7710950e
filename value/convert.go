package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
)

var jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

// FromGo converts a Go value into a Value.
//
// Structs and types implementing json.Marshaler go through encoding/json, so
// field tags apply and struct field order is kept. Maps are keyed by their
// formatted key and sorted, since Go map order is undefined.
func FromGo(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Object:
		return FromObject(t), nil
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(val reflect.Value) (Value, error) {
	if !val.IsValid() {
		return Null(), nil
	}
	if val.CanInterface() {
		switch t := val.Interface().(type) {
		case Value:
			return t, nil
		case *Object:
			return FromObject(t), nil
		}
	}
	if val.Kind() != reflect.Ptr && val.Kind() != reflect.Interface && val.Type().Implements(jsonMarshalerType) {
		return viaJSON(val.Interface())
	}

	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		if val.IsNil() {
			return Null(), nil
		}
		if val.Kind() == reflect.Ptr && val.Type().Implements(jsonMarshalerType) {
			return viaJSON(val.Interface())
		}
		return fromReflect(val.Elem())
	case reflect.Map:
		keys := make(map[string]reflect.Value, val.Len())
		names := make([]string, 0, val.Len())
		for _, key := range val.MapKeys() {
			name := fmt.Sprintf("%v", key.Interface())
			keys[name] = key
			names = append(names, name)
		}
		sort.Strings(names)
		obj := NewObject()
		for _, name := range names {
			v, err := fromReflect(val.MapIndex(keys[name]))
			if err != nil {
				return Value{}, err
			}
			obj.Set(name, v)
		}
		return FromObject(obj), nil
	case reflect.Slice, reflect.Array:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			// []byte is base64 text in JSON; keep that convention.
			return viaJSON(val.Interface())
		}
		arr := make([]Value, val.Len())
		for i := 0; i < val.Len(); i++ {
			v, err := fromReflect(val.Index(i))
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return FromSlice(arr), nil
	case reflect.Struct:
		return viaJSON(val.Interface())
	case reflect.Bool:
		return FromBool(val.Bool()), nil
	case reflect.String:
		return FromString(val.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FromInt(val.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := val.Uint()
		if u > math.MaxInt64 {
			return FromFloat(float64(u)), nil
		}
		return FromInt(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return FromFloat(val.Float()), nil
	}
	return Value{}, fmt.Errorf("value: unsupported type: %s", val.Type())
}

func viaJSON(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	return ParseJSON(data)
}

// Interface converts v into plain Go values: nil, bool, int64, float64,
// string, map[string]any and []any.
func (v Value) Interface() any {
	switch v.kind {
	case BoolKind:
		return v.b
	case IntKind:
		return v.i
	case FloatKind:
		return v.f
	case StringKind:
		return v.s
	case ArrayKind:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case ObjectKind:
		out := make(map[string]any, v.obj.Len())
		for _, p := range v.obj.pairs {
			out[p.Key] = p.Value.Interface()
		}
		return out
	}
	return nil
}

// Decode stores v into target, which must be a non-nil pointer, using
// encoding/json semantics.
func Decode(v Value, target any) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
