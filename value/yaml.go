package value

import (
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-yaml"
)

// ParseYAML parses a YAML document into a Value. Mapping order is preserved.
// Anchors, tags and other YAML-only constructs are resolved by the YAML
// library before conversion.
func ParseYAML(data []byte) (Value, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return Value{}, fmt.Errorf("yaml: %w", err)
	}
	return fromYAML(raw)
}

func fromYAML(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return FromBool(t), nil
	case string:
		return FromString(t), nil
	case int:
		return FromInt(int64(t)), nil
	case int64:
		return FromInt(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return FromFloat(float64(t)), nil
		}
		return FromInt(int64(t)), nil
	case float64:
		return FromFloat(t), nil
	case time.Time:
		return FromString(t.Format(time.RFC3339Nano)), nil
	case yaml.MapSlice:
		obj := NewObject()
		for _, item := range t {
			v, err := fromYAML(item.Value)
			if err != nil {
				return Value{}, err
			}
			obj.Set(fmt.Sprint(item.Key), v)
		}
		return FromObject(obj), nil
	case map[string]any:
		// Only reached for empty mappings on some library versions.
		obj := NewObject()
		for _, k := range sortedKeys(t) {
			v, err := fromYAML(t[k])
			if err != nil {
				return Value{}, err
			}
			obj.Set(k, v)
		}
		return FromObject(obj), nil
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			v, err := fromYAML(e)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return FromSlice(arr), nil
	}
	return Value{}, fmt.Errorf("yaml: unsupported value of type %T", raw)
}

// MarshalYAML renders v as YAML with object keys in insertion order.
func MarshalYAML(v Value) ([]byte, error) {
	raw, err := toYAML(v)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return out, nil
}

func toYAML(v Value) (any, error) {
	switch v.kind {
	case NullKind:
		return nil, nil
	case BoolKind:
		return v.b, nil
	case IntKind:
		return v.i, nil
	case FloatKind:
		return v.f, nil
	case StringKind:
		return v.s, nil
	case ArrayKind:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			raw, err := toYAML(e)
			if err != nil {
				return nil, err
			}
			out[i] = raw
		}
		return out, nil
	case ObjectKind:
		out := make(yaml.MapSlice, 0, v.obj.Len())
		for _, p := range v.obj.pairs {
			raw, err := toYAML(p.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, yaml.MapItem{Key: p.Key, Value: raw})
		}
		return out, nil
	}
	return nil, fmt.Errorf("yaml: unknown value kind %s", v.kind)
}
