package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ParseJSON parses a single JSON document into a Value, preserving object key
// order. Numbers that fit in an int64 become Int, everything else Float.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return Value{}, errors.New("json: empty input")
	}
	if err != nil {
		return Value{}, fmt.Errorf("json: %w", err)
	}
	v, err := parseJSONToken(dec, tok)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return Value{}, fmt.Errorf("json: %w", err)
		}
		return Value{}, errors.New("json: unexpected data after top-level value")
	}
	return v, nil
}

func parseJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return Value{}, fmt.Errorf("json: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return Value{}, fmt.Errorf("json: %w", err)
	}
	return parseJSONToken(dec, tok)
}

func parseJSONToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return FromBool(t), nil
	case string:
		return FromString(t), nil
	case json.Number:
		return parseJSONNumber(t)
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, fmt.Errorf("json: %w", err)
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("json: expected object key, got %v", kt)
				}
				v, err := parseJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("json: %w", err)
			}
			return FromObject(obj), nil
		case '[':
			arr := []Value{}
			for dec.More() {
				v, err := parseJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("json: %w", err)
			}
			return FromSlice(arr), nil
		}
	}
	return Value{}, fmt.Errorf("json: unexpected token %v", tok)
}

func parseJSONNumber(n json.Number) (Value, error) {
	s := string(n)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromInt(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("json: invalid number %q: %w", s, err)
	}
	return FromFloat(f), nil
}

// MarshalJSON renders v as compact JSON with object keys in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces v with the parsed document.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// WriteJSON writes v to w. A non-empty indent pretty-prints with that unit.
// The output ends with a newline.
func WriteJSON(w io.Writer, v Value, indent string) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	if indent != "" {
		var out bytes.Buffer
		if err := json.Indent(&out, data, "", indent); err != nil {
			return err
		}
		data = out.Bytes()
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case NullKind:
		buf.WriteString("null")
	case BoolKind:
		buf.WriteString(strconv.FormatBool(v.b))
	case IntKind:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case FloatKind:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return fmt.Errorf("json: unsupported float value %v", v.f)
		}
		buf.WriteString(FormatFloat(v.f))
	case StringKind:
		writeJSONString(buf, v.s)
	case ArrayKind:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectKind:
		buf.WriteByte('{')
		for i, p := range v.obj.pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, p.Key)
			buf.WriteByte(':')
			if err := writeJSON(buf, p.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("json: unknown value kind %s", v.kind)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1) // Encode appends '\n'
}
