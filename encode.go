package toon

import (
	"math"
	"strconv"
	"strings"

	"github.com/paularlott/toon/value"
)

type encoder struct {
	indent      string
	delimiter   rune
	indentCache []string
	b           strings.Builder
	lines       int
}

func newEncoder(indent string, delimiter rune) *encoder {
	return &encoder{indent: indent, delimiter: delimiter}
}

func (e *encoder) encode(v value.Value) (string, error) {
	if v.Kind() != value.ObjectKind {
		return "", unsupportedf("", "root value must be an object, got %s", v.Kind())
	}
	if err := e.encodeObject(v.Object(), 0, ""); err != nil {
		return "", err
	}
	return e.b.String(), nil
}

func (e *encoder) getIndent(depth int) string {
	for len(e.indentCache) <= depth {
		e.indentCache = append(e.indentCache, strings.Repeat(e.indent, len(e.indentCache)))
	}
	return e.indentCache[depth]
}

// startLine begins a new output line at depth. Lines are newline-separated
// with no trailing newline.
func (e *encoder) startLine(depth int) {
	if e.lines > 0 {
		e.b.WriteByte('\n')
	}
	e.lines++
	e.b.WriteString(e.getIndent(depth))
}

func (e *encoder) encodeKey(key string) string {
	if needsKeyQuoting(key, e.delimiter) {
		return quoteString(key)
	}
	return key
}

func (e *encoder) encodeString(s string) string {
	if needsQuoting(s, e.delimiter) {
		return quoteString(s)
	}
	return s
}

func (e *encoder) formatScalar(v value.Value, path string) (string, error) {
	switch v.Kind() {
	case value.NullKind:
		return nullLiteral, nil
	case value.BoolKind:
		return strconv.FormatBool(v.Bool()), nil
	case value.IntKind:
		return strconv.FormatInt(v.Int(), 10), nil
	case value.FloatKind:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", unsupportedf(path, "non-finite number %v", f)
		}
		return value.FormatFloat(f), nil
	case value.StringKind:
		return e.encodeString(v.Str()), nil
	}
	return "", unsupportedf(path, "%s is not a scalar", v.Kind())
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func (e *encoder) encodeObject(obj *value.Object, depth int, path string) error {
	for _, p := range obj.Pairs() {
		key := e.encodeKey(p.Key)
		childPath := joinPath(path, p.Key)

		switch p.Value.Kind() {
		case value.ObjectKind:
			e.startLine(depth)
			e.b.WriteString(key)
			e.b.WriteByte(':')
			if err := e.encodeObject(p.Value.Object(), depth+1, childPath); err != nil {
				return err
			}
		case value.ArrayKind:
			if err := e.encodeArray(key, p.Value.Array(), depth, childPath); err != nil {
				return err
			}
		default:
			encoded, err := e.formatScalar(p.Value, childPath)
			if err != nil {
				return err
			}
			e.startLine(depth)
			e.b.WriteString(key)
			e.b.WriteString(": ")
			e.b.WriteString(encoded)
		}
	}
	return nil
}

func (e *encoder) encodeArray(key string, arr []value.Value, depth int, path string) error {
	if len(arr) == 0 {
		e.startLine(depth)
		e.b.WriteString(key)
		e.b.WriteString("[0]:")
		return nil
	}

	if fields, ok := tabularFields(arr); ok {
		return e.encodeTabular(key, arr, fields, depth, path)
	}

	if isPrimitiveArray(arr) {
		return e.encodePrimitiveArray(key, arr, depth, path)
	}

	return unsupportedf(path, "%s; only tabular arrays of flat objects and arrays of scalars are supported", describeArray(arr))
}

// tabularFields returns the shared field sequence when every element is an
// object with the same non-empty keys in the same order and only scalar
// values.
func tabularFields(arr []value.Value) ([]string, bool) {
	first := arr[0].Object()
	if first == nil || first.Len() == 0 {
		return nil, false
	}
	fields := first.Keys()

	for _, item := range arr {
		obj := item.Object()
		if obj == nil || obj.Len() != len(fields) {
			return nil, false
		}
		for i, p := range obj.Pairs() {
			if p.Key != fields[i] || !p.Value.IsScalar() {
				return nil, false
			}
		}
	}
	return fields, true
}

func isPrimitiveArray(arr []value.Value) bool {
	for _, item := range arr {
		if !item.IsScalar() {
			return false
		}
	}
	return true
}

// describeArray explains why an array is neither tabular nor primitive.
func describeArray(arr []value.Value) string {
	var objects, arrays, scalars int
	for _, item := range arr {
		switch item.Kind() {
		case value.ObjectKind:
			objects++
		case value.ArrayKind:
			arrays++
		default:
			scalars++
		}
	}
	switch {
	case arrays > 0 && objects == 0 && scalars == 0:
		return "arrays of arrays cannot be encoded"
	case objects > 0 && (arrays > 0 || scalars > 0):
		return "array mixes objects with other values"
	case arrays > 0:
		return "array mixes nested arrays with other values"
	}
	first := arr[0].Object()
	if first.Len() == 0 {
		return "array of empty objects cannot be encoded"
	}
	for _, item := range arr {
		for _, p := range item.Object().Pairs() {
			if !p.Value.IsScalar() {
				return "object array has a nested value in field " + strconv.Quote(p.Key)
			}
		}
	}
	return "object array elements do not share the same fields"
}

func (e *encoder) encodeTabular(key string, arr []value.Value, fields []string, depth int, path string) error {
	delim := string(e.delimiter)

	e.startLine(depth)
	e.b.WriteString(key)
	e.b.WriteByte('[')
	e.b.WriteString(strconv.Itoa(len(arr)))
	e.b.WriteString("]{")
	for i, field := range fields {
		if i > 0 {
			e.b.WriteString(delim)
		}
		e.b.WriteString(e.encodeKey(field))
	}
	e.b.WriteString("}:")

	for i, item := range arr {
		e.startLine(depth + 1)
		for j, p := range item.Object().Pairs() {
			if j > 0 {
				e.b.WriteString(delim)
			}
			encoded, err := e.formatScalar(p.Value, path+"["+strconv.Itoa(i)+"]."+p.Key)
			if err != nil {
				return err
			}
			e.b.WriteString(encoded)
		}
	}
	return nil
}

func (e *encoder) encodePrimitiveArray(key string, arr []value.Value, depth int, path string) error {
	delim := string(e.delimiter)

	e.startLine(depth)
	e.b.WriteString(key)
	e.b.WriteByte('[')
	e.b.WriteString(strconv.Itoa(len(arr)))
	e.b.WriteString("]: ")

	for i, item := range arr {
		if i > 0 {
			e.b.WriteString(delim)
		}
		encoded, err := e.formatScalar(item, path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return err
		}
		e.b.WriteString(encoded)
	}
	return nil
}
