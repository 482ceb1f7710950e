// Package value implements the JSON-like value tree shared by the TOON encoder
// and decoder.
//
// A Value is a tagged union over null, bool, int64, float64, string, ordered
// object and array. Objects preserve insertion order so that a document keeps
// its field order through encode and decode.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	NullKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	ObjectKind
	ArrayKind
)

var kindNames = [...]string{
	NullKind:   "null",
	BoolKind:   "bool",
	IntKind:    "int",
	FloatKind:  "float",
	StringKind: "string",
	ObjectKind: "object",
	ArrayKind:  "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a node in the value tree. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	obj  *Object
	arr  []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// FromBool wraps a bool.
func FromBool(b bool) Value { return Value{kind: BoolKind, b: b} }

// FromInt wraps a 64-bit signed integer.
func FromInt(i int64) Value { return Value{kind: IntKind, i: i} }

// FromFloat wraps a float64.
func FromFloat(f float64) Value { return Value{kind: FloatKind, f: f} }

// FromString wraps a string.
func FromString(s string) Value { return Value{kind: StringKind, s: s} }

// FromObject wraps an object. A nil object becomes an empty one.
func FromObject(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: ObjectKind, obj: o}
}

// FromSlice wraps a slice of values as an array. A nil slice becomes an empty
// array, never null.
func FromSlice(vs []Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: ArrayKind, arr: vs}
}

// Array is shorthand for FromSlice(vs).
func Array(vs ...Value) Value { return FromSlice(vs) }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == NullKind }

// IsScalar reports whether v is neither an object nor an array.
func (v Value) IsScalar() bool {
	return v.kind != ObjectKind && v.kind != ArrayKind
}

// Bool returns the bool payload; false for other kinds.
func (v Value) Bool() bool { return v.b }

// Int returns the int64 payload; 0 for other kinds.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload. Int values are converted.
func (v Value) Float() float64 {
	if v.kind == IntKind {
		return float64(v.i)
	}
	return v.f
}

// Str returns the string payload; "" for other kinds.
func (v Value) Str() string { return v.s }

// Object returns the object payload, or nil if v is not an object.
func (v Value) Object() *Object {
	if v.kind != ObjectKind {
		return nil
	}
	return v.obj
}

// Array returns the array elements, or nil if v is not an array.
func (v Value) Array() []Value {
	if v.kind != ArrayKind {
		return nil
	}
	return v.arr
}

// Len returns the number of fields or elements for containers, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case ObjectKind:
		return v.obj.Len()
	case ArrayKind:
		return len(v.arr)
	}
	return 0
}

// String renders v in a compact debug form. Use MarshalJSON for interchange.
func (v Value) String() string {
	var b strings.Builder
	v.debug(&b)
	return b.String()
}

func (v Value) debug(b *strings.Builder) {
	switch v.kind {
	case NullKind:
		b.WriteString("null")
	case BoolKind:
		b.WriteString(strconv.FormatBool(v.b))
	case IntKind:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case FloatKind:
		b.WriteString(FormatFloat(v.f))
	case StringKind:
		b.WriteString(strconv.Quote(v.s))
	case ObjectKind:
		b.WriteByte('{')
		for i, p := range v.obj.pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Key)
			b.WriteString(": ")
			p.Value.debug(b)
		}
		b.WriteByte('}')
	case ArrayKind:
		b.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				b.WriteString(", ")
			}
			e.debug(b)
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "<%s>", v.kind)
	}
}

// FormatFloat renders f as the shortest plain decimal that parses back to the
// same float64. Exponent notation is never used, and a whole number keeps a
// ".0" suffix so it never reads back as an integer.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}
