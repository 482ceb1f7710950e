// Package toon implements the TOON (Token-Oriented Object Notation) format.
//
// TOON is a line-oriented, indentation-based text format for object-rooted
// JSON-like documents. Nested objects are written as indented blocks, arrays
// of scalars inline on one line, and arrays of same-shaped flat objects as
// tabular blocks:
//
//	store:
//	  products[2]{id,name,price}:
//	    1,T-Shirt,19.99
//	    2,Cap,14.5
//	  tags[2]: new,sale
//
// The supported format is a deliberate subset: scalars, nested objects,
// tabular arrays and inline primitive arrays. Anything else is rejected with
// an UnsupportedStructureError rather than encoded in a lossy form.
package toon

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/paularlott/toon/value"
)

const (
	defaultIndent    = "  "
	defaultDelimiter = ','
)

// EncodeOptions configures TOON encoding behavior.
type EncodeOptions struct {
	Indent    string // Indentation unit, spaces only (default: two spaces)
	Delimiter rune   // Delimiter for inline arrays and tabular data (default: ',')
}

// DecodeOptions configures TOON decoding behavior.
type DecodeOptions struct {
	Delimiter rune // Expected delimiter (default: ',')
	Strict    bool // Reject array length and row width mismatches (default: false)
}

// withDefaults returns a copy of opts with zero fields filled in. The
// caller's options are never modified.
func (o *EncodeOptions) withDefaults() EncodeOptions {
	out := EncodeOptions{Indent: defaultIndent, Delimiter: defaultDelimiter}
	if o == nil {
		return out
	}
	if o.Indent != "" {
		out.Indent = o.Indent
	}
	if o.Delimiter != 0 {
		out.Delimiter = o.Delimiter
	}
	return out
}

// Validate reports whether the options can produce decodable output.
func (o *EncodeOptions) Validate() error {
	opts := o.withDefaults()
	if strings.Trim(opts.Indent, " ") != "" {
		return fmt.Errorf("toon: indent must contain only spaces, got %q", opts.Indent)
	}
	return validateDelimiter(opts.Delimiter)
}

func (o *DecodeOptions) withDefaults() DecodeOptions {
	out := DecodeOptions{Delimiter: defaultDelimiter}
	if o == nil {
		return out
	}
	out.Strict = o.Strict
	if o.Delimiter != 0 {
		out.Delimiter = o.Delimiter
	}
	return out
}

// Validate reports whether the delimiter is usable.
func (o *DecodeOptions) Validate() error {
	return validateDelimiter(o.withDefaults().Delimiter)
}

// validateDelimiter rejects header punctuation and any character that can
// appear in a bare number or literal.
func validateDelimiter(d rune) error {
	switch d {
	case '"', '\\', ':', ' ', '\n', '\r', '[', ']', '{', '}', '-', '+', '.':
		return fmt.Errorf("toon: invalid delimiter %q", d)
	}
	if unicode.IsLetter(d) || unicode.IsDigit(d) {
		return fmt.Errorf("toon: invalid delimiter %q: letters and digits are not allowed", d)
	}
	return nil
}

// ParseDelimiter maps a user-facing delimiter name to its rune. It accepts a
// single character or one of "comma", "tab" and "pipe".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "comma", ",":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "pipe", "|":
		return '|', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("toon: delimiter must be a single character, got %q", s)
	}
	if err := validateDelimiter(r[0]); err != nil {
		return 0, err
	}
	return r[0], nil
}

// Encode converts an object-rooted value tree to TOON.
func Encode(v value.Value) (string, error) {
	return EncodeWithOptions(v, nil)
}

// EncodeWithOptions converts a value tree to TOON with custom options.
func EncodeWithOptions(v value.Value, opts *EncodeOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	o := opts.withDefaults()
	return newEncoder(o.Indent, o.Delimiter).encode(v)
}

// Decode parses TOON text into a value tree. The result is always an object.
func Decode(data string) (value.Value, error) {
	return DecodeWithOptions(data, nil)
}

// DecodeWithOptions parses TOON text with custom options.
func DecodeWithOptions(data string, opts *DecodeOptions) (value.Value, error) {
	if err := opts.Validate(); err != nil {
		return value.Value{}, err
	}
	o := opts.withDefaults()
	return newDecoder(o.Delimiter, o.Strict).decode(data)
}

// Marshal converts a Go value to TOON. Structs follow encoding/json rules for
// field names and order.
func Marshal(v any) (string, error) {
	return MarshalWithOptions(v, nil)
}

// MarshalWithOptions is Marshal with custom encode options.
func MarshalWithOptions(v any, opts *EncodeOptions) (string, error) {
	tree, err := value.FromGo(v)
	if err != nil {
		return "", err
	}
	return EncodeWithOptions(tree, opts)
}

// Unmarshal decodes TOON text into target using encoding/json semantics.
func Unmarshal(data string, target any) error {
	return UnmarshalWithOptions(data, target, nil)
}

// UnmarshalWithOptions is Unmarshal with custom decode options.
func UnmarshalWithOptions(data string, target any, opts *DecodeOptions) error {
	tree, err := DecodeWithOptions(data, opts)
	if err != nil {
		return err
	}
	if err := value.Decode(tree, target); err != nil {
		return fmt.Errorf("toon: failed to bind decoded value: %w", err)
	}
	return nil
}

// FromJSON converts a JSON document to TOON.
func FromJSON(data []byte, opts *EncodeOptions) (string, error) {
	tree, err := value.ParseJSON(data)
	if err != nil {
		return "", err
	}
	return EncodeWithOptions(tree, opts)
}

// ToJSON converts TOON text to compact JSON.
func ToJSON(data string, opts *DecodeOptions) ([]byte, error) {
	tree, err := DecodeWithOptions(data, opts)
	if err != nil {
		return nil, err
	}
	return tree.MarshalJSON()
}
