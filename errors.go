package toon

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrFormat               = errors.New("toon: format error")
	ErrUnsupportedStructure = errors.New("toon: unsupported structure")
)

// FormatError reports structurally invalid TOON input: a missing colon, an
// unbalanced header bracket or brace, a bad array length or unexpected
// indentation.
type FormatError struct {
	Line int // 1-based physical line, 0 when unknown
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("toon: line %d: %s", e.Line, e.Msg)
	}
	return "toon: " + e.Msg
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UnsupportedStructureError reports a value the TOON subset cannot represent:
// a non-object root, an array that is neither tabular nor primitive, or a
// declared array with no body.
type UnsupportedStructureError struct {
	Path string // dotted key path of the offending value, "" for the root
	Msg  string
}

func (e *UnsupportedStructureError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("toon: %s: %s", e.Path, e.Msg)
	}
	return "toon: " + e.Msg
}

func (e *UnsupportedStructureError) Is(target error) bool {
	return target == ErrUnsupportedStructure
}

func formatErrorf(line int, format string, args ...any) *FormatError {
	return &FormatError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func unsupportedf(path, format string, args ...any) *UnsupportedStructureError {
	return &UnsupportedStructureError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
