package toon

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/paularlott/toon/value"
)

// Scalar grammar shared by the encoder (quoting) and the decoder
// (tokenizing, unescaping, inference). needsQuoting defers to the decoder's
// own inference rules, so a bare string is emitted only when it reads back
// unchanged.

const (
	nullLiteral  = "null"
	trueLiteral  = "true"
	falseLiteral = "false"
)

func isLiteral(s string) bool {
	return strings.EqualFold(s, nullLiteral) ||
		strings.EqualFold(s, trueLiteral) ||
		strings.EqualFold(s, falseLiteral)
}

// parseNumber applies the decoder's number rule: a base-10 int64, else a
// finite float64.
func parseNumber(s string) (value.Value, bool) {
	if s == "" {
		return value.Value{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.FromInt(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return value.Value{}, false
	}
	return value.FromFloat(f), true
}

// needsQuoting reports whether s must be quoted to read back as the same
// string.
func needsQuoting(s string, delim rune) bool {
	if s == "" || strings.TrimSpace(s) != s || isLiteral(s) {
		return true
	}
	if _, ok := parseNumber(s); ok {
		return true
	}
	for _, c := range s {
		switch c {
		case delim, '"', '\\', '\n', '\r', '\t':
			return true
		}
	}
	return false
}

// needsKeyQuoting is needsQuoting for names in headers and column lists.
// Names are never type-inferred, but header punctuation must be escaped.
func needsKeyQuoting(s string, delim rune) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	for _, c := range s {
		switch c {
		case delim, ',', ':', '[', ']', '{', '}', '"', '\\', '\n', '\r', '\t':
			return true
		}
	}
	return false
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func unescapeRune(c rune) rune {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	}
	// \" and \\ map to themselves, as does any unknown escape.
	return c
}

// unescape decodes the body of a quoted string. A trailing lone backslash is
// kept as is.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, c := range s {
		if escaped {
			b.WriteRune(unescapeRune(c))
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(c)
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}

// parseScalar infers the type of an unquoted value. Only bare text is
// coerced, so a quoted "true" or "42" always stays a string.
func parseScalar(s string) value.Value {
	switch s {
	case "", nullLiteral:
		return value.Null()
	case trueLiteral:
		return value.FromBool(true)
	case falseLiteral:
		return value.FromBool(false)
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return value.FromString(unescape(s[1 : len(s)-1]))
	}
	if v, ok := parseNumber(s); ok {
		return v
	}
	return value.FromString(s)
}

// token is one delimited field of a row.
type token struct {
	text   string
	quoted bool
}

func (t token) value() value.Value {
	if t.quoted {
		return value.FromString(t.text)
	}
	return parseScalar(t.text)
}

// splitRow splits s on delim outside double quotes. Quote characters are
// removed and escapes inside them decoded; an unterminated quote runs to the
// end of s. Whitespace is trimmed only outside quoted spans.
func splitRow(s string, delim rune) []token {
	var (
		toks     []token
		b        strings.Builder
		inQuotes bool
		escaped  bool
		quoted   bool
		qStart   int
		qEnd     int
	)
	flush := func() {
		text := b.String()
		if quoted {
			text = strings.TrimLeftFunc(text[:qStart], unicode.IsSpace) +
				text[qStart:qEnd] +
				strings.TrimRightFunc(text[qEnd:], unicode.IsSpace)
		} else {
			text = strings.TrimSpace(text)
		}
		toks = append(toks, token{text: text, quoted: quoted})
		b.Reset()
		quoted = false
	}

	for _, c := range s {
		switch {
		case escaped:
			b.WriteRune(unescapeRune(c))
			escaped = false
		case inQuotes && c == '\\':
			escaped = true
		case c == '"':
			if inQuotes {
				qEnd = b.Len()
			} else if !quoted {
				qStart = b.Len()
			}
			inQuotes = !inQuotes
			quoted = true
		case c == delim && !inQuotes:
			flush()
		default:
			b.WriteRune(c)
		}
	}
	if escaped {
		b.WriteByte('\\')
	}
	if inQuotes {
		qEnd = b.Len()
	}
	flush()
	return toks
}

// indexUnquoted returns the byte index of the first c in s outside double
// quotes, or -1.
func indexUnquoted(s string, c byte) int {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch {
		case inQuotes && s[i] == '\\':
			i++
		case s[i] == '"':
			inQuotes = !inQuotes
		case s[i] == c && !inQuotes:
			return i
		}
	}
	return -1
}
