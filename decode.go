package toon

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/paularlott/toon/value"
)

// line is one non-blank physical input line.
type line struct {
	indent  int    // leading spaces
	content string // text after the indent, right-trimmed
	num     int    // 1-based line number
}

// header is the part of a field line before its first unquoted colon.
type header struct {
	name       string
	length     int
	hasLength  bool
	columns    []string
	hasColumns bool
}

type decoder struct {
	delimiter rune
	strict    bool
	lines     []line
	pos       int
}

func newDecoder(delimiter rune, strict bool) *decoder {
	return &decoder{
		delimiter: delimiter,
		strict:    strict,
	}
}

// scanLines normalizes line endings and drops blank lines. Blank lines carry
// no structure and never terminate a block.
func scanLines(data string) []line {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")

	raw := strings.Split(data, "\n")
	lines := make([]line, 0, len(raw))
	for i, r := range raw {
		indent := 0
		for indent < len(r) && r[indent] == ' ' {
			indent++
		}
		content := strings.TrimRightFunc(r[indent:], unicode.IsSpace)
		if strings.TrimSpace(content) == "" {
			continue
		}
		lines = append(lines, line{indent: indent, content: content, num: i + 1})
	}
	return lines
}

// decode parses a whole document. Lines that no block consumes, such as rows
// beyond a tabular header's declared length, are a FormatError rather than
// being dropped.
func (d *decoder) decode(data string) (value.Value, error) {
	d.lines = scanLines(data)
	d.pos = 0
	if len(d.lines) == 0 {
		return value.FromObject(value.NewObject()), nil
	}

	root, err := d.parseObject(d.lines[0].indent)
	if err != nil {
		return value.Value{}, err
	}
	if d.pos < len(d.lines) {
		ln := d.lines[d.pos]
		return value.Value{}, formatErrorf(ln.num, "unexpected indentation: %q is not part of any block (extra tabular row or stray line)", ln.content)
	}
	return value.FromObject(root), nil
}

// parseObject consumes consecutive lines at exactly indent. Any other indent
// ends the object and is left for the caller.
func (d *decoder) parseObject(indent int) (*value.Object, error) {
	obj := value.NewObject()

	for d.pos < len(d.lines) {
		ln := d.lines[d.pos]
		if ln.indent != indent {
			break
		}

		colon := indexUnquoted(ln.content, ':')
		if colon < 0 {
			return nil, formatErrorf(ln.num, "invalid line (missing ':'): %q", ln.content)
		}
		h, herr := parseHeader(strings.TrimSpace(ln.content[:colon]), d.delimiter)
		if herr != nil {
			herr.Line = ln.num
			return nil, herr
		}
		rest := strings.TrimSpace(ln.content[colon+1:])
		d.pos++

		var (
			v   value.Value
			err error
		)
		switch {
		case h.hasColumns:
			if rest != "" {
				return nil, formatErrorf(ln.num, "unexpected text after tabular header %q", h.name)
			}
			v, err = d.parseTabular(ln, h, indent)
		case h.hasLength && rest != "":
			v, err = d.parseInline(ln, h, rest)
		case h.hasLength && h.length == 0:
			v = value.Array()
		case h.hasLength:
			return nil, unsupportedf(h.name, "line %d: array declares %d elements but has neither columns nor inline values", ln.num, h.length)
		case rest == "":
			var child *value.Object
			child, err = d.parseNested(indent)
			v = value.FromObject(child)
		default:
			v = parseScalar(rest)
		}
		if err != nil {
			return nil, err
		}

		obj.Set(h.name, v)
	}

	return obj, nil
}

// parseNested reads the block under a "name:" line. The block's indent is
// taken from its first line, so any indent unit is accepted.
func (d *decoder) parseNested(indent int) (*value.Object, error) {
	if d.pos >= len(d.lines) || d.lines[d.pos].indent <= indent {
		return value.NewObject(), nil
	}
	return d.parseObject(d.lines[d.pos].indent)
}

func (d *decoder) parseTabular(hl line, h header, indent int) (value.Value, error) {
	// The declared length is untrusted; size by what is left to read.
	rows := make([]value.Value, 0, min(h.length, len(d.lines)-d.pos))
	rowIndent := -1

	for len(rows) < h.length && d.pos < len(d.lines) {
		ln := d.lines[d.pos]
		if ln.indent <= indent {
			break
		}
		if rowIndent < 0 {
			rowIndent = ln.indent
		}
		if ln.indent < rowIndent {
			break
		}
		if ln.indent > rowIndent {
			return value.Value{}, formatErrorf(ln.num, "unexpected indentation in tabular row: %q", ln.content)
		}
		d.pos++

		fields := splitRow(ln.content, d.delimiter)
		if d.strict && len(fields) != len(h.columns) {
			return value.Value{}, formatErrorf(ln.num, "row has %d fields, expected %d", len(fields), len(h.columns))
		}

		// Short rows are padded with null and long rows truncated.
		row := value.NewObject()
		for i, col := range h.columns {
			v := value.Null()
			if i < len(fields) {
				v = fields[i].value()
			}
			row.Set(col, v)
		}
		rows = append(rows, value.FromObject(row))
	}

	if d.strict && len(rows) != h.length {
		return value.Value{}, formatErrorf(hl.num, "array %q declares %d rows, found %d", h.name, h.length, len(rows))
	}
	return value.FromSlice(rows), nil
}

func (d *decoder) parseInline(hl line, h header, text string) (value.Value, error) {
	fields := splitRow(text, d.delimiter)
	if d.strict && len(fields) != h.length {
		return value.Value{}, formatErrorf(hl.num, "array %q declares %d elements, found %d", h.name, h.length, len(fields))
	}

	values := make([]value.Value, len(fields))
	for i, f := range fields {
		values[i] = f.value()
	}
	return value.FromSlice(values), nil
}

// parseHeader splits a field header into name, optional [length] and
// optional {columns}. The returned error has no line number set.
func parseHeader(text string, delim rune) (header, *FormatError) {
	if text == "" {
		return header{}, formatErrorf(0, "missing field name")
	}

	var h header
	var rest string
	if text[0] == '"' {
		end := closingQuote(text)
		if end < 0 {
			return header{}, formatErrorf(0, "unterminated quoted name: %s", text)
		}
		h.name = unescape(text[1:end])
		rest = strings.TrimSpace(text[end+1:])
	} else {
		i := strings.IndexAny(text, "[]{}")
		if i < 0 {
			h.name = text
			return h, nil
		}
		if text[i] != '[' {
			return header{}, formatErrorf(0, "invalid header (unbalanced %q): %s", text[i], text)
		}
		h.name = strings.TrimSpace(text[:i])
		if h.name == "" {
			return header{}, formatErrorf(0, "missing field name: %s", text)
		}
		rest = text[i:]
	}

	if rest == "" {
		return h, nil
	}
	if rest[0] != '[' {
		return header{}, formatErrorf(0, "invalid header (unexpected %q after name): %s", rest, text)
	}

	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return header{}, formatErrorf(0, "invalid header (missing ']'): %s", text)
	}
	length, err := parseLength(rest[1:end])
	if err != nil {
		return header{}, formatErrorf(0, "invalid array length in header: %s", text)
	}
	h.length, h.hasLength = length, true

	rest = strings.TrimSpace(rest[end+1:])
	if rest == "" {
		return h, nil
	}
	if rest[0] != '{' {
		return header{}, formatErrorf(0, "invalid header (unexpected %q after length): %s", rest, text)
	}
	end = indexUnquoted(rest, '}')
	if end < 0 {
		return header{}, formatErrorf(0, "invalid header (missing '}'): %s", text)
	}
	if strings.TrimSpace(rest[end+1:]) != "" {
		return header{}, formatErrorf(0, "invalid header (unexpected %q after columns): %s", rest[end+1:], text)
	}

	for _, f := range splitRow(rest[1:end], delim) {
		if f.text == "" && !f.quoted {
			return header{}, formatErrorf(0, "invalid header (empty column name): %s", text)
		}
		h.columns = append(h.columns, f.text)
	}
	h.hasColumns = true
	return h, nil
}

func parseLength(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// closingQuote returns the index of the quote closing the one at s[0], or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
