package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

func parseColorMode(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", colorAuto:
		return colorAuto, nil
	case colorAlways:
		return colorAlways, nil
	case colorNever:
		return colorNever, nil
	}
	return "", fmt.Errorf("color must be auto, always or never, got %q", s)
}

// useColor decides whether output written to w is colourised.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

type palette struct {
	field   func(string, ...any) string
	header  func(string, ...any) string
	null    func(string, ...any) string
	boolean func(string, ...any) string
	number  func(string, ...any) string
	str     func(string, ...any) string
}

func newPalette() *palette {
	mk := func(c *color.Color) func(string, ...any) string {
		// Forced on: the caller has already decided colour is wanted.
		c.EnableColor()
		return c.SprintfFunc()
	}
	return &palette{
		field:   mk(color.RGB(128, 168, 196)),
		header:  mk(color.RGB(196, 96, 16)),
		null:    mk(color.RGB(168, 0, 196)),
		boolean: mk(color.New(color.FgCyan)),
		number:  mk(color.RGB(128, 216, 236)),
		str:     mk(color.RGB(8, 196, 16)),
	}
}

// colorize highlights field names, array headers and scalar values of
// encoder output. Tabular rows are left as they are.
func (p *palette) colorize(text string) string {
	lines := strings.Split(text, "\n")
	rowsUnder := -1
	for i, l := range lines {
		indent := len(l) - len(strings.TrimLeft(l, " "))
		if rowsUnder >= 0 && indent > rowsUnder {
			continue
		}
		var tabular bool
		lines[i], tabular = p.colorizeLine(l)
		rowsUnder = -1
		if tabular {
			rowsUnder = indent
		}
	}
	return strings.Join(lines, "\n")
}

// colorizeLine highlights one field line and reports whether it opens a
// tabular block.
func (p *palette) colorizeLine(l string) (string, bool) {
	trimmed := strings.TrimLeft(l, " ")
	indent := l[:len(l)-len(trimmed)]

	colon := indexColon(trimmed)
	if colon < 0 {
		return l, false
	}
	key, rest := trimmed[:colon], trimmed[colon+1:]

	name, hdr := key, ""
	if !strings.HasPrefix(key, `"`) {
		if i := strings.IndexByte(key, '['); i >= 0 {
			name, hdr = key[:i], key[i:]
		}
	} else if end := strings.LastIndexByte(key, '"'); end > 0 {
		name, hdr = key[:end+1], key[end+1:]
	}

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(p.field("%s", name))
	if hdr != "" {
		b.WriteString(p.header("%s", hdr))
	}
	b.WriteByte(':')
	if v := strings.TrimPrefix(rest, " "); v != "" && hdr == "" {
		b.WriteByte(' ')
		b.WriteString(p.scalar(v))
	} else {
		b.WriteString(rest)
	}
	return b.String(), strings.Contains(hdr, "{") && strings.TrimSpace(rest) == ""
}

func (p *palette) scalar(v string) string {
	switch {
	case v == "null":
		return p.null("%s", v)
	case v == "true" || v == "false":
		return p.boolean("%s", v)
	case strings.HasPrefix(v, `"`):
		return p.str("%s", v)
	case len(v) > 0 && (v[0] == '-' || (v[0] >= '0' && v[0] <= '9')) && isNumeric(v):
		return p.number("%s", v)
	}
	return p.str("%s", v)
}

func isNumeric(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("0123456789+-.eE", c) {
			return false
		}
	}
	return true
}

// indexColon returns the first ':' outside double quotes, or -1.
func indexColon(s string) int {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch {
		case inQuotes && s[i] == '\\':
			i++
		case s[i] == '"':
			inQuotes = !inQuotes
		case s[i] == ':' && !inQuotes:
			return i
		}
	}
	return -1
}
