package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paularlott/toon/value"
)

const (
	formatAuto = "auto"
	formatJSON = "json"
	formatYAML = "yaml"
)

// readInput reads the named file, or stdin when args is empty or "-".
func (c *CLI) readInput(args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(c.in)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", err
	}
	return data, args[0], nil
}

// writeOutput writes data to path, or to stdout when path is empty. A
// trailing newline is added when missing.
func (c *CLI) writeOutput(path string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// parseDocument parses JSON or YAML. In auto mode the file extension decides
// and anything else is treated as JSON.
func parseDocument(data []byte, name, format string) (value.Value, error) {
	format = strings.ToLower(format)
	if format == "" || format == formatAuto {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			format = formatYAML
		default:
			format = formatJSON
		}
	}

	var (
		doc value.Value
		err error
	)
	switch format {
	case formatJSON:
		doc, err = value.ParseJSON(data)
	case formatYAML:
		doc, err = value.ParseYAML(data)
	default:
		return value.Value{}, fmt.Errorf("unknown input format %q (want json or yaml)", format)
	}
	if err != nil {
		if name == "" {
			name = "stdin"
		}
		return value.Value{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}
