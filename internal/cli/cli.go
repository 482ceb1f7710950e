// Package cli implements the toon command-line interface.
//
// # Commands
//
//   - encode: JSON or YAML to TOON
//   - decode: TOON to JSON or YAML
//   - check: verify that a document survives a TOON round trip
//   - serve: run the HTTP conversion service
//   - version: print build information
//
// Defaults come from a TOML config file ($XDG_CONFIG_HOME/toon/config.toml)
// and are overridden by flags. All commands support --verbose (-v) for
// debug-level logging on stderr.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/internal/buildinfo"
)

const appName = "toon"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrMismatch is returned by check when the round trip changed the document.
var ErrMismatch = errors.New("round trip mismatch")

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	in  io.Reader
	out io.Writer

	cfg        Config
	configPath string
	delimiter  string
	indent     int
}

// New creates a new CLI instance writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		in:     os.Stdin,
		out:    os.Stdout,
		cfg:    defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetIO replaces stdin and stdout.
func (c *CLI) SetIO(in io.Reader, out io.Writer) {
	c.in = in
	c.out = out
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Convert between JSON and TOON",
		Long:          `toon converts JSON and YAML documents to TOON (Token-Oriented Object Notation), a compact line-oriented format with tabular arrays, and back.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/toon/config.toml)")
	pf.StringVar(&c.delimiter, "delimiter", "", "array delimiter: comma, tab, pipe or a single character")
	pf.IntVar(&c.indent, "indent", 0, "spaces per indent level")

	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			c.Logger.Debug("no config directory", "err", err)
			p = ""
		}
		path = p
	}

	cfg, err := readConfig(path, explicit)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		cfg.Delimiter = c.delimiter
	}
	if flags.Changed("indent") {
		cfg.Indent = c.indent
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.Logger.Debug("configuration loaded", "path", path, "delimiter", cfg.Delimiter, "indent", cfg.Indent)
	return nil
}

func (c *CLI) encodeOptions() *toon.EncodeOptions {
	// validate has already accepted the delimiter.
	delim, _ := toon.ParseDelimiter(c.cfg.Delimiter)
	return &toon.EncodeOptions{
		Indent:    strings.Repeat(" ", c.cfg.Indent),
		Delimiter: delim,
	}
}

func (c *CLI) decodeOptions() *toon.DecodeOptions {
	delim, _ := toon.ParseDelimiter(c.cfg.Delimiter)
	return &toon.DecodeOptions{
		Delimiter: delim,
		Strict:    c.cfg.Strict,
	}
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(c.out, buildinfo.String())
			return err
		},
	}
}
