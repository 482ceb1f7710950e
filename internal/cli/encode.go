package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paularlott/toon"
)

type encodeOpts struct {
	from   string // input format: auto, json or yaml
	output string // output file, stdout when empty
	color  string // auto, always or never; overrides the config file
}

func (c *CLI) encodeCommand() *cobra.Command {
	var opts encodeOpts

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Convert JSON or YAML to TOON",
		Long: `Convert a JSON or YAML document to TOON.

The input is read from file, or from stdin when no file (or "-") is given.
YAML is detected from a .yaml/.yml extension or selected with --from yaml.`,
		Example: `  toon encode products.json
  cat config.yaml | toon encode --from yaml
  toon encode --delimiter pipe -o out.toon data.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEncode(args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", formatAuto, "input format: auto, json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.color, "color", "", "colourise output: auto, always or never")

	return cmd
}

func (c *CLI) runEncode(args []string, opts encodeOpts) error {
	p := newProgress(c.Logger)

	data, name, err := c.readInput(args)
	if err != nil {
		return err
	}
	doc, err := parseDocument(data, name, opts.from)
	if err != nil {
		return err
	}

	out, err := toon.EncodeWithOptions(doc, c.encodeOptions())
	if err != nil {
		return err
	}

	mode := c.cfg.Color
	if opts.color != "" {
		if mode, err = parseColorMode(opts.color); err != nil {
			return err
		}
	}
	if opts.output == "" && out != "" && useColor(mode, c.out) {
		out = newPalette().colorize(out)
	}

	if err := c.writeOutput(opts.output, []byte(out)); err != nil {
		return err
	}
	p.done(fmt.Sprintf("Encoded %d lines", strings.Count(out, "\n")+1))
	return nil
}
