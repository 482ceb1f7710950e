package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/value"
)

type decodeOpts struct {
	to         string // output format: json or yaml
	output     string // output file, stdout when empty
	strict     bool   // reject length mismatches
	indentJSON int    // JSON indent width, 0 for compact output
}

func (c *CLI) decodeCommand() *cobra.Command {
	var opts decodeOpts

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Convert TOON to JSON or YAML",
		Example: `  toon decode products.toon
  toon decode --strict --to yaml < data.toon`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				opts.strict = c.cfg.Strict
			}
			return c.runDecode(args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.to, "to", formatJSON, "output format: json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when array lengths or row widths do not match their headers")
	cmd.Flags().IntVar(&opts.indentJSON, "indent-json", 2, "JSON indent width (0 for compact)")

	return cmd
}

func (c *CLI) runDecode(args []string, opts decodeOpts) error {
	p := newProgress(c.Logger)

	data, _, err := c.readInput(args)
	if err != nil {
		return err
	}

	decOpts := c.decodeOptions()
	decOpts.Strict = opts.strict
	doc, err := toon.DecodeWithOptions(string(data), decOpts)
	if err != nil {
		return err
	}

	var out []byte
	switch strings.ToLower(opts.to) {
	case formatJSON:
		var buf bytes.Buffer
		if err := value.WriteJSON(&buf, doc, strings.Repeat(" ", max(opts.indentJSON, 0))); err != nil {
			return err
		}
		out = buf.Bytes()
	case formatYAML:
		if out, err = value.MarshalYAML(doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", opts.to)
	}

	if err := c.writeOutput(opts.output, out); err != nil {
		return err
	}
	p.done(fmt.Sprintf("Decoded %d top-level fields", doc.Len()))
	return nil
}
