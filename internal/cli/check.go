package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paularlott/toon/internal/roundtrip"
)

func (c *CLI) checkCommand() *cobra.Command {
	var from string
	var showTOON bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Verify that a document survives a TOON round trip",
		Long: `Encode a JSON or YAML document to TOON, decode it again and compare the
result with the input. Differences are printed as a line diff of the two JSON
renderings and the command exits non-zero.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := c.readInput(args)
			if err != nil {
				return err
			}
			doc, err := parseDocument(data, name, from)
			if err != nil {
				return err
			}

			report, err := roundtrip.Check(doc, c.encodeOptions(), c.decodeOptions())
			if err != nil {
				return err
			}
			if showTOON {
				if err := c.writeOutput("", []byte(report.TOON)); err != nil {
					return err
				}
			}
			if !report.OK {
				if _, err := fmt.Fprint(c.out, report.Diff); err != nil {
					return err
				}
				return ErrMismatch
			}

			c.Logger.Info("round trip ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", formatAuto, "input format: auto, json or yaml")
	cmd.Flags().BoolVar(&showTOON, "show", false, "print the encoded TOON")

	return cmd
}
