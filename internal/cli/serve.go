package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/paularlott/toon/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr, token string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Long: `Serve POST /v1/encode, /v1/decode and /v1/check over HTTP/1.1 and
cleartext HTTP/2. The bearer token can also be set with TOON_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("token") {
				cfg.Token = token
			} else if env := os.Getenv("TOON_TOKEN"); env != "" {
				cfg.Token = env
			}

			srv, err := server.New(server.Config{
				Token:        cfg.Token,
				MaxBodyBytes: cfg.MaxBodyBytes,
				Encode:       *c.encodeOptions(),
				Decode:       *c.decodeOptions(),
				Logger:       c.Logger,
			})
			if err != nil {
				return err
			}
			if cfg.Token == "" {
				c.Logger.Warn("no token configured, the service is unauthenticated")
			}
			return srv.ListenAndServe(cmd.Context(), cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token")

	return cmd
}
