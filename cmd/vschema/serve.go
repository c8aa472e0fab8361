package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vschema/internal/preview"
	"github.com/vango-dev/vschema/pkg/registry"
	"github.com/vango-dev/vschema/pkg/source"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Start the preview server",
		Long: `Start a preview server for a schema document.

The document is rendered at "/". POST /api/render renders documents sent
in the request body, and metrics are served at the configured path
(default /metrics). With --watch, open pages reload when the source file
changes.

Examples:
  vschema serve page.json --watch
  vschema serve --addr=0.0.0.0:8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				if err := c.applyAddr(addr); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("watch") {
				c.cfg.Server.Watch = watch
			}

			var location string
			if len(args) == 1 {
				location = args[0]
			}
			if location == source.Stdin {
				return fmt.Errorf("serve cannot read from standard input")
			}

			opts := preview.Options{
				Source:   location,
				Config:   c.cfg,
				Registry: registry.Builtins(),
				Logger:   c.logger,
			}
			if strings.HasPrefix(location, "s3://") {
				opts.S3 = c.s3Client()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return preview.New(opts).Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload pages when the source changes")

	return cmd
}

// applyAddr overrides the configured host and port. A bare ":port" keeps
// the configured host.
func (c *cli) applyAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port in address %q", addr)
	}
	if host != "" {
		c.cfg.Server.Host = host
	}
	c.cfg.Server.Port = port
	return nil
}
