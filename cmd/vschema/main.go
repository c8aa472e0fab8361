package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vschema/internal/config"
	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/schema"
	"github.com/vango-dev/vschema/pkg/source"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds state shared by every command, filled in before each run.
type cli struct {
	configPath string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "vschema",
		Short: "Render JSON schema documents with template directives",
		Long: `vschema renders trees of JSON (or YAML) nodes into HTML.

Nodes carry a tag, attributes and children. Attributes may hold
directives that are evaluated against a context:

  v-if / v-else-if / v-else   conditional rendering
  v-show                      toggles display
  v-for                       repeats a node per item
  v-model                     two-way binding
  @event / v-on:event         event handlers
  {{ expr }}                  text interpolation`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default: nearest vschema.json)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "Disable colored error output")

	root.AddCommand(
		c.renderCmd(),
		c.evalCmd(),
		c.varsCmd(),
		c.serveCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.noColor {
		errors.DisableColors()
	}

	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.LoadOrDefault()
	}
	if err != nil {
		return err
	}

	level := c.cfg.SlogLevel()
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// sourceOptions returns the options for reading location. An S3 client is
// only built for s3:// locations.
func (c *cli) sourceOptions(cmd *cobra.Command, location string) []source.Option {
	opts := []source.Option{source.WithStdin(cmd.InOrStdin())}
	if strings.HasPrefix(location, "s3://") {
		opts = append(opts, source.WithS3(c.s3Client()))
	}
	return opts
}

func (c *cli) s3Client() source.ObjectGetter {
	return source.NewS3Client(source.S3Config{
		Region:       c.cfg.S3.Region,
		Endpoint:     c.cfg.S3.Endpoint,
		UsePathStyle: c.cfg.S3.UsePathStyle,
	})
}

// loadContext reads a --context value: inline JSON when it starts with "{",
// otherwise a location.
func (c *cli) loadContext(ctx context.Context, cmd *cobra.Command, value string) (schema.Context, error) {
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(strings.TrimSpace(value), "{") {
		return schema.ParseContext([]byte(value), schema.FormatJSON)
	}
	src, err := source.Open(ctx, value, c.sourceOptions(cmd, value)...)
	if err != nil {
		return nil, err
	}
	return src.Context()
}

// engine returns an expression engine reporting to the CLI logger and to
// extra.
func (c *cli) engine(extra ...errors.Reporter) *expr.Engine {
	reporters := append([]errors.Reporter{errors.NewLogReporter(c.logger)}, extra...)
	return expr.New(expr.WithReporter(errors.Multi(reporters...)))
}

// output opens path for writing, or returns stdout when path is empty.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
