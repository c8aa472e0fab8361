package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vschema/pkg/processor"
	"github.com/vango-dev/vschema/pkg/registry"
	"github.com/vango-dev/vschema/pkg/render"
	"github.com/vango-dev/vschema/pkg/schema"
	"github.com/vango-dev/vschema/pkg/source"
	"github.com/vango-dev/vschema/pkg/style"
)

type renderOptions struct {
	context string
	pretty  bool
	minify  bool
	page    bool
	title   string
	output  string
	css     string
}

func (c *cli) renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <source>",
		Short: "Render a schema document to HTML",
		Long: `Render a schema document to HTML.

The source is a JSON or YAML file, "-" for standard input, or an
s3://bucket/key location. Values given with --context override the
document's own context.

Examples:
  vschema render page.json
  vschema render page.yaml --context '{"user": {"name": "Ada"}}'
  vschema render - --page --minify -o index.html < page.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("pretty") {
				c.cfg.Render.Pretty = opts.pretty
			}
			if flags.Changed("minify") {
				c.cfg.Render.Minify = opts.minify
			}
			if flags.Changed("title") {
				c.cfg.Render.Title = opts.title
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.context, "context", "", "Context file or inline JSON object")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&opts.minify, "minify", false, "Minify the output")
	cmd.Flags().BoolVar(&opts.page, "page", false, "Wrap the output in a full HTML document")
	cmd.Flags().StringVar(&opts.title, "title", "", "Page title (with --page)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&opts.css, "css", "", "Write collected styles to this file")

	return cmd
}

func (c *cli) runRender(cmd *cobra.Command, location string, opts renderOptions) error {
	ctx := cmd.Context()

	doc, err := source.Load(ctx, location, c.sourceOptions(cmd, location)...)
	if err != nil {
		return err
	}
	extra, err := c.loadContext(ctx, cmd, opts.context)
	if err != nil {
		return err
	}
	doc.Context = schema.Merge(doc.Context, extra)

	sheet := style.NewSheet(nil)
	left, right := c.cfg.Delimiters()
	p := processor.New(
		processor.WithEngine(c.engine()),
		processor.WithRegistry(registry.Builtins()),
		processor.WithStyleSink(sheet),
		processor.WithLogger(c.logger),
		processor.WithDelimiters(left, right),
	)
	nodes, err := p.RenderDocument(ctx, doc)
	if err != nil {
		return err
	}

	w, closeOut, err := output(cmd, opts.output)
	if err != nil {
		return err
	}

	html := render.NewRenderer(render.RendererConfig{
		Pretty: c.cfg.Render.Pretty,
		Minify: c.cfg.Render.Minify,
	})
	if opts.page {
		err = html.RenderPage(w, render.PageData{
			Title:  c.cfg.Render.Title,
			Lang:   c.cfg.Render.Lang,
			Body:   nodes,
			Styles: []string{sheet.CSS()},
		})
	} else {
		err = html.RenderToWriter(w, nodes...)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if opts.css != "" {
		css, err := html.MinifyCSS(sheet.CSS())
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.css, []byte(css), 0644); err != nil {
			return fmt.Errorf("write %s: %w", opts.css, err)
		}
	}

	c.logger.Debug("rendered",
		"source", location,
		"roots", len(nodes),
		"styles", sheet.Len(),
	)
	return nil
}
