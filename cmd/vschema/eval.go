package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/expr"
)

func (c *cli) evalCmd() *cobra.Command {
	var contextFlag string

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression and print the result as JSON",
		Long: `Evaluate one expression against a context and print the result as JSON.

Examples:
  vschema eval '1 + 2 * 3'
  vschema eval 'user.name' --context '{"user": {"name": "Ada"}}'
  vschema eval 'items.length > 0' --context context.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := c.loadContext(cmd.Context(), cmd, contextFlag)
			if err != nil {
				return err
			}

			collector := &errors.Collector{}
			value := c.engine(collector).Eval(args[0], ctx)
			if errs := collector.Errors(); len(errs) > 0 {
				return errs[0]
			}
			return printJSON(cmd, value)
		},
	}

	cmd.Flags().StringVar(&contextFlag, "context", "", "Context file or inline JSON object")

	return cmd
}

func (c *cli) varsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vars <expression>",
		Short: "List the variables an expression references",
		Long: `List the top-level identifiers an expression reads, one per line.

Example:
  vschema vars 'user.name + " " + greeting(count)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := expr.Parse(args[0])
			if err != nil {
				return err
			}
			for _, name := range expr.ExtractVariables(node) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// printJSON writes value as indented JSON. Values with no JSON form, such
// as functions, are printed as their string form.
func printJSON(cmd *cobra.Command, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		data, _ = json.Marshal(expr.ToString(value))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
