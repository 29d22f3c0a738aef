package rewrite

import (
	"github.com/brimdata/sqlsem/cli/queryflags"
	"github.com/brimdata/sqlsem/cmd/sqlsem/root"
	"github.com/brimdata/sqlsem/compiler/semantic"
	"github.com/spf13/cobra"
)

type Command struct {
	*root.Globals
	query queryflags.Flags
}

func New(g *root.Globals) *cobra.Command {
	c := &Command{Globals: g}
	cmd := &cobra.Command{
		Use:   "rewrite [flags] [file ...]",
		Short: "print statements in canonical form",
		Long: `
Rewrite prints each statement after the rewrites applied before
validation: ORDER BY folded into its SELECT, VALUES and set operations
wrapped in SELECT *, the implicit source queries of INSERT, UPDATE and
DELETE, and simple CASE turned into searched CASE.  No catalog is needed.
`,
		RunE: c.Run,
	}
	c.query.SetFlags(cmd.Flags())
	return cmd
}

func (c *Command) Run(cmd *cobra.Command, args []string) error {
	stmts, err := c.query.Parse(c.Ops, cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	w := c.Output.NewWriter(cmd.OutOrStdout(), len(stmts) > 1)
	for _, stmt := range stmts {
		tree, top, err := semantic.Rewrite(c.Ops, stmt.AST.Tree(), stmt.AST.Root())
		if err != nil {
			return err
		}
		if err := w.Tree(stmt.Name, tree, top); err != nil {
			return err
		}
	}
	return nil
}
