package hints

import (
	"errors"

	"github.com/brimdata/sqlsem/cli/queryflags"
	"github.com/brimdata/sqlsem/cmd/sqlsem/root"
	"github.com/spf13/cobra"
)

type Command struct {
	*root.Globals
	query queryflags.Flags
	pos   int
}

func New(g *root.Globals) *cobra.Command {
	c := &Command{Globals: g}
	cmd := &cobra.Command{
		Use:   "hints --pos N [flags] [file]",
		Short: "list completions for the identifier at an offset",
		Long: `
Hints prints the names that may complete the identifier at byte offset
N of a statement, closest first.  In a FROM clause the candidates are
catalog objects; elsewhere they are the relations and columns visible at
that point.  The statement need not be valid.
`,
		RunE: c.Run,
	}
	c.query.SetFlags(cmd.Flags())
	cmd.Flags().IntVar(&c.pos, "pos", -1, "byte offset of the identifier in the statement")
	return cmd
}

func (c *Command) Run(cmd *cobra.Command, args []string) error {
	if c.pos < 0 {
		return errors.New("--pos is required")
	}
	stmts, err := c.query.Parse(c.Ops, cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if len(stmts) != 1 {
		return errors.New("hints takes a single statement")
	}
	reader, err := c.OpenCatalog()
	if err != nil {
		return err
	}
	stmt := stmts[0]
	hints, err := c.NewValidator(reader).LookupHints(stmt.AST.Tree(), stmt.AST.Root(), c.pos)
	if err != nil {
		return err
	}
	return c.Output.NewWriter(cmd.OutOrStdout(), false).Hints(stmt.Name, hints)
}
