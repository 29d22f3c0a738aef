// Package root holds the sqlsem top-level command and the flags shared
// by its subcommands.
package root

import (
	"github.com/brimdata/sqlsem/catalog"
	"github.com/brimdata/sqlsem/cli/catalogflags"
	"github.com/brimdata/sqlsem/cli/logflags"
	"github.com/brimdata/sqlsem/cli/outputflags"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/compiler/semantic"
	"github.com/brimdata/sqlsem/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const long = `
The "sqlsem" command checks SQL statements written in tree notation
against a catalog of schemas and tables.  It resolves every name,
derives the type of every expression and reports the first semantic
error of each statement with its position.

The "validate" subcommand prints the row type of each valid statement
and the types inferred for its dynamic parameters.  The "rewrite"
subcommand prints a statement in the canonical form the validator works
on.  The "hints" subcommand lists the names that may complete the
identifier at a given offset of a statement.
`

// Globals are the flags and state shared by all subcommands.
type Globals struct {
	ConfigPath string
	Catalog    catalogflags.Flags
	Log        logflags.Flags
	Output     outputflags.Flags

	Config semantic.Config
	Logger *zap.Logger
	Types  *types.Factory
	Ops    *operator.Catalog
}

func New() (*cobra.Command, *Globals) {
	g := &Globals{}
	cmd := &cobra.Command{
		Use:           "sqlsem",
		Short:         "validate SQL statements against a catalog",
		Long:          long,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return g.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = g.Logger.Sync()
		},
	}
	fs := cmd.PersistentFlags()
	fs.StringVar(&g.ConfigPath, "config", "", "YAML file of validator settings")
	g.Catalog.SetFlags(fs)
	g.Log.SetFlags(fs)
	g.Output.SetFlags(fs)
	return cmd, g
}

func (g *Globals) init() error {
	if err := g.Output.Init(); err != nil {
		return err
	}
	logger, err := g.Log.Open()
	if err != nil {
		return err
	}
	g.Logger = logger
	g.Config = semantic.DefaultConfig()
	if g.ConfigPath != "" {
		if g.Config, err = semantic.LoadConfig(g.ConfigPath); err != nil {
			return err
		}
	}
	g.Types = types.NewFactory()
	g.Ops = operator.NewStdCatalog(g.Types)
	return nil
}

// OpenCatalog opens the catalog named by --catalog.
func (g *Globals) OpenCatalog() (catalog.Reader, error) {
	return g.Catalog.Open(g.Types)
}

// NewValidator returns a validator over reader configured from the
// global flags.
func (g *Globals) NewValidator(reader catalog.Reader) *semantic.Validator {
	return semantic.New(reader, g.Ops, g.Types, g.Logger, g.Config)
}
