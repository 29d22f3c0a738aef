package validate

import (
	"fmt"
	"runtime"

	"github.com/brimdata/sqlsem/cli/queryflags"
	"github.com/brimdata/sqlsem/cmd/sqlsem/root"
	"github.com/brimdata/sqlsem/compiler/semantic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Command struct {
	*root.Globals
	query       queryflags.Flags
	metricsFile string
}

func New(g *root.Globals) *cobra.Command {
	c := &Command{Globals: g}
	cmd := &cobra.Command{
		Use:   "validate [flags] [file ...]",
		Short: "validate statements and print their types",
		Long: `
Validate checks each statement against the catalog and prints its row
type followed by the types inferred for its dynamic parameters, or the
first error found in it.  Each file holds one statement; "-" is standard
input.  Statements are validated concurrently and reported in order.
The command fails if any statement is invalid.
`,
		RunE: c.Run,
	}
	c.query.SetFlags(cmd.Flags())
	cmd.Flags().StringVar(&c.metricsFile, "metrics-file", "", "write validation metrics to this file in Prometheus text format")
	return cmd
}

func (c *Command) Run(cmd *cobra.Command, args []string) error {
	stmts, err := c.query.Parse(c.Ops, cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	reader, err := c.OpenCatalog()
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	metrics := semantic.NewMetrics(reg)
	results := make([]*semantic.Result, len(stmts))
	errs := make([]error, len(stmts))
	group, ctx := errgroup.WithContext(cmd.Context())
	group.SetLimit(runtime.GOMAXPROCS(0))
	for k, stmt := range stmts {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v := c.NewValidator(reader)
			v.SetMetrics(metrics)
			results[k], errs[k] = v.Validate(stmt.AST.Tree(), stmt.AST.Root())
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	w := c.Output.NewWriter(cmd.OutOrStdout(), len(stmts) > 1)
	var failed int
	for k, stmt := range stmts {
		if errs[k] != nil {
			failed++
			c.Logger.Info("statement is invalid", zap.String("name", stmt.Name), zap.Error(errs[k]))
			err = w.Failed(stmt.Name, errs[k], stmt.AST.Files())
		} else {
			err = w.Validated(stmt.Name, results[k])
		}
		if err != nil {
			return err
		}
	}
	if c.metricsFile != "" {
		if err := prometheus.WriteToTextfile(c.metricsFile, reg); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed validation", failed, len(stmts))
	}
	return nil
}
