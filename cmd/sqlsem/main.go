package main

import (
	"fmt"
	"os"

	"github.com/brimdata/sqlsem/cmd/sqlsem/hints"
	"github.com/brimdata/sqlsem/cmd/sqlsem/rewrite"
	"github.com/brimdata/sqlsem/cmd/sqlsem/root"
	"github.com/brimdata/sqlsem/cmd/sqlsem/validate"
	"github.com/spf13/cobra"
)

func command() *cobra.Command {
	cmd, g := root.New()
	cmd.AddCommand(validate.New(g), rewrite.New(g), hints.New(g))
	return cmd
}

func main() {
	if err := command().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sqlsem:", err)
		os.Exit(1)
	}
}
