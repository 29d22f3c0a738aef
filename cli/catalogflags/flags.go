// Package catalogflags opens the table catalog named on the command line.
package catalogflags

import (
	"errors"

	"github.com/brimdata/sqlsem/catalog"
	"github.com/brimdata/sqlsem/types"
	"github.com/spf13/pflag"
)

type Flags struct {
	Path            string
	CaseInsensitive bool
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Path, "catalog", "", "YAML file describing the schemas, tables and types statements refer to")
	fs.BoolVar(&f.CaseInsensitive, "catalog-case-insensitive", false, "match table and type names in the catalog ignoring case")
}

func (f *Flags) Open(tf *types.Factory) (catalog.Reader, error) {
	if f.Path == "" {
		return nil, errors.New("no catalog specified (use --catalog)")
	}
	var opts []catalog.Option
	if f.CaseInsensitive {
		opts = append(opts, catalog.CaseInsensitive())
	}
	return catalog.Load(tf, f.Path, opts...)
}
