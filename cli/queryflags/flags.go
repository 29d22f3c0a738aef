// Package queryflags gathers the statements a command operates on from
// its flags and arguments.
package queryflags

import (
	"errors"
	"io"

	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/compiler/sexpr"
	"github.com/spf13/pflag"
)

type Flags struct {
	Text     string
	Includes []string
}

// Statement is a parsed statement and the name it is reported under.
type Statement struct {
	Name string
	AST  *sexpr.AST
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Text, "query", "c", "", "statement text in tree notation")
	fs.StringArrayVarP(&f.Includes, "include", "I", nil, "source file prepended to the -c statement text (may be repeated)")
}

// Parse parses the -c statement, if any, followed by one statement per
// file in args.  The file name "-" is standard input.
func (f *Flags) Parse(ops *operator.Catalog, stdin io.Reader, args []string) ([]Statement, error) {
	var out []Statement
	if f.Text != "" || len(f.Includes) > 0 {
		p, err := sexpr.ParseQuery(ops, f.Text, f.Includes...)
		if err != nil {
			return nil, err
		}
		out = append(out, Statement{AST: p})
	}
	for _, name := range args {
		var p *sexpr.AST
		var err error
		if name == "-" {
			var b []byte
			if b, err = io.ReadAll(stdin); err != nil {
				return nil, err
			}
			p, err = sexpr.Parse(ops, string(b))
		} else {
			p, err = sexpr.ParseQuery(ops, "", name)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Statement{Name: name, AST: p})
	}
	if len(out) == 0 {
		return nil, errors.New("no statement specified")
	}
	return out, nil
}
