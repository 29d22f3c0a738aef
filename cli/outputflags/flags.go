// Package outputflags renders command results as text or JSON.
package outputflags

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/pflag"
)

var Formats = []string{"text", "json"}

type Flags struct {
	Format string
	// Pretty indents JSON output.
	Pretty bool
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Format, "format", "text", "output format (text|json)")
	fs.BoolVar(&f.Pretty, "pretty", false, "indent JSON output")
}

func (f *Flags) Init() error {
	if !slices.Contains(Formats, f.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", f.Format, Formats)
	}
	return nil
}

// NewWriter returns a Writer to w.  When multi is set each result is
// labeled with the name of the statement it belongs to.
func (f *Flags) NewWriter(w io.Writer, multi bool) *Writer {
	return &Writer{w: w, json: f.Format == "json", pretty: f.Pretty, multi: multi}
}
