// Package srcfiles maps offsets in statement text back to the files the
// text came from so that errors can be reported by line and column.
package srcfiles

import (
	"os"
	"sort"
	"strings"
)

type List struct {
	Text   string
	Files  []File
	errors ErrorList
}

// New returns a List holding a single source text.
func New(name, text string) *List {
	return &List{Text: text, Files: []File{newFile(name, 0, []byte(text))}}
}

// Locate binds err to the span [pos, end) of l and records it.
func (l *List) Locate(err error, pos, end int) *Error {
	l.errors.Append(l, err, pos, end)
	return l.errors[len(l.errors)-1]
}

// Errors returns the errors located so far.
func (l *List) Errors() ErrorList {
	return l.errors
}

func (l *List) Error() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l.errors
}

func (l *List) FileOf(pos int) File {
	i := sort.Search(len(l.Files), func(i int) bool { return l.Files[i].start > pos }) - 1
	return l.Files[max(i, 0)]
}

// Concat reads in the indicated files and concatenates their content with
// newlines, appending the statement text given on the command line.
func Concat(filenames []string, text string) (*List, error) {
	var b strings.Builder
	var files []File
	for _, f := range filenames {
		bb, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		files = append(files, newFile(f, b.Len(), bb))
		b.Write(bb)
		b.WriteByte('\n')
	}
	if text != "" || len(files) == 0 {
		// Empty string names the command-line text while the included
		// files all have names.
		files = append(files, newFile("", b.Len(), []byte(text)))
		b.WriteString(text)
	}
	return &List{Text: b.String(), Files: files}, nil
}
